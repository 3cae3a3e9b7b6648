package helpers

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// GenOTPCode generates a secure random 6-digit code as a zero-padded string.
// Rejection sampling keeps the draw uniform over [000000, 999999].
func GenOTPCode() (string, error) {
	const limit = 4294000000 // largest multiple of 1e6 that fits in uint32
	var b [4]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return "", err
		}
		n := binary.BigEndian.Uint32(b[:])
		if n >= limit {
			continue
		}
		return fmt.Sprintf("%06d", n%1000000), nil
	}
}
