package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenOTPCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, ch := range code {
			assert.True(t, ch >= '0' && ch <= '9', "code %q contains non-digit", code)
		}
		seen[code] = struct{}{}
	}
	// 200 draws from a million values should essentially never all collide
	assert.Greater(t, len(seen), 100)
}
