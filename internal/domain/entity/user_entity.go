package entity

import (
	"time"
)

// OTPPurpose discriminates what an issued one-time code may be redeemed for,
// so an in-flight email-verification code is never accepted by the login flow
// or vice versa.
type OTPPurpose string

const (
	OTPPurposeLogin             OTPPurpose = "LOGIN"
	OTPPurposeEmailVerification OTPPurpose = "EMAIL_VERIFICATION"
)

// User is the aggregate root for the auth domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
// OTPCode, OTPPurpose and OTPExpiresAt are always set and cleared together.
type User struct {
	ID            string
	Email         string
	Username      string
	PasswordHash  string
	FullName      string
	AvatarURL     string
	Role          Role
	IsActive      bool
	EmailVerified bool

	OTPCode       *string
	OTPPurpose    *OTPPurpose
	OTPExpiresAt  *time.Time
	LastOTPSentAt *time.Time
	OTPAttempts   int

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPendingOTP reports whether a code for the given purpose is stored.
// Expiry is not checked here; callers distinguish "no code" from "expired".
func (u *User) HasPendingOTP(p OTPPurpose) bool {
	return u.OTPCode != nil && u.OTPExpiresAt != nil && u.OTPPurpose != nil && *u.OTPPurpose == p
}
