package repository

import (
	"context"
	"errors"
	"time"

	"sprintdesk/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// ClaimOTPIssueParams drives the single conditional UPDATE that issues a new
// one-time code. The cutoffs are computed by the caller so the repository
// stays clock-free: ResetCutoff is now minus the attempt-reset window,
// RateCutoff is now minus the resend window.
type ClaimOTPIssueParams struct {
	UserID      string
	Code        string
	Purpose     entity.OTPPurpose
	ExpiresAt   time.Time
	SentAt      time.Time
	ResetCutoff time.Time
	RateCutoff  time.Time
	MaxAttempts int
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	// ClaimOTPIssue atomically stores a new OTP if the rate window and attempt
	// cap allow it, resetting the attempt counter when the reset window has
	// elapsed. Returns false when the guard rejected the claim (another issuer
	// won the race or the window closed between read and write).
	ClaimOTPIssue(ctx context.Context, p ClaimOTPIssueParams) (bool, error)

	// MarkEmailVerified sets email_verified and clears all OTP state.
	MarkEmailVerified(ctx context.Context, id string) error

	// CompleteLogin clears all OTP state and records the login time.
	CompleteLogin(ctx context.Context, id string, at time.Time) error
}
