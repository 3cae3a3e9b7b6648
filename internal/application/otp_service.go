package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"sprintdesk/config"
	"sprintdesk/internal/domain/entity"
	"sprintdesk/internal/domain/repository"
	"sprintdesk/pkg/helpers"
	"sprintdesk/pkg/mailer"
)

var (
	ErrRateLimited     = errors.New("otp recently sent, wait before requesting another")
	ErrTooManyAttempts = errors.New("too many otp requests")
	ErrAlreadyVerified = errors.New("email already verified")
	ErrNoOTPPending    = errors.New("no otp pending")
	ErrOTPExpired      = errors.New("otp expired")
	ErrInvalidOTP      = errors.New("invalid otp")
)

const (
	otpTTL             = 10 * time.Minute
	otpResendWindow    = 2 * time.Minute
	otpAttemptReset    = time.Hour
	otpMaxAttempts     = 3
	otpExpiresWithinMn = 10
)

// IssueResult is returned on successful OTP issuance. The code itself is only
// ever delivered by email.
type IssueResult struct {
	ExpiresInMinutes int
}

// OTPService implements the OTP issuer and verifier for both purposes.
type OTPService struct {
	Repo     repository.UserRepository
	Sessions *SessionService
	Pub      *helpers.RabbitPublisher
	Cfg      *config.Config
	Logger   *logrus.Logger

	now func() time.Time
}

func NewOTPService(repo repository.UserRepository, sessions *SessionService, pub *helpers.RabbitPublisher, cfg *config.Config, logger *logrus.Logger) *OTPService {
	return &OTPService{Repo: repo, Sessions: sessions, Pub: pub, Cfg: cfg, Logger: logger, now: time.Now}
}

// issue runs the rate/cap checks and claims a new code for the user. The
// pre-checks classify the failure; the claim itself is a single conditional
// update, so a concurrent issuer that loses the race gets ErrRateLimited.
func (s *OTPService) issue(ctx context.Context, u *entity.User, purpose entity.OTPPurpose) (string, error) {
	now := s.now()

	attempts := u.OTPAttempts
	if u.LastOTPSentAt != nil && now.Sub(*u.LastOTPSentAt) >= otpAttemptReset {
		attempts = 0
	}
	if u.LastOTPSentAt != nil && now.Sub(*u.LastOTPSentAt) < otpResendWindow {
		return "", ErrRateLimited
	}
	if attempts >= otpMaxAttempts {
		return "", ErrTooManyAttempts
	}

	code, err := helpers.GenOTPCode()
	if err != nil {
		return "", err
	}
	claimed, err := s.Repo.ClaimOTPIssue(ctx, repository.ClaimOTPIssueParams{
		UserID:      u.ID,
		Code:        code,
		Purpose:     purpose,
		ExpiresAt:   now.Add(otpTTL),
		SentAt:      now,
		ResetCutoff: now.Add(-otpAttemptReset),
		RateCutoff:  now.Add(-otpResendWindow),
		MaxAttempts: otpMaxAttempts,
	})
	if err != nil {
		return "", err
	}
	if !claimed {
		return "", ErrRateLimited
	}
	return code, nil
}

// SendEmailVerificationOTP issues a verification code for an unverified account.
func (s *OTPService) SendEmailVerificationOTP(ctx context.Context, email string) (*IssueResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil || !u.IsActive {
		return nil, ErrUserNotFound
	}
	if u.EmailVerified {
		return nil, ErrAlreadyVerified
	}
	code, err := s.issue(ctx, u, entity.OTPPurposeEmailVerification)
	if err != nil {
		return nil, err
	}

	publishEmail(ctx, s.Pub, s.Cfg, s.Logger, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateEmailVerification,
		Data: map[string]any{
			"Name":             u.FullName,
			"Code":             code,
			"ExpiresInMinutes": otpExpiresWithinMn,
		},
	})
	return &IssueResult{ExpiresInMinutes: otpExpiresWithinMn}, nil
}

// SendLoginOTP validates the password, issues a login code, and stashes the
// pending record in a fresh pre-auth session. The returned token must reach
// the client as the session cookie.
func (s *OTPService) SendLoginOTP(ctx context.Context, sessToken, email, password string) (string, time.Time, *IssueResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil || !u.IsActive {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	code, err := s.issue(ctx, u, entity.OTPPurposeLogin)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	expiry := s.now().Add(otpTTL)
	token, exp, err := s.Sessions.StashPendingOTP(ctx, sessToken, u, code, expiry)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	publishEmail(ctx, s.Pub, s.Cfg, s.Logger, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateLoginOTP,
		Data: map[string]any{
			"Name":             u.FullName,
			"Code":             code,
			"ExpiresInMinutes": otpExpiresWithinMn,
		},
	})
	return token, exp, &IssueResult{ExpiresInMinutes: otpExpiresWithinMn}, nil
}

// VerifyEmail redeems an email-verification code. On success the account is
// marked verified and the stored code is cleared, so a replay fails with
// ErrNoOTPPending.
func (s *OTPService) VerifyEmail(ctx context.Context, email, code string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil || !u.IsActive {
		return ErrUserNotFound
	}
	if u.EmailVerified {
		return ErrAlreadyVerified
	}
	if !u.HasPendingOTP(entity.OTPPurposeEmailVerification) {
		return ErrNoOTPPending
	}
	if s.now().After(*u.OTPExpiresAt) {
		return ErrOTPExpired
	}
	// Exact string equality, no normalization. A mismatch leaves the stored
	// code usable until expiry.
	if *u.OTPCode != code {
		return ErrInvalidOTP
	}
	return s.Repo.MarkEmailVerified(ctx, u.ID)
}

// VerifyLogin redeems a login code held in the caller's session. The password
// is re-verified against the stored hash even when the code matches. On
// success the authenticated session is established and its id rotated.
func (s *OTPService) VerifyLogin(ctx context.Context, sessToken, email, password, code string) (*entity.User, string, time.Time, error) {
	sess, err := s.Sessions.Lookup(ctx, sessToken)
	if err != nil || sess.PendingOTP == "" || sess.PendingEmail != email {
		return nil, "", time.Time{}, ErrInvalidOTP
	}
	if s.now().After(sess.PendingOTPExpiry) {
		s.Sessions.ClearPending(ctx, sess.ID)
		return nil, "", time.Time{}, ErrOTPExpired
	}
	if sess.PendingOTP != code {
		return nil, "", time.Time{}, ErrInvalidOTP
	}

	u, err := s.Repo.GetByID(ctx, sess.PendingUserID)
	if err != nil || u == nil || !u.IsActive {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.Repo.CompleteLogin(ctx, u.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	u.LastLoginAt = &now

	// Establish drops the pre-auth record, which also clears the pending OTP.
	token, exp, err := s.Sessions.Establish(ctx, sessToken, u)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}
