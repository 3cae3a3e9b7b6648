package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"sprintdesk/config"
	"sprintdesk/internal/domain/entity"
	"sprintdesk/internal/domain/repository"
	"sprintdesk/pkg/helpers"
	"sprintdesk/pkg/mailer"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
)

const resetTokenTTL = 30 * time.Minute

func keyResetToken(t string) string { return "pwd:reset:token:" + t }

// AuthService covers password login, the session-facing profile reads, and
// the password maintenance flows.
type AuthService struct {
	Repo      repository.UserRepository
	Sessions  *SessionService
	Redis     *redis.Client
	Pub       *helpers.RabbitPublisher
	GCS       *storage.Client
	GCSBucket string
	Cfg       *config.Config
	Logger    *logrus.Logger

	now func() time.Time
}

func NewAuthService(repo repository.UserRepository, sessions *SessionService, rdb *redis.Client, pub *helpers.RabbitPublisher, gcs *storage.Client, gcsBucket string, cfg *config.Config, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:      repo,
		Sessions:  sessions,
		Redis:     rdb,
		Pub:       pub,
		GCS:       gcs,
		GCSBucket: gcsBucket,
		Cfg:       cfg,
		Logger:    logger,
		now:       time.Now,
	}
}

// Login validates email/password. Unknown, inactive and wrong-password cases
// all collapse into ErrInvalidCredentials so existence is never revealed;
// an unverified email is the one distinguishable failure.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil || !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	now := s.now()
	if err := s.Repo.TouchLastLogin(ctx, u.ID, now); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("touch last login failed")
	}
	u.LastLoginAt = &now
	return u, nil
}

// Profile returns the user behind an authenticated session.
func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil || !u.IsActive {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ChangePassword re-verifies the current password before storing a new hash.
// Length validation happens at the binding layer.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil || !u.IsActive {
		return ErrUserNotFound
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, current) {
		return ErrWrongCurrentPassword
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, u.ID, hash)
}

// ForgotPassword issues a reset token for known active accounts and mails a
// reset link. Unknown emails are silently ignored so the endpoint response is
// identical either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil || !u.IsActive {
		return
	}
	tok, err := genToken(32)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Error("reset token generation failed")
		}
		return
	}
	if err := s.Redis.Set(ctx, keyResetToken(tok), u.ID, resetTokenTTL).Err(); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("store reset token failed")
		}
		return
	}
	link := s.Cfg.ResetPasswordURL + "?token=" + tok
	publishEmail(ctx, s.Pub, s.Cfg, s.Logger, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateForgotPassword,
		Data: map[string]any{
			"Name":     u.FullName,
			"ResetURL": link,
		},
	})
}

// ResetPassword redeems a reset token. The token is single-use.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	uid, err := s.Redis.Get(ctx, keyResetToken(token)).Result()
	if err != nil || uid == "" {
		return ErrInvalidResetToken
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, uid, hash); err != nil {
		return err
	}
	s.Redis.Del(ctx, keyResetToken(token))
	return nil
}

// UploadAvatar stores the image in GCS and records the public URL.
func (s *AuthService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return "", ErrUserNotFound
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return "", err
	}
	return url, nil
}

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
