package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"sprintdesk/internal/domain/entity"
	"sprintdesk/pkg/helpers"
)

var ErrNoSession = errors.New("no active session")

// Session is the server-side record behind a signed session token. A record
// may be pre-auth (only Pending* fields set, while a login OTP is in flight)
// or authenticated (UserID and Role set).
type Session struct {
	ID       string
	UserID   string
	Role     entity.Role
	Email    string
	Username string

	PendingOTP       string
	PendingOTPExpiry time.Time
	PendingEmail     string
	PendingUserID    string
}

func (s *Session) Authenticated() bool { return s.UserID != "" }

func sessionKey(sid string) string { return "session:" + sid }

// SessionService stores sessions as Redis hashes keyed by an opaque session
// id; clients hold a signed token wrapping that id.
type SessionService struct {
	Redis  *redis.Client
	Tokens *helpers.TokenManager
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewSessionService(rdb *redis.Client, tokens *helpers.TokenManager, ttl time.Duration, logger *logrus.Logger) *SessionService {
	return &SessionService{Redis: rdb, Tokens: tokens, TTL: ttl, Logger: logger}
}

// Lookup resolves a session token to its server-side record.
func (s *SessionService) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := s.Tokens.ParseSessionToken(token)
	if err != nil {
		return nil, ErrNoSession
	}
	data, err := s.Redis.HGetAll(ctx, sessionKey(claims.SessionID)).Result()
	if err != nil || len(data) == 0 {
		return nil, ErrNoSession
	}
	sess := &Session{
		ID:            claims.SessionID,
		UserID:        data["user_id"],
		Role:          entity.Role(data["role"]),
		Email:         data["email"],
		Username:      data["username"],
		PendingOTP:    data["pending_otp"],
		PendingEmail:  data["pending_email"],
		PendingUserID: data["pending_user_id"],
	}
	if v := data["pending_otp_expiry"]; v != "" {
		if t, perr := time.Parse(time.RFC3339Nano, v); perr == nil {
			sess.PendingOTPExpiry = t
		}
	}
	return sess, nil
}

// Establish creates an authenticated session for the user and returns the
// signed token. Any previous session behind oldToken is destroyed so the
// session id rotates on login.
func (s *SessionService) Establish(ctx context.Context, oldToken string, u *entity.User) (string, time.Time, error) {
	if oldToken != "" {
		if claims, err := s.Tokens.ParseSessionToken(oldToken); err == nil {
			_ = s.Redis.Del(ctx, sessionKey(claims.SessionID)).Err()
		}
	}
	sid := uuid.NewString()
	key := sessionKey(sid)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    u.ID,
		"role":       string(u.Role),
		"email":      u.Email,
		"username":   u.Username,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", time.Time{}, err
	}
	return s.Tokens.GenerateSessionToken(sid)
}

// StashPendingOTP creates a fresh pre-auth session holding the pending login
// OTP record and returns its token. The previous session, if any, is dropped
// so a stale pending code cannot survive a new send.
func (s *SessionService) StashPendingOTP(ctx context.Context, oldToken string, u *entity.User, code string, expiry time.Time) (string, time.Time, error) {
	if oldToken != "" {
		if claims, err := s.Tokens.ParseSessionToken(oldToken); err == nil {
			_ = s.Redis.Del(ctx, sessionKey(claims.SessionID)).Err()
		}
	}
	sid := uuid.NewString()
	key := sessionKey(sid)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"pending_otp":        code,
		"pending_otp_expiry": expiry.UTC().Format(time.RFC3339Nano),
		"pending_email":      u.Email,
		"pending_user_id":    u.ID,
	})
	pipe.Expire(ctx, key, s.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", time.Time{}, err
	}
	return s.Tokens.GenerateSessionToken(sid)
}

// ClearPending removes the pending-OTP fields from a session record.
func (s *SessionService) ClearPending(ctx context.Context, sid string) {
	err := s.Redis.HDel(ctx, sessionKey(sid),
		"pending_otp", "pending_otp_expiry", "pending_email", "pending_user_id").Err()
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("sid", sid).Warn("clear pending otp failed")
	}
}

// Destroy invalidates the session behind the token. Unknown tokens are a no-op.
func (s *SessionService) Destroy(ctx context.Context, token string) {
	if token == "" {
		return
	}
	claims, err := s.Tokens.ParseSessionToken(token)
	if err != nil {
		return
	}
	if derr := s.Redis.Del(ctx, sessionKey(claims.SessionID)).Err(); derr != nil && s.Logger != nil {
		s.Logger.WithError(derr).Warn("session destroy failed")
	}
}
