package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintdesk/config"
	"sprintdesk/pkg/helpers"
)

func newTestAuth(t *testing.T, repo *memUserRepo) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	tokens := helpers.NewTokenManager("test-secret", time.Hour)
	sessions := NewSessionService(rdb, tokens, time.Hour, logrus.New())
	cfg := &config.Config{AppName: "sprintdesk", ResetPasswordURL: "http://localhost/reset-password"}
	return NewAuthService(repo, sessions, rdb, nil, nil, "", cfg, logrus.New()), mr
}

func TestLogin(t *testing.T) {
	unverified := testUser(t, "u2", "b@example.com", "secret123", false)
	inactive := testUser(t, "u3", "c@example.com", "secret123", true)
	inactive.IsActive = false
	repo := newMemUserRepo(testUser(t, "u1", "a@example.com", "secret123", true), unverified, inactive)
	svc, _ := newTestAuth(t, repo)
	ctx := context.Background()

	u, err := svc.Login(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.NotNil(t, u.LastLoginAt)

	_, err = svc.Login(ctx, "a@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "missing@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "c@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "b@example.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestChangePassword(t *testing.T) {
	repo := newMemUserRepo(testUser(t, "u1", "a@example.com", "secret123", true))
	svc, _ := newTestAuth(t, repo)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "u1", "nope", "newsecret1")
	assert.ErrorIs(t, err, ErrWrongCurrentPassword)

	require.NoError(t, svc.ChangePassword(ctx, "u1", "secret123", "newsecret1"))

	_, err = svc.Login(ctx, "a@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a@example.com", "newsecret1")
	assert.NoError(t, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	repo := newMemUserRepo(testUser(t, "u1", "a@example.com", "secret123", true))
	svc, mr := newTestAuth(t, repo)
	ctx := context.Background()

	// Unknown email stores nothing
	svc.ForgotPassword(ctx, "missing@example.com")
	assert.Empty(t, mr.Keys())

	svc.ForgotPassword(ctx, "a@example.com")
	var token string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "pwd:reset:token:") {
			token = strings.TrimPrefix(k, "pwd:reset:token:")
		}
	}
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(ctx, token, "newsecret1"))
	_, err := svc.Login(ctx, "a@example.com", "newsecret1")
	assert.NoError(t, err)

	// Token is single-use
	err = svc.ResetPassword(ctx, token, "another999")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	err = svc.ResetPassword(ctx, "bogus", "another999")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestProfile(t *testing.T) {
	inactive := testUser(t, "u2", "b@example.com", "secret123", true)
	inactive.IsActive = false
	repo := newMemUserRepo(testUser(t, "u1", "a@example.com", "secret123", true), inactive)
	svc, _ := newTestAuth(t, repo)
	ctx := context.Background()

	u, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)

	_, err = svc.Profile(ctx, "u2")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.Profile(ctx, "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
