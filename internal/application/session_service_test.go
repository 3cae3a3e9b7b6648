package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintdesk/internal/domain/entity"
)

func TestSessionEstablishLookupDestroy(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()
	u := testUser(t, "u1", "a@example.com", "secret123", true)
	u.Role = entity.RoleScrumMaster

	token, exp, err := sessions.Establish(ctx, "", u)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	sess, err := sessions.Lookup(ctx, token)
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, entity.RoleScrumMaster, sess.Role)
	assert.Equal(t, "a@example.com", sess.Email)

	sessions.Destroy(ctx, token)
	_, err = sessions.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionLookupRejectsGarbage(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()

	_, err := sessions.Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = sessions.Lookup(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionRotationOnEstablish(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()
	u := testUser(t, "u1", "a@example.com", "secret123", true)

	first, _, err := sessions.Establish(ctx, "", u)
	require.NoError(t, err)
	second, _, err := sessions.Establish(ctx, first, u)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = sessions.Lookup(ctx, first)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = sessions.Lookup(ctx, second)
	assert.NoError(t, err)
}

func TestStashPendingOTPAndClear(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()
	u := testUser(t, "u1", "a@example.com", "secret123", true)
	expiry := time.Now().Add(10 * time.Minute).UTC()

	token, _, err := sessions.StashPendingOTP(ctx, "", u, "123456", expiry)
	require.NoError(t, err)

	sess, err := sessions.Lookup(ctx, token)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
	assert.Equal(t, "123456", sess.PendingOTP)
	assert.Equal(t, "a@example.com", sess.PendingEmail)
	assert.Equal(t, "u1", sess.PendingUserID)
	assert.WithinDuration(t, expiry, sess.PendingOTPExpiry, time.Second)

	// Clearing a pre-auth record leaves nothing behind
	sessions.ClearPending(ctx, sess.ID)
	_, err = sessions.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStashPendingOTPDropsPreviousSession(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()
	u := testUser(t, "u1", "a@example.com", "secret123", true)
	expiry := time.Now().Add(10 * time.Minute)

	first, _, err := sessions.StashPendingOTP(ctx, "", u, "111111", expiry)
	require.NoError(t, err)
	second, _, err := sessions.StashPendingOTP(ctx, first, u, "222222", expiry)
	require.NoError(t, err)

	_, err = sessions.Lookup(ctx, first)
	assert.ErrorIs(t, err, ErrNoSession)

	sess, err := sessions.Lookup(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "222222", sess.PendingOTP)
}
