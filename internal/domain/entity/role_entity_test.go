package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleValidAndElevated(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleScrumMaster.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("BOSS").Valid())

	assert.True(t, RoleAdmin.Elevated())
	assert.True(t, RoleScrumMaster.Elevated())
	assert.False(t, RoleUser.Elevated())
}

func TestWorkItemTypeRequiresElevatedRole(t *testing.T) {
	assert.True(t, ItemEpic.RequiresElevatedRole())
	assert.True(t, ItemFeature.RequiresElevatedRole())
	assert.False(t, ItemStory.RequiresElevatedRole())
	assert.False(t, ItemTask.RequiresElevatedRole())
	assert.False(t, ItemBug.RequiresElevatedRole())
}

func TestHasPendingOTP(t *testing.T) {
	u := &User{}
	assert.False(t, u.HasPendingOTP(OTPPurposeLogin))

	code := "123456"
	purpose := OTPPurposeLogin
	exp := time.Now().Add(10 * time.Minute)
	u.OTPCode = &code
	u.OTPPurpose = &purpose
	u.OTPExpiresAt = &exp

	assert.True(t, u.HasPendingOTP(OTPPurposeLogin))
	assert.False(t, u.HasPendingOTP(OTPPurposeEmailVerification))
}
