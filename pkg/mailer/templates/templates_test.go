package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderKnownTemplates(t *testing.T) {
	data := map[string]any{
		"Name":             "Ada",
		"Code":             "123456",
		"ExpiresInMinutes": 10,
		"ResetURL":         "http://localhost/reset-password?token=abc",
		"AppName":          "sprintdesk",
		"CompanyName":      "SprintDesk",
	}
	for _, name := range []string{"login_otp", "email_verification", "forgot_password"} {
		subject, text, html, err := Render(name, data)
		require.NoError(t, err, name)
		assert.NotEmpty(t, subject, name)
		assert.NotEmpty(t, text, name)
		assert.NotEmpty(t, html, name)
	}

	subject, text, _, err := Render("login_otp", data)
	require.NoError(t, err)
	assert.Contains(t, subject, "sprintdesk")
	assert.Contains(t, text, "123456")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", map[string]any{})
	assert.Error(t, err)
}
