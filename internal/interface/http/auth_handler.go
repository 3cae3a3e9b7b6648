package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sprintdesk/internal/application"
	"sprintdesk/internal/domain/entity"
	"sprintdesk/pkg/helpers"
	"sprintdesk/pkg/response"
	"sprintdesk/pkg/validation"
)

type AuthHandler struct {
	Auth     *application.AuthService
	Sessions *application.SessionService
	Cookies  *helpers.Manager
	Logger   *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, sessions *application.SessionService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Sessions: sessions, Cookies: cookies, Logger: logger}
}

// userJSON is the safe projection of a user: no hash, no OTP fields.
func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"full_name":  u.FullName,
		"role":       u.Role,
		"avatar_url": u.AvatarURL,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, application.ErrEmailNotVerified):
		response.Error[any](c, http.StatusForbidden, "email not verified, please verify your email first", nil)
		return
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	case err != nil:
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}

	oldToken, _ := c.Cookie(helpers.SessionCookie)
	token, exp, err := h.Sessions.Establish(c.Request.Context(), oldToken, u)
	if err != nil {
		h.Logger.WithError(err).Error("session establish failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}
	h.Cookies.SetSession(c, token, exp)
	response.Success(c, http.StatusOK, gin.H{"user": userJSON(u)}, "login successful", nil)
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(helpers.SessionCookie); err == nil && token != "" {
		h.Sessions.Destroy(c.Request.Context(), token)
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

// Status GET /auth/status
func (h *AuthHandler) Status(c *gin.Context) {
	token, _ := c.Cookie(helpers.SessionCookie)
	sess, err := h.Sessions.Lookup(c.Request.Context(), token)
	if err != nil || !sess.Authenticated() {
		response.Success(c, http.StatusOK, gin.H{"authenticated": false}, "status", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"authenticated": true,
		"user_role":     sess.Role,
	}, "status", nil)
}

// CurrentUser GET /auth/user (auth required)
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	u, err := h.Auth.Profile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "current user", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword POST /auth/forgot-password
// The response is identical whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	h.Auth.ForgotPassword(c.Request.Context(), req.Email)
	response.Success[any](c, http.StatusOK, nil, "if the account exists, a reset email has been sent", nil)
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// ResetPassword POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, application.ErrInvalidResetToken) {
			response.Error[any](c, http.StatusBadRequest, "invalid or expired reset token", nil)
			return
		}
		h.Logger.WithError(err).Error("reset password failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password updated", nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

// ChangePassword POST /auth/change-password (auth required)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Auth.ChangePassword(c.Request.Context(), c.GetString("userID"), req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, application.ErrWrongCurrentPassword):
		response.Error[any](c, http.StatusBadRequest, "current password is incorrect", nil)
		return
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
		return
	case err != nil:
		h.Logger.WithError(err).Error("change password failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed", nil)
}

// UploadAvatar PUT /profile/avatar (auth required, multipart)
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Auth.UploadAvatar(c.Request.Context(), c.GetString("userID"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.WithError(err).Warn("avatar upload failed")
		response.Error[any](c, http.StatusInternalServerError, "upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}
