package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sprintdesk/internal/application"
	"sprintdesk/pkg/helpers"
	"sprintdesk/pkg/response"
	"sprintdesk/pkg/validation"
)

// OTPHandler exposes the login-OTP and email-verification flows.
type OTPHandler struct {
	OTP     *application.OTPService
	Auth    *application.AuthService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewOTPHandler(otp *application.OTPService, auth *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger) *OTPHandler {
	return &OTPHandler{OTP: otp, Auth: auth, Cookies: cookies, Logger: logger}
}

type sendLoginOTPRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SendLoginOTP POST /login-otp/send-otp
func (h *OTPHandler) SendLoginOTP(c *gin.Context) {
	var req sendLoginOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	oldToken, _ := c.Cookie(helpers.SessionCookie)
	token, exp, res, err := h.OTP.SendLoginOTP(c.Request.Context(), oldToken, req.Email, req.Password)
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	case errors.Is(err, application.ErrRateLimited):
		response.Error[any](c, http.StatusTooManyRequests, "a code was sent recently, please wait before requesting another", nil)
		return
	case errors.Is(err, application.ErrTooManyAttempts):
		response.Error[any](c, http.StatusTooManyRequests, "too many codes requested, please try again later", nil)
		return
	case err != nil:
		h.Logger.WithError(err).Error("send login otp failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}

	h.Cookies.SetSession(c, token, exp)
	response.Success(c, http.StatusOK, gin.H{"expires_in_minutes": res.ExpiresInMinutes}, "verification code sent", nil)
}

type verifyLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	OTP      string `json:"otp" binding:"required,otp"`
}

// VerifyLogin POST /login-otp/verify-login
func (h *OTPHandler) VerifyLogin(c *gin.Context) {
	var req verifyLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	sessToken, _ := c.Cookie(helpers.SessionCookie)
	u, token, exp, err := h.OTP.VerifyLogin(c.Request.Context(), sessToken, req.Email, req.Password, req.OTP)
	switch {
	case errors.Is(err, application.ErrOTPExpired):
		response.Error[any](c, http.StatusBadRequest, "code expired, please request a new one", nil)
		return
	case errors.Is(err, application.ErrInvalidOTP):
		response.Error[any](c, http.StatusBadRequest, "invalid or expired code", nil)
		return
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	case err != nil:
		h.Logger.WithError(err).Error("verify login otp failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}

	h.Cookies.SetSession(c, token, exp)
	response.Success(c, http.StatusOK, gin.H{"user": userJSON(u)}, "login successful", nil)
}

type sendVerificationOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendVerificationOTP POST /email-verification/send-otp
func (h *OTPHandler) SendVerificationOTP(c *gin.Context) {
	var req sendVerificationOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.OTP.SendEmailVerificationOTP(c.Request.Context(), req.Email)
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	case errors.Is(err, application.ErrAlreadyVerified):
		response.Error[any](c, http.StatusBadRequest, "email already verified", nil)
		return
	case errors.Is(err, application.ErrRateLimited):
		response.Error[any](c, http.StatusTooManyRequests, "a code was sent recently, please wait before requesting another", nil)
		return
	case errors.Is(err, application.ErrTooManyAttempts):
		response.Error[any](c, http.StatusTooManyRequests, "too many codes requested, please try again later", nil)
		return
	case err != nil:
		h.Logger.WithError(err).Error("send verification otp failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"expires_in_minutes": res.ExpiresInMinutes}, "verification code sent", nil)
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,otp"`
}

// VerifyEmail POST /email-verification/verify-otp
func (h *OTPHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.OTP.VerifyEmail(c.Request.Context(), req.Email, req.OTP)
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	case errors.Is(err, application.ErrAlreadyVerified):
		response.Error[any](c, http.StatusBadRequest, "email already verified", nil)
		return
	case errors.Is(err, application.ErrNoOTPPending):
		response.Error[any](c, http.StatusBadRequest, "no code pending, please request a new one", nil)
		return
	case errors.Is(err, application.ErrOTPExpired):
		response.Error[any](c, http.StatusBadRequest, "code expired, please request a new one", nil)
		return
	case errors.Is(err, application.ErrInvalidOTP):
		response.Error[any](c, http.StatusBadRequest, "invalid code", nil)
		return
	case err != nil:
		h.Logger.WithError(err).Error("verify email otp failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
}

// VerificationStatus GET /email-verification/status (auth required)
func (h *OTPHandler) VerificationStatus(c *gin.Context) {
	u, err := h.Auth.Profile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email_verified": u.EmailVerified,
		"email":          u.Email,
	}, "verification status", nil)
}
