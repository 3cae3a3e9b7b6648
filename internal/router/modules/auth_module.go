package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"sprintdesk/internal/application"
	"sprintdesk/internal/container"
	handlers "sprintdesk/internal/interface/http"
	"sprintdesk/internal/interface/middleware"
)

// AuthModule wires the session, login-OTP and email-verification routes.
// Public: /auth/login, /auth/logout, /auth/status, /auth/forgot-password,
// /auth/reset-password, /login-otp/*, /email-verification/send-otp|verify-otp
// Protected: /auth/user, /auth/change-password, /email-verification/status,
// /profile/avatar

type AuthModule struct {
	Auth     *handlers.AuthHandler
	OTP      *handlers.OTPHandler
	Sessions *application.SessionService
}

func NewAuthModule(auth *handlers.AuthHandler, otp *handlers.OTPHandler, sessions *application.SessionService) *AuthModule {
	return &AuthModule{Auth: auth, OTP: otp, Sessions: sessions}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	otpSendLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	otpVerifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/login", loginLimiter, m.Auth.Login)
	rg.POST("/auth/logout", m.Auth.Logout)
	rg.GET("/auth/status", m.Auth.Status)
	rg.POST("/auth/forgot-password", resetLimiter, m.Auth.ForgotPassword)
	rg.POST("/auth/reset-password", otpVerifyLimiter, m.Auth.ResetPassword)

	rg.POST("/login-otp/send-otp", otpSendLimiter, m.OTP.SendLoginOTP)
	rg.POST("/login-otp/verify-login", otpVerifyLimiter, m.OTP.VerifyLogin)

	rg.POST("/email-verification/send-otp", otpSendLimiter, m.OTP.SendVerificationOTP)
	rg.POST("/email-verification/verify-otp", otpVerifyLimiter, m.OTP.VerifyEmail)

	// Protected with a softer per-user limit
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Sessions))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/auth/user", m.Auth.CurrentUser)
		auth.POST("/auth/change-password", m.Auth.ChangePassword)
		auth.GET("/email-verification/status", m.OTP.VerificationStatus)
		auth.PUT("/profile/avatar", m.Auth.UploadAvatar)
	}
}
