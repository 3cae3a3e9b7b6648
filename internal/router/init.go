package router

import (
	"sprintdesk/internal/application"
	"sprintdesk/internal/container"
	pginfra "sprintdesk/internal/infrastructure/postgres"
	handlers "sprintdesk/internal/interface/http"
	"sprintdesk/internal/router/modules"
	"sprintdesk/pkg/helpers"
)

// InitModules builds the repositories, services and handlers from the
// container singletons and registers every feature module on the registry.
// Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	sessions := application.NewSessionService(container.GetRedis(), container.GetTokens(), cfg.SessionTTL, logger)
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	users := pginfra.NewUserRepository(container.GetPGPool())
	auth := application.NewAuthService(users, sessions, container.GetRedis(), container.GetRabbitPub(),
		container.GetGCS(), cfg.GCSBucket, cfg, logger)
	otp := application.NewOTPService(users, sessions, container.GetRabbitPub(), cfg, logger)

	projects := application.NewProjectService(
		pginfra.NewProjectRepository(container.GetPGPool()),
		pginfra.NewTeamRepository(container.GetPGPool()),
		pginfra.NewWorkItemRepository(container.GetPGPool()),
		container.GetRedis(), container.GetES(), cfg.ESItemsIndex, logger,
	)

	authHandler := handlers.NewAuthHandler(auth, sessions, cookies, logger)
	otpHandler := handlers.NewOTPHandler(otp, auth, cookies, logger)
	projectHandler := handlers.NewProjectHandler(projects, logger)
	workItemHandler := handlers.NewWorkItemHandler(projects, logger)

	r.Add(modules.NewAuthModule(authHandler, otpHandler, sessions))
	r.Add(modules.NewProjectModule(projectHandler, workItemHandler, sessions))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
