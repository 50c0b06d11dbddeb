package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/api/http/handlers"
	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Teams          *handlers.TeamsHandler
	Directory      *handlers.DirectoryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/auth/session", cfg.Auth.Session)
	protected.Get("/directory", cfg.Directory.Get)
	protected.Patch("/profile", cfg.Users.UpdateProfile)

	users := protected.Group("/users")
	users.Get("/:id", cfg.Users.Get)
	manage := users.Group("", auth.RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin))
	manage.Post("/employees", cfg.Users.CreateEmployee)
	manage.Post("/admins", cfg.Users.CreateAdmin)
	manage.Patch("/:id", cfg.Users.Update)
	manage.Delete("/:id", cfg.Users.Delete)

	teams := protected.Group("/teams")
	teams.Get("", cfg.Teams.List)
	teams.Get("/:id", cfg.Teams.Get)
	teamAdmin := teams.Group("", auth.RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin))
	teamAdmin.Post("", cfg.Teams.Create)
	teamAdmin.Patch("/:id", cfg.Teams.Update)
	teamAdmin.Put("/:id/members", cfg.Teams.ReplaceMembers)
	teamAdmin.Post("/:id/members/:userId/toggle", cfg.Teams.ToggleMember)
	teamAdmin.Delete("/:id", cfg.Teams.Delete)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleSuperAdmin))
	admin.Get("/metrics", cfg.Health.Metrics)
}
