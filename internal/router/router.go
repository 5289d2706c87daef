package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskr/api/handler"
	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/internal/middleware"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Audit   *apiHandler.AuditHandler
	Health  *apiHandler.HealthHandler
}

// Middleware groups the wrappers applied per route class.
type Middleware struct {
	Auth      func(fasthttp.RequestHandler) fasthttp.RequestHandler
	RateLimit func(fasthttp.RequestHandler) fasthttp.RequestHandler
}

func New(handlers Handlers, mw Middleware) *router.Router {
	r := router.New()

	authMiddleware := mw.Auth
	limit := mw.RateLimit
	if limit == nil {
		limit = passthrough
	}

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", limit(handlers.Auth.Register))
	r.POST("/api/v1/auth/login", limit(handlers.Auth.Login))
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))
	r.POST("/api/v1/auth/refresh", authMiddleware(handlers.Auth.Refresh))

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.POST("/api/v1/tasks/{id}/complete", authMiddleware(handlers.Task.CompleteTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	// Admin routes
	requireAudit := middleware.RequireCapability(domain.CapReadAudit)
	r.GET("/api/v1/admin/audit", authMiddleware(requireAudit(handlers.Audit.Recent)))

	return r
}

func passthrough(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return next
}
