package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dalleni/support-desk/internal/api/http/handlers"
	"github.com/dalleni/support-desk/internal/auth"
	"github.com/dalleni/support-desk/internal/config"
	"github.com/dalleni/support-desk/internal/domain"
	"github.com/dalleni/support-desk/internal/observability"
	"github.com/dalleni/support-desk/internal/ratelimit"
)

// ServerConfig carries app-level settings.
type ServerConfig struct {
	AppName        string
	RequestTimeout time.Duration
	AllowedOrigins string
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
	RequireStaff   bool
	Limiter        *ratelimit.Limiter
	RateLimit      config.RateLimitConfig
	Metrics        *observability.Metrics
}

// NewApp builds the fiber app with middlewares and routes.
func NewApp(server ServerConfig, routes RouteConfig) *fiber.App {
	logger := server.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := server.AllowedOrigins
	if origins == "" {
		origins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:               server.AppName,
		UnescapePath:          true,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, server.Metrics, server.RequestTimeout, origins)
	RegisterRoutes(app, routes)
	return app
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	api.Post("/auth/staff/login", cfg.Staff.Login)

	staffOnly := auth.RequireStaffRole(cfg.RequireStaff, domain.StaffRoleAdmin, domain.StaffRoleAgent)
	var createLimit, generateLimit fiber.Handler = passThrough, passThrough
	if cfg.RateLimit.Enabled {
		createLimit = rateLimit(cfg.Limiter, "ticket_create", cfg.RateLimit.CreateLimit, cfg.RateLimit.Window())
		generateLimit = rateLimit(cfg.Limiter, "ai_generate", cfg.RateLimit.GenerateLimit, cfg.RateLimit.Window())
	}

	tickets := api.Group("/tickets")
	tickets.Post("/", createLimit, cfg.Tickets.CreateTicket)
	tickets.Get("/", staffOnly, cfg.Tickets.ListTickets)
	tickets.Get("/stats", staffOnly, cfg.Tickets.Stats)
	tickets.Get("/user/:email", cfg.Tickets.ListByEmail)
	tickets.Get("/id/:id", cfg.Tickets.GetByID)
	tickets.Get("/:id/comments", cfg.Comments.ListComments)
	tickets.Post("/:id/comments", cfg.Comments.AddComment)
	tickets.Get("/:ticketNumber", cfg.Tickets.GetByNumber)
	tickets.Put("/:id/status", staffOnly, cfg.Tickets.UpdateStatus)
	tickets.Put("/:id/ai-solution", generateLimit, cfg.Tickets.GenerateSolution)
	tickets.Put("/:id/admin-notes", staffOnly, cfg.Tickets.SetAdminNotes)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}
