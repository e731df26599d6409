package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/passbi/transitmap/internal/middleware"
)

// ServerConfig selects the optional middleware of the app
type ServerConfig struct {
	AppName    string
	AdminToken string
	// RateLimit runs before every /v1 route when set
	RateLimit fiber.Handler
	// Audit receives one record per request when set
	Audit     *slog.Logger
	AccessLog bool
}

// NewApp creates the Fiber app with every route of the API
func NewApp(h *Handler, cfg ServerConfig) *fiber.App {
	if cfg.AppName == "" {
		cfg.AppName = "TransitMap API"
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	if cfg.Audit != nil {
		app.Use(middleware.AuditMiddleware(cfg.Audit))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	app.Get("/health", h.Health)

	v1 := app.Group("/v1")
	if cfg.RateLimit != nil {
		v1.Use(cfg.RateLimit)
	}

	v1.Get("/transports", h.Transports)
	v1.Get("/stops", h.Stops)
	v1.Get("/stops/:code", h.Stop)
	v1.Get("/stops/:code/reachable", h.Reachable)
	v1.Get("/routes", h.Routes)
	v1.Get("/stats", h.Stats)
	v1.Get("/centrality", h.Centrality)
	v1.Get("/route-search", h.RouteSearch)
	v1.Post("/trips", h.Trip)

	// Network edits
	admin := middleware.AdminAuth(cfg.AdminToken)
	v1.Post("/routes/:start/:end/toggle", admin, h.ToggleRoute)
	v1.Post("/routes/:start/:end/transports/:transport/toggle", admin, h.ToggleTransport)
	v1.Put("/routes/:start/:end/bicycle-duration", admin, h.UpdateBicycleDuration)
	v1.Delete("/routes/:start/:end/bicycle-duration", admin, h.UndoBicycleDuration)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "endpoint not found",
		})
	})

	return app
}
