package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/soltixdb/tsexplorer/internal/config"
	"github.com/soltixdb/tsexplorer/internal/handlers"
	"github.com/soltixdb/tsexplorer/internal/logging"
	"github.com/soltixdb/tsexplorer/internal/middleware"
	"github.com/soltixdb/tsexplorer/internal/services"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, datasetService *services.DatasetService,
	explorerService *services.ExplorerService, cfg *config.Config,
) *handlers.Handler {
	h := handlers.New(logger, datasetService, explorerService)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
		ExposeHeaders: "Content-Disposition,X-Row-Count,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth))

	// Dataset routes
	v1.Get("/datasets", h.ListDatasets)
	v1.Post("/datasets", h.UploadDataset)
	v1.Get("/datasets/:dataset", h.GetDataset)
	v1.Delete("/datasets/:dataset", h.DeleteDataset)

	// Exploration routes
	v1.Get("/datasets/:dataset/explore", h.Explore)
	v1.Post("/datasets/:dataset/explore", h.ExplorePost)
	v1.Get("/datasets/:dataset/export", h.Export)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, datasetService *services.DatasetService,
	explorerService *services.ExplorerService, cfg *config.Config,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "tsexplorer",
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimit(),
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, datasetService, explorerService, cfg)

	return app
}
