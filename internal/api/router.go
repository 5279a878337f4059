package api

import (
	"agri-advisor/docs"
	"agri-advisor/internal/api/handlers"
	"agri-advisor/pkg/config"
	"agri-advisor/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func SetupRouter(
	adviceHandler *handlers.AdviceHandler,
	marketHandler *handlers.MarketHandler,
	knowledgeHandler *handlers.KnowledgeHandler,
	server *config.ServerConfig,
	jwtSecret string,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  server.ReadTimeout,
		WriteTimeout: server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// docs registers itself with swag in init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", knowledgeHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	var guards []fiber.Handler
	if jwtSecret != "" {
		guards = append(guards, middleware.AuthMiddleware(jwtSecret, appLogger))
	} else {
		appLogger.Warn("JWT_SECRET_KEY is empty, /api/v1 is open")
	}
	v1 := app.Group("/api/v1", guards...)

	v1.Post("/advice", adviceHandler.Advise)
	v1.Get("/quotes", marketHandler.GetQuotes)
	v1.Get("/commodities/resolve", marketHandler.ResolveCommodities)
	v1.Get("/knowledge/search", knowledgeHandler.Search)

	return app
}
