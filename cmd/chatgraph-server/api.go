// Package main provides the chatgraph backend API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/chatoptimize/chatgraph/pkg/backend/chatsvc"
	"github.com/chatoptimize/chatgraph/pkg/backend/provider"
	"github.com/chatoptimize/chatgraph/pkg/backend/session"
	"github.com/chatoptimize/chatgraph/pkg/eventbus"
	"github.com/chatoptimize/chatgraph/pkg/web"
)

type API struct {
	logger   *slog.Logger
	sessions session.Repository
	eventBus eventbus.EventBus
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	sessions session.Repository,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:   logger,
		sessions: sessions,
		eventBus: eventBus,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	chatService := chatsvc.NewService(
		a.sessions,
		provider.NewRegistry(),
		a.logger,
		chatsvc.WithPublisher(a.eventBus),
	)

	handlers := web.NewAPIHandlers(chatService, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Chatgraph API")
	})

	app.Post(web.ChatPath, handlers.PostChat)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
