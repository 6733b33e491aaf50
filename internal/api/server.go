package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/pynezz/nauthiz/internal/config"
	"github.com/pynezz/nauthiz/internal/database/stores"
	"github.com/pynezz/nauthiz/internal/enrich"
	"github.com/pynezz/nauthiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/pynezz/pynezzentials/ansi"
)

// NewServer initializes the API server with the provided configuration
// and an already-initialized store. Nothing in here touches the
// database schema: bootstrap owns initialization, the server assumes it
// happened.
func NewServer(cfg *config.Cfg, store *stores.AssessmentStore, orch *enrich.Orchestrator) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Network.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Network.WriteTimeout) * time.Second,
	})

	ansi.PrintInfo(fmt.Sprintf("Server configured with read timeout %ds, write timeout %ds",
		cfg.Network.ReadTimeout, cfg.Network.WriteTimeout))

	// Middleware
	app.Use(logger.New()) // Log every request

	// Every /api path goes through the bouncer; the root banner, the
	// token endpoint and the feed stay open.
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api") {
			return middleware.Bouncer(cfg)(c)
		}
		return c.Next()
	})

	h := &handlers{
		cfg:   cfg,
		store: store,
		orch:  orch,
		feed:  NewFeed(),
	}

	setupRoutes(app, h)

	return app
}

// setupRoutes configures all the routes for the API server.
func setupRoutes(app *fiber.App, h *handlers) {
	app.Get("/", h.index)
	app.Post("/auth/token", h.token)
	app.Get("/ws", websocket.New(h.feed.handle))

	app.Post("/api/query", h.query)
	app.Get("/api/summary/:ioc", h.summary)
	app.Get("/api/history/:ioc", h.history)
	app.Get("/api/timeline/:ioc", h.timeline)
}
