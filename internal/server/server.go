// Package server exposes the measurement engine over HTTP for UI event
// handlers. Every request is independent; the server holds no facet state.
package server

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/piwi3910/rooftakeoff/internal/engine"
	"github.com/piwi3910/rooftakeoff/internal/model"
)

// RequestLogger returns the access log middleware.
func RequestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | Content-Type: ${reqHeader:Content-Type}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}

// New builds the fiber app. defaults supplies the pitch and waste used when
// a request leaves them out.
func New(cfg *Config, defaults model.AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.BodyLimit,
		AppName:      "Roof Takeoff",
	})

	app.Use(recover.New())
	if cfg.Environment != "test" {
		app.Use(RequestLogger())
	}

	h := NewHandler(defaults, engine.NewDetector(engine.DetectorOptions{
		SymmetryTolerance: defaults.SymmetryTolerance,
	}))

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	api := app.Group("/api")
	api.Get("/pitches", h.Pitches)
	api.Post("/measure", h.Measure)
	api.Post("/split", h.Split)
	api.Post("/detect", h.Detect)
	api.Post("/export/xlsx", h.ExportXLSX)
	api.Post("/export/geojson", h.ExportGeoJSON)

	return app
}

// Run starts the server and blocks until it stops.
func Run(cfg *Config, defaults model.AppConfig) error {
	app := New(cfg, defaults)
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Roof Takeoff API on %s (env: %s)", addr, cfg.Environment)
	return app.Listen(addr)
}
