package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pairsell/pairsell/app/repository"
	"github.com/pairsell/pairsell/internal/pkg/cache"
	"github.com/pairsell/pairsell/internal/pkg/database"
	"github.com/pairsell/pairsell/internal/pkg/env"
	"github.com/pairsell/pairsell/internal/pkg/reccache"
	"github.com/pairsell/pairsell/internal/pkg/router"
	"github.com/pairsell/pairsell/internal/pkg/syncer"
	"github.com/pairsell/pairsell/internal/pkg/tracking"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	reccache.Setup()
	if memory, ok := reccache.Default().(*reccache.MemoryCache); ok {
		memory.StartSweeper(reccache.SweepInterval)
	}
	tracking.StartFlusher(1 * time.Minute)
	syncer.Setup()

	// init fiber app
	app := fiber.New(fiber.Config{
		// Catalog payloads can reach a few MB for large shops; one sync run
		// may take several minutes when the text-generation collaborator is
		// slow, so writes get a generous upper bound.
		BodyLimit:    16 * 1024 * 1024,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 30 * time.Minute,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
