package main

import (
	"context"
	"lms/config"
	"lms/database"
	"lms/middleware"
	adminRoutes "lms/routers/adminRoutes"
	lecturerRoutes "lms/routers/lecturerRoutes"
	studentRoutes "lms/routers/studentRoutes"
	"lms/services"
	"lms/utils"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	cfg := config.AppConfig

	svc := services.New(database.Database.Db, services.Options{
		Serializable: cfg.DBSerializable && cfg.DBDriver != "sqlite",
	})
	if n, err := svc.Badges.SeedCatalog(context.Background()); err != nil {
		config.Log.WithError(err).Warn("Failed to seed badge catalog")
	} else if n > 0 {
		config.Log.WithField("created", n).Info("Seeded badge catalog")
	}

	storage := utils.NewFileStorage(cfg)

	scheduler, err := utils.NewProgressScheduler(svc.Progress, cfg.ProgressCron, cfg.Timezone)
	if err != nil {
		log.Fatalf("Failed to set up progress scheduler: %v", err)
	}
	scheduler.Start()
	config.Log.WithField("schedule", cfg.ProgressCron).Info("Progress scheduler started")

	app := fiber.New(fiber.Config{
		BodyLimit: 25 << 20,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestContext)
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	app.Use(middleware.InjectServices(svc))

	// Serve uploaded files when they are stored locally
	if cfg.UploadServiceURL == "" {
		app.Static("/uploads", cfg.UploadDir)
	}

	api := app.Group("/api")
	studentRoutes.SetupStudentRoutes(api, storage)
	lecturerRoutes.SetupLecturerRoutes(api)
	adminRoutes.SetupAdminRoutes(api)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		config.Log.Info("Shutting down...")
		<-scheduler.Stop().Done()
		if err := app.Shutdown(); err != nil {
			config.Log.WithError(err).Error("Server shutdown failed")
		}
	}()

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
