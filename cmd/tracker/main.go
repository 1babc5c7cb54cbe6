package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/config"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/database"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/handlers"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/repository"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/service"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/store"
)

func main() {
	// 1. Load configuration and fixed locale
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Error loading timezone: %v", err)
	}

	// 2. Initialize our external connections
	db, redisClient := database.InitDatabases(cfg)

	// 3. Initialize the store, repos, services, and handlers
	dataStore := store.NewRedisStore(redisClient)

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(dataStore)
	progressRepo := repository.NewProgressRepository(dataStore)
	dailyRepo := repository.NewDailyProgressRepository(dataStore)

	if err := userRepo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to prepare users table: %v", err)
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.AdminEmail)
	catalogService := service.NewCatalogService(questionRepo, progressRepo)
	progressService := service.NewProgressService(dailyRepo, loc)

	watcher := service.NewWatcher(dataStore)
	if err := watcher.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start catalog watch: %v", err)
	}

	dashboardHandlers := handlers.NewDashboardHandlers(authService, catalogService, progressService, watcher, userRepo)

	// 4. Create a new Fiber instance
	app := fiber.New(fiber.Config{
		AppName: "LeetcodeProgressTracker_v1",
	})

	// 5. Middleware for better observability
	app.Use(logger.New())  // Logs every request to console
	app.Use(recover.New()) // Prevents the app from crashing on panics
	app.Use(cors.New())

	// 6. Route Definitions
	auth := app.Group("/v1/auth")
	// Per-IP rate limiting on login to slow down password guessing
	auth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))
	auth.Post("/login", dashboardHandlers.HandleLogin)
	auth.Post("/logout", handlers.AuthRequired(authService), dashboardHandlers.HandleLogout)

	authRequired := handlers.AuthRequired(authService)
	adminRequired := handlers.AdminRequired()

	questions := app.Group("/v1/questions", authRequired)
	questions.Get("/", dashboardHandlers.HandleListQuestions)
	questions.Post("/", adminRequired, dashboardHandlers.HandleAddQuestion)
	questions.Delete("/:id", adminRequired, dashboardHandlers.HandleDeleteQuestion)

	progress := app.Group("/v1/progress", authRequired)
	progress.Get("/summary", dashboardHandlers.HandleSummary)
	progress.Post("/daily", dashboardHandlers.HandleRecordToday)
	progress.Put("/daily/:date", dashboardHandlers.HandleEditDay)
	progress.Put("/:questionId", dashboardHandlers.HandleToggleCompletion)

	app.Get("/v1/calendar/:year/:month", authRequired, dashboardHandlers.HandleCalendar)
	app.Get("/v1/dashboard", authRequired, dashboardHandlers.HandleDashboard)

	// 7. Start the server; detach all watches on shutdown
	go func() {
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	watcher.Close()
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
