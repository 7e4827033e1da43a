package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	config "github.com/referly/referral-api/configs"
	"github.com/referly/referral-api/internal/api/handlers"
	"github.com/referly/referral-api/internal/api/middleware"
	job "github.com/referly/referral-api/internal/jobs"
	"github.com/referly/referral-api/internal/oauthstore"
	"github.com/referly/referral-api/internal/queue"
	"github.com/referly/referral-api/internal/repository"
	"github.com/referly/referral-api/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	// Pending authorizations live in redis when it is configured so the
	// begin and callback steps do not need to land on the same instance.
	var pendingStore oauthstore.Store
	if cfg.RedisURI != "" {
		pendingStore = oauthstore.NewRedisStore(
			redis.NewClient(&redis.Options{Addr: cfg.RedisURI}), oauthstore.DefaultTTL)
	} else {
		memStore := oauthstore.NewMemoryStore(oauthstore.DefaultTTL)
		defer memStore.Close()
		pendingStore = memStore
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	twitterRepo := repository.NewTwitterConnectionRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	pointsRepo := repository.NewUserPointsRepository(db)
	walletRepo := repository.NewWalletConnectionRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	referralService := service.NewReferralService(*cfg, userRepo, referralRepo, pointsRepo)
	authService := service.NewAuthService(*cfg, userRepo, referralService)
	userService := service.NewUserService(userRepo)
	twitterService := service.NewTwitterService(*cfg, twitterRepo, pendingStore, service.DefaultTwitterEndpoints())
	walletService := service.NewWalletService(walletRepo)
	dashboardService := service.NewDashboardService(dashboardRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	user := handlers.NewUserHandler(authService, userService)
	app.Post("/user/register", user.Register)
	app.Post("/user/login", user.Login)

	twitter := handlers.NewTwitterHandler(*cfg, twitterService)
	app.Get("/auth/twitter/callback", twitter.Callback)

	referral := handlers.NewReferralHandler(referralService)
	app.Post("/referral/validate", referral.Validate)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/user/", user.ListUsers)

	api.Get("/twitter/auth-url", twitter.GetAuthURL)
	api.Get("/twitter/status", twitter.GetStatus)
	api.Delete("/twitter/disconnect", twitter.Disconnect)
	api.Get("/twitter/all", twitter.ListConnections)
	api.Get("/twitter/posts", twitter.RecentPosts)

	api.Get("/referral/code", referral.GetCode)
	api.Get("/referral/stats", referral.GetStats)

	wallet := handlers.NewWalletHandler(walletService)
	api.Get("/wallet/status", wallet.GetStatus)
	api.Post("/wallet/connect", wallet.Connect)
	api.Post("/wallet/disconnect", wallet.Disconnect)
	api.Put("/wallet/balance", wallet.UpdateBalance)

	dashboard := handlers.NewDashboardHandler(dashboardService)
	api.Get("/dashboard/stats", dashboard.GetStats)
	api.Get("/dashboard/activity", dashboard.GetActivity)

	// cron jobs
	profileSyncJob := job.NewProfileSyncJob(twitterRepo, client)

	// queue worker
	worker := queue.NewWorker(twitterService)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", profileSyncJob.SyncProfiles)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeProfileSync, worker.HandleProfileSyncTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
