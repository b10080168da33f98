package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lumoclass/lumoclass-api/internal/config"
	"github.com/lumoclass/lumoclass-api/internal/database"
	"github.com/lumoclass/lumoclass-api/internal/handler"
	"github.com/lumoclass/lumoclass-api/internal/middleware"
	"github.com/lumoclass/lumoclass-api/internal/repository"
	"github.com/lumoclass/lumoclass-api/internal/router"
	"github.com/lumoclass/lumoclass-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	attemptRepo := repository.NewAttemptRepository(db)
	classTaskRepo := repository.NewClassTaskRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)

	activitySink := service.NewActivityService(activityRepo, natsConn, "lumoclass", logger)
	attemptService := service.NewAttemptService(db, activitySink, validate, logger)
	gradingService := service.NewGradingService(db, activitySink, validate, logger)
	sweeper := service.NewSweeperService(attemptRepo, classTaskRepo, cfg.SweepInterval, logger)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, redisClient, cfg.LeaderboardCacheTTL, cfg.LeaderboardLimit, logger)

	attemptHandler := handler.NewAttemptHandler(attemptService, logger)
	gradingHandler := handler.NewGradingHandler(gradingService, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AttemptHandler:     attemptHandler,
		GradingHandler:     gradingHandler,
		LeaderboardHandler: leaderboardHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	go sweeper.Run(sweeperCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopSweeper)
}

func waitForShutdown(app *fiber.App, stopSweeper context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
