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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge/internal/config"
	"github.com/noah-isme/hackjudge/internal/database"
	"github.com/noah-isme/hackjudge/internal/handler"
	"github.com/noah-isme/hackjudge/internal/middleware"
	"github.com/noah-isme/hackjudge/internal/models"
	"github.com/noah-isme/hackjudge/internal/repository"
	"github.com/noah-isme/hackjudge/internal/router"
	"github.com/noah-isme/hackjudge/internal/service"
	"github.com/noah-isme/hackjudge/internal/worker"
	"github.com/noah-isme/hackjudge/pkg/ai"
	"github.com/noah-isme/hackjudge/pkg/sources"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Hackathon{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, dashboard cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" && cfg.EvaluationMode == config.EvaluationModeAsync {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	evaluator := newEvaluator(cfg, logger)
	validate := validator.New(validator.WithRequiredStructEnabled())

	hackathonRepo := repository.NewHackathonRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	dashboardService := service.NewDashboardService(submissionRepo, redisClient, cfg.DashboardCacheTTL, logger)
	evaluationService := service.NewEvaluationService(service.EvaluationDeps{
		Submissions: submissionRepo,
		Evaluator:   evaluator,
		Readme: sources.NewGitHubReader(sources.GitHubConfig{
			APIURL:  cfg.GitHubAPIURL,
			Token:   cfg.GitHubToken,
			Timeout: cfg.SourceTimeout,
		}, logger),
		Video: sources.NewVideoInspector(sources.VideoConfig{
			OEmbedURL: cfg.OEmbedURL,
			Timeout:   cfg.SourceTimeout,
		}, logger),
		Dashboard: dashboardService,
		Timeout:   cfg.AITimeout + 2*cfg.SourceTimeout,
	}, logger)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	pool := worker.NewPool(cfg.EvaluationWorkers, logger)
	pool.Start(rootCtx)

	var dispatcher service.Dispatcher
	poolDispatcher := service.NewPoolDispatcher(pool, evaluationService, logger)
	switch {
	case cfg.EvaluationMode == config.EvaluationModeInline:
		dispatcher = service.NewInlineDispatcher(evaluationService)
	case natsConn != nil:
		natsDispatcher := service.NewNATSDispatcher(natsConn, cfg.NATSSubject, poolDispatcher, logger)
		if err := natsDispatcher.Start(rootCtx); err != nil {
			log.Fatalf("failed to start evaluation consumer: %v", err)
		}
		dispatcher = natsDispatcher
	default:
		dispatcher = poolDispatcher
	}
	logger.Info().Str("dispatch", dispatcher.Mode()).Msg("evaluation dispatcher ready")

	hackathonService := service.NewHackathonService(hackathonRepo, validate, cfg.DefaultCriteria, logger)
	submissionService := service.NewSubmissionService(hackathonRepo, submissionRepo, evaluationService, dispatcher, dashboardService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AITimeout + 2*cfg.SourceTimeout + 10*time.Second,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		HackathonHandler:  handler.NewHackathonHandler(hackathonService, middleware.RateLimit("verify", cfg.SubmitRateLimit, time.Minute), logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
		HealthHandler:     handler.HealthCheck(cfg, db),
		JudgeMiddleware:   middleware.JudgeIdentity(cfg.JWTSecret),
		SubmitLimiter:     middleware.RateLimit("submit", cfg.SubmitRateLimit, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
	pool.Stop()
}

func newEvaluator(cfg config.Config, logger zerolog.Logger) ai.Evaluator {
	if cfg.AIAPIKey == "" {
		logger.Warn().Msg("ai api key not set, submissions will be marked AI_ERROR")
		return nil
	}

	evaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		BaseURL:  cfg.AIBaseURL,
		Model:    cfg.AIModel,
		JSONMode: cfg.AIJSONMode,
		Logger:   logger.With().Str("component", "ai_evaluator").Logger(),
	})
	if err != nil {
		log.Fatalf("failed to configure ai evaluator: %v", err)
	}
	return evaluator
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
