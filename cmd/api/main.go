package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/dalleni/support-desk/internal/api/http"
	"github.com/dalleni/support-desk/internal/api/http/handlers"
	"github.com/dalleni/support-desk/internal/ai"
	"github.com/dalleni/support-desk/internal/auth"
	"github.com/dalleni/support-desk/internal/config"
	"github.com/dalleni/support-desk/internal/events"
	"github.com/dalleni/support-desk/internal/observability"
	"github.com/dalleni/support-desk/internal/persistence"
	"github.com/dalleni/support-desk/internal/ratelimit"
	"github.com/dalleni/support-desk/internal/repository"
	"github.com/dalleni/support-desk/internal/service"
	"github.com/dalleni/support-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		ticketRepo  repository.TicketRepository
		commentRepo repository.TicketCommentRepository
	)
	if pg.Enabled() {
		ticketRepo = repository.NewTicketRepository(pg.PoolHandle())
		commentRepo = repository.NewTicketCommentRepository(pg.PoolHandle())
	} else {
		store := repository.NewMemoryStore()
		ticketRepo = store.Tickets()
		commentRepo = store.Comments()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notifications := service.NewNotificationService(logger, cfg.Notification)
	notifier := worker.NewNotificationWorker(notifications, logger, 128)
	notifier.Subscribe(dispatcher,
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketAISolutionAdded,
		events.EventTicketCommentAdded,
	)
	notifier.Start(ctx)

	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not provided; ai solution generation will fail")
	}
	generator := ai.NewOpenAIGenerator(cfg.OpenAI, &http.Client{Timeout: cfg.OpenAI.Timeout() + 5*time.Second}, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:        ticketRepo,
		Generator:         generator,
		Dispatcher:        dispatcher,
		Metrics:           metrics,
		Logger:            logger,
		GenerationTimeout: cfg.OpenAI.Timeout(),
		DefaultLanguage:   ai.Language(cfg.OpenAI.Language),
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, tokens)

	limiter := ratelimit.NewLimiter(nil, cfg.RateLimit.RedisKeyPrefix, logger)
	if redis.Enabled() {
		limiter = ratelimit.NewLimiter(redis.Client, cfg.RateLimit.RedisKeyPrefix, logger)
	}

	app := httptransport.NewApp(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.App.AllowedOrigins,
		Logger:         logger,
		Metrics:        metrics,
	}, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService, cfg.Auth.RequireStaff),
		Staff:          handlers.NewStaffHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		RequireStaff:   cfg.Auth.RequireStaff,
		Limiter:        limiter,
		RateLimit:      cfg.RateLimit,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notifier.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
