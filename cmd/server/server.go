package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/homematch/assistant-api/internal/config"
	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/delivery"
	"github.com/homematch/assistant-api/internal/domain/engagement"
	"github.com/homematch/assistant-api/internal/domain/followup"
	"github.com/homematch/assistant-api/internal/domain/generation"
	"github.com/homematch/assistant-api/internal/domain/intent"
	"github.com/homematch/assistant-api/internal/domain/pipeline"
	"github.com/homematch/assistant-api/internal/infrastructure/cache"
	"github.com/homematch/assistant-api/internal/infrastructure/crontab"
	"github.com/homematch/assistant-api/internal/infrastructure/database"
	"github.com/homematch/assistant-api/internal/infrastructure/llmclient"
	"github.com/homematch/assistant-api/internal/infrastructure/logger"
	"github.com/homematch/assistant-api/internal/infrastructure/observability"
	"github.com/homematch/assistant-api/internal/infrastructure/realtime"
	"github.com/homematch/assistant-api/internal/infrastructure/repository/conversationrepo"
	"github.com/homematch/assistant-api/internal/infrastructure/repository/followuprepo"
	"github.com/homematch/assistant-api/internal/interfaces/httpserver"
)

// Application bundles the long-running components of the service.
type Application struct {
	httpServer *httpserver.HttpServer
	dispatcher *pipeline.Dispatcher
	crontab    *crontab.Crontab
	log        zerolog.Logger
}

func NewApplication(
	httpServer *httpserver.HttpServer,
	dispatcher *pipeline.Dispatcher,
	ctab *crontab.Crontab,
	log zerolog.Logger,
) *Application {
	return &Application{
		httpServer: httpServer,
		dispatcher: dispatcher,
		crontab:    ctab,
		log:        log,
	}
}

// Start runs the HTTP server, the pipeline workers, and the follow-up sweep
// until the context is cancelled.
func (a *Application) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.httpServer.Run(ctx) })
	g.Go(func() error { return a.dispatcher.Run(ctx) })
	g.Go(func() error { return a.crontab.Run(ctx) })
	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:                cfg.DatabaseURL,
		MaxIdleConns:       cfg.DBMaxIdleConns,
		MaxOpenConns:       cfg.DBMaxOpenConns,
		ConnMaxLifetime:    cfg.DBConnLifetime,
		SlowQueryThreshold: cfg.DBSlowQuery,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	repo := conversationrepo.NewPostgresRepository(db)
	queue := followuprepo.NewPostgresQueue(db, log)

	// Redis backs both the reply cache and realtime delivery. Without it the
	// service still works: in-process cache, no live events.
	var replyCache generation.Cache = cache.NewMemoryCache(cfg.CacheTTL)
	var broadcaster delivery.Broadcaster = realtime.NewNoopBroadcaster(log)
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		replyCache = cache.NewRedisCache(redisClient, cfg.CacheTTL, log)
		broadcaster = realtime.NewRedisBroadcaster(redisClient, log)
	}

	chainCfg, err := config.LoadProviderChainConfig(cfg.ProviderConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load provider chain config")
	}
	clients := llmclient.BuildChain(cfg, chainCfg, log)

	generator := generation.NewService(clients, replyCache, generation.Options{
		ProviderTimeout: cfg.ProviderTimeout,
		MaxPromptChars:  cfg.MaxPromptChars,
		MinReplyChars:   cfg.MinReplyChars,
		MaxReplyChars:   cfg.MaxReplyChars,
	}, log)

	analyzer := engagement.NewAnalyzer(repo, engagement.Config{
		LowConfidenceCutoff:     cfg.LowConfidenceCutoff,
		RepetitionRatio:         cfg.RepetitionRatio,
		RepetitionWindow:        cfg.RepetitionWindow,
		WeightLowConfidence:     cfg.WeightLowConfidence,
		WeightNegativeSentiment: cfg.WeightNegativeSentiment,
		WeightRepetitive:        cfg.WeightRepetitive,
		WeightComplex:           cfg.WeightComplex,
		Window:                  cfg.EngagementWindow,
	}, log)

	scheduler := followup.NewScheduler(queue, followup.SchedulerConfig{
		ConfidenceThreshold: cfg.FollowupConfidenceThreshold,
		SearchDelay:         cfg.FollowupSearchDelay,
		ApplicationDelay:    cfg.FollowupApplicationDelay,
		MaintenanceDelay:    cfg.FollowupMaintenanceDelay,
	}, log)

	pipelineSvc := pipeline.NewService(
		repo,
		conversation.NewContextBuilder(repo, repo, cfg.ContextWindow, log),
		intent.NewClassifier(log),
		generator,
		analyzer,
		scheduler,
		broadcaster,
		pipeline.Options{
			BotUserID:      cfg.BotUserID,
			TypingPerChar:  time.Duration(cfg.TypingMsPerChar) * time.Millisecond,
			TypingDelayCap: cfg.TypingDelayCap,
		},
		log,
	)
	dispatcher := pipeline.NewDispatcher(pipelineSvc, cfg.WorkerCount, cfg.QueueSize, cfg.TaskTimeout, log)

	executor := followup.NewExecutor(queue, repo, broadcaster, cfg.BotUserID, log)
	ctab := crontab.NewCrontab(executor, log)

	httpServer := httpserver.New(cfg, log, repo, dispatcher, analyzer)
	app := NewApplication(httpServer, dispatcher, ctab, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
