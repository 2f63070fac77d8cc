//go:build wireinject

package main

import (
	"context"
	"time"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

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
	"github.com/homematch/assistant-api/internal/infrastructure/realtime"
	"github.com/homematch/assistant-api/internal/infrastructure/repository/conversationrepo"
	"github.com/homematch/assistant-api/internal/infrastructure/repository/followuprepo"
	"github.com/homematch/assistant-api/internal/interfaces/httpserver"
)

var storageSet = wire.NewSet(
	conversationrepo.NewPostgresRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.PostgresRepository)),
	wire.Bind(new(conversation.ProfileReader), new(*conversationrepo.PostgresRepository)),
	followuprepo.NewPostgresQueue,
	wire.Bind(new(followup.Queue), new(*followuprepo.PostgresQueue)),
)

// BuildApplication demonstrates how to assemble the service with Wire. The
// memory cache / noop broadcaster variant is wired; main() swaps in Redis
// when configured.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		storageSet,
		newReplyCache,
		newBroadcaster,
		newProviderClients,
		newGenerator,
		newContextBuilder,
		intent.NewClassifier,
		newAnalyzer,
		newScheduler,
		newPipelineService,
		newDispatcher,
		newExecutor,
		crontab.NewCrontab,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:                cfg.DatabaseURL,
		MaxIdleConns:       cfg.DBMaxIdleConns,
		MaxOpenConns:       cfg.DBMaxOpenConns,
		ConnMaxLifetime:    cfg.DBConnLifetime,
		SlowQueryThreshold: cfg.DBSlowQuery,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newReplyCache(cfg *config.Config) generation.Cache {
	return cache.NewMemoryCache(cfg.CacheTTL)
}

func newBroadcaster(log zerolog.Logger) delivery.Broadcaster {
	return realtime.NewNoopBroadcaster(log)
}

func newProviderClients(cfg *config.Config, log zerolog.Logger) ([]generation.ProviderClient, error) {
	chainCfg, err := config.LoadProviderChainConfig(cfg.ProviderConfigFile)
	if err != nil {
		return nil, err
	}
	return llmclient.BuildChain(cfg, chainCfg, log), nil
}

func newGenerator(clients []generation.ProviderClient, replyCache generation.Cache, cfg *config.Config, log zerolog.Logger) *generation.Service {
	return generation.NewService(clients, replyCache, generation.Options{
		ProviderTimeout: cfg.ProviderTimeout,
		MaxPromptChars:  cfg.MaxPromptChars,
		MinReplyChars:   cfg.MinReplyChars,
		MaxReplyChars:   cfg.MaxReplyChars,
	}, log)
}

func newContextBuilder(repo conversation.Repository, profiles conversation.ProfileReader, cfg *config.Config, log zerolog.Logger) *conversation.ContextBuilder {
	return conversation.NewContextBuilder(repo, profiles, cfg.ContextWindow, log)
}

func newAnalyzer(repo conversation.Repository, cfg *config.Config, log zerolog.Logger) *engagement.Analyzer {
	return engagement.NewAnalyzer(repo, engagement.Config{
		LowConfidenceCutoff:     cfg.LowConfidenceCutoff,
		RepetitionRatio:         cfg.RepetitionRatio,
		RepetitionWindow:        cfg.RepetitionWindow,
		WeightLowConfidence:     cfg.WeightLowConfidence,
		WeightNegativeSentiment: cfg.WeightNegativeSentiment,
		WeightRepetitive:        cfg.WeightRepetitive,
		WeightComplex:           cfg.WeightComplex,
		Window:                  cfg.EngagementWindow,
	}, log)
}

func newScheduler(queue followup.Queue, cfg *config.Config, log zerolog.Logger) *followup.Scheduler {
	return followup.NewScheduler(queue, followup.SchedulerConfig{
		ConfidenceThreshold: cfg.FollowupConfidenceThreshold,
		SearchDelay:         cfg.FollowupSearchDelay,
		ApplicationDelay:    cfg.FollowupApplicationDelay,
		MaintenanceDelay:    cfg.FollowupMaintenanceDelay,
	}, log)
}

func newPipelineService(
	repo conversation.Repository,
	contexts *conversation.ContextBuilder,
	classifier *intent.Classifier,
	generator *generation.Service,
	analyzer *engagement.Analyzer,
	scheduler *followup.Scheduler,
	broadcaster delivery.Broadcaster,
	cfg *config.Config,
	log zerolog.Logger,
) *pipeline.Service {
	return pipeline.NewService(repo, contexts, classifier, generator, analyzer, scheduler, broadcaster, pipeline.Options{
		BotUserID:      cfg.BotUserID,
		TypingPerChar:  time.Duration(cfg.TypingMsPerChar) * time.Millisecond,
		TypingDelayCap: cfg.TypingDelayCap,
	}, log)
}

func newDispatcher(svc *pipeline.Service, cfg *config.Config, log zerolog.Logger) *pipeline.Dispatcher {
	return pipeline.NewDispatcher(svc, cfg.WorkerCount, cfg.QueueSize, cfg.TaskTimeout, log)
}

func newExecutor(queue followup.Queue, repo conversation.Repository, broadcaster delivery.Broadcaster, cfg *config.Config, log zerolog.Logger) *followup.Executor {
	return followup.NewExecutor(queue, repo, broadcaster, cfg.BotUserID, log)
}
