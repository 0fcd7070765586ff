package cli

import (
	"context"
	"fmt"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"form-submissions/internal/common/config"
	"form-submissions/internal/common/database"
	apperrors "form-submissions/internal/common/errors"
	"form-submissions/internal/common/events"
	"form-submissions/internal/common/logger"
	"form-submissions/internal/common/observability"
	"form-submissions/internal/common/search"
	"form-submissions/internal/submission"
)

const retryDelay = 2 * time.Second

// app holds the dependencies shared by every command.
type app struct {
	cfg     *config.Config
	zap     *zap.Logger
	log     logger.Logger
	obs     *observability.Observability
	store   database.SQLClient
	service *submission.Service
	closers []func() error
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.LoadFromFile(opts.ConfigPath)
	}
	return config.Load()
}

func newLogger(cfg *config.Config, opts *RootOptions, output string) *zap.Logger {
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if output == "" {
		output = cfg.Logging.Output
	}
	return logger.New(level, cfg.Logging.Format, output)
}

// bootstrap loads configuration and connects the store and the enabled
// sinks. logOutput overrides logging.output when not empty.
func bootstrap(ctx context.Context, opts *RootOptions, logOutput string) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	zapLog := newLogger(cfg, opts, logOutput)
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
	})

	a := &app{cfg: cfg, zap: zapLog, log: log}

	var spanProcessors []sdktrace.SpanProcessor
	if cfg.Tracing.Enabled {
		spanProcessors = append(spanProcessors, observability.NewLogSpanProcessor(log))
	}

	a.obs, err = observability.New(cfg.App.Name, spanProcessors...)
	if err != nil {
		return nil, fmt.Errorf("observability init failed: %w", err)
	}
	a.closers = append(a.closers, func() error { return a.obs.Shutdown(context.Background()) })

	a.store, err = openStore(ctx, cfg.Database, opts.ConnectRetries, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.store.Close)
	log.Info("database connected", map[string]interface{}{"driver": cfg.Database.Driver})

	sinks, err := a.connectSinks(ctx, opts)
	if err != nil {
		a.Close()
		return nil, err
	}

	writer := submission.NewWriter(
		a.store.GetDB(),
		log,
		submission.WithFormName(cfg.Submission.FormName),
		submission.WithTracer(a.obs.Tracer()),
	)
	a.service = submission.NewService(writer, config.GetDuration(cfg.Submission.Timeout), log, sinks...)

	return a, nil
}

// openStore opens the configured relational store and waits until it
// answers a ping. Exhausted retries are reported as
// DATABASE_CONNECTION_FAILED.
func openStore(ctx context.Context, cfg config.DatabaseConfig, retries int, log logger.Logger) (database.SQLClient, error) {
	var store database.SQLClient
	err := retryWithBackoff(func() error {
		s, err := database.Open(cfg)
		if err != nil {
			return err
		}
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return err
		}
		store = s
		return nil
	}, retries, retryDelay, log, fmt.Sprintf("%s connection", cfg.Driver))
	if err != nil {
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}
	return store, nil
}

func (a *app) connectSinks(ctx context.Context, opts *RootOptions) ([]submission.Sink, error) {
	var sinks []submission.Sink

	if a.cfg.Events.Enabled {
		var rc *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(a.cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, opts.ConnectRetries, retryDelay, a.log, "Redis connection")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc.Close)
		sinks = append(sinks, events.NewPublisher(rc.Client, a.cfg.Events, a.log))
		a.log.Info("submission events enabled", map[string]interface{}{"stream": a.cfg.Events.Stream})
	}

	if a.cfg.Search.Enabled {
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(a.cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, opts.ConnectRetries, retryDelay, a.log, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}

		indexer := search.NewIndexer(es.Client, a.cfg.Search.Index, a.log)
		if err := indexer.EnsureIndex(ctx); err != nil {
			a.log.Warn("search index check failed", map[string]interface{}{"error": err})
		}
		sinks = append(sinks, indexer)
		a.log.Info("submission search indexing enabled", map[string]interface{}{"index": a.cfg.Search.Index})
	}

	return sinks, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("shutdown step failed", map[string]interface{}{"error": err})
		}
	}
	a.closers = nil
	_ = a.zap.Sync()
}
