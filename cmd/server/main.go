// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/quizcore/internal/api"
	"github.com/tomtom215/quizcore/internal/config"
	"github.com/tomtom215/quizcore/internal/content"
	"github.com/tomtom215/quizcore/internal/events"
	"github.com/tomtom215/quizcore/internal/logging"
	"github.com/tomtom215/quizcore/internal/metrics"
	"github.com/tomtom215/quizcore/internal/quiz"
	"github.com/tomtom215/quizcore/internal/recommend"
	"github.com/tomtom215/quizcore/internal/scoring"
	"github.com/tomtom215/quizcore/internal/store"
	"github.com/tomtom215/quizcore/internal/supervisor"
	"github.com/tomtom215/quizcore/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Quizcore stopped with an error")
	}
}

//nolint:gocyclo // sequential wiring of every component
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger()

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Bool("nats", cfg.Events.UsesNATS()).
		Bool("in_memory", cfg.Storage.InMemory).
		Msg("Starting Quizcore")

	registry, err := loadContent(&cfg.Content)
	if err != nil {
		return err
	}

	classifier, err := scoring.NewClassifier(cfg.Scoring)
	if err != nil {
		return fmt.Errorf("scoring thresholds: %w", err)
	}

	db, err := store.Open(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()
	logging.Info().Str("path", cfg.Storage.Path).Bool("in_memory", cfg.Storage.InMemory).Msg("Storage opened")

	completions := store.NewBadgerStore(db, logger)
	counter := store.NewPopularityCounter(db, logger)

	engine, err := recommend.NewEngine(&cfg.Popularity, counter, registry.Manifest().StaticPopularity, logger)
	if err != nil {
		return fmt.Errorf("create recommender: %w", err)
	}
	defer engine.Close()

	bus, err := events.New(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	events.RegisterHandlers(bus, counter, engine)

	quizService, err := quiz.NewService(cfg.Quiz, quiz.Dependencies{
		Registry:   registry,
		Classifier: classifier,
		Store:      completions,
		Ranker:     engine,
		Publisher:  bus,
	}, logger)
	if err != nil {
		return fmt.Errorf("create quiz service: %w", err)
	}
	defer quizService.Close()

	handler, err := api.NewHandler(api.Dependencies{
		Quiz:     quizService,
		Registry: registry,
		Ranker:   engine,
		Checks: []api.HealthCheck{
			{Name: "storage", Check: storageCheck(db)},
			{Name: "events", Check: eventsCheck(bus)},
		},
	})
	if err != nil {
		return fmt.Errorf("create API handler: %w", err)
	}

	mw := api.NewChiMiddlewareFromSettings(
		cfg.Server.CORSOrigins,
		cfg.Server.RateLimitReqs,
		cfg.Server.RateLimitWindow,
		cfg.Server.RateLimitDisabled,
	)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, mw).SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.WithComponent("supervisor")), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if !cfg.Storage.InMemory && cfg.Storage.GCInterval > 0 {
		tree.AddStorageService(services.NewValueLogGCService(db, cfg.Storage.GCInterval, cfg.Storage.GCDiscardRatio, logger))
	}
	tree.AddMessagingService(services.NewEventRouterService(bus, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", treeErr)
	}
	logging.Info().Msg("Quizcore stopped gracefully")
	return nil
}

// loadContent loads the configured content set and reports authoring
// defects.
func loadContent(cfg *config.ContentConfig) (*content.Registry, error) {
	var (
		registry *content.Registry
		err      error
	)
	if cfg.Dir != "" {
		registry, err = content.LoadDir(cfg.Dir)
	} else {
		registry, err = content.LoadEmbedded()
	}
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	warnings := registry.Lint()
	for _, w := range warnings {
		logging.Warn().Str("defect", w).Msg("Content lint")
	}
	if cfg.FailOnLint && len(warnings) > 0 {
		return nil, fmt.Errorf("content has %d authoring defects: %s", len(warnings), strings.Join(warnings, "; "))
	}

	source := cfg.Dir
	if source == "" {
		source = "embedded"
	}
	logging.Info().Str("source", source).Int("tables", registry.Len()).Msg("Content loaded")
	return registry, nil
}

func storageCheck(db *badger.DB) func(context.Context) error {
	return func(context.Context) error {
		if db.IsClosed() {
			return errors.New("badger database is closed")
		}
		return nil
	}
}

func eventsCheck(bus *events.Bus) func(context.Context) error {
	return func(context.Context) error {
		select {
		case <-bus.Running():
			return nil
		default:
			return errors.New("event router is not running")
		}
	}
}
