package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/matthewbaird/insights/internal/analytics"
	"github.com/matthewbaird/insights/internal/config"
	"github.com/matthewbaird/insights/internal/policy"
	"github.com/matthewbaird/insights/internal/reasoning"
	"github.com/matthewbaird/insights/internal/seed"
	"github.com/matthewbaird/insights/internal/server"
	"github.com/matthewbaird/insights/internal/store"
	"github.com/matthewbaird/insights/internal/turnover"
	"github.com/matthewbaird/insights/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("loading config: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	pol, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		logger.Fatalf("loading policy: %v", err)
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("opening store: %v", err)
	}
	defer closeStore()

	if cfg.SeedDemo {
		if err := seed.Demo(ctx, st, time.Now()); err != nil {
			logger.Fatalf("seeding demo data: %v", err)
		}
		logger.WithField("landlord_id", seed.DemoLandlordID).Info("demo portfolio seeded")
	}

	var client reasoning.Client
	if cfg.ReasoningEnabled() {
		client = reasoning.NewOpenAIClient(reasoning.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		logger.WithField("model", cfg.OpenAIModel).Info("reasoning client enabled")
	} else {
		logger.Info("no OPENAI_API_KEY set, turnover predictions use the deterministic fallback")
	}

	svc := analytics.NewService(analytics.Dependencies{
		Config: analytics.Config{
			Policy:                   pol,
			MaxConcurrentAssessments: cfg.MaxConcurrentAssessments,
		},
		Portfolio:   st,
		Comparables: st,
		Assessor: turnover.NewAssessor(client, turnover.Config{
			Timeout: cfg.ReasoningTimeout,
			Policy:  pol.Assessment,
		}, logger),
		Logger: logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, server.Config{
			Port:      cfg.Port,
			Analytics: svc,
			Logger:    logger,
		})
	})
	if cfg.SweepSchedule != "" {
		sweep := worker.NewTurnoverSweep(svc, cfg.SweepLandlords, logger)
		g.Go(func() error { return sweep.Run(gctx, cfg.SweepSchedule) })
	}
	if err := g.Wait(); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		return store.NewMemoryStore(), func() {}, nil
	}
	s, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}
