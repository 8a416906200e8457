package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/manno/archflow/internal/agents"
	"github.com/manno/archflow/internal/config"
	"github.com/manno/archflow/internal/gateway"
	"github.com/manno/archflow/internal/session"
	"github.com/manno/archflow/internal/workflow"
)

// newSessionStore picks the durable NATS store when a server is
// configured, or the in-memory store for single-process runs.
func newSessionStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (session.Store, func(), error) {
	if cfg.NATSURL == "" {
		logger.Warn("no NATS URL configured, using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	}

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	store, err := session.NewNATSStore(ctx, nc, session.WithLogger(logger))
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return store, nc.Close, nil
}

// newEngine wires the gateway client, generator-backed agents and the
// session store into a workflow engine. Configuration errors surface here,
// before any graph runs.
func newEngine(ctx context.Context, cfg config.Config, logger *slog.Logger) (*workflow.Engine, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	store, closeStore, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	gw, err := gateway.New(gateway.Config{
		URL:   cfg.GatewayURL,
		Token: cfg.GatewayToken,
	}, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	gen, err := agents.NewOpenAIGenerator(agents.GeneratorConfig{
		APIKey:  cfg.ModelAPIKey,
		BaseURL: cfg.ModelBaseURL,
		Model:   cfg.Model,
	}, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	handlers := &workflow.Handlers{
		Gateway:     gw,
		Design:      agents.NewDesignAgent(gen, logger),
		Compare:     agents.NewCompareAgent(gen, logger),
		Diagram:     agents.NewDiagramAgent(gen, logger),
		Staffing:    agents.NewStaffingAgent(gen, logger),
		Refiner:     agents.NewRefiner(gen, logger),
		ArtifactDir: cfg.ArtifactDir,
		Logger:      logger,
	}

	var opts []workflow.Option
	if cfg.MaxRefinePasses > 0 {
		opts = append(opts, workflow.WithMaxRefinePasses(cfg.MaxRefinePasses))
	}

	engine, err := workflow.New(store, handlers, cfg.MemoryID, logger, opts...)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return engine, closeStore, nil
}
