package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dispatchd/dispatchd/internal/agents"
	"github.com/dispatchd/dispatchd/internal/classifier"
	"github.com/dispatchd/dispatchd/internal/config"
	"github.com/dispatchd/dispatchd/internal/learning"
	"github.com/dispatchd/dispatchd/internal/lifecycle"
	"github.com/dispatchd/dispatchd/internal/observability"
	"github.com/dispatchd/dispatchd/internal/router"
	"github.com/dispatchd/dispatchd/internal/store"
)

// eventBuffer sizes the lifecycle event channel for CLI subscribers.
const eventBuffer = 256

// runtime bundles the wired system for one CLI invocation.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      store.Store
	state   *learning.State
	manager *lifecycle.Manager
	watcher *classifier.Watcher
}

// buildRuntime loads configuration and wires the full pipeline.
func buildRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.Logging)

	lexicons := classifier.DefaultLexicons()
	if cfg.Lexicon.Path != "" {
		lexicons, err = classifier.LoadLexicons(cfg.Lexicon.Path)
		if err != nil {
			return nil, fmt.Errorf("load lexicons: %w", err)
		}
	}

	state := learning.NewState(learning.Params{
		HighThreshold:   cfg.Thresholds.High,
		MediumThreshold: cfg.Thresholds.Medium,
		LearningRate:    cfg.Learning.Rate,
		DecayFactor:     cfg.Learning.Decay,
		Lexicons:        lexicons,
	})

	var db store.Store
	if cfg.Store.InMemory {
		db = store.NewMemoryStore()
	} else {
		path := cfg.Store.Path
		if path == "" {
			path = store.DefaultDBPath()
		}
		sqlDB, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		db = sqlDB
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	fleet, err := buildFleet(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	manager := lifecycle.NewManager(lifecycle.Config{
		Classifier:   classifier.New(state),
		Router:       router.New(state, logger),
		State:        state,
		Loop:         learning.NewLoop(state, db, logger),
		Store:        db,
		Fleet:        fleet,
		Emitter:      lifecycle.NewEmitter(eventBuffer, logger),
		Logger:       logger,
		AgentTimeout: cfg.Agents.Timeout,
	})

	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		state:   state,
		manager: manager,
	}

	if cfg.Lexicon.Path != "" {
		watcher, err := classifier.WatchLexicons(cfg.Lexicon.Path, state, logger)
		if err != nil {
			logger.Warn("lexicon watch unavailable", zap.Error(err))
		} else {
			rt.watcher = watcher
		}
	}

	return rt, nil
}

// buildFleet selects simulated or API-backed executors.
func buildFleet(cfg *config.Config) (agents.Fleet, error) {
	if !cfg.Agents.UseAPI {
		return agents.SimulatedFleet(cfg.Agents.LatencyScale), nil
	}

	apiKey, err := config.GetAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	client, err := agents.NewAPIClient(agents.APIClientConfig{
		Model:  cfg.Anthropic.Model,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return agents.APIFleet(client, cfg.Agents.LatencyScale), nil
}

// close tears the runtime down in dependency order.
func (rt *runtime) close() {
	if rt.watcher != nil {
		rt.watcher.Close()
	}
	rt.manager.Close()
	rt.db.Close()
	rt.logger.Sync()
}
