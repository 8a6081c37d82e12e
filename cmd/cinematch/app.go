// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/matching"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
	"github.com/tomtom215/cinematch/internal/recommend/training"
)

// app holds the components shared by all commands.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	loader  *catalog.Loader
	store   storage.ArtifactStore
	trainer *training.Trainer
	engine  *recommend.Engine
}

// newApp loads configuration, initializes logging and opens the catalog,
// model store, trainer and engine. The trainer loads each newly trained
// model into the engine.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	a := &app{cfg: cfg, logger: logger}

	a.loader, err = catalog.NewLoader(catalog.Config{
		MoviesPath:  cfg.Catalog.MoviesPath,
		CreditsPath: cfg.Catalog.CreditsPath,
		Threads:     cfg.Catalog.Threads,
		MaxMemory:   cfg.Catalog.MaxMemory,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	a.store, err = storage.Open(cfg.Model.Backend, cfg.Model.Dir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open model store: %w", err)
	}

	engineCfg := cfg.EngineConfig()
	a.engine, err = recommend.NewEngine(engineCfg, matching.NewMatcher(), logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}

	a.trainer, err = training.NewTrainer(engineCfg, a.loader, a.store, cfg.Model.Name, logger,
		training.WithOnTrained(func(m *recommend.Model) {
			if err := a.engine.Load(m); err != nil {
				logger.Error().Err(err).Int("version", m.Version).Msg("Failed to serve trained model")
			}
		}))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create trainer: %w", err)
	}

	logger.Debug().
		Str("movies_csv", cfg.Catalog.MoviesPath).
		Str("credits_csv", cfg.Catalog.CreditsPath).
		Str("model_backend", cfg.Model.Backend).
		Str("model_dir", cfg.Model.Dir).
		Msg("Configuration loaded")

	return a, nil
}

// ensureModel serves the latest stored model, training one if none exists.
func (a *app) ensureModel(ctx context.Context) error {
	model, meta, err := a.store.Load(ctx, a.cfg.Model.Name, 0)
	switch {
	case err == nil:
		a.logger.Debug().Int("version", meta.Version).Msg("Loaded stored model")
		return a.engine.Load(model)
	case errors.Is(err, storage.ErrModelNotFound):
		a.logger.Info().Str("model", a.cfg.Model.Name).Msg("No stored model, training one")
		_, _, err = a.trainer.Run(ctx)
		return err
	default:
		return fmt.Errorf("load stored model: %w", err)
	}
}

// Close releases the catalog and model store.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing model store")
		}
	}
	if a.loader != nil {
		if err := a.loader.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing catalog")
		}
	}
}

// printError explains typed failures in user terms.
func printError(w io.Writer, err error) {
	var malformed *recommend.MetadataError
	switch {
	case errors.Is(err, recommend.ErrNoMatchFound):
		fmt.Fprintf(w, "No movie matches that title.\n  %v\n", err)
	case errors.Is(err, recommend.ErrInvalidK):
		fmt.Fprintf(w, "Invalid number of recommendations.\n  %v\n", err)
	case errors.Is(err, recommend.ErrEmptyVocabulary):
		fmt.Fprintf(w, "The catalog produced no usable terms; check the CSV inputs.\n  %v\n", err)
	case errors.As(err, &malformed):
		fmt.Fprintf(w, "The catalog contains malformed metadata.\n  %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
