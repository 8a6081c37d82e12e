// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
	"github.com/tomtom215/cinematch/internal/recommend/training"
)

// ModelEngine is the serving side that receives loaded models.
type ModelEngine interface {
	Load(m *recommend.Model) error
	Status() recommend.Status
}

// ModelTrainer runs the offline pipeline.
type ModelTrainer interface {
	Run(ctx context.Context) (*recommend.Model, *storage.ModelMetadata, error)
}

// ModelSource reads persisted model artifacts. storage.ArtifactStore
// satisfies it.
type ModelSource interface {
	GetLatestVersion(name string) (int, bool)
	Load(ctx context.Context, name string, version int) (*recommend.Model, *storage.ModelMetadata, error)
}

// ModelServiceConfig holds configuration for the model service.
type ModelServiceConfig struct {
	// ModelName is the artifact name in the store.
	ModelName string

	// TrainOnStartup trains a model when the store has none.
	TrainOnStartup bool

	// WatchInterval is how often the store is polled for a newer version.
	// Zero disables polling.
	WatchInterval time.Duration

	// TrainTimeout bounds a startup training run. Default: 30m
	TrainTimeout time.Duration
}

// ModelService keeps the engine serving the newest model.
//
// On start it loads the latest stored artifact. When there is none and
// TrainOnStartup is set it trains one. Afterwards it polls the store and
// hot-swaps newer versions written by other processes, such as a
// `cinematch train` run against the same model directory. That works with
// the file backend only; Badger locks its directory to a single process.
type ModelService struct {
	engine  ModelEngine
	trainer ModelTrainer
	source  ModelSource
	config  ModelServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewModelService creates a model service. trainer and source may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelService(engine ModelEngine, trainer ModelTrainer, source ModelSource, cfg ModelServiceConfig, logger zerolog.Logger) *ModelService {
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &ModelService{
		engine:  engine,
		trainer: trainer,
		source:  source,
		config:  cfg,
		logger:  logger.With().Str("service", "model").Str("model", cfg.ModelName).Logger(),
		name:    "model-service",
	}
}

// Serve implements suture.Service.
func (s *ModelService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("watch_interval", s.config.WatchInterval).
		Msg("model service starting")

	if err := s.syncLatest(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("loading stored model failed")
	}

	if !s.engine.Status().Loaded {
		switch {
		case s.config.TrainOnStartup && s.trainer != nil:
			if err := s.train(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("startup training failed; queries return 503 until a model is available")
			}
		default:
			s.logger.Warn().Msg("no stored model; queries return 503 until one is trained")
		}
	}

	if s.config.WatchInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.WatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("model service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.syncLatest(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("model reload failed; keeping current model")
			}
		}
	}
}

// syncLatest loads the newest stored version if it is newer than the one
// being served.
func (s *ModelService) syncLatest(ctx context.Context) error {
	if s.source == nil {
		return nil
	}

	latest, ok := s.source.GetLatestVersion(s.config.ModelName)
	if !ok {
		return nil
	}
	if current := s.engine.Status(); current.Loaded && current.ModelVersion >= latest {
		return nil
	}

	model, meta, err := s.source.Load(ctx, s.config.ModelName, latest)
	if err != nil {
		return fmt.Errorf("load %s v%d: %w", s.config.ModelName, latest, err)
	}
	if err := s.engine.Load(model); err != nil {
		return fmt.Errorf("serve %s v%d: %w", s.config.ModelName, latest, err)
	}

	event := s.logger.Info().
		Int("version", model.Version).
		Int("movies", len(model.Movies))
	if meta != nil {
		event = event.Str("checksum", meta.Checksum)
	}
	event.Msg("model loaded from store")
	return nil
}

// train runs the pipeline once and serves the result unless a completion
// hook already did.
func (s *ModelService) train(ctx context.Context) error {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Msg("no stored model, training on startup")

	model, _, err := s.trainer.Run(trainCtx)
	if err != nil {
		if errors.Is(err, training.ErrTrainingInProgress) {
			s.logger.Info().Msg("training already in progress elsewhere")
			return nil
		}
		return err
	}

	if current := s.engine.Status(); !current.Loaded || current.ModelVersion != model.Version {
		if err := s.engine.Load(model); err != nil {
			return fmt.Errorf("serve trained model: %w", err)
		}
	}

	s.logger.Info().
		Int("version", model.Version).
		Dur("duration", time.Since(start)).
		Msg("startup training complete")
	return nil
}

// String returns the service name for logging.
func (s *ModelService) String() string {
	return s.name
}
