// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/training"
)

// Recommender is the query side of the recommendation engine.
type Recommender interface {
	Recommend(ctx context.Context, query string, k int) (*recommend.Response, error)
	Suggest(ctx context.Context, query string, n int) ([]recommend.Match, error)
	Movies(offset, limit int) ([]recommend.TaggedMovie, int, error)
	Status() recommend.Status
	Ready() bool
	GetMetrics() recommend.Metrics
}

// TrainingController starts and reports on training runs.
type TrainingController interface {
	// TryStart reserves a run, failing with training.ErrTrainingInProgress
	// while another one holds the trainer.
	TryStart() (training.RunFunc, error)
	Status() training.Status
}

// Handler serves the recommendation API.
type Handler struct {
	engine    Recommender
	trainer   TrainingController
	maxK      int
	timeout   time.Duration
	startTime time.Time
	logger    zerolog.Logger

	// trainingDone is signalled after each background run; tests wait on it.
	trainingDone func(error)
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// MaxK is the largest accepted k. Default: 50
	MaxK int

	// RequestTimeout bounds a single recommendation query. Default: 10s
	RequestTimeout time.Duration
}

// NewHandler creates an API handler. trainer may be nil, in which case the
// training endpoint reports 503 and status omits training information.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(engine Recommender, trainer TrainingController, cfg HandlerConfig, logger zerolog.Logger) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("recommendation engine is required")
	}
	if cfg.MaxK <= 0 {
		cfg.MaxK = 50
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	return &Handler{
		engine:    engine,
		trainer:   trainer,
		maxK:      cfg.MaxK,
		timeout:   cfg.RequestTimeout,
		startTime: time.Now(),
		logger:    logger.With().Str("component", "api").Logger(),
	}, nil
}
