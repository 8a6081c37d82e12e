// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package training

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/features"
	"github.com/tomtom215/cinematch/internal/recommend/similarity"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
)

// ErrTrainingInProgress is returned when Run or TryStart is called while
// another run holds the training lock.
var ErrTrainingInProgress = errors.New("training already in progress")

// RunFunc performs a run reserved by TryStart.
type RunFunc func(ctx context.Context) (*recommend.Model, *storage.ModelMetadata, error)

// Pipeline stage names, used in logs, metrics and Status.
const (
	StageLoad       = "load"
	StageFeatures   = "features"
	StageVocabulary = "vocabulary"
	StageVectorize  = "vectorize"
	StageMatrix     = "matrix"
	StagePersist    = "persist"
)

// CatalogSource supplies the raw catalog tables.
type CatalogSource interface {
	LoadMovies(ctx context.Context) ([]recommend.MovieRecord, error)
	LoadCredits(ctx context.Context) ([]recommend.CreditRecord, error)
}

// Status describes the trainer's most recent run.
type Status struct {
	IsTraining     bool      `json:"is_training"`
	Stage          string    `json:"stage,omitempty"`
	LastRun        time.Time `json:"last_run,omitempty"`
	LastDurationMS int64     `json:"last_duration_ms"`
	LastVersion    int       `json:"last_version"`
	LastError      string    `json:"last_error,omitempty"`
}

// Trainer runs the offline pipeline: load the catalog, build tags, fit the
// vocabulary, vectorize, build the similarity matrix and persist the model.
// A run either persists a complete model or nothing.
type Trainer struct {
	config     *recommend.Config
	source     CatalogSource
	store      storage.ArtifactStore
	modelName  string
	builder    *features.Builder
	vectorizer *similarity.Vectorizer
	logger     zerolog.Logger

	trainMu  sync.Mutex
	statusMu sync.RWMutex
	status   Status

	onTrained func(*recommend.Model)
	now       func() time.Time
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithOnTrained registers a callback invoked with every successfully
// persisted model, typically Engine.Load.
func WithOnTrained(fn func(*recommend.Model)) Option {
	return func(t *Trainer) { t.onTrained = fn }
}

// WithStemmer replaces the default Snowball stemmer.
func WithStemmer(s features.Stemmer) Option {
	return func(t *Trainer) {
		t.builder = features.NewBuilder(s, t.config.Features.CastLimit, t.logger)
	}
}

// NewTrainer creates a trainer. store may be nil, in which case Run builds
// models without persisting them.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainer(cfg *recommend.Config, source CatalogSource, store storage.ArtifactStore, modelName string, logger zerolog.Logger, opts ...Option) (*Trainer, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("catalog source is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}

	logger = logger.With().Str("component", "trainer").Logger()
	t := &Trainer{
		config:     cfg,
		source:     source,
		store:      store,
		modelName:  modelName,
		builder:    features.NewBuilder(features.NewSnowballStemmer(), cfg.Features.CastLimit, logger),
		vectorizer: similarity.NewVectorizer(similarity.NewEnglishAnalyzer()),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Run executes one full training run under the configured timeout and
// returns the new model and, when a store is configured, its metadata.
func (t *Trainer) Run(ctx context.Context) (*recommend.Model, *storage.ModelMetadata, error) {
	run, err := t.TryStart()
	if err != nil {
		return nil, nil, err
	}
	return run(ctx)
}

// TryStart takes the training lock without blocking and returns the run it
// reserved. Status reports IsTraining from this point on. The returned
// function must be called exactly once; it releases the lock when the run
// ends. Later calls return ErrTrainingInProgress.
func (t *Trainer) TryStart() (RunFunc, error) {
	if !t.trainMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	t.updateStatus(func(s *Status) {
		s.IsTraining = true
		s.LastError = ""
	})

	var once sync.Once
	return func(ctx context.Context) (model *recommend.Model, meta *storage.ModelMetadata, err error) {
		err = ErrTrainingInProgress
		once.Do(func() {
			defer t.trainMu.Unlock()
			model, meta, err = t.run(ctx)
		})
		return model, meta, err
	}, nil
}

// run is one training run. The caller holds trainMu.
func (t *Trainer) run(ctx context.Context) (_ *recommend.Model, _ *storage.ModelMetadata, err error) {
	start := t.now()
	defer func() {
		metrics.RecordTrainingRun(err)
		t.updateStatus(func(s *Status) {
			s.IsTraining = false
			s.Stage = ""
			s.LastRun = start
			s.LastDurationMS = time.Since(start).Milliseconds()
			if err != nil {
				s.LastError = err.Error()
			}
		})
	}()

	ctx, cancel := context.WithTimeout(ctx, t.config.Training.Timeout)
	defer cancel()

	t.logger.Info().Str("model", t.modelName).Msg("starting model training")

	var movies []recommend.MovieRecord
	var credits []recommend.CreditRecord
	err = t.stage(StageLoad, func() error {
		var loadErr error
		if movies, loadErr = t.source.LoadMovies(ctx); loadErr != nil {
			return fmt.Errorf("load movies: %w", loadErr)
		}
		if credits, loadErr = t.source.LoadCredits(ctx); loadErr != nil {
			return fmt.Errorf("load credits: %w", loadErr)
		}
		return nil
	})
	if err != nil {
		return nil, nil, t.fail(err)
	}

	model, err := t.Build(ctx, movies, credits)
	if err != nil {
		return nil, nil, t.fail(err)
	}
	model.Version = t.nextVersion()

	var meta *storage.ModelMetadata
	if t.store != nil {
		err = t.stage(StagePersist, func() error {
			var saveErr error
			meta, saveErr = t.store.Save(ctx, t.modelName, model, storage.ModelMetadata{
				TrainingDurationMS: time.Since(start).Milliseconds(),
			})
			if saveErr != nil {
				return fmt.Errorf("save model: %w", saveErr)
			}
			if pruneErr := t.store.Prune(ctx, t.modelName, t.config.Training.RetainVersions); pruneErr != nil {
				t.logger.Warn().Err(pruneErr).Msg("failed to prune old model versions")
			}
			return nil
		})
		if err != nil {
			return nil, nil, t.fail(err)
		}
	}

	t.updateStatus(func(s *Status) { s.LastVersion = model.Version })
	t.logger.Info().
		Int("version", model.Version).
		Int("movies", len(model.Movies)).
		Int("vocabulary", model.Vocabulary.Size()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("model training complete")

	if t.onTrained != nil {
		t.onTrained(model)
	}
	return model, meta, nil
}

// Build runs the in-memory part of the pipeline over already loaded tables.
// The returned model has version 0 and is not persisted.
func (t *Trainer) Build(ctx context.Context, movies []recommend.MovieRecord, credits []recommend.CreditRecord) (*recommend.Model, error) {
	var (
		tagged  []recommend.TaggedMovie
		stats   recommend.CatalogStats
		vocab   *recommend.Vocabulary
		vectors []similarity.SparseVector
		matrix  *recommend.SimilarityMatrix
	)

	err := t.stage(StageFeatures, func() error {
		var err error
		tagged, stats, err = t.builder.ProcessCatalog(ctx, movies, credits)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}
	metrics.SetCatalogRecords(map[string]int{
		"tagged":            stats.Tagged,
		"unmatched_movies":  stats.UnmatchedMovies,
		"unmatched_credits": stats.UnmatchedCredits,
		"incomplete":        stats.Incomplete,
		"malformed":         stats.Malformed,
	})

	tags := make([]string, len(tagged))
	for i, m := range tagged {
		tags[i] = m.Tags
	}

	err = t.stage(StageVocabulary, func() error {
		var err error
		vocab, err = t.vectorizer.Fit(tags, t.config.Vectorizer.MaxTerms)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fit vocabulary: %w", err)
	}

	err = t.stage(StageVectorize, func() error {
		vectors = make([]similarity.SparseVector, len(tags))
		for i, tag := range tags {
			if i%512 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			vectors[i] = t.vectorizer.VectorizeSparse(tag, vocab)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}

	err = t.stage(StageMatrix, func() error {
		var err error
		matrix, err = similarity.BuildMatrix(ctx, vectors, similarity.MatrixOptions{
			Workers:   t.config.Similarity.Workers,
			BlockSize: t.config.Similarity.BlockSize,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &recommend.Model{
		TrainedAt:  t.now(),
		Movies:     tagged,
		Vocabulary: vocab,
		Matrix:     matrix,
		Stats:      stats,
	}, nil
}

// stage runs fn as a named pipeline stage, recording its duration.
func (t *Trainer) stage(name string, fn func() error) error {
	t.updateStatus(func(s *Status) { s.Stage = name })
	start := time.Now()

	err := fn()

	elapsed := time.Since(start)
	metrics.RecordTrainingStage(name, elapsed)
	t.logger.Debug().
		Str("stage", name).
		Dur("duration", elapsed).
		Err(err).
		Msg("training stage finished")
	return err
}

func (t *Trainer) fail(err error) error {
	t.logger.Error().Err(err).Str("model", t.modelName).Msg("model training failed")
	return err
}

func (t *Trainer) nextVersion() int {
	if t.store != nil {
		if v, ok := t.store.GetLatestVersion(t.modelName); ok {
			return v + 1
		}
		return 1
	}

	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status.LastVersion + 1
}

func (t *Trainer) updateStatus(fn func(*Status)) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	fn(&t.status)
}

// Status returns a snapshot of the trainer state.
func (t *Trainer) Status() Status {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

// ModelName returns the name models are stored under.
func (t *Trainer) ModelName() string {
	return t.modelName
}
