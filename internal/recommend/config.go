// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for training and serving recommendations.
type Config struct {
	// Features contains parameters for tag construction.
	Features FeaturesConfig `json:"features"`

	// Vectorizer contains parameters for vocabulary fitting.
	Vectorizer VectorizerConfig `json:"vectorizer"`

	// Similarity contains parameters for matrix construction.
	Similarity SimilarityConfig `json:"similarity"`

	// Matching contains parameters for fuzzy title resolution.
	Matching MatchingConfig `json:"matching"`

	// Training contains training run parameters.
	Training TrainingConfig `json:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache"`
}

// FeaturesConfig contains parameters for tag construction.
type FeaturesConfig struct {
	// CastLimit is the number of top-billed cast members kept per movie.
	// Default: 3.
	CastLimit int `json:"cast_limit"`
}

// VectorizerConfig contains parameters for vocabulary fitting.
type VectorizerConfig struct {
	// MaxTerms bounds the vocabulary to the most frequent terms.
	// Default: 6000.
	MaxTerms int `json:"max_terms"`
}

// SimilarityConfig contains parameters for matrix construction.
type SimilarityConfig struct {
	// Workers is the number of goroutines computing matrix rows.
	// Zero means runtime.NumCPU().
	// Default: 0.
	Workers int `json:"workers"`

	// BlockSize is the number of rows handed to a worker at a time.
	// Default: 64.
	BlockSize int `json:"block_size"`
}

// MatchingConfig contains parameters for fuzzy title resolution.
type MatchingConfig struct {
	// MinScore is the lowest match score (0-100) accepted by queries.
	// Zero disables the floor: every query resolves to its best match.
	// Default: 0.
	MinScore int `json:"min_score"`
}

// TrainingConfig contains training run parameters.
type TrainingConfig struct {
	// Timeout is the maximum time allowed for a training run.
	// Default: 10m.
	Timeout time.Duration `json:"timeout"`

	// RetainVersions is the number of stored model versions to keep.
	// Default: 3.
	RetainVersions int `json:"retain_versions"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the number of recommendations returned when none is requested.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum allowed K value. Larger requests are clamped.
	// Default: 50.
	MaxK int `json:"max_k"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether query results are cached.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 10m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Features: FeaturesConfig{
			CastLimit: 3,
		},
		Vectorizer: VectorizerConfig{
			MaxTerms: 6000,
		},
		Similarity: SimilarityConfig{
			Workers:   0,
			BlockSize: 64,
		},
		Matching: MatchingConfig{
			MinScore: 0,
		},
		Training: TrainingConfig{
			Timeout:        10 * time.Minute,
			RetainVersions: 3,
		},
		Limits: LimitsConfig{
			DefaultK: 5,
			MaxK:     50,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        10 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Features.CastLimit < 0 {
		return fmt.Errorf("features.cast_limit must be non-negative, got %d", c.Features.CastLimit)
	}

	if c.Vectorizer.MaxTerms < 1 {
		return fmt.Errorf("vectorizer.max_terms must be positive, got %d", c.Vectorizer.MaxTerms)
	}

	if c.Similarity.Workers < 0 {
		return fmt.Errorf("similarity.workers must be non-negative, got %d", c.Similarity.Workers)
	}
	if c.Similarity.BlockSize < 1 {
		return fmt.Errorf("similarity.block_size must be positive, got %d", c.Similarity.BlockSize)
	}

	if c.Matching.MinScore < 0 || c.Matching.MinScore > 100 {
		return fmt.Errorf("matching.min_score must be in [0, 100], got %d", c.Matching.MinScore)
	}

	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Training.RetainVersions < 1 {
		return fmt.Errorf("training.retain_versions must be positive, got %d", c.Training.RetainVersions)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive when cache is enabled, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types
	clone := *c
	return &clone
}
