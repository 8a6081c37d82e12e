// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Catalog    CatalogConfig    `koanf:"catalog"`
	Model      ModelConfig      `koanf:"model"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Reload     ReloadConfig     `koanf:"reload"`
}

// CatalogConfig locates the raw catalog files.
//
// Environment Variables:
//   - MOVIES_CSV_PATH: movie attributes CSV (default: /data/tmdb_5000_movies.csv)
//   - CREDITS_CSV_PATH: cast and crew CSV (default: /data/tmdb_5000_credits.csv)
//   - CATALOG_THREADS: DuckDB threads, 0 for all CPUs (default: 0)
//   - CATALOG_MAX_MEMORY: DuckDB memory limit (default: 1GB)
type CatalogConfig struct {
	MoviesPath  string `koanf:"movies_path"`
	CreditsPath string `koanf:"credits_path"`
	Threads     int    `koanf:"threads"`
	MaxMemory   string `koanf:"max_memory"`
}

// ModelConfig controls where trained models are stored.
type ModelConfig struct {
	// Backend is the artifact store: "file" or "badger".
	// Default: file
	Backend string `koanf:"backend"`

	// Dir is the model directory (file) or database path (badger).
	// Default: /data/models
	Dir string `koanf:"dir"`

	// Name is the model family name, used in file names and keys.
	// Default: tmdb
	Name string `koanf:"name"`

	// KeepVersions is how many trained versions to retain.
	// Default: 3
	KeepVersions int `koanf:"keep_versions"`
}

// RecommendConfig holds training and query parameters.
type RecommendConfig struct {
	// MaxTerms bounds the vocabulary size. Default: 6000
	MaxTerms int `koanf:"max_terms"`

	// CastLimit is the number of top-billed actors per movie. Default: 3
	CastLimit int `koanf:"cast_limit"`

	// DefaultK is the result count when a request does not specify one.
	// Default: 5
	DefaultK int `koanf:"default_k"`

	// MaxK caps the result count of a single request. Default: 50
	MaxK int `koanf:"max_k"`

	// MinMatchScore rejects fuzzy title matches scoring below it (0-100).
	// Default: 0 (always accept the best match)
	MinMatchScore int `koanf:"min_match_score"`

	// Workers is the matrix build parallelism; 0 uses all CPUs.
	Workers int `koanf:"workers"`

	// BlockSize is the number of matrix rows per work unit. Default: 64
	BlockSize int `koanf:"block_size"`

	// TrainTimeout bounds a single training run. Default: 10m
	TrainTimeout time.Duration `koanf:"train_timeout"`

	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// SupervisorConfig holds supervisor tree settings.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// ReloadConfig controls how the server obtains and refreshes its model.
type ReloadConfig struct {
	// TrainOnStartup trains a model when the store has none.
	// Default: true
	TrainOnStartup bool `koanf:"train_on_startup"`

	// WatchInterval is how often the store is polled for a newer version.
	// Zero disables polling. Default: 1m
	WatchInterval time.Duration `koanf:"watch_interval"`
}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			MoviesPath:  "/data/tmdb_5000_movies.csv",
			CreditsPath: "/data/tmdb_5000_credits.csv",
			Threads:     0,
			MaxMemory:   "1GB",
		},
		Model: ModelConfig{
			Backend:      "file",
			Dir:          "/data/models",
			Name:         "tmdb",
			KeepVersions: 3,
		},
		Recommend: RecommendConfig{
			MaxTerms:        6000,
			CastLimit:       3,
			DefaultK:        5,
			MaxK:            50,
			MinMatchScore:   0,
			Workers:         0,
			BlockSize:       64,
			TrainTimeout:    10 * time.Minute,
			CacheEnabled:    true,
			CacheTTL:        10 * time.Minute,
			CacheMaxEntries: 10000,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Reload: ReloadConfig{
			TrainOnStartup: true,
			WatchInterval:  time.Minute,
		},
	}
}

// Default returns the built-in configuration without file or env overrides.
func Default() *Config {
	return defaultConfig()
}

// EngineConfig maps the application settings onto the recommendation
// engine's configuration.
func (c *Config) EngineConfig() *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.Features.CastLimit = c.Recommend.CastLimit
	rc.Vectorizer.MaxTerms = c.Recommend.MaxTerms
	rc.Similarity.Workers = c.Recommend.Workers
	rc.Similarity.BlockSize = c.Recommend.BlockSize
	rc.Matching.MinScore = c.Recommend.MinMatchScore
	rc.Training.Timeout = c.Recommend.TrainTimeout
	rc.Training.RetainVersions = c.Model.KeepVersions
	rc.Limits.DefaultK = c.Recommend.DefaultK
	rc.Limits.MaxK = c.Recommend.MaxK
	rc.Cache.Enabled = c.Recommend.CacheEnabled
	rc.Cache.TTL = c.Recommend.CacheTTL
	rc.Cache.MaxEntries = c.Recommend.CacheMaxEntries
	return rc
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
