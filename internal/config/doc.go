// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package config provides centralized configuration management for Cinematch.

# Configuration Sources

Configuration is layered with Koanf; later layers override earlier ones:

 1. Built-in defaults
 2. A YAML file: the --config flag, else CONFIG_PATH, else config.yaml,
    config.yml, /etc/cinematch/config.yaml, /etc/cinematch/config.yml
 3. Environment variables

Only the environment variables listed in envMappings are read, so unrelated
variables never leak into the configuration.

# Configuration Structure

  - CatalogConfig: the movie and credits CSV files
  - ModelConfig: the model store backend, location and retention
  - RecommendConfig: vocabulary, matching, result limits and query cache
  - ServerConfig: HTTP listener and timeouts
  - SecurityConfig: CORS and rate limiting
  - LoggingConfig: zerolog level and format
  - SupervisorConfig: suture restart policy
  - ReloadConfig: startup training and store polling

# Environment Variables

Catalog:
  - MOVIES_CSV_PATH, CREDITS_CSV_PATH, CATALOG_THREADS, CATALOG_MAX_MEMORY

Model store:
  - MODEL_BACKEND (file|badger), MODEL_DIR, MODEL_NAME, MODEL_KEEP_VERSIONS

Recommendation:
  - RECOMMEND_MAX_TERMS (default: 6000), RECOMMEND_CAST_LIMIT (default: 3)
  - RECOMMEND_DEFAULT_K (default: 5), RECOMMEND_MAX_K (default: 50)
  - RECOMMEND_MIN_MATCH_SCORE (default: 0, disabled)
  - RECOMMEND_WORKERS, RECOMMEND_BLOCK_SIZE, RECOMMEND_TRAIN_TIMEOUT
  - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_TTL, RECOMMEND_CACHE_MAX_ENTRIES

HTTP server:
  - HTTP_HOST (default: 0.0.0.0), HTTP_PORT (default: 8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT

Security:
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQS, RATE_LIMIT_WINDOW, RATE_LIMIT_DISABLED

Logging:
  - LOG_LEVEL (default: info), LOG_FORMAT (default: json), LOG_CALLER

Supervisor and reload:
  - SUPERVISOR_FAILURE_THRESHOLD, SUPERVISOR_FAILURE_DECAY,
    SUPERVISOR_FAILURE_BACKOFF, SUPERVISOR_SHUTDOWN_TIMEOUT
  - TRAIN_ON_STARTUP (default: true), MODEL_WATCH_INTERVAL (default: 1m)

# Example

	cfg, err := config.Load("")
	if err != nil {
	    return err
	}
	engineCfg := cfg.EngineConfig()
*/
package config
