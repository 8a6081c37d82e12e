// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}

	if err := c.validateModel(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if c.Reload.WatchInterval < 0 {
		return fmt.Errorf("MODEL_WATCH_INTERVAL must be non-negative, got %v", c.Reload.WatchInterval)
	}

	// Recommendation bounds are owned by the engine configuration.
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.MoviesPath == "" {
		return fmt.Errorf("MOVIES_CSV_PATH is required")
	}
	if c.Catalog.CreditsPath == "" {
		return fmt.Errorf("CREDITS_CSV_PATH is required")
	}
	if c.Catalog.Threads < 0 {
		return fmt.Errorf("CATALOG_THREADS must be non-negative, got %d", c.Catalog.Threads)
	}
	return nil
}

func (c *Config) validateModel() error {
	switch c.Model.Backend {
	case "file", "badger":
	default:
		return fmt.Errorf("MODEL_BACKEND must be 'file' or 'badger', got %q", c.Model.Backend)
	}
	if c.Model.Dir == "" {
		return fmt.Errorf("MODEL_DIR is required")
	}
	if c.Model.Name == "" || strings.ContainsAny(c.Model.Name, `/\:`) {
		return fmt.Errorf("MODEL_NAME must be non-empty and must not contain path separators or ':', got %q", c.Model.Name)
	}
	if c.Model.KeepVersions < 1 {
		return fmt.Errorf("MODEL_KEEP_VERSIONS must be at least 1, got %d", c.Model.KeepVersions)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP read and write timeouts must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("LOG_LEVEL must be one of %v, got %q", validLevels, c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}
