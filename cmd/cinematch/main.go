// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package main is the cinematch command.
//
// Cinematch recommends movies that are similar in content to a given title.
// Each movie is described by a tag string built from its genres, top-billed
// cast, keywords, director and stemmed overview. Tag strings are vectorized
// as bag-of-words counts and compared by cosine similarity. Queries are
// matched to catalog titles fuzzily, so "The Dark Knigt" still finds
// "The Dark Knight".
//
// # Commands
//
//	cinematch train                       build a model from the catalog CSVs and store it
//	cinematch recommend "Avatar" -k 5     print the 5 most similar movies
//	cinematch resolve "dark knigt"        show how a title is matched
//	cinematch serve                       run the HTTP API under a supervisor tree
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (MOVIES_CSV_PATH, MODEL_DIR, HTTP_PORT, ...)
//   - Config file (--config, CONFIG_PATH, or ./config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// serve shuts down gracefully on SIGINT and SIGTERM: the HTTP server stops
// accepting connections and in-flight requests finish within the shutdown
// timeout.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// configPath is the --config flag shared by all commands.
var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "cinematch",
		Short:         "Content-based movie recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: CONFIG_PATH or ./config.yaml)")

	rootCmd.AddCommand(trainCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(serveCmd())

	// Commands observe SIGINT and SIGTERM through cmd.Context().
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
