// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinematch/internal/recommend"
)

func recommendCmd() *cobra.Command {
	var (
		k       int
		asJSON  bool
		minimum int
	)

	cmd := &cobra.Command{
		Use:   "recommend [title]",
		Short: "Print the movies most similar to a title",
		Long: `Resolves the title against the catalog with fuzzy matching and prints
the k most similar movies by cosine similarity of their tag vectors.
The latest stored model is used; one is trained first if none exists.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := checkK(k, a.cfg.Recommend.MaxK); err != nil {
				return err
			}
			if err := a.ensureModel(cmd.Context()); err != nil {
				return err
			}

			resp, err := a.engine.Recommend(cmd.Context(), strings.Join(args, " "), k)
			if err != nil {
				return err
			}
			if resp.Match.Score < minimum {
				return fmt.Errorf("best match %q scored %d < %d: %w",
					resp.Match.Title, resp.Match.Score, minimum, recommend.ErrNoMatchFound)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printRecommendations(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 5, "number of recommendations")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	cmd.Flags().IntVar(&minimum, "min-score", 0, "reject title matches scoring below this (0-100)")
	return cmd
}

func resolveCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [title]",
		Short: "Show how a title is matched against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ensureModel(cmd.Context()); err != nil {
				return err
			}

			matches, err := a.engine.Suggest(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), matches)
			}

			out := cmd.OutOrStdout()
			for _, m := range matches {
				fmt.Fprintf(out, "%3d  %s\n", m.Score, m.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of candidate titles")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print matches as JSON")
	return cmd
}

// checkK rejects result counts outside 1..maxK instead of letting the
// engine clamp them.
func checkK(k, maxK int) error {
	if k < 1 || k > maxK {
		return fmt.Errorf("-k %d outside 1..%d (recommend.max_k): %w", k, maxK, recommend.ErrInvalidK)
	}
	return nil
}

func printRecommendations(w io.Writer, resp *recommend.Response) {
	if resp.Match.Title != resp.Query {
		fmt.Fprintf(w, "Matched %q to %q (score %d)\n", resp.Query, resp.Match.Title, resp.Match.Score)
	}
	fmt.Fprintf(w, "Movies similar to %s:\n", resp.Match.Title)
	for _, rec := range resp.Recommendations {
		fmt.Fprintf(w, "%2d. %s (%.3f)\n", rec.Rank, rec.Title, rec.Score)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
