// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Build a model from the catalog CSVs and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			model, meta, err := a.trainer.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Trained %s v%d\n", a.cfg.Model.Name, model.Version)
			fmt.Fprintf(out, "  movies:     %d\n", len(model.Movies))
			fmt.Fprintf(out, "  vocabulary: %d terms\n", model.Vocabulary.Size())
			fmt.Fprintf(out, "  dropped:    %d movies without credits, %d credits without movies, %d incomplete, %d malformed\n",
				model.Stats.UnmatchedMovies, model.Stats.UnmatchedCredits, model.Stats.Incomplete, model.Stats.Malformed)
			if meta != nil {
				fmt.Fprintf(out, "  stored:     %d bytes, sha256 %s\n", meta.SizeBytes, meta.Checksum)
			}
			return nil
		},
	}
}
