// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package logging provides the process-wide zerolog logger for Cinematch.
//
// Components receive a zerolog.Logger by value from their constructor;
// this package owns the root logger those are derived from, the request ID
// context helpers used by the HTTP layer, and an slog.Handler adapter for
// libraries that log through log/slog.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logger := logging.WithComponent("trainer")
//	logging.Ctx(ctx).Info().Msg("request handled")
//
// Always terminate log chains with .Msg() or .Send().
package logging
