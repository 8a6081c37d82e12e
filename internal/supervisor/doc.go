// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor runs the long-lived parts of the recommendation server
under a suture v4 supervisor tree.

	root ("cinematch")
	├── model-layer
	│   └── ModelService     load latest artifact, train on startup, hot reload
	└── api-layer
	    └── HTTPServerService

Crashed services are restarted with suture's failure threshold, decay and
backoff. Supervisor events are logged through sutureslog into the zerolog
backed slog handler from the logging package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    FailureThreshold: cfg.Supervisor.FailureThreshold,
	    FailureBackoff:   cfg.Supervisor.FailureBackoff,
	    ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	tree.AddModelService(services.NewModelService(engine, trainer, store, modelCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServerConfig{
	    Addr:            cfg.Server.Addr(),
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err = tree.Serve(ctx)
*/
package supervisor
