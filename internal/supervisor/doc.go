// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package supervisor provides process supervision for Parkcast using suture v4.

The tree organizes long-running services into three layers:

	RootSupervisor ("parkcast")
	├── DataSupervisor ("data-layer")
	│   └── JournalGCService (if JOURNAL_ENABLED)
	├── LearningSupervisor ("learning-layer")
	│   └── RetrainService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a retrain loop that keeps
crashing backs off on its own while the HTTP server keeps answering.
Supervisor events are logged through sutureslog into the slog adapter of
the logging package, which writes to zerolog.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddLearningService(retrainSvc)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Configuration

TreeConfig zero values fall back to suture's defaults: 5 failures before
backoff, 30 second decay, 15 second backoff and a 10 second shutdown timeout.
*/
package supervisor
