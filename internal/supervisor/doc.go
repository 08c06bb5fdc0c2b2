// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

/*
Package supervisor runs the long-lived parts of quizcore under a suture v4
supervisor tree.

	RootSupervisor ("quizcore")
	├── StorageSupervisor ("storage-layer")
	│   └── ValueLogGCService
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventRouterService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a crashing event router does
not take the HTTP API down with it. Supervisor events are logged through
sutureslog into the application's zerolog logger via
logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddStorageService(services.NewValueLogGCService(db, time.Hour, 0.5, logger))
	tree.AddMessagingService(services.NewEventRouterService(bus, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 15*time.Second))

	errCh := tree.ServeBackground(ctx)
*/
package supervisor
