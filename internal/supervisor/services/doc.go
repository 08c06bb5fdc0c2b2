// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

/*
Package services adapts quizcore components to suture's Serve pattern.

Each wrapper implements suture.Service and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

HTTPServerService runs an *http.Server and shuts it down gracefully when
the context is canceled.

EventRouterService runs the watermill router of an events.Bus. A router
that stops on its own cannot be restarted, so the service reports
suture.ErrDoNotRestart in that case.

ValueLogGCService periodically reclaims badger value log space.
*/
package services
