// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

/*
Package api exposes the quiz service over HTTP using the chi router.

Every JSON response uses the same envelope:

	{
	  "status": "success" | "error",
	  "data": ...,
	  "metadata": {"timestamp": "...", "request_id": "..."},
	  "error": {"code": "SESSION_NOT_FOUND", "message": "...", "details": {...}}
	}

Routes (all under /api/v1):

	GET    /health/live
	GET    /health/ready
	GET    /content
	GET    /content/{key}?extended=true
	POST   /sessions
	GET    /sessions/{id}
	POST   /sessions/{id}/answers
	POST   /sessions/{id}/back
	POST   /sessions/{id}/complete
	DELETE /sessions/{id}
	GET    /users/{userID}/next?age_group=&gender=
	PUT    /users/{userID}/demographic
	GET    /popular?age_group=&gender=&limit=

Prometheus metrics are served at /metrics.

Domain sentinel errors map to HTTP status codes and machine-readable codes
in errors.go; request bodies are validated with go-playground/validator
through the validation package.
*/
package api
