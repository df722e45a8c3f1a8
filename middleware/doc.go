// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/feedback", middleware.WithLogging(handler))

Logs method, path, status, duration_ms, and client address through
zerolog once the handler returns. 5xx responses log at error level, 4xx
at warn.

# Response Envelope

Every JSON endpoint answers with the same envelope:

	middleware.Success(w, http.StatusOK, data)           // {"success":true,"data":...}
	middleware.ErrorResponse(w, http.StatusBadRequest, "rating is required")
	middleware.ErrorWithDetails(w, http.StatusInternalServerError, "failed to load feedback", err)

# Request Bodies

LimitBody caps bodies at 1 MiB; ParseJSONBody decodes and closes them:

	var req models.SubmitFeedbackRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

# Admin Authentication

RequireAdmin accepts "Authorization: Bearer <token>" issued by
auth.TokenIssuer and stores the username in the request context:

	admin := middleware.RequireAdmin(issuer)
	mux.HandleFunc("GET /api/feedback", admin(feedbackHandler.List))

# Client Address

	ip := middleware.GetClientIP(r, cfg.TrustedProxies)

Forwarding headers are ignored unless the peer is a trusted proxy.

# CORS

	handler := middleware.CORS(cfg.CORSOrigin)(mux)

An empty origin echoes the request's Origin header.
*/
package middleware
