// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the feedback links API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints;
NewHandler additionally applies CORS and the request body limit:

	handler := router.NewHandler(store, cache, cfg)

# Endpoints

Health:

	GET /health
	GET /api/health

Public (customer page):

	GET  /api/feedback-links/{id} - Resolve a link and its prompt
	POST /api/feedback            - Submit feedback, consumes the link
	GET  /api/settings            - Current settings

Admin (requires Authorization: Bearer <token>):

	POST   /api/feedback-links      - Create link
	GET    /api/feedback-links      - List links
	DELETE /api/feedback-links/{id} - Delete unused link
	GET    /api/feedback            - List feedback (filters)
	GET    /api/feedback/stats      - Aggregates
	GET    /api/feedback/export     - CSV or XLSX download
	POST   /api/settings            - Save settings
	GET    /api/settings/history    - Saved revisions

Accounts:

	POST /api/admin/login        - Exchange credentials for a token
	POST /api/admin-credentials  - Set credentials (open until the first account exists)

When cfg.StaticDir is set, every other GET path serves the app bundle.
*/
package router
