// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the feedback links API.

# Handler Types

Each handler is a struct holding its dependencies:

  - LinkHandler: Feedback link creation, lookup, listing, deletion
  - FeedbackHandler: Submission, filtered listing, stats, CSV/XLSX export
  - SettingsHandler: Current settings and their history
  - AdminHandler: Login, credential updates, bootstrap seeding

Handlers are created via constructor functions:

	linkHandler := handlers.NewLinkHandler(store, cache, cfg)

# Link Lifecycle

A link starts unused and is consumed by exactly one feedback submission:

	POST   /api/feedback-links      → CreateLink (derives feedbackUrl and qrCodeUrl)
	GET    /api/feedback-links/{id} → GetLink (public, includes concernText)
	POST   /api/feedback            → SubmitFeedback (public, marks the link used)
	DELETE /api/feedback-links/{id} → DeleteLink (refused once feedback exists)

A second submission for the same link answers 409 Conflict.

# Filters

ListFeedback, GetStats, and ExportFeedback accept the same query:

	rating=low|medium|high|1..5   q=<text>   period=today|week|month|all

# Settings

GetSettings is served from the cache when possible and falls back to the
built-in defaults until the first save. SaveSettings replaces the current
settings and appends a history revision.

# Rate Limiting

SubmitFeedback counts requests per client IP in a one hour window using
the configured cache. Cache errors never block a submission.
*/
package handlers
