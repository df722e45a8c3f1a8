// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateLinkRequest: customerNumber, concern, firstName, lastName
  - SubmitFeedbackRequest: rating, comment, customer, customerName, concern, refId
  - SaveSettingsRequest: domains, concern_texts, concern_types
  - CredentialsRequest: username, password

Optional-but-required fields are pointers so that an absent field can be
rejected instead of silently becoming a zero value.

# Response Types

Every JSON endpoint answers with an Envelope:

	{"success": true, "data": ...}
	{"success": false, "error": "...", "details": "..."}

# Domain Types

  - FeedbackLink: a single-use customer link with its derived URLs
  - Feedback: a submitted rating, denormalized from its link
  - Settings: domains, concern prompts, and concern types
  - SettingsRevision: one entry of the settings audit log
  - Credentials: admin username and bcrypt hash
  - FeedbackStats: totals, distribution, and a 7 day timeline

Struct fields carry both json and db tags; the db tags are read by goqu
when scanning rows.

# Defaults

DefaultSettings returns the configuration served before the first save.
DefaultConcernText is the prompt for concerns without a configured text.
*/
package models
