// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the feedback links API server.

An operator creates a single-use link for a customer and a concern, hands
it out as a URL or QR code, and the customer rates the experience from 1
to 5 with an optional comment. Admins filter, aggregate, and export the
collected feedback.

# Starting the Server

	DATABASE_URL=feedback.db JWT_SECRET=... go run .

Or with flags:

	go run . -p 4000 -d "postgres://..." --jwt-secret ...

A .env file in the working directory is read first.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL URL or SQLite file path
  - JWT_SECRET (--jwt-secret): Secret for admin tokens

Optional settings:

  - PORT (-p): Server port (default: 4000)
  - DATABASE_TYPE (-t): sqlite or postgres, inferred from the URL
  - ADMIN_USERNAME, ADMIN_PASSWORD: Bootstrap admin on an empty database
  - REDIS_ADDR (--redis): Shared cache; in-memory when unset
  - FEEDBACK_RATE_LIMIT (--rate-limit): Submissions per IP per hour
  - TRUSTED_PROXIES (--trusted-proxies): Proxies allowed to set X-Forwarded-For
  - STATIC_DIR (--static): Built web app served at /
  - APP_ENV, LOG_LEVEL: Console or JSON logs and their level

# Architecture

  - handlers: HTTP request handlers (links, feedback, settings, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON envelope, admin auth
  - store: Queries built with goqu over PostgreSQL or SQLite
  - cache: Redis or in-memory settings cache and rate counters
  - export: CSV and XLSX writers
  - models: Request/response and domain types
  - auth: IDs, password hashing, admin tokens
  - db: Connection and schema creation
  - cliparse: Configuration parsing
  - logging: zerolog setup
  - web: Single-page app file server

See package documentation for each component.
*/
package main
