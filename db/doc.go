// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections and creates the schema.

# Connections

Open selects the driver from the configured database type:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

PostgreSQL uses github.com/lib/pq with a pooled connection set. SQLite
uses modernc.org/sqlite with a single connection and foreign keys on.
Dialect returns the matching goqu dialect name for the store package.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - feedback_links: Customer links with derived URLs and the used flag
  - feedback: One rating per link (unique ref_id)
  - admin_settings: The single current configuration row
  - admin_settings_history: Append-only log of every settings save
  - admin_credentials: Admin usernames with bcrypt hashes

# Relationships

	feedback_links 1──0..1 feedback

feedback.ref_id references feedback_links.id without cascade, so a link
with feedback cannot be deleted at the database level either.
*/
package db
