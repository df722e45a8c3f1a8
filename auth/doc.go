// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifiers, password hashing, and admin tokens.

# ID Generation

Record IDs are random UUIDv4 strings:

	id := auth.GenerateID()

Feedback link IDs double as the public ?ref= parameter, so they must not
be guessable.

# Passwords

Admin passwords are stored as bcrypt hashes, never as plaintext:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password)

# Admin Tokens

A TokenIssuer signs HS256 JWTs carrying the admin username as subject:

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	token, expiresAt, err := issuer.Issue("admin")
	username, err := issuer.Verify(token)

Verify checks signature, issuer, audience, and expiry. Tokens travel in
the Authorization header; BearerToken extracts them.
*/
package auth
