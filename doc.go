// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Pollgate API server.

Pollgate is a poll and vote backend: account holders create polls, anyone the
poll's settings admit can vote, and tallies are computed per option. Polls can
require authentication to be seen and can allow repeat votes.

# Starting the Server

The server requires environment variables or CLI flags for configuration
(a .env file is loaded first if present):

	DATABASE_URL=file:pollgate.db IP_HASH_SALT=... go run main.go

Or with flags:

	go run main.go -p 8080 -d "postgres://..." -t postgres -ip-salt "..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite DSN or PostgreSQL connection string
  - IP_HASH_SALT (-ip-salt): Secret for vote IP hashing

Optional settings:

  - PORT (-p): Server port (default: 8080)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SESSION_TTL_HOURS (-session-ttl): Session lifetime (default: 168)
  - AUTH_RATE_PER_MINUTE (-auth-rate): Login/register rate limit, 0 disables
  - CACHE_TTL_SECONDS (-cache-ttl): Poll read cache TTL, 0 disables

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (accounts, polls, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON helpers
  - cache: In-process TTL cache for poll reads
  - models: Request/response types
  - auth: Session tokens, password hashing and policy
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
