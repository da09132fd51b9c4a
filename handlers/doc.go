// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Pollgate API.

# Handler Types

Each handler is a struct with database, config, and cache dependencies:

  - AccountHandler: Registration, sign-in, sign-out, current identity
  - PollHandler: Poll lifecycle (create, list, get, update, delete)
  - VotingHandler: Vote submission
  - ResultsHandler: Per-option tallies

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(db, cfg, pollCache)

# Identity

Callers authenticate with a bearer session token:

	Authorization: Bearer <token>

ResolveIdentity maps the header to a models.Identity. Absent, malformed,
unknown, and expired tokens all resolve to the anonymous identity; handlers
decide per route whether anonymous callers may proceed. RequireIdentity wraps
the common reject-with-401 case.

# Account Flow

	POST /auth/register → Register (field-level validation, auto sign-in)
	POST /auth/login    → Login
	POST /auth/logout   → Logout
	GET  /auth/me       → GetMe

Registration is the only endpoint that itemizes validation failures; every
sign-in failure gets the same generic 401 so responses never reveal whether
an email has an account.

# Poll Flow

	POST   /polls      → CreatePoll (owner only)
	GET    /polls/mine → GetMyPolls (anonymous gets an empty list)
	GET    /polls/{id} → GetPoll
	PUT    /polls/{id} → UpdatePoll (owner only)
	DELETE /polls/{id} → DeletePoll (owner only)

A poll with require_auth set is visible to its owner alone; all other polls
are public, to anonymous callers included.

# Voting

	POST /polls/{id}/votes   → SubmitVote
	GET  /polls/{id}/results → GetResults

Duplicate votes by the same signed-in user are rejected with 409 unless the
poll allows multiple votes. The duplicate check is backed by a conditional
single-statement insert, so concurrent submissions cannot both land.
Anonymous duplicates are deliberately not tracked.

# Caching

Poll listings, details, and tallies are read through the cache package.
Mutating handlers invalidate the affected keys; visibility checks always run
after the cache fetch because entries are shared across callers.
*/
package handlers
