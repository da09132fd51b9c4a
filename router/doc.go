// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Pollgate API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, pollCache)

# Endpoints

Health:

	GET /health

Accounts (register and login are rate limited per client):

	POST /auth/register - Create account, returns session token
	POST /auth/login    - Sign in
	POST /auth/logout   - Destroy session
	GET  /auth/me       - Current identity

Poll management (requires bearer token):

	POST   /polls      - Create poll
	GET    /polls/mine - List caller's polls
	PUT    /polls/{id} - Update question and options
	DELETE /polls/{id} - Delete poll

Reading and voting (anonymous allowed unless the poll requires auth):

	GET  /polls/{id}         - Poll with options
	POST /polls/{id}/votes   - Submit vote
	GET  /polls/{id}/results - Per-option tallies

# Handler Initialization

The router creates handler instances with dependency injection:

	accountHandler := handlers.NewAccountHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg, c)
	votingHandler := handlers.NewVotingHandler(db, cfg, c)
	resultsHandler := handlers.NewResultsHandler(db, cfg, c)

Poll, voting, and results handlers share one cache so invalidations are
visible across them.
*/
package router
