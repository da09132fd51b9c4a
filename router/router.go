// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/pollgate/cache"
	"github.com/danielhkuo/pollgate/cliparse"
	"github.com/danielhkuo/pollgate/handlers"
	"github.com/danielhkuo/pollgate/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, c *cache.Cache) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg, c)
	votingHandler := handlers.NewVotingHandler(db, cfg, c)
	resultsHandler := handlers.NewResultsHandler(db, cfg, c)

	// Credential endpoints share one per-client limiter
	authLimiter := middleware.NewClientRateLimiter(cfg.AuthRatePerMinute)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Account management
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(authLimiter.Limit(accountHandler.Register)))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authLimiter.Limit(accountHandler.Login)))
	mux.HandleFunc("POST /auth/logout", middleware.WithLogging(accountHandler.Logout))
	mux.HandleFunc("GET /auth/me", middleware.WithLogging(accountHandler.GetMe))

	// Poll management ("mine" is literal, so it wins over the {id} wildcard)
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/mine", middleware.WithLogging(pollHandler.GetMyPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("PUT /polls/{id}", middleware.WithLogging(pollHandler.UpdatePoll))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.DeletePoll))

	// Voting and results
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(votingHandler.SubmitVote))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollgate API v1"))
	})

	return mux
}
