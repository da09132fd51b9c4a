// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pollgate/cache"
	"github.com/danielhkuo/pollgate/cliparse"
	"github.com/danielhkuo/pollgate/middleware"
	"github.com/danielhkuo/pollgate/models"
)

type ResultsHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	cache *cache.Cache
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, c *cache.Cache) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, cache: c}
}

// GetResults handles GET /polls/{id}/results
// Tallies are subject to the same visibility rule as the poll itself.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	ident, err := ResolveIdentity(h.db, r)
	if err != nil {
		slog.Error("failed to resolve identity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	poll, err := fetchPoll(h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.MsgPollNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !authorizePollRead(w, poll, ident) {
		return
	}

	key := cache.ResultsKey(pollID)
	if v, ok := h.cache.Get(key); ok {
		middleware.JSONResponse(w, http.StatusOK, v.(models.PollResultsResponse))
		return
	}

	results, err := tallyVotes(h.db, poll)
	if err != nil {
		slog.Error("failed to tally votes", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.cache.Set(key, results)

	middleware.JSONResponse(w, http.StatusOK, results)
}

// tallyVotes counts votes per option, zero-filling options nobody picked.
// Votes recorded outside the option range count toward the total only.
func tallyVotes(db *sql.DB, poll models.Poll) (models.PollResultsResponse, error) {
	rows, err := db.Query(`
		SELECT option_index, COUNT(*)
		FROM vote
		WHERE poll_id = $1
		GROUP BY option_index
	`, poll.ID)

	if err != nil {
		return models.PollResultsResponse{}, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	total := 0
	for rows.Next() {
		var optionIndex, votes int
		if err := rows.Scan(&optionIndex, &votes); err != nil {
			return models.PollResultsResponse{}, err
		}
		counts[optionIndex] = votes
		total += votes
	}

	results := make([]models.OptionCount, len(poll.Options))
	for i, label := range poll.Options {
		results[i] = models.OptionCount{
			OptionIndex: i,
			Label:       label,
			Votes:       counts[i],
		}
	}

	return models.PollResultsResponse{
		PollID:   poll.ID,
		Question: poll.Question,
		Total:    total,
		Results:  results,
	}, nil
}
