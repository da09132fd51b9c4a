// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/pollgate/auth"
	"github.com/danielhkuo/pollgate/cache"
	"github.com/danielhkuo/pollgate/cliparse"
	"github.com/danielhkuo/pollgate/middleware"
	"github.com/danielhkuo/pollgate/models"
)

type VotingHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	cache *cache.Cache
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, c *cache.Cache) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, cache: c}
}

// SubmitVote handles POST /polls/{id}/votes
// Anonymous voting is allowed unless the poll requires authentication.
// Repeat votes by the same user are rejected unless the poll allows them;
// anonymous repeat votes are not tracked at all.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
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

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Fetch the poll's policy flags
	var settings models.PollSettings
	err = h.db.QueryRow(`
		SELECT require_auth, allow_multiple FROM poll WHERE id = $1
	`, pollID).Scan(&settings.RequireAuth, &settings.AllowMultiple)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.MsgPollNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if settings.RequireAuth && ident.Anonymous() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.MsgSignInRequired)
		return
	}

	// Friendly duplicate check; the conditional insert below still closes
	// the race between two concurrent submissions
	if !settings.AllowMultiple && !ident.Anonymous() {
		var existingID string
		err := h.db.QueryRow(`
			SELECT id FROM vote WHERE poll_id = $1 AND voter_id = $2
		`, pollID, ident.UserID).Scan(&existingID)

		if err == nil {
			middleware.ErrorResponse(w, http.StatusConflict, models.MsgAlreadyVoted)
			return
		}
		if err != sql.ErrNoRows {
			slog.Error("failed to query existing vote", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgSubmitVoteFailed)
			return
		}
	}

	voteID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate vote ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgSubmitVoteFailed)
		return
	}

	clientIP := middleware.GetClientIP(r)
	ipHash := auth.HashIP(clientIP, h.cfg.IPHashSalt)
	userAgent := r.UserAgent()
	now := time.Now()

	// TODO: validate option_index against the poll's option count
	if !settings.AllowMultiple && !ident.Anonymous() {
		// Single-vote path: the NOT EXISTS filter and the insert are one
		// statement, so two same-user submissions cannot both land
		res, err := h.db.Exec(`
			INSERT INTO vote (id, poll_id, voter_id, option_index, ip_hash, user_agent, created_at)
			SELECT $1, $2, $3, $4, $5, $6, $7
			WHERE NOT EXISTS (
				SELECT 1 FROM vote WHERE poll_id = $8 AND voter_id = $9
			)
		`, voteID, pollID, ident.UserID, req.OptionIndex, ipHash, userAgent, now,
			pollID, ident.UserID)

		if err != nil {
			slog.Error("failed to insert vote", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgSubmitVoteFailed)
			return
		}

		affected, err := res.RowsAffected()
		if err != nil {
			slog.Error("failed to read rows affected", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgSubmitVoteFailed)
			return
		}
		if affected == 0 {
			// A concurrent submission won
			middleware.ErrorResponse(w, http.StatusConflict, models.MsgAlreadyVoted)
			return
		}
	} else {
		var voterID sql.NullString
		if !ident.Anonymous() {
			voterID = sql.NullString{String: ident.UserID, Valid: true}
		}

		_, err = h.db.Exec(`
			INSERT INTO vote (id, poll_id, voter_id, option_index, ip_hash, user_agent, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, voteID, pollID, voterID, req.OptionIndex, ipHash, userAgent, now)

		if err != nil {
			slog.Error("failed to insert vote", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgSubmitVoteFailed)
			return
		}
	}

	h.cache.Invalidate(cache.DetailKey(pollID), cache.ResultsKey(pollID))

	slog.Info("vote submitted", "poll_id", pollID, "vote_id", voteID, "anonymous", ident.Anonymous())

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		VoteID: voteID,
	})
}
