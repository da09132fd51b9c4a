// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/pollgate/auth"
	"github.com/danielhkuo/pollgate/cache"
	"github.com/danielhkuo/pollgate/cliparse"
	"github.com/danielhkuo/pollgate/middleware"
	"github.com/danielhkuo/pollgate/models"
)

type PollHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	cache *cache.Cache
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config, c *cache.Cache) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, cache: c}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	ident, ok := RequireIdentity(h.db, w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input before touching the store
	question := strings.TrimSpace(req.Question)
	if question == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}
	options := trimOptions(req.Options)
	if len(options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least 2 non-empty options are required")
		return
	}

	// Generate poll ID
	pollID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate poll ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgCreatePollFailed)
		return
	}

	// Insert poll and options together
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgCreatePollFailed)
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO poll (id, owner_id, question, require_auth, allow_multiple, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, pollID, ident.UserID, question, req.Settings.RequireAuth, req.Settings.AllowMultiple, time.Now())

	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgCreatePollFailed)
		return
	}

	for i, label := range options {
		_, err = tx.Exec(`
			INSERT INTO poll_option (poll_id, position, label)
			VALUES ($1, $2, $3)
		`, pollID, i, label)

		if err != nil {
			slog.Error("failed to insert option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgCreatePollFailed)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgCreatePollFailed)
		return
	}

	h.cache.Invalidate(cache.ListKey(ident.UserID))

	slog.Info("poll created", "poll_id", pollID, "owner_id", ident.UserID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: pollID,
	})
}

// GetMyPolls handles GET /polls/mine
// An anonymous caller is not an error here: the listing is simply empty.
func (h *PollHandler) GetMyPolls(w http.ResponseWriter, r *http.Request) {
	ident, err := ResolveIdentity(h.db, r)
	if err != nil {
		slog.Error("failed to resolve identity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if ident.Anonymous() {
		middleware.JSONResponse(w, http.StatusOK, models.ListPollsResponse{
			Polls:   []models.Poll{},
			Message: "Sign in to see your polls.",
		})
		return
	}

	key := cache.ListKey(ident.UserID)
	if v, ok := h.cache.Get(key); ok {
		middleware.JSONResponse(w, http.StatusOK, models.ListPollsResponse{
			Polls: v.([]models.Poll),
		})
		return
	}

	polls, err := fetchPollsByOwner(h.db, ident.UserID)
	if err != nil {
		slog.Error("failed to query polls", "error", err, "owner_id", ident.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Attach ordered options once the listing rows are consumed
	for i := range polls {
		options, err := fetchOptions(h.db, polls[i].ID)
		if err != nil {
			slog.Error("failed to query options", "error", err, "poll_id", polls[i].ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		polls[i].Options = options
	}

	h.cache.Set(key, polls)

	middleware.JSONResponse(w, http.StatusOK, models.ListPollsResponse{
		Polls: polls,
	})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
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

	poll, err := h.getPoll(pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.MsgPollNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Visibility is evaluated per caller, after the shared cache fetch
	if !authorizePollRead(w, poll, ident) {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// UpdatePoll handles PUT /polls/{id}
// The write is scoped to the caller: a poll that is missing and a poll owned
// by someone else are indistinguishable in the response.
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	ident, ok := RequireIdentity(h.db, w, r)
	if !ok {
		return
	}

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}
	options := trimOptions(req.Options)
	if len(options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least 2 non-empty options are required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgUpdatePollFailed)
		return
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE poll
		SET question = $1
		WHERE id = $2 AND owner_id = $3
	`, question, pollID, ident.UserID)

	if err != nil {
		slog.Error("failed to update poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgUpdatePollFailed)
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgUpdatePollFailed)
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, models.MsgPollNotFound)
		return
	}

	// Replace the option list wholesale
	_, err = tx.Exec(`DELETE FROM poll_option WHERE poll_id = $1`, pollID)
	if err != nil {
		slog.Error("failed to delete old options", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgUpdatePollFailed)
		return
	}

	for i, label := range options {
		_, err = tx.Exec(`
			INSERT INTO poll_option (poll_id, position, label)
			VALUES ($1, $2, $3)
		`, pollID, i, label)

		if err != nil {
			slog.Error("failed to insert option", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgUpdatePollFailed)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgUpdatePollFailed)
		return
	}

	h.cache.Invalidate(cache.ListKey(ident.UserID), cache.DetailKey(pollID))

	slog.Info("poll updated", "poll_id", pollID, "owner_id", ident.UserID)

	middleware.JSONResponse(w, http.StatusOK, models.UpdatePollResponse{
		Message: "Poll updated.",
	})
}

// DeletePoll handles DELETE /polls/{id}
// Unlike update, delete reports 403 when the poll exists but belongs to
// someone else.
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	ident, ok := RequireIdentity(h.db, w, r)
	if !ok {
		return
	}

	var ownerID string
	err := h.db.QueryRow(`
		SELECT owner_id FROM poll WHERE id = $1
	`, pollID).Scan(&ownerID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.MsgPollNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if ownerID != ident.UserID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the poll owner can delete this poll.")
		return
	}

	// Options and votes go with the poll via ON DELETE CASCADE
	_, err = h.db.Exec(`DELETE FROM poll WHERE id = $1`, pollID)
	if err != nil {
		slog.Error("failed to delete poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgDeletePollFailed)
		return
	}

	h.cache.Invalidate(cache.ListKey(ident.UserID), cache.DetailKey(pollID), cache.ResultsKey(pollID))

	slog.Info("poll deleted", "poll_id", pollID, "owner_id", ident.UserID)

	middleware.JSONResponse(w, http.StatusOK, models.DeletePollResponse{
		Message: "Poll deleted.",
	})
}

// getPoll returns the poll from cache or store. Visibility is the caller's
// job: cache entries are shared across callers.
func (h *PollHandler) getPoll(pollID string) (models.Poll, error) {
	key := cache.DetailKey(pollID)
	if v, ok := h.cache.Get(key); ok {
		return v.(models.Poll), nil
	}

	poll, err := fetchPoll(h.db, pollID)
	if err != nil {
		return models.Poll{}, err
	}

	h.cache.Set(key, poll)
	return poll, nil
}

// authorizePollRead applies the visibility rule and writes the error response
// when the caller may not view the poll. The bool reports whether the handler
// should continue. Public polls are visible to everyone, including anonymous
// callers; gated polls are visible to their owner only.
func authorizePollRead(w http.ResponseWriter, poll models.Poll, ident models.Identity) bool {
	if !poll.Settings.RequireAuth {
		return true
	}
	if ident.Anonymous() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.MsgSignInRequired)
		return false
	}
	if ident.UserID != poll.OwnerID {
		middleware.ErrorResponse(w, http.StatusForbidden, "You do not have access to this poll.")
		return false
	}
	return true
}

// fetchPoll loads one poll and its ordered options.
// Returns sql.ErrNoRows if the poll does not exist.
func fetchPoll(db *sql.DB, pollID string) (models.Poll, error) {
	var poll models.Poll
	err := db.QueryRow(`
		SELECT id, owner_id, question, require_auth, allow_multiple, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(
		&poll.ID, &poll.OwnerID, &poll.Question,
		&poll.Settings.RequireAuth, &poll.Settings.AllowMultiple, &poll.CreatedAt,
	)

	if err != nil {
		return models.Poll{}, err
	}

	options, err := fetchOptions(db, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	poll.Options = options

	return poll, nil
}

// fetchPollsByOwner returns the caller's polls, newest first, without options.
func fetchPollsByOwner(db *sql.DB, ownerID string) ([]models.Poll, error) {
	rows, err := db.Query(`
		SELECT id, owner_id, question, require_auth, allow_multiple, created_at
		FROM poll
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		var poll models.Poll
		if err := rows.Scan(
			&poll.ID, &poll.OwnerID, &poll.Question,
			&poll.Settings.RequireAuth, &poll.Settings.AllowMultiple, &poll.CreatedAt,
		); err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}

	return polls, nil
}

// fetchOptions returns a poll's option labels in stored order.
func fetchOptions(db *sql.DB, pollID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT label FROM poll_option WHERE poll_id = $1 ORDER BY position
	`, pollID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		options = append(options, label)
	}

	return options, nil
}

// trimOptions drops blank entries and trims the rest. Order is preserved.
func trimOptions(options []string) []string {
	cleaned := make([]string, 0, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt != "" {
			cleaned = append(cleaned, opt)
		}
	}
	return cleaned
}
