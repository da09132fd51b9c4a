// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollgate/auth"
	"github.com/danielhkuo/pollgate/cliparse"
	"github.com/danielhkuo/pollgate/middleware"
	"github.com/danielhkuo/pollgate/models"
)

type AccountHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAccountHandler(db *sql.DB, cfg cliparse.Config) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg}
}

// Register handles POST /auth/register
// Creates an account and signs the caller in. This is the only endpoint that
// returns field-level validation messages.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Collect every failed rule per field before responding
	fields := map[string][]string{}
	email := auth.NormalizeEmail(req.Email)
	if msgs := auth.ValidateEmail(email); len(msgs) > 0 {
		fields["email"] = msgs
	}
	if msgs := auth.ValidateDisplayName(req.DisplayName); len(msgs) > 0 {
		fields["display_name"] = msgs
	}
	if msgs := auth.ValidatePassword(req.Password); len(msgs) > 0 {
		fields["password"] = msgs
	}
	if len(fields) > 0 {
		middleware.ValidationErrorResponse(w, fields)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgRegisterFailed)
		return
	}

	// Insert account. A duplicate email fails the unique index and lands
	// here; the response stays generic so registration cannot be used to
	// probe which addresses have accounts.
	accountID := uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO account (id, email, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, accountID, email, req.DisplayName, passwordHash, time.Now())

	if err != nil {
		slog.Error("failed to insert account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgRegisterFailed)
		return
	}

	// Auto sign-in: registration responds with a usable session
	token, err := CreateSession(h.db, accountID, h.cfg.SessionTTLHours)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", accountID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgRegisterFailed)
		return
	}

	slog.Info("account registered", "user_id", accountID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		UserID: accountID,
		Token:  token,
	})
}

// Login handles POST /auth/login
// Every credential failure gets the same 401 body, so responses do not
// reveal whether the email has an account.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := auth.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.MsgInvalidCredentials)
		return
	}

	var accountID, displayName, passwordHash string
	err := h.db.QueryRow(`
		SELECT id, display_name, password_hash FROM account WHERE email = $1
	`, email).Scan(&accountID, &displayName, &passwordHash)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.MsgInvalidCredentials)
		return
	}
	if err != nil {
		slog.Error("failed to query account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !auth.CheckPassword(passwordHash, req.Password) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.MsgInvalidCredentials)
		return
	}

	token, err := CreateSession(h.db, accountID, h.cfg.SessionTTLHours)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", accountID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign in.")
		return
	}

	slog.Info("account signed in", "user_id", accountID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		UserID:      accountID,
		DisplayName: displayName,
		Token:       token,
	})
}

// Logout handles POST /auth/logout
// Destroys the presented session. Signing out twice is fine; signing out
// with no token at all is not.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.MsgSignInRequired)
		return
	}

	if err := DeleteSession(h.db, token); err != nil {
		slog.Error("failed to delete session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LogoutResponse{
		Message: "Signed out.",
	})
}

// GetMe handles GET /auth/me
// Returns the caller's resolved identity, or 401 if anonymous.
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := RequireIdentity(h.db, w, r)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ident)
}
