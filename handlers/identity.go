// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollgate/auth"
	"github.com/danielhkuo/pollgate/middleware"
	"github.com/danielhkuo/pollgate/models"
)

const bearerPrefix = "Bearer "

// BearerToken extracts the session token from the Authorization header.
// Returns empty string if the header is absent or not a bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// ResolveIdentity resolves the caller from the Authorization header.
// Absent, malformed, unknown, and expired tokens all resolve to the anonymous
// identity; only a store failure is an error.
func ResolveIdentity(db *sql.DB, r *http.Request) (models.Identity, error) {
	token := BearerToken(r)
	if token == "" {
		return models.Identity{}, nil
	}
	if err := auth.ValidateSessionToken(token); err != nil {
		// Not a token we could have issued; skip the lookup
		return models.Identity{}, nil
	}

	var ident models.Identity
	var sessionID string
	var expiresAt time.Time
	err := db.QueryRow(`
		SELECT s.id, s.expires_at, a.id, a.email, a.display_name
		FROM session s
		JOIN account a ON s.account_id = a.id
		WHERE s.token_hash = $1
	`, auth.HashSessionToken(token)).Scan(
		&sessionID, &expiresAt, &ident.UserID, &ident.Email, &ident.DisplayName,
	)

	if err == sql.ErrNoRows {
		return models.Identity{}, nil
	}
	if err != nil {
		return models.Identity{}, err
	}

	if time.Now().After(expiresAt) {
		// Expired sessions read as anonymous; drop the row on the way out
		if _, err := db.Exec(`DELETE FROM session WHERE id = $1`, sessionID); err != nil {
			slog.Warn("failed to delete expired session", "error", err, "session_id", sessionID)
		}
		return models.Identity{}, nil
	}

	return ident, nil
}

// RequireIdentity resolves the caller and writes the error response itself
// when the caller may not proceed. The bool reports whether the handler
// should continue.
func RequireIdentity(db *sql.DB, w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	ident, err := ResolveIdentity(db, r)
	if err != nil {
		slog.Error("failed to resolve identity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Identity{}, false
	}
	if ident.Anonymous() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.MsgSignInRequired)
		return models.Identity{}, false
	}
	return ident, true
}

// CreateSession mints a session for the account and returns the raw bearer
// token. Only the token's digest is stored.
func CreateSession(db *sql.DB, accountID string, ttlHours int) (string, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	_, err = db.Exec(`
		INSERT INTO session (id, account_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), accountID, auth.HashSessionToken(token),
		now.Add(time.Duration(ttlHours)*time.Hour), now)

	if err != nil {
		return "", err
	}
	return token, nil
}

// DeleteSession removes the session for the presented bearer token. Deleting
// a session that is already gone is not an error, so sign-out is idempotent.
func DeleteSession(db *sql.DB, token string) error {
	_, err := db.Exec(`
		DELETE FROM session WHERE token_hash = $1
	`, auth.HashSessionToken(token))
	return err
}
