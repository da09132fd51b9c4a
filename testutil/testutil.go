// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollgate/auth"
	"github.com/danielhkuo/pollgate/cliparse"
	"github.com/danielhkuo/pollgate/db"
)

// TestDBURL is the DSN for the in-memory test database
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// One connection so every query sees the same in-memory database
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration.
// The auth rate limiter is disabled so tests can hammer the endpoints.
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              8080,
		DatabaseURL:       TestDBURL,
		DatabaseType:      "sqlite",
		IPHashSalt:        "test-ip-salt",
		SessionTTLHours:   24,
		AuthRatePerMinute: 0,
		CacheTTLSeconds:   30,
	}
}

// CreateTestUser inserts an account and returns its ID.
// The password is stored properly hashed so login flows work against it.
func CreateTestUser(t *testing.T, db *sql.DB, email, password string) string {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	userID := uuid.NewString()
	_, err = db.Exec(`
		INSERT INTO account (id, email, display_name, password_hash, created_at)
		VALUES ($1, $2, 'Test User', $3, $4)
	`, userID, email, hash, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// CreateTestSession inserts a session for the user and returns the raw token
func CreateTestSession(t *testing.T, db *sql.DB, userID string) string {
	t.Helper()

	token, err := auth.GenerateSessionToken()
	if err != nil {
		t.Fatalf("Failed to generate test token: %v", err)
	}

	now := time.Now()
	_, err = db.Exec(`
		INSERT INTO session (id, account_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), userID, auth.HashSessionToken(token), now.Add(24*time.Hour), now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return token
}

// CreateTestPoll inserts a poll with the given policy flags and returns its ID
func CreateTestPoll(t *testing.T, db *sql.DB, ownerID string, requireAuth, allowMultiple bool) string {
	t.Helper()

	pollID, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO poll (id, owner_id, question, require_auth, allow_multiple, created_at)
		VALUES ($1, $2, 'Test question?', $3, $4, $5)
	`, pollID, ownerID, requireAuth, allowMultiple, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// AddTestOptions appends options to a poll in the given order
func AddTestOptions(t *testing.T, db *sql.DB, pollID string, labels ...string) {
	t.Helper()

	for i, label := range labels {
		_, err := db.Exec(`
			INSERT INTO poll_option (poll_id, position, label)
			VALUES ($1, $2, $3)
		`, pollID, i, label)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
	}
}

// CastTestVote inserts a vote directly. voterID may be empty for anonymous.
func CastTestVote(t *testing.T, db *sql.DB, pollID, voterID string, optionIndex int) string {
	t.Helper()

	voteID, _ := auth.GenerateID(16)
	var voter sql.NullString
	if voterID != "" {
		voter = sql.NullString{String: voterID, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO vote (id, poll_id, voter_id, option_index, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, pollID, voter, optionIndex, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// AuthHeader builds the bearer header map for MakeRequest
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
