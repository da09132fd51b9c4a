// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollgate/cache"
	"github.com/danielhkuo/pollgate/models"
	"github.com/danielhkuo/pollgate/testutil"
)

func TestCreatePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(db, cfg, cache.New(30*time.Second))

	userID := testutil.CreateTestUser(t, db, "alice@example.com", "Abcdef1!")
	token := testutil.CreateTestSession(t, db, userID)

	tests := []struct {
		name           string
		token          string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CreatePollResponse)
	}{
		{
			name:  "valid poll creation",
			token: token,
			requestBody: models.CreatePollRequest{
				Question: "Where should we eat?",
				Options:  []string{"Pizza", "Sushi", "Tacos"},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreatePollResponse) {
				if resp.PollID == "" {
					t.Error("Expected non-empty poll_id")
				}

				// Verify the poll row belongs to the caller
				var ownerID, question string
				var requireAuth, allowMultiple bool
				err := db.QueryRow(`
					SELECT owner_id, question, require_auth, allow_multiple
					FROM poll WHERE id = $1
				`, resp.PollID).Scan(&ownerID, &question, &requireAuth, &allowMultiple)
				if err != nil {
					t.Fatalf("Failed to query poll: %v", err)
				}
				if ownerID != userID {
					t.Errorf("Expected owner %s, got %s", userID, ownerID)
				}
				if question != "Where should we eat?" {
					t.Errorf("Unexpected question: '%s'", question)
				}
				if requireAuth || allowMultiple {
					t.Error("Expected both settings to default to false")
				}

				var count int
				err = db.QueryRow("SELECT COUNT(*) FROM poll_option WHERE poll_id = $1", resp.PollID).Scan(&count)
				if err != nil {
					t.Fatalf("Failed to count options: %v", err)
				}
				if count != 3 {
					t.Errorf("Expected 3 options, got %d", count)
				}
			},
		},
		{
			name:  "settings are honored",
			token: token,
			requestBody: models.CreatePollRequest{
				Question: "Members only?",
				Options:  []string{"Yes", "No"},
				Settings: models.PollSettings{RequireAuth: true, AllowMultiple: true},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreatePollResponse) {
				var requireAuth, allowMultiple bool
				err := db.QueryRow(`
					SELECT require_auth, allow_multiple FROM poll WHERE id = $1
				`, resp.PollID).Scan(&requireAuth, &allowMultiple)
				if err != nil {
					t.Fatalf("Failed to query poll: %v", err)
				}
				if !requireAuth || !allowMultiple {
					t.Errorf("Expected both settings true, got require_auth=%v allow_multiple=%v", requireAuth, allowMultiple)
				}
			},
		},
		{
			name:  "blank options are dropped",
			token: token,
			requestBody: models.CreatePollRequest{
				Question: "Spaces?",
				Options:  []string{"  Keep A  ", "   ", "Keep B", ""},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreatePollResponse) {
				rows, err := db.Query("SELECT label FROM poll_option WHERE poll_id = $1 ORDER BY position", resp.PollID)
				if err != nil {
					t.Fatalf("Failed to query options: %v", err)
				}
				defer rows.Close()

				var labels []string
				for rows.Next() {
					var label string
					if err := rows.Scan(&label); err != nil {
						t.Fatalf("Failed to scan option: %v", err)
					}
					labels = append(labels, label)
				}
				if len(labels) != 2 || labels[0] != "Keep A" || labels[1] != "Keep B" {
					t.Errorf("Expected [Keep A, Keep B], got %v", labels)
				}
			},
		},
		{
			name:  "missing question",
			token: token,
			requestBody: models.CreatePollRequest{
				Options: []string{"A", "B"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "only one option",
			token: token,
			requestBody: models.CreatePollRequest{
				Question: "One choice?",
				Options:  []string{"Only"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "all options blank",
			token: token,
			requestBody: models.CreatePollRequest{
				Question: "Empty?",
				Options:  []string{" ", "", "  "},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "anonymous caller",
			requestBody: models.CreatePollRequest{
				Question: "Who am I?",
				Options:  []string{"A", "B"},
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid JSON",
			token:          token,
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			var err error

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatalf("Failed to marshal request body: %v", err)
				}
			}

			req := httptest.NewRequest("POST", "/polls", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.CreatePollResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, &resp)
			}
		})
	}
}

// TestCreatePollValidationLeavesStoreUntouched verifies that rejected input
// writes no rows at all.
func TestCreatePollValidationLeavesStoreUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(db, cfg, cache.New(30*time.Second))

	userID := testutil.CreateTestUser(t, db, "alice@example.com", "Abcdef1!")
	token := testutil.CreateTestSession(t, db, userID)

	for _, reqBody := range []models.CreatePollRequest{
		{Question: "", Options: []string{"A", "B"}},
		{Question: "Half done?", Options: []string{"Only"}},
	} {
		body, _ := json.Marshal(reqBody)
		req := httptest.NewRequest("POST", "/polls", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.CreatePoll(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status %d, got %d. Body: %s", http.StatusBadRequest, w.Code, w.Body.String())
		}
	}

	var polls, options int
	if err := db.QueryRow("SELECT COUNT(*) FROM poll").Scan(&polls); err != nil {
		t.Fatalf("Failed to count polls: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM poll_option").Scan(&options); err != nil {
		t.Fatalf("Failed to count options: %v", err)
	}
	if polls != 0 || options != 0 {
		t.Errorf("Expected empty store after rejected input, got %d polls and %d options", polls, options)
	}
}

func TestGetMyPolls(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(db, cfg, cache.New(30*time.Second))

	ownerID := testutil.CreateTestUser(t, db, "owner@example.com", "Abcdef1!")
	token := testutil.CreateTestSession(t, db, ownerID)
	otherID := testutil.CreateTestUser(t, db, "other@example.com", "Abcdef1!")

	oldPoll := testutil.CreateTestPoll(t, db, ownerID, false, false)
	testutil.AddTestOptions(t, db, oldPoll, "A", "B")
	newPoll := testutil.CreateTestPoll(t, db, ownerID, false, false)
	testutil.AddTestOptions(t, db, newPoll, "C", "D")
	testutil.CreateTestPoll(t, db, otherID, false, false)

	// Pin creation times so newest-first ordering is deterministic
	if _, err := db.Exec("UPDATE poll SET created_at = $1 WHERE id = $2", time.Now().Add(-2*time.Hour), oldPoll); err != nil {
		t.Fatalf("Failed to set created_at: %v", err)
	}
	if _, err := db.Exec("UPDATE poll SET created_at = $1 WHERE id = $2", time.Now().Add(-time.Hour), newPoll); err != nil {
		t.Fatalf("Failed to set created_at: %v", err)
	}

	t.Run("anonymous caller gets empty list with hint", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/mine", nil)
		w := httptest.NewRecorder()

		handler.GetMyPolls(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d. Body: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp models.ListPollsResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp.Polls) != 0 {
			t.Errorf("Expected 0 polls, got %d", len(resp.Polls))
		}
		if resp.Message != "Sign in to see your polls." {
			t.Errorf("Expected sign-in hint, got '%s'", resp.Message)
		}
	})

	t.Run("owner sees own polls newest first", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/mine", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.GetMyPolls(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d. Body: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp models.ListPollsResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp.Polls) != 2 {
			t.Fatalf("Expected 2 polls, got %d", len(resp.Polls))
		}
		if resp.Polls[0].ID != newPoll || resp.Polls[1].ID != oldPoll {
			t.Errorf("Expected order [%s %s], got [%s %s]",
				newPoll, oldPoll, resp.Polls[0].ID, resp.Polls[1].ID)
		}
		if len(resp.Polls[0].Options) != 2 {
			t.Errorf("Expected options attached to listing, got %v", resp.Polls[0].Options)
		}
	})
}

func TestGetPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(db, cfg, cache.New(30*time.Second))

	ownerID := testutil.CreateTestUser(t, db, "owner@example.com", "Abcdef1!")
	ownerToken := testutil.CreateTestSession(t, db, ownerID)
	otherID := testutil.CreateTestUser(t, db, "other@example.com", "Abcdef1!")
	otherToken := testutil.CreateTestSession(t, db, otherID)

	publicPoll := testutil.CreateTestPoll(t, db, ownerID, false, false)
	testutil.AddTestOptions(t, db, publicPoll, "Red", "Green", "Blue")
	gatedPoll := testutil.CreateTestPoll(t, db, ownerID, true, false)
	testutil.AddTestOptions(t, db, gatedPoll, "Yes", "No")

	tests := []struct {
		name           string
		pollID         string
		token          string
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.Poll)
	}{
		{
			name:           "public poll, anonymous caller",
			pollID:         publicPoll,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.Poll) {
				if resp.ID != publicPoll {
					t.Errorf("Expected poll %s, got %s", publicPoll, resp.ID)
				}
				if resp.Question != "Test question?" {
					t.Errorf("Expected question 'Test question?', got '%s'", resp.Question)
				}
				if len(resp.Options) != 3 {
					t.Fatalf("Expected 3 options, got %d", len(resp.Options))
				}
				if resp.Options[0] != "Red" || resp.Options[1] != "Green" || resp.Options[2] != "Blue" {
					t.Errorf("Options out of order: %v", resp.Options)
				}
			},
		},
		{
			name:           "public poll, signed-in caller",
			pollID:         publicPoll,
			token:          otherToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "gated poll, owner",
			pollID:         gatedPoll,
			token:          ownerToken,
			expectedStatus: http.StatusOK,
		},
		// The owner's fetch above populates the shared cache; these two must
		// still be turned away
		{
			name:           "gated poll, anonymous caller",
			pollID:         gatedPoll,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "gated poll, signed-in non-owner",
			pollID:         gatedPoll,
			token:          otherToken,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "poll not found",
			pollID:         "nonexistent",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/polls/"+tt.pollID, nil)
			req.SetPathValue("id", tt.pollID)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()

			handler.GetPoll(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK && tt.checkResponse != nil {
				var resp models.Poll
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestUpdatePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(db, cfg, cache.New(30*time.Second))

	ownerID := testutil.CreateTestUser(t, db, "owner@example.com", "Abcdef1!")
	ownerToken := testutil.CreateTestSession(t, db, ownerID)
	otherID := testutil.CreateTestUser(t, db, "other@example.com", "Abcdef1!")
	otherToken := testutil.CreateTestSession(t, db, otherID)
	_ = otherID

	pollID := testutil.CreateTestPoll(t, db, ownerID, false, false)
	testutil.AddTestOptions(t, db, pollID, "Old A", "Old B")

	t.Run("owner updates question and options", func(t *testing.T) {
		body, _ := json.Marshal(models.UpdatePollRequest{
			Question: "Updated question?",
			Options:  []string{"New A", "New B", "New C"},
		})
		req := httptest.NewRequest("PUT", "/polls/"+pollID, bytes.NewReader(body))
		req.SetPathValue("id", pollID)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		w := httptest.NewRecorder()

		handler.UpdatePoll(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d. Body: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var question string
		if err := db.QueryRow("SELECT question FROM poll WHERE id = $1", pollID).Scan(&question); err != nil {
			t.Fatalf("Failed to query poll: %v", err)
		}
		if question != "Updated question?" {
			t.Errorf("Expected updated question, got '%s'", question)
		}

		rows, err := db.Query("SELECT label FROM poll_option WHERE poll_id = $1 ORDER BY position", pollID)
		if err != nil {
			t.Fatalf("Failed to query options: %v", err)
		}
		defer rows.Close()

		var labels []string
		for rows.Next() {
			var label string
			if err := rows.Scan(&label); err != nil {
				t.Fatalf("Failed to scan option: %v", err)
			}
			labels = append(labels, label)
		}
		if len(labels) != 3 || labels[0] != "New A" || labels[2] != "New C" {
			t.Errorf("Options were not replaced: %v", labels)
		}
	})

	t.Run("non-owner gets generic 404", func(t *testing.T) {
		body, _ := json.Marshal(models.UpdatePollRequest{
			Question: "Hijacked?",
			Options:  []string{"X", "Y"},
		})
		req := httptest.NewRequest("PUT", "/polls/"+pollID, bytes.NewReader(body))
		req.SetPathValue("id", pollID)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+otherToken)
		w := httptest.NewRecorder()

		handler.UpdatePoll(w, req)

		// The response must not reveal that the poll exists but belongs to
		// someone else
		if w.Code != http.StatusNotFound {
			t.Fatalf("Expected status %d, got %d. Body: %s", http.StatusNotFound, w.Code, w.Body.String())
		}

		var resp models.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Message != models.MsgPollNotFound {
			t.Errorf("Expected generic message %q, got %q", models.MsgPollNotFound, resp.Message)
		}

		var question string
		if err := db.QueryRow("SELECT question FROM poll WHERE id = $1", pollID).Scan(&question); err != nil {
			t.Fatalf("Failed to query poll: %v", err)
		}
		if question != "Updated question?" {
			t.Errorf("Poll was modified by a non-owner: '%s'", question)
		}
	})

	t.Run("anonymous caller gets 401", func(t *testing.T) {
		body, _ := json.Marshal(models.UpdatePollRequest{
			Question: "Anyone?",
			Options:  []string{"X", "Y"},
		})
		req := httptest.NewRequest("PUT", "/polls/"+pollID, bytes.NewReader(body))
		req.SetPathValue("id", pollID)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.UpdatePoll(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})

	t.Run("missing poll gets 404", func(t *testing.T) {
		body, _ := json.Marshal(models.UpdatePollRequest{
			Question: "Ghost?",
			Options:  []string{"X", "Y"},
		})
		req := httptest.NewRequest("PUT", "/polls/nonexistent", bytes.NewReader(body))
		req.SetPathValue("id", "nonexistent")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		w := httptest.NewRecorder()

		handler.UpdatePoll(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})

	t.Run("too few options rejected", func(t *testing.T) {
		body, _ := json.Marshal(models.UpdatePollRequest{
			Question: "Valid question?",
			Options:  []string{"Only"},
		})
		req := httptest.NewRequest("PUT", "/polls/"+pollID, bytes.NewReader(body))
		req.SetPathValue("id", pollID)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		w := httptest.NewRecorder()

		handler.UpdatePoll(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}

func TestDeletePoll(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	handler := NewPollHandler(db, cfg, cache.New(30*time.Second))

	ownerID := testutil.CreateTestUser(t, db, "owner@example.com", "Abcdef1!")
	ownerToken := testutil.CreateTestSession(t, db, ownerID)
	otherID := testutil.CreateTestUser(t, db, "other@example.com", "Abcdef1!")
	otherToken := testutil.CreateTestSession(t, db, otherID)

	pollID := testutil.CreateTestPoll(t, db, ownerID, false, false)
	testutil.AddTestOptions(t, db, pollID, "A", "B")
	testutil.CastTestVote(t, db, pollID, "", 0)
	testutil.CastTestVote(t, db, pollID, otherID, 1)

	t.Run("non-owner is forbidden", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/polls/"+pollID, nil)
		req.SetPathValue("id", pollID)
		req.Header.Set("Authorization", "Bearer "+otherToken)
		w := httptest.NewRecorder()

		handler.DeletePoll(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("Expected status %d, got %d. Body: %s", http.StatusForbidden, w.Code, w.Body.String())
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM poll WHERE id = $1", pollID).Scan(&count); err != nil {
			t.Fatalf("Failed to count polls: %v", err)
		}
		if count != 1 {
			t.Error("Poll was deleted by a non-owner")
		}
	})

	t.Run("anonymous caller gets 401", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/polls/"+pollID, nil)
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()

		handler.DeletePoll(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})

	t.Run("owner deletes poll and dependents", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/polls/"+pollID, nil)
		req.SetPathValue("id", pollID)
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		w := httptest.NewRecorder()

		handler.DeletePoll(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d. Body: %s", http.StatusOK, w.Code, w.Body.String())
		}

		// Options and votes cascade with the poll
		var polls, options, votes int
		if err := db.QueryRow("SELECT COUNT(*) FROM poll WHERE id = $1", pollID).Scan(&polls); err != nil {
			t.Fatalf("Failed to count polls: %v", err)
		}
		if err := db.QueryRow("SELECT COUNT(*) FROM poll_option WHERE poll_id = $1", pollID).Scan(&options); err != nil {
			t.Fatalf("Failed to count options: %v", err)
		}
		if err := db.QueryRow("SELECT COUNT(*) FROM vote WHERE poll_id = $1", pollID).Scan(&votes); err != nil {
			t.Fatalf("Failed to count votes: %v", err)
		}
		if polls != 0 || options != 0 || votes != 0 {
			t.Errorf("Expected cascade delete, got %d polls, %d options, %d votes", polls, options, votes)
		}
	})

	t.Run("missing poll gets 404", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/polls/"+pollID, nil)
		req.SetPathValue("id", pollID)
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		w := httptest.NewRecorder()

		handler.DeletePoll(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}
