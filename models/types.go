package models

import "time"

// Fixed caller-facing messages. Store and provider errors are always replaced
// with one of these short generic strings; raw error text stays in the logs.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgPollNotFound       = "Poll not found or an error occurred."
	MsgAlreadyVoted       = "You have already voted in this poll."
	MsgCreatePollFailed   = "Failed to create poll."
	MsgUpdatePollFailed   = "Failed to update poll."
	MsgDeletePollFailed   = "Failed to delete poll."
	MsgSubmitVoteFailed   = "Failed to submit vote."
	MsgRegisterFailed     = "Failed to create account."
	MsgSignInRequired     = "You must be signed in."
)

// Request types

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreatePollRequest struct {
	Question string       `json:"question"`
	Options  []string     `json:"options"`
	Settings PollSettings `json:"settings"`
}

type UpdatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type SubmitVoteRequest struct {
	OptionIndex int `json:"option_index"`
}

// Response types

type RegisterResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type LoginResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type CreatePollResponse struct {
	PollID string `json:"poll_id"`
}

type UpdatePollResponse struct {
	Message string `json:"message"`
}

type DeletePollResponse struct {
	Message string `json:"message"`
}

// ListPollsResponse carries the caller's polls. Message is set instead of an
// error status when the caller is anonymous: an empty list is not a failure.
type ListPollsResponse struct {
	Polls   []Poll `json:"polls"`
	Message string `json:"message,omitempty"`
}

type SubmitVoteResponse struct {
	VoteID string `json:"vote_id"`
}

type PollResultsResponse struct {
	PollID   string        `json:"poll_id"`
	Question string        `json:"question"`
	Total    int           `json:"total_votes"`
	Results  []OptionCount `json:"results"`
}

type OptionCount struct {
	OptionIndex int    `json:"option_index"`
	Label       string `json:"label"`
	Votes       int    `json:"votes"`
}

// Domain types

// PollSettings are the per-poll policy flags. The zero value is the
// restrictive default: authentication not required, repeat votes not allowed.
type PollSettings struct {
	RequireAuth   bool `json:"require_auth"`
	AllowMultiple bool `json:"allow_multiple"`
}

type Poll struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Question  string       `json:"question"`
	Options   []string     `json:"options"`
	Settings  PollSettings `json:"settings"`
	CreatedAt time.Time    `json:"created_at"`
}

type Vote struct {
	ID          string    `json:"id"`
	PollID      string    `json:"poll_id"`
	VoterID     *string   `json:"voter_id,omitempty"` // nil for anonymous votes
	OptionIndex int       `json:"option_index"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
	CreatedAt   time.Time `json:"created_at"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Never expose in JSON
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the caller resolved for the current request. The zero value is
// the anonymous caller; handlers branch on Anonymous() instead of checking
// nullable fields.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Anonymous reports whether no authenticated user was resolved.
func (id Identity) Anonymous() bool {
	return id.UserID == ""
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ValidationErrorResponse is returned by registration only: Fields maps each
// input field to the list of rules it failed. All other errors use the plain
// ErrorResponse shape.
type ValidationErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Fields  map[string][]string `json:"fields"`
}
