// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest: email, password, display_name
  - LoginRequest: email, password
  - CreatePollRequest: question, options, settings
  - UpdatePollRequest: question, options
  - SubmitVoteRequest: option_index

# Response Types

Types for JSON responses:

  - RegisterResponse: user_id, token
  - LoginResponse: user_id, display_name, token
  - CreatePollResponse: poll_id
  - ListPollsResponse: polls, message
  - SubmitVoteResponse: vote_id
  - PollResultsResponse: poll_id, question, total_votes, results
  - ErrorResponse: error, message
  - ValidationErrorResponse: error, message, fields

# Domain Types

Internal data structures:

  - User: account record (password hash never serialized)
  - Session: bearer session (token hash never serialized)
  - Identity: the caller resolved for the current request
  - Poll: question, ordered option labels, policy settings
  - PollSettings: require_auth and allow_multiple flags
  - Vote: immutable vote row (ip hash and user agent never serialized)

# Identity

Identity's zero value is the anonymous caller:

	ident := handlers.ResolveIdentity(db, r)
	if ident.Anonymous() {
		// no authenticated user on this request
	}

# Fixed Messages

Caller-facing failure text is drawn from the Msg constants so that store and
provider error detail never leaks through the API boundary:

	MsgInvalidCredentials = "Invalid credentials."
	MsgPollNotFound       = "Poll not found or an error occurred."
	MsgAlreadyVoted       = "You have already voted in this poll."
*/
package models
