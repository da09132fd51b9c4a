// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is portable across PostgreSQL and SQLite, which is why tests run the
real schema against an in-memory SQLite database.

# Tables

The schema includes:

  - account: registered users (bcrypt password hash at rest)
  - session: bearer sessions stored by SHA-256 token digest
  - poll: question plus per-poll policy flags
  - poll_option: ordered option labels per poll
  - vote: immutable votes, anonymous rows carry a NULL voter_id

# Relationships

	account 1──* session
	account 1──* poll
	poll    1──* poll_option
	poll    1──* vote
	account 1──* vote (optional: anonymous votes have no account)

All foreign keys use ON DELETE CASCADE.

# Indexes

	account.email (unique)
	session.token_hash (unique)
	session.account_id
	poll.owner_id
	vote.poll_id
	vote.(poll_id, voter_id)

There is deliberately no unique index on vote.(poll_id, voter_id): polls with
allow_multiple permit repeat votes from one account, so single-vote polls
enforce cardinality with a conditional insert instead (see handlers).
*/
package db
