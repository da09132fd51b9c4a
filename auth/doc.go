// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential, token, and validation utilities.

# Session Tokens

Session tokens are random 32-byte (256-bit) secrets:

	token, err := auth.GenerateSessionToken()

Tokens are URL-safe base64 encoded and presented as Authorization bearer
tokens. Only the SHA-256 digest is stored:

	hash := auth.HashSessionToken(token)

ValidateSessionToken rejects malformed tokens before any lookup.

# Passwords

Passwords are hashed with bcrypt and never stored raw:

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

ValidatePassword reports every complexity rule a candidate fails:

	unmet := auth.ValidatePassword("abc")
	// [RuleMinLength, RuleUppercase, RuleNumber, RuleSpecial]

# Registration Input

Email and display name validation return message lists in the same shape:

	auth.ValidateEmail(email)
	auth.ValidateDisplayName(name)

NormalizeEmail lowercases and trims so the unique index sees one form.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving abuse forensics on vote rows:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
