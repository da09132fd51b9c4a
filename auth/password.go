// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/mail"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Complexity rules reported by ValidatePassword, in evaluation order.
const (
	RuleMinLength = "must be at least 8 characters long"
	RuleMaxLength = "must be at most 72 characters long"
	RuleUppercase = "must contain at least one uppercase letter"
	RuleLowercase = "must contain at least one lowercase letter"
	RuleNumber    = "must contain at least one number"
	RuleSpecial   = "must contain at least one special character"
)

// HashPassword derives a bcrypt hash for storage. Raw passwords are never
// persisted.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword returns the list of complexity rules the password fails to
// meet. An empty slice means the password is acceptable.
func ValidatePassword(password string) []string {
	var unmet []string

	if len(password) < 8 {
		unmet = append(unmet, RuleMinLength)
	}
	// bcrypt truncates input beyond 72 bytes
	if len(password) > 72 {
		unmet = append(unmet, RuleMaxLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsNumber(c):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper {
		unmet = append(unmet, RuleUppercase)
	}
	if !hasLower {
		unmet = append(unmet, RuleLowercase)
	}
	if !hasNumber {
		unmet = append(unmet, RuleNumber)
	}
	if !hasSpecial {
		unmet = append(unmet, RuleSpecial)
	}

	return unmet
}

// NormalizeEmail lowercases and trims an email address so lookups and the
// unique index see one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail returns validation messages for an email address. An empty
// slice means the address is acceptable.
func ValidateEmail(email string) []string {
	email = strings.TrimSpace(email)
	if email == "" {
		return []string{"is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return []string{"must be a valid email address"}
	}
	return nil
}

// ValidateDisplayName returns validation messages for a display name. An
// empty slice means the name is acceptable.
func ValidateDisplayName(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return []string{"is required"}
	}
	if len(name) < 2 || len(name) > 50 {
		return []string{"must be 2-50 characters"}
	}
	return nil
}
