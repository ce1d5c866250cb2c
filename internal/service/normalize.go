package service

import (
	"strings"

	emailProvider "github.com/vibe-gaming/passwordless/pkg/email"
)

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailProvider.IsEmailValid(email) {
		return "", &ValidationError{Field: "email", Message: "must be a valid email address"}
	}

	return email, nil
}
