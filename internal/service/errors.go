package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOrExpired deliberately does not say which of the two it was.
	ErrInvalidOrExpired      = errors.New("invalid or expired credential")
	ErrDeliveryFailure       = errors.New("email delivery failed")
	ErrIdentityNotFound      = errors.New("identity not found")
	ErrIdentityAlreadyExists = errors.New("identity already exists")
	ErrSessionExpired        = errors.New("session expired")
	ErrSessionInvalid        = errors.New("session invalid")
)

// ValidationError is a user correctable input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type LimitReason string

const (
	LimitReasonCeiling  LimitReason = "ceiling"
	LimitReasonCooldown LimitReason = "cooldown"
	LimitReasonLocked   LimitReason = "locked"
)

// RateLimitedError carries the whole minutes the caller has to wait.
type RateLimitedError struct {
	CooldownMinutes int
	Reason          LimitReason
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (%s), retry in %d min", e.Reason, e.CooldownMinutes)
}
