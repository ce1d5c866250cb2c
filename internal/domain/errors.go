package domain

import "errors"

// Store-level sentinels. Repositories return these unwrapped or wrapped with
// %w; services translate them into their own errors.
var (
	// ErrDuplicateEntry is a unique key violation, e.g. a second identity for one email.
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrNotFound       = errors.New("not found")
	// ErrNoRowsAffected marks a lost race on a conditional update.
	ErrNoRowsAffected = errors.New("no rows affected")
)
