package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCodePurposeValid(t *testing.T) {
	assert.True(t, CodePurposeLogin.Valid())
	assert.True(t, CodePurposeSignup.Valid())
	assert.False(t, CodePurpose("").Valid())
	assert.False(t, CodePurpose("LOGIN").Valid())
}

func TestExpired(t *testing.T) {
	expiresAt := time.Date(2026, 3, 10, 9, 10, 0, 0, time.UTC)
	code := VerificationCode{ExpiresAt: expiresAt}
	link := MagicLink{ExpiresAt: expiresAt}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "one second before", now: expiresAt.Add(-time.Second), want: false},
		{name: "at expiry", now: expiresAt, want: true},
		{name: "one second after", now: expiresAt.Add(time.Second), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, code.Expired(tt.now))
			assert.Equal(t, tt.want, link.Expired(tt.now))
		})
	}
}
