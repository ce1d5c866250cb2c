package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBodyFromHTML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "code.html"), []byte(`<p>{{.Code}}</p>`), 0o600))

	in := SendEmailInput{To: "a@example.com", Subject: "Code"}
	require.NoError(t, in.GenerateBodyFromHTML(dir, "code.html", struct{ Code string }{"012345"}))
	assert.Equal(t, "<p>012345</p>", in.Body)

	assert.Error(t, in.GenerateBodyFromHTML(dir, "missing.html", nil))
}

func TestSendEmailInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      SendEmailInput
		wantErr error
	}{
		{"ok", SendEmailInput{To: "a@example.com", Subject: "s", Body: "b"}, nil},
		{"empty to", SendEmailInput{Subject: "s", Body: "b"}, ErrEmptyRecipient},
		{"empty body", SendEmailInput{To: "a@example.com", Subject: "s"}, ErrEmptyContent},
		{"bad to", SendEmailInput{To: "not-an-email", Subject: "s", Body: "b"}, ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIsEmailValid(t *testing.T) {
	assert.True(t, IsEmailValid("ada@example.com"))
	assert.False(t, IsEmailValid("ada@"))
	assert.False(t, IsEmailValid(""))
	assert.False(t, IsEmailValid("a b@example.com"))
}
