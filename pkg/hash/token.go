package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// TokenHasher provides hashing logic to store link tokens without keeping the
// raw value.
type TokenHasher interface {
	Hash(token string) string
}

// SHA256Hasher keys SHA256 with the provided salt (HMAC-SHA256).
type SHA256Hasher struct {
	salt []byte
}

func NewSHA256Hasher(salt string) *SHA256Hasher {
	return &SHA256Hasher{salt: []byte(salt)}
}

// Hash returns the hex encoded HMAC of token.
func (h *SHA256Hasher) Hash(token string) string {
	mac := hmac.New(sha256.New, h.salt)
	mac.Write([]byte(token))

	return hex.EncodeToString(mac.Sum(nil))
}
