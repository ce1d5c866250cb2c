package otp

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// Generator produces one-time codes and opaque link tokens.
type Generator interface {
	RandomCode(length int) (string, error)
	RandomToken() (string, error)
}

// TokenBytes is the amount of randomness behind a link token (256 bits).
const TokenBytes = 32

type CryptoGenerator struct {
	rand io.Reader
}

func NewCryptoGenerator() *CryptoGenerator {
	return &CryptoGenerator{rand: rand.Reader}
}

// RandomCode returns a uniformly distributed decimal code. Leading zeros are
// kept.
func (g *CryptoGenerator) RandomCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("code length must be positive")
	}

	code := make([]byte, length)
	ten := big.NewInt(10)
	for i := range code {
		n, err := rand.Int(g.rand, ten)
		if err != nil {
			return "", fmt.Errorf("read random digit: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}

	return string(code), nil
}

func (g *CryptoGenerator) RandomToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IsNumeric reports whether s is exactly length ASCII digits.
func IsNumeric(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
