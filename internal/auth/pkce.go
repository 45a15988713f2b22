package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// newVerifier returns a fresh PKCE code verifier: random bytes encoded
// URL-safe without padding.
func newVerifier() (string, error) {
	return randomToken(16)
}

// newNonce returns the per-request nonce for the authorization URL.
func newNonce() (string, error) {
	return randomToken(32)
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// codeChallenge derives the S256 code challenge from a verifier:
// URL-safe base64 of the SHA-256 digest, no padding.
func codeChallenge(verifier string) string {
	digest := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}
