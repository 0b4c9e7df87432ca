package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// LegacyDefaultState is the fixed anti-forgery value the original
// LinkedInHelper SDK fell back to. A constant state defeats CSRF
// protection, so this helper never uses it on its own: when the caller
// passes no state a fresh random nonce is generated per attempt. The
// constant is only exported for callers that must interoperate with
// servers still expecting the legacy value.
const LegacyDefaultState = "DCEEFWF45453sdffef424"

// GenerateState returns a cryptographically random, URL-safe anti-forgery
// nonce. Single-use: the helper validates it on redirect and discards it.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
