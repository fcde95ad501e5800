// Package signature verifies GitHub webhook signatures.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// Prefix is the transport convention GitHub uses for the signature header.
const Prefix = "sha256="

var (
	// ErrNoSecret means no shared secret is configured. Verification fails
	// closed; unauthenticated mode is an explicit caller opt-in.
	ErrNoSecret = errors.New("no signing secret configured")
	// ErrMissingSignature means the request carried no signature header.
	ErrMissingSignature = errors.New("missing signature")
	// ErrInvalidSignature means the signature did not match the body.
	ErrInvalidSignature = errors.New("invalid signature")
)

func Hmac(secret string, body []byte) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return h.Sum(nil)
}

// Sign computes the signature header value for body.
func Sign(secret string, body []byte) string {
	return Prefix + hex.EncodeToString(Hmac(secret, body))
}

// Verify checks signature against the HMAC-SHA256 of the raw body. body must
// be the exact transmitted bytes, read before any parsing. The comparison is
// constant time.
func Verify(body []byte, signature string, secret string) error {
	if secret == "" {
		return ErrNoSecret
	}
	if signature == "" {
		return ErrMissingSignature
	}
	expected := Sign(secret, body)
	if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}
