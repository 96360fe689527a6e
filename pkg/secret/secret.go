// Package secret derives purpose-bound subkeys from the operator supplied
// captcha secret.
package secret

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	KeyLength = 32

	PurposeChallengeSignature = "powcaptcha/challenge-signature/v1"
	PurposeFormToken          = "powcaptcha/form-token/v1"
)

var ErrEmpty = errors.New("secret is empty")

// Derive expands the secret into a KeyLength key bound to purpose using
// HKDF-SHA256.
func Derive(secret []byte, purpose string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmpty
	}
	r := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	key := make([]byte, KeyLength)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}
