package web

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/dayanaadylkhanova/powcaptcha/pkg/secret"
)

const tokenDomain = "powcaptcha/challenge-request"

// Tokens binds anti-forgery tokens to a session id with a keyed MAC, so
// nothing needs to be stored per token.
type Tokens struct {
	key []byte
}

func NewTokens(masterSecret []byte) (*Tokens, error) {
	key, err := secret.Derive(masterSecret, secret.PurposeFormToken)
	if err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	return &Tokens{key: key}, nil
}

func (t *Tokens) Issue(sessionID string) string {
	return hex.EncodeToString(t.mac(sessionID))
}

func (t *Tokens) Valid(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	got, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(t.mac(sessionID), got) == 1
}

func (t *Tokens) mac(sessionID string) []byte {
	mac, _ := blake2b.New256(t.key)
	mac.Write([]byte(tokenDomain))
	mac.Write([]byte(sessionID))
	return mac.Sum(nil)
}
