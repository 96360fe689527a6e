package secret

import (
	"bytes"
	"errors"
	"testing"
)

func TestDerive_DeterministicAndPurposeBound(t *testing.T) {
	t.Parallel()

	s := []byte("correct horse battery staple")

	a1, err := Derive(s, PurposeChallengeSignature)
	if err != nil {
		t.Fatalf("Derive() error: %v", err)
	}
	a2, _ := Derive(s, PurposeChallengeSignature)
	b, _ := Derive(s, PurposeFormToken)

	if len(a1) != KeyLength {
		t.Fatalf("len = %d; want %d", len(a1), KeyLength)
	}
	if !bytes.Equal(a1, a2) {
		t.Fatal("same secret and purpose must give the same key")
	}
	if bytes.Equal(a1, b) {
		t.Fatal("different purposes must give different keys")
	}
}

func TestDerive_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := Derive(nil, PurposeFormToken); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Derive(nil) error = %v; want ErrEmpty", err)
	}
}
