package service

import "context"

//go:generate mockgen -source=interfaces.go -destination=./service_mock.go -package=service

// SessionStore is the replay guard of a single session. Get reports false
// for absent keys.
type SessionStore interface {
	Get(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, outstanding bool) error
	// ConsumeIfPresent flips an outstanding key to consumed and reports
	// whether this call did it. Must be atomic per key.
	ConsumeIfPresent(ctx context.Context, key string) (bool, error)
}

type Recorder interface {
	ChallengeIssued(difficulty string)
	VerificationFinished(outcome string)
}
