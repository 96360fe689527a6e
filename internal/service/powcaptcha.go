package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
	"github.com/dayanaadylkhanova/powcaptcha/pkg/altcha"
	"github.com/dayanaadylkhanova/powcaptcha/pkg/secret"
)

const (
	Name = "powcaptcha"

	DefaultExpiration = 300 * time.Second
	Algorithm         = altcha.SHA512

	challengeKeyParam  = "challengeKey"
	challengeKeyMarker = challengeKeyParam + "="
	sessionKeyPrefix   = Name + "."
	challengeKeyBytes  = 16
	maxPayloadFields   = 16
)

type Options struct {
	Difficulty entity.Difficulty
	Expiration time.Duration
	Secret     []byte
}

type Option func(*PowCaptcha)

func WithClock(now func() time.Time) Option {
	return func(p *PowCaptcha) { p.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(p *PowCaptcha) { p.rec = r }
}

func WithEntropy(r io.Reader) Option {
	return func(p *PowCaptcha) { p.entropy = r }
}

type PowCaptcha struct {
	log        *slog.Logger
	difficulty entity.Difficulty
	expiration time.Duration
	hmacKey    []byte
	now        func() time.Time
	rec        Recorder
	entropy    io.Reader
}

func NewPowCaptcha(log *slog.Logger, opts Options, extra ...Option) (*PowCaptcha, error) {
	if len(opts.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if !opts.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDifficulty, opts.Difficulty)
	}
	if opts.Expiration <= 0 {
		opts.Expiration = DefaultExpiration
	}
	key, err := secret.Derive(opts.Secret, secret.PurposeChallengeSignature)
	if err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	p := &PowCaptcha{
		log:        log,
		difficulty: opts.Difficulty,
		expiration: opts.Expiration,
		hmacKey:    key,
		now:        time.Now,
		rec:        nopRecorder{},
		entropy:    rand.Reader,
	}
	for _, o := range extra {
		o(p)
	}
	return p, nil
}

func (p *PowCaptcha) Name() string { return Name }

func (p *PowCaptcha) Difficulty() entity.Difficulty { return p.difficulty }

func (p *PowCaptcha) Expiration() time.Duration { return p.expiration }

// IssueChallenge registers a fresh one-time key in sess and returns a
// signed challenge embedding it.
func (p *PowCaptcha) IssueChallenge(ctx context.Context, sess SessionStore) (entity.Challenge, error) {
	if sess == nil {
		return entity.Challenge{}, fmt.Errorf("%w: no session", ErrSessionUnavailable)
	}
	expires := p.now().Add(p.expiration)

	key, err := p.newChallengeKey()
	if err != nil {
		return entity.Challenge{}, fmt.Errorf("challenge key: %w", err)
	}
	if err := sess.Set(ctx, sessionKey(key), true); err != nil {
		return entity.Challenge{}, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	ch, err := altcha.CreateChallenge(altcha.ChallengeOptions{
		Algorithm: Algorithm,
		MaxNumber: p.difficulty.MaxNumber(),
		Expires:   expires,
		Params:    url.Values{challengeKeyParam: {key}},
	}, p.hmacKey)
	if err != nil {
		return entity.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}

	p.rec.ChallengeIssued(p.difficulty.Tier().String())
	p.log.Debug("challenge issued",
		"difficulty", p.difficulty.String(),
		"maxnumber", ch.MaxNumber,
		"expires", expires.Unix(),
	)
	return ch, nil
}

// CheckAnswer reports whether code is a valid, unused solution for a
// challenge issued to sess. Every failure collapses to false.
func (p *PowCaptcha) CheckAnswer(ctx context.Context, sess SessionStore, code string) bool {
	err := p.Verify(ctx, sess, code)
	outcome := Outcome(err)
	p.rec.VerificationFinished(outcome)

	switch {
	case err == nil:
		p.log.Debug("solution verified")
	case errors.Is(err, ErrUnknownOrConsumedKey):
		p.log.Warn("solution rejected: possible replay", "outcome", outcome, "reason", err.Error())
	case errors.Is(err, ErrSessionUnavailable):
		p.log.Error("solution rejected: session store failure", "err", err)
	default:
		p.log.Debug("solution rejected", "outcome", outcome, "reason", err.Error())
	}
	return err == nil
}

// Verify runs the verification pipeline and returns the first failure.
// The one-time key is checked before any hashing and consumed only after
// the proof has been accepted.
func (p *PowCaptcha) Verify(ctx context.Context, sess SessionStore, code string) error {
	if sess == nil {
		return fmt.Errorf("%w: no session", ErrSessionUnavailable)
	}

	decoded, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	if len(decoded) == 0 {
		return fmt.Errorf("%w: empty payload", ErrDecode)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(decoded, &fields); err != nil {
		return fmt.Errorf("%w: json: %v", ErrDecode, err)
	}
	if err := checkFields(fields); err != nil {
		return err
	}

	// The guard key and the proof must come from the same salt.
	var payload altcha.Payload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	key, err := challengeKeyFromSalt(payload.Salt)
	if err != nil {
		return err
	}

	outstanding, err := sess.Get(ctx, sessionKey(key))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	if !outstanding {
		return ErrUnknownOrConsumedKey
	}

	if err := p.verifyProof(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrCryptoVerification, err)
	}

	consumed, err := sess.ConsumeIfPresent(ctx, sessionKey(key))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	if !consumed {
		return ErrUnknownOrConsumedKey
	}
	return nil
}

func (p *PowCaptcha) verifyProof(payload altcha.Payload) error {
	if altcha.Algorithm(payload.Algorithm) != Algorithm {
		return fmt.Errorf("%w: %q", altcha.ErrUnsupportedAlgorithm, payload.Algorithm)
	}
	if payload.Number < 0 || payload.Number > p.difficulty.MaxNumber() {
		return fmt.Errorf("%w: number %d outside [0, %d]", altcha.ErrChallengeMismatch, payload.Number, p.difficulty.MaxNumber())
	}

	params, err := altcha.ExtractParams(payload.Salt)
	if err != nil {
		return fmt.Errorf("%w: %v", altcha.ErrMalformed, err)
	}
	raw := params.Get(altcha.ParamExpires)
	if raw == "" {
		return fmt.Errorf("%w: salt carries no expiry", altcha.ErrMalformed)
	}
	expires, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: expires: %v", altcha.ErrMalformed, err)
	}
	now := p.now()
	if now.Unix() > expires {
		return altcha.ErrExpired
	}

	return altcha.VerifyPayload(payload, p.hmacKey, now)
}

func (p *PowCaptcha) newChallengeKey() (string, error) {
	b := make([]byte, challengeKeyBytes)
	if _, err := io.ReadFull(p.entropy, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// checkFields accepts a non-empty flat object. Field names that differ
// only in case are rejected since the decoder would merge them.
func checkFields(fields map[string]json.RawMessage) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty object", ErrMalformedPayload)
	}
	if len(fields) > maxPayloadFields {
		return fmt.Errorf("%w: %d fields", ErrMalformedPayload, len(fields))
	}
	names := make([]string, 0, len(fields))
	for name, raw := range fields {
		if v := bytes.TrimSpace(raw); len(v) > 0 && (v[0] == '{' || v[0] == '[') {
			return fmt.Errorf("%w: field %q is not a scalar", ErrMalformedPayload, name)
		}
		for _, seen := range names {
			if strings.EqualFold(seen, name) {
				return fmt.Errorf("%w: duplicate field %q", ErrMalformedPayload, name)
			}
		}
		names = append(names, name)
	}
	return nil
}

func challengeKeyFromSalt(salt string) (string, error) {
	if !strings.Contains(salt, challengeKeyMarker) {
		return "", fmt.Errorf("%w: salt has no challenge key", ErrMalformedPayload)
	}
	_, query, found := strings.Cut(salt, "?")
	if !found {
		return "", fmt.Errorf("%w: salt has no params", ErrMalformedPayload)
	}
	params, err := url.ParseQuery(query)
	if err != nil {
		return "", fmt.Errorf("%w: salt params: %v", ErrMalformedPayload, err)
	}
	key := params.Get(challengeKeyParam)
	if !validChallengeKey(key) {
		return "", fmt.Errorf("%w: bad challenge key %q", ErrMalformedPayload, key)
	}
	return key, nil
}

func validChallengeKey(key string) bool {
	if len(key) != challengeKeyBytes*2 {
		return false
	}
	for _, c := range key {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func sessionKey(challengeKey string) string {
	return sessionKeyPrefix + challengeKey
}

type nopRecorder struct{}

func (nopRecorder) ChallengeIssued(string)      {}
func (nopRecorder) VerificationFinished(string) {}
