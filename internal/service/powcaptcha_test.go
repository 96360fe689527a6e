package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
	"github.com/dayanaadylkhanova/powcaptcha/pkg/altcha"
	"go.uber.org/mock/gomock"
)

var testSecret = []byte("test-secret-please-change")

func loggerSilent() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// memSession is an in-memory SessionStore for a single session.
type memSession struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemSession() *memSession {
	return &memSession{keys: make(map[string]bool)}
}

func (s *memSession) Get(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memSession) Set(_ context.Context, key string, outstanding bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = outstanding
	return nil
}

func (s *memSession) ConsumeIfPresent(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.keys[key] {
		return false, nil
	}
	s.keys[key] = false
	return true, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCaptcha(t *testing.T, d entity.Difficulty, extra ...Option) *PowCaptcha {
	t.Helper()
	p, err := NewPowCaptcha(loggerSilent(), Options{Difficulty: d, Secret: testSecret}, extra...)
	if err != nil {
		t.Fatalf("NewPowCaptcha() error: %v", err)
	}
	return p
}

func solve(t *testing.T, ch entity.Challenge) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	p, err := altcha.SolvePayload(ctx, ch, 0)
	if err != nil {
		t.Fatalf("SolvePayload() error: %v", err)
	}
	enc, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	return enc
}

func encodeJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return base64.StdEncoding.EncodeToString(b)
}

func challengeKeyOf(t *testing.T, ch entity.Challenge) string {
	t.Helper()
	params, err := altcha.ExtractParams(ch.Salt)
	if err != nil {
		t.Fatalf("ExtractParams() error: %v", err)
	}
	return params.Get(challengeKeyParam)
}

func TestNewPowCaptcha_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewPowCaptcha(loggerSilent(), Options{Difficulty: entity.Easy}); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("missing secret: error = %v; want ErrMissingSecret", err)
	}
	if _, err := NewPowCaptcha(loggerSilent(), Options{Secret: testSecret}); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("zero difficulty: error = %v; want ErrInvalidDifficulty", err)
	}
	if _, err := NewPowCaptcha(loggerSilent(), Options{Difficulty: entity.Custom(0), Secret: testSecret}); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("custom(0): error = %v; want ErrInvalidDifficulty", err)
	}

	p := newCaptcha(t, entity.Hard)
	if p.Name() != "powcaptcha" {
		t.Fatalf("Name() = %q; want powcaptcha", p.Name())
	}
	if p.Expiration() != DefaultExpiration {
		t.Fatalf("Expiration() = %v; want %v", p.Expiration(), DefaultExpiration)
	}
}

func TestIssueChallenge_MaxNumberPerTier(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		d    entity.Difficulty
		want int64
	}{
		{"easy", entity.Easy, 50000},
		{"moderate", entity.Moderate, 100000},
		{"hard", entity.Hard, 200000},
		{"custom", entity.Custom(777), 777},
		{"custom_default", entity.Custom(entity.DefaultCustomMaxNumber), 250000},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := newCaptcha(t, tc.d)
			ch, err := p.IssueChallenge(context.Background(), newMemSession())
			if err != nil {
				t.Fatalf("IssueChallenge() error: %v", err)
			}
			if ch.MaxNumber != tc.want {
				t.Fatalf("maxnumber = %d; want %d", ch.MaxNumber, tc.want)
			}
			if ch.Algorithm != string(altcha.SHA512) {
				t.Fatalf("algorithm = %q; want SHA-512", ch.Algorithm)
			}
		})
	}
}

func TestIssueChallenge_RegistersFreshKey(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Easy)
	sess := newMemSession()
	seen := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		ch, err := p.IssueChallenge(context.Background(), sess)
		if err != nil {
			t.Fatalf("IssueChallenge() error: %v", err)
		}
		key := challengeKeyOf(t, ch)
		if !validChallengeKey(key) {
			t.Fatalf("challenge key %q is not 32 lowercase hex chars", key)
		}
		if _, dup := seen[key]; dup {
			t.Fatalf("challenge key %q issued twice", key)
		}
		seen[key] = struct{}{}

		outstanding, _ := sess.Get(context.Background(), "powcaptcha."+key)
		if !outstanding {
			t.Fatalf("key %q not registered as outstanding", key)
		}
	}
}

func TestIssueChallenge_SaltCarriesExpiry(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	p := newCaptcha(t, entity.Easy, WithClock(clock.Now))

	ch, err := p.IssueChallenge(context.Background(), newMemSession())
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	params, err := altcha.ExtractParams(ch.Salt)
	if err != nil {
		t.Fatalf("ExtractParams() error: %v", err)
	}
	if got, want := params.Get("expires"), "1700000300"; got != want {
		t.Fatalf("expires = %s; want %s", got, want)
	}
}

func TestVerify_NeverIssuedKey(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Custom(2000))

	// решение валидное, но ключ выдан в другой сессии
	other := newMemSession()
	ch, err := p.IssueChallenge(context.Background(), other)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	code := solve(t, ch)

	err = p.Verify(context.Background(), newMemSession(), code)
	if !errors.Is(err, ErrUnknownOrConsumedKey) {
		t.Fatalf("Verify() error = %v; want ErrUnknownOrConsumedKey", err)
	}
}

func TestVerify_OnceThenReplay(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Custom(2000))
	sess := newMemSession()

	ch, err := p.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	code := solve(t, ch)

	if err := p.Verify(context.Background(), sess, code); err != nil {
		t.Fatalf("first Verify() error: %v", err)
	}
	if err := p.Verify(context.Background(), sess, code); !errors.Is(err, ErrUnknownOrConsumedKey) {
		t.Fatalf("replayed Verify() error = %v; want ErrUnknownOrConsumedKey", err)
	}
}

func TestVerify_AfterExpiry(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Now()}
	p := newCaptcha(t, entity.Custom(2000), WithClock(clock.Now))
	sess := newMemSession()

	ch, err := p.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	code := solve(t, ch)

	clock.Advance(DefaultExpiration + time.Second)

	err = p.Verify(context.Background(), sess, code)
	if !errors.Is(err, ErrCryptoVerification) || !errors.Is(err, altcha.ErrExpired) {
		t.Fatalf("Verify() error = %v; want expired crypto failure", err)
	}
	// неуспешная проверка не должна сжигать ключ
	if outstanding, _ := sess.Get(context.Background(), "powcaptcha."+challengeKeyOf(t, ch)); !outstanding {
		t.Fatalf("key consumed by a failed verification")
	}
}

func TestVerify_ExactlyAtExpiryIsAccepted(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	p := newCaptcha(t, entity.Custom(2000), WithClock(clock.Now))
	sess := newMemSession()

	ch, err := p.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	code := solve(t, ch)

	clock.Advance(DefaultExpiration)
	if err := p.Verify(context.Background(), sess, code); err != nil {
		t.Fatalf("Verify() at expiry second error: %v", err)
	}
}

func TestVerify_Tampering(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Custom(2000))

	issue := func(t *testing.T) (*memSession, altcha.Payload) {
		t.Helper()
		sess := newMemSession()
		ch, err := p.IssueChallenge(context.Background(), sess)
		if err != nil {
			t.Fatalf("IssueChallenge() error: %v", err)
		}
		payload, err := altcha.DecodePayload(solve(t, ch))
		if err != nil {
			t.Fatalf("DecodePayload() error: %v", err)
		}
		return sess, payload
	}

	cases := []struct {
		name   string
		mutate func(pl *altcha.Payload)
	}{
		{"salt_prefix", func(pl *altcha.Payload) {
			b := []byte(pl.Salt)
			if b[0] == 'a' {
				b[0] = 'b'
			} else {
				b[0] = 'a'
			}
			pl.Salt = string(b)
		}},
		{"salt_expires", func(pl *altcha.Payload) {
			pl.Salt = strings.Replace(pl.Salt, "expires=", "expires=9", 1)
		}},
		{"number", func(pl *altcha.Payload) { pl.Number++ }},
		{"algorithm_downgrade", func(pl *altcha.Payload) { pl.Algorithm = string(altcha.SHA256) }},
		{"algorithm_unknown", func(pl *altcha.Payload) { pl.Algorithm = "MD5" }},
		{"challenge", func(pl *altcha.Payload) { pl.Challenge = strings.Repeat("0", len(pl.Challenge)) }},
		{"signature", func(pl *altcha.Payload) { pl.Signature = strings.Repeat("f", len(pl.Signature)) }},
		{"signature_empty", func(pl *altcha.Payload) { pl.Signature = "" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sess, payload := issue(t)
			tc.mutate(&payload)
			code, err := payload.Encode()
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if p.CheckAnswer(context.Background(), sess, code) {
				t.Fatalf("CheckAnswer() = true for tampered %s", tc.name)
			}
		})
	}
}

func TestVerify_NumberBeyondConfiguredMax(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Custom(100))
	sess := newMemSession()

	// подписанный нашим ключом вызов с расширенным пространством поиска
	key := strings.Repeat("ab", challengeKeyBytes)
	number := int64(150)
	ch, err := altcha.CreateChallenge(altcha.ChallengeOptions{
		Algorithm: Algorithm,
		MaxNumber: 1000,
		Expires:   time.Now().Add(time.Minute),
		Params:    url.Values{challengeKeyParam: {key}},
		Number:    &number,
	}, p.hmacKey)
	if err != nil {
		t.Fatalf("CreateChallenge() error: %v", err)
	}
	_ = sess.Set(context.Background(), sessionKey(key), true)

	code := solve(t, ch)
	err = p.Verify(context.Background(), sess, code)
	if !errors.Is(err, ErrCryptoVerification) {
		t.Fatalf("Verify() error = %v; want ErrCryptoVerification", err)
	}
}

func TestVerify_ForeignSecret(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Custom(2000))
	forger, err := NewPowCaptcha(loggerSilent(), Options{Difficulty: entity.Custom(2000), Secret: []byte("another secret")})
	if err != nil {
		t.Fatalf("NewPowCaptcha() error: %v", err)
	}
	sess := newMemSession()
	ch, err := forger.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}

	err = p.Verify(context.Background(), sess, solve(t, ch))
	if !errors.Is(err, ErrCryptoVerification) || !errors.Is(err, altcha.ErrSignatureMismatch) {
		t.Fatalf("Verify() error = %v; want signature mismatch", err)
	}
}

func TestVerify_MalformedInputs(t *testing.T) {
	t.Parallel()

	validKey := strings.Repeat("0f", challengeKeyBytes)

	cases := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"empty", "", ErrDecode},
		{"not_base64", "%%%not-base64%%%", ErrDecode},
		{"base64_not_json", base64.StdEncoding.EncodeToString([]byte("hello")), ErrDecode},
		{"json_array", base64.StdEncoding.EncodeToString([]byte(`[1,2,3]`)), ErrDecode},
		{"json_null", base64.StdEncoding.EncodeToString([]byte(`null`)), ErrMalformedPayload},
		{"empty_object", base64.StdEncoding.EncodeToString([]byte(`{}`)), ErrMalformedPayload},
		{"missing_salt", encodeJSON(t, map[string]any{"algorithm": "SHA-512", "number": 1}), ErrMalformedPayload},
		{"salt_not_string", encodeJSON(t, map[string]any{"salt": 42}), ErrMalformedPayload},
		{"salt_without_key", encodeJSON(t, map[string]any{"salt": "abcd?expires=1"}), ErrMalformedPayload},
		{"salt_key_no_query", encodeJSON(t, map[string]any{"salt": "challengeKey=" + validKey}), ErrMalformedPayload},
		{"salt_bad_key", encodeJSON(t, map[string]any{"salt": "ab?challengeKey=XYZ"}), ErrMalformedPayload},
		{"salt_bad_escape", encodeJSON(t, map[string]any{"salt": "ab?challengeKey=%zz"}), ErrMalformedPayload},
		{"nested_object", encodeJSON(t, map[string]any{"salt": "ab?challengeKey=" + validKey, "extra": map[string]any{"a": 1}}), ErrMalformedPayload},
		{"nested_array", encodeJSON(t, map[string]any{"salt": "ab?challengeKey=" + validKey, "number": []int{1}}), ErrMalformedPayload},
		{"salt_case_duplicate", encodeJSON(t, map[string]any{"salt": "ab?challengeKey=" + validKey, "SALT": "cd?challengeKey=" + validKey}), ErrMalformedPayload},
		{"unknown_key", encodeJSON(t, map[string]any{"salt": "ab?challengeKey=" + validKey}), ErrUnknownOrConsumedKey},
	}

	p := newCaptcha(t, entity.Easy)
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sess := newMemSession()
			err := p.Verify(context.Background(), sess, tc.code)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Verify() error = %v; want %v", err, tc.wantErr)
			}
			if p.CheckAnswer(context.Background(), sess, tc.code) {
				t.Fatalf("CheckAnswer() = true for %s", tc.name)
			}
		})
	}
}

func TestVerify_WrongFieldTypes(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Easy)
	sess := newMemSession()
	ch, err := p.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	code := encodeJSON(t, map[string]any{"salt": ch.Salt, "number": "not a number"})

	if err := p.Verify(context.Background(), sess, code); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("Verify() error = %v; want ErrMalformedPayload", err)
	}
}

// Решённое доказательство не должно открывать чужой, нерешённый ключ
// через поле salt в другом регистре.
func TestVerify_SolvedProofCannotUnlockOtherKey(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Custom(2000))
	sess := newMemSession()

	solved, err := p.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	proof, err := altcha.DecodePayload(solve(t, solved))
	if err != nil {
		t.Fatalf("DecodePayload() error: %v", err)
	}
	if code, _ := proof.Encode(); p.Verify(context.Background(), sess, code) != nil {
		t.Fatal("first verification of the solved challenge failed")
	}

	for _, field := range []string{"SALT", "Salt", "sALT", "ſalt"} {
		field := field
		t.Run(field, func(t *testing.T) {
			t.Parallel()

			fresh, err := p.IssueChallenge(context.Background(), sess)
			if err != nil {
				t.Fatalf("IssueChallenge() error: %v", err)
			}
			// порядок важен: последнее совпадение выигрывает при разборе в структуру
			raw := fmt.Sprintf(`{"algorithm":%q,"challenge":%q,"number":%d,"signature":%q,"salt":%q,%q:%q}`,
				proof.Algorithm, proof.Challenge, proof.Number, proof.Signature,
				fresh.Salt, field, proof.Salt)
			code := base64.StdEncoding.EncodeToString([]byte(raw))

			if err := p.Verify(context.Background(), sess, code); !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("Verify() error = %v; want ErrMalformedPayload", err)
			}
			if ok, _ := sess.Get(context.Background(), sessionKey(challengeKeyOf(t, fresh))); !ok {
				t.Fatal("unsolved key was consumed")
			}
		})
	}

	// ключ берётся из того же salt, что и доказательство
	fresh, err := p.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	code := encodeJSON(t, map[string]any{
		"algorithm": proof.Algorithm,
		"challenge": proof.Challenge,
		"number":    proof.Number,
		"salt":      proof.Salt,
		"signature": proof.Signature,
	})
	if err := p.Verify(context.Background(), sess, code); !errors.Is(err, ErrUnknownOrConsumedKey) {
		t.Fatalf("replayed proof error = %v; want ErrUnknownOrConsumedKey", err)
	}
	if ok, _ := sess.Get(context.Background(), sessionKey(challengeKeyOf(t, fresh))); !ok {
		t.Fatal("fresh key was consumed by a replayed proof")
	}
}

func TestEndToEnd_EasyTier(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Easy)
	sess := newMemSession()

	ch, err := p.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	if ch.MaxNumber != 50000 {
		t.Fatalf("maxnumber = %d; want 50000", ch.MaxNumber)
	}
	code := solve(t, ch)

	if !p.CheckAnswer(context.Background(), sess, code) {
		t.Fatalf("first CheckAnswer() = false; want true")
	}
	if p.CheckAnswer(context.Background(), sess, code) {
		t.Fatalf("second CheckAnswer() = true; want false")
	}
}

func TestVerify_ConcurrentSubmissionsSingleWinner(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Custom(2000))
	sess := newMemSession()
	ch, err := p.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	code := solve(t, ch)

	const N = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	wg.Add(N)
	for i := 0; i < N; i++ {
		go func() {
			defer wg.Done()
			if p.CheckAnswer(context.Background(), sess, code) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("winners = %d; want exactly 1", wins)
	}
}

func TestVerify_StoreInteractions_GoMock(t *testing.T) {
	t.Parallel()

	p := newCaptcha(t, entity.Custom(2000))

	// реальный ключ и решение, чтобы дойти до нужного шага
	seed := newMemSession()
	ch, err := p.IssueChallenge(context.Background(), seed)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	code := solve(t, ch)
	sk := sessionKey(challengeKeyOf(t, ch))

	badProof, err := altcha.DecodePayload(code)
	if err != nil {
		t.Fatalf("DecodePayload() error: %v", err)
	}
	badProof.Number++
	badCode, _ := badProof.Encode()

	storeErr := errors.New("store down")

	cases := []struct {
		name    string
		code    string
		setup   func(m *MockSessionStore)
		wantErr error
	}{
		{
			name: "unknown_key_skips_crypto_and_consume",
			code: code,
			setup: func(m *MockSessionStore) {
				m.EXPECT().Get(gomock.Any(), sk).Return(false, nil)
			},
			wantErr: ErrUnknownOrConsumedKey,
		},
		{
			name: "bad_proof_does_not_consume",
			code: badCode,
			setup: func(m *MockSessionStore) {
				m.EXPECT().Get(gomock.Any(), sk).Return(true, nil)
			},
			wantErr: ErrCryptoVerification,
		},
		{
			name: "consume_after_check",
			code: code,
			setup: func(m *MockSessionStore) {
				gomock.InOrder(
					m.EXPECT().Get(gomock.Any(), sk).Return(true, nil),
					m.EXPECT().ConsumeIfPresent(gomock.Any(), sk).Return(true, nil),
				)
			},
		},
		{
			name: "lost_consume_race",
			code: code,
			setup: func(m *MockSessionStore) {
				gomock.InOrder(
					m.EXPECT().Get(gomock.Any(), sk).Return(true, nil),
					m.EXPECT().ConsumeIfPresent(gomock.Any(), sk).Return(false, nil),
				)
			},
			wantErr: ErrUnknownOrConsumedKey,
		},
		{
			name: "get_failure",
			code: code,
			setup: func(m *MockSessionStore) {
				m.EXPECT().Get(gomock.Any(), sk).Return(false, storeErr)
			},
			wantErr: ErrSessionUnavailable,
		},
		{
			name: "consume_failure",
			code: code,
			setup: func(m *MockSessionStore) {
				m.EXPECT().Get(gomock.Any(), sk).Return(true, nil)
				m.EXPECT().ConsumeIfPresent(gomock.Any(), sk).Return(false, storeErr)
			},
			wantErr: ErrSessionUnavailable,
		},
		{
			name:    "decode_failure_never_touches_store",
			code:    "!!!",
			setup:   func(m *MockSessionStore) {},
			wantErr: ErrDecode,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := NewMockSessionStore(ctrl)
			tc.setup(m)

			err := p.Verify(context.Background(), m, tc.code)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Verify() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Verify() error = %v; want %v", err, tc.wantErr)
			}
		})
	}
}

func TestIssueChallenge_StoreFailure_GoMock(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := NewMockSessionStore(ctrl)
	m.EXPECT().Set(gomock.Any(), gomock.Any(), true).Return(errors.New("etcd unavailable"))

	p := newCaptcha(t, entity.Easy)
	if _, err := p.IssueChallenge(context.Background(), m); !errors.Is(err, ErrSessionUnavailable) {
		t.Fatalf("IssueChallenge() error = %v; want ErrSessionUnavailable", err)
	}
	if _, err := p.IssueChallenge(context.Background(), nil); !errors.Is(err, ErrSessionUnavailable) {
		t.Fatalf("IssueChallenge(nil) error = %v; want ErrSessionUnavailable", err)
	}
}

func TestCheckAnswer_RecordsOutcome_GoMock(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := NewMockRecorder(ctrl)
	p := newCaptcha(t, entity.Custom(2000), WithRecorder(rec))
	sess := newMemSession()

	gomock.InOrder(
		rec.EXPECT().ChallengeIssued("custom"),
		rec.EXPECT().VerificationFinished(OutcomeVerified),
		rec.EXPECT().VerificationFinished(OutcomeUnknownOrConsumed),
		rec.EXPECT().VerificationFinished(OutcomeDecodeError),
	)

	ch, err := p.IssueChallenge(context.Background(), sess)
	if err != nil {
		t.Fatalf("IssueChallenge() error: %v", err)
	}
	code := solve(t, ch)
	p.CheckAnswer(context.Background(), sess, code)
	p.CheckAnswer(context.Background(), sess, code)
	p.CheckAnswer(context.Background(), sess, "@@")
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		OutcomeVerified:           nil,
		OutcomeDecodeError:        ErrDecode,
		OutcomeMalformedPayload:   ErrMalformedPayload,
		OutcomeUnknownOrConsumed:  ErrUnknownOrConsumedKey,
		OutcomeCryptoFailure:      errors.Join(ErrCryptoVerification, altcha.ErrExpired),
		OutcomeSessionUnavailable: ErrSessionUnavailable,
		OutcomeInternal:           errors.New("other"),
	}
	for want, err := range cases {
		if got := Outcome(err); got != want {
			t.Fatalf("Outcome(%v) = %q; want %q", err, got, want)
		}
	}
}
