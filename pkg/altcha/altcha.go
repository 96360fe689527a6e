// Package altcha implements the ALTCHA proof-of-work challenge format:
// challenge creation, solution payload encoding and verification.
package altcha

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Algorithm string

const (
	SHA1   Algorithm = "SHA-1"
	SHA256 Algorithm = "SHA-256"
	SHA512 Algorithm = "SHA-512"
)

const (
	DefaultMaxNumber  int64 = 1_000_000
	DefaultSaltLength       = 12

	ParamExpires = "expires"
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrMalformed            = errors.New("malformed payload")
	ErrExpired              = errors.New("challenge expired")
	ErrChallengeMismatch    = errors.New("challenge mismatch")
	ErrSignatureMismatch    = errors.New("signature mismatch")
)

func (a Algorithm) hasher() (func() hash.Hash, error) {
	switch a {
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(a))
	}
}

// Challenge is the object handed to the client widget.
type Challenge struct {
	Algorithm string `json:"algorithm"`
	Challenge string `json:"challenge"`
	MaxNumber int64  `json:"maxnumber"`
	Salt      string `json:"salt"`
	Signature string `json:"signature"`
}

// Payload is the solved challenge as submitted back by the client.
type Payload struct {
	Algorithm string `json:"algorithm"`
	Challenge string `json:"challenge"`
	Number    int64  `json:"number"`
	Salt      string `json:"salt"`
	Signature string `json:"signature"`
	Took      int64  `json:"took,omitempty"`
}

type ChallengeOptions struct {
	Algorithm  Algorithm
	MaxNumber  int64
	SaltLength int
	Expires    time.Time
	Params     url.Values

	// Number fixes the secret number instead of drawing it at random.
	Number *int64
}

// CreateChallenge builds and signs a new challenge. Expiry and params are
// appended to the salt as a query string, so they are covered by the
// signature.
func CreateChallenge(opts ChallengeOptions, hmacKey []byte) (Challenge, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = SHA256
	}
	if opts.MaxNumber <= 0 {
		opts.MaxNumber = DefaultMaxNumber
	}
	if opts.SaltLength <= 0 {
		opts.SaltLength = DefaultSaltLength
	}

	raw := make([]byte, opts.SaltLength)
	if _, err := rand.Read(raw); err != nil {
		return Challenge{}, fmt.Errorf("salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	params := url.Values{}
	for k, vs := range opts.Params {
		params[k] = append([]string(nil), vs...)
	}
	if !opts.Expires.IsZero() {
		params.Set(ParamExpires, strconv.FormatInt(opts.Expires.Unix(), 10))
	}
	if len(params) > 0 {
		salt += "?" + params.Encode()
	}

	var number int64
	if opts.Number != nil {
		number = *opts.Number
	} else {
		n, err := rand.Int(rand.Reader, big.NewInt(opts.MaxNumber+1))
		if err != nil {
			return Challenge{}, fmt.Errorf("number: %w", err)
		}
		number = n.Int64()
	}

	target, err := HashChallenge(opts.Algorithm, salt, number)
	if err != nil {
		return Challenge{}, err
	}
	sig, err := Sign(opts.Algorithm, target, hmacKey)
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{
		Algorithm: string(opts.Algorithm),
		Challenge: target,
		MaxNumber: opts.MaxNumber,
		Salt:      salt,
		Signature: sig,
	}, nil
}

// HashChallenge returns hex(hash(salt || decimal(number))).
func HashChallenge(alg Algorithm, salt string, number int64) (string, error) {
	newHash, err := alg.hasher()
	if err != nil {
		return "", err
	}
	h := newHash()
	h.Write([]byte(salt))
	h.Write([]byte(strconv.FormatInt(number, 10)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Sign returns hex(HMAC(key, challenge)) using the challenge algorithm.
func Sign(alg Algorithm, challenge string, hmacKey []byte) (string, error) {
	newHash, err := alg.hasher()
	if err != nil {
		return "", err
	}
	mac := hmac.New(newHash, hmacKey)
	mac.Write([]byte(challenge))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ExtractParams parses the query part of a salt. A salt without '?' has no
// params.
func ExtractParams(salt string) (url.Values, error) {
	_, query, found := strings.Cut(salt, "?")
	if !found {
		return url.Values{}, nil
	}
	return url.ParseQuery(query)
}

// Encode renders the payload the way the widget submits it: base64(JSON).
func (p Payload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodePayload reverses Encode.
func DecodePayload(encoded string) (Payload, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}

// VerifySolution decodes and verifies an encoded payload.
func VerifySolution(encoded string, hmacKey []byte, now time.Time) error {
	p, err := DecodePayload(encoded)
	if err != nil {
		return err
	}
	return VerifyPayload(p, hmacKey, now)
}

// VerifyPayload checks expiry (when the salt carries one), recomputes the
// target hash from salt and number, and compares both the target and its
// signature in constant time.
func VerifyPayload(p Payload, hmacKey []byte, now time.Time) error {
	alg := Algorithm(p.Algorithm)
	if _, err := alg.hasher(); err != nil {
		return err
	}
	if p.Salt == "" || p.Challenge == "" || p.Signature == "" {
		return ErrMalformed
	}

	params, err := ExtractParams(p.Salt)
	if err != nil {
		return fmt.Errorf("%w: salt params: %v", ErrMalformed, err)
	}
	if v := params.Get(ParamExpires); v != "" {
		expires, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: expires: %v", ErrMalformed, err)
		}
		if now.Unix() > expires {
			return ErrExpired
		}
	}

	target, err := HashChallenge(alg, p.Salt, p.Number)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(target), []byte(strings.ToLower(p.Challenge))) != 1 {
		return ErrChallengeMismatch
	}
	sig, err := Sign(alg, target, hmacKey)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(sig), []byte(strings.ToLower(p.Signature))) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}
