package service

import "errors"

var (
	ErrMissingSecret     = errors.New("captcha secret is not configured")
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	ErrDecode               = errors.New("solution decode failed")
	ErrMalformedPayload     = errors.New("malformed solution payload")
	ErrUnknownOrConsumedKey = errors.New("challenge key unknown or already consumed")
	ErrCryptoVerification   = errors.New("solution verification failed")
	ErrSessionUnavailable   = errors.New("session store unavailable")
)

const (
	OutcomeVerified           = "verified"
	OutcomeDecodeError        = "decode_error"
	OutcomeMalformedPayload   = "malformed_payload"
	OutcomeUnknownOrConsumed  = "unknown_or_consumed_key"
	OutcomeCryptoFailure      = "crypto_failure"
	OutcomeSessionUnavailable = "session_unavailable"
	OutcomeInternal           = "internal"
)

// Outcome classifies a Verify error for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeVerified
	case errors.Is(err, ErrDecode):
		return OutcomeDecodeError
	case errors.Is(err, ErrMalformedPayload):
		return OutcomeMalformedPayload
	case errors.Is(err, ErrUnknownOrConsumedKey):
		return OutcomeUnknownOrConsumed
	case errors.Is(err, ErrCryptoVerification):
		return OutcomeCryptoFailure
	case errors.Is(err, ErrSessionUnavailable):
		return OutcomeSessionUnavailable
	default:
		return OutcomeInternal
	}
}
