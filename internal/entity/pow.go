package entity

import "github.com/dayanaadylkhanova/powcaptcha/pkg/altcha"

// Challenge is what the server hands out over every transport.
type Challenge = altcha.Challenge

// Solution is the line a TCP client sends back after solving a challenge.
type Solution struct {
	Payload string `json:"payload"`
}

type VerifyResult struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}
