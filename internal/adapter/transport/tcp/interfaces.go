package tcp

import (
	"context"

	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
	"github.com/dayanaadylkhanova/powcaptcha/internal/service"
)

//go:generate mockgen -source=interfaces.go -destination=./server_mock.go -package=tcp

type Captcha interface {
	IssueChallenge(ctx context.Context, sess service.SessionStore) (entity.Challenge, error)
	CheckAnswer(ctx context.Context, sess service.SessionStore, code string) bool
}

type Sessions interface {
	Session(id string) service.SessionStore
}

type Connections interface {
	ConnectionOpened()
	ConnectionClosed()
}
