package web

import (
	"context"
	"net/http"

	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
	"github.com/dayanaadylkhanova/powcaptcha/internal/service"
)

//go:generate mockgen -source=interfaces.go -destination=./web_mock.go -package=web

type Captcha interface {
	IssueChallenge(ctx context.Context, sess service.SessionStore) (entity.Challenge, error)
	CheckAnswer(ctx context.Context, sess service.SessionStore, code string) bool
}

type Sessions interface {
	Session(id string) service.SessionStore
	Ping(ctx context.Context) error
}

type Metrics interface {
	HTTPRequest(route string, status int)
	Handler() http.Handler
}
