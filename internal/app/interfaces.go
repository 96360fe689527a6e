package app

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=./app_mock.go -package=app

// Runner is a long-lived component that stops when ctx is canceled.
type Runner interface {
	Run(ctx context.Context) error
}
