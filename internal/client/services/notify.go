package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/client"
	"github.com/dmitrijs2005/testimonykeeper/internal/common"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notifier shows short user-facing messages about finished operations.
type Notifier interface {
	Notify(ctx context.Context, level Level, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, level Level, msg string)

func (f NotifierFunc) Notify(ctx context.Context, level Level, msg string) {
	f(ctx, level, msg)
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Level, string) {}

// userMessage picks what to show for err: the server's own message when it
// sent one, the local reason for size rejections, else fallback.
func userMessage(err error, fallback string) string {
	if msg, ok := client.MessageFrom(err); ok {
		return msg
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) || errors.Is(err, common.ErrFileTooLarge) {
		return err.Error()
	}
	return fallback
}
