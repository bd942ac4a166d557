package service

import (
	"context"

	"kbomate/internal/middleware"
)

// EventPublisher pushes realtime events; *notifications.Notifier implements it.
type EventPublisher interface {
	NotifyUser(ctx context.Context, userID uint, eventType string, payload any) error
	NotifyAll(ctx context.Context, eventType string, payload any) error
}

// publish is best effort: a failed push never fails the write that caused it.
func publish(ctx context.Context, fn func() error) {
	if err := fn(); err != nil {
		middleware.Logger.WarnContext(ctx, "realtime publish failed", "error", err)
	}
}
