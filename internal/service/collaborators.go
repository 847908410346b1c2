package service

import (
	"context"

	"go.uber.org/zap"
)

// Confirmer gates destructive actions. Returning false cancels the action.
type Confirmer interface {
	Confirm(ctx context.Context, action string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, action string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, action string) bool {
	return f(ctx, action)
}

// AlwaysConfirm approves every action. Suitable for tests and trusted
// single-operator setups.
type AlwaysConfirm struct{}

func (AlwaysConfirm) Confirm(context.Context, string) bool { return true }

type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
)

type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

// Notifier receives user-facing messages. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, note Notification) {
	if n.Logger == nil {
		return
	}
	if note.Level == NotifyError {
		n.Logger.Warn(note.Message, zap.String("level", string(note.Level)))
		return
	}
	n.Logger.Info(note.Message, zap.String("level", string(note.Level)))
}
