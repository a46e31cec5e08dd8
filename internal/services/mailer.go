package services

import (
	"context"
	"log/slog"
)

// Mailer delivers account emails (confirmation and password reset links).
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	slog.InfoContext(ctx, "outgoing email", "to", to, "subject", subject, "body", body)
	return nil
}
