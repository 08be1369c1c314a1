package service

import (
	"context"
	"log/slog"
)

// LogMailer implements AuthServiceMailer by writing codes to the log -
// for use when no SMTP transport is configured (local development).
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a new LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// SendOTP logs the code instead of delivering it.
func (m *LogMailer) SendOTP(_ context.Context, email, code string) error {
	m.logger.Info("registration code issued",
		slog.String("email", email),
		slog.String("code", code),
	)
	return nil
}
