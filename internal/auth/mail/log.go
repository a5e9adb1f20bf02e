package mail

import (
	"context"
	"log/slog"
)

// LogSender writes the mail to the log instead of delivering it. This is the
// default when no SMTP relay is configured, so dev setups can copy reset
// links straight out of the service output.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.Logger.Info("mail delivery skipped (no SMTP configured)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
