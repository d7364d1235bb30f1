package notify

import (
	"context"

	"go.uber.org/zap"
)

// Mailer is the delivery boundary. Real SMTP lives outside this service;
// LogMailer records what would have been sent.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type LogMailer struct {
	Log *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.Log.Info("mail",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
