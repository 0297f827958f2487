package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/tazhibayda/account-service/internal/log"
)

type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogSender is the dev fallback: prints instead of delivering.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	log.WithDD(ctx).Info("mail (dev, not delivered)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)),
	)
	return nil
}
