// Package notify hands finished documents to outbound delivery. The
// default mailer only records the handoff; a real provider slots in
// behind the same interface.
package notify

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Attachment is a finished document ready for delivery.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Mailer interface {
	Send(ctx context.Context, recipient, subject string, attachment Attachment) error
}

type logMailer struct {
	log *zap.Logger
}

func NewMailer(log *zap.Logger) Mailer {
	return &logMailer{log: log.Named("notify.mailer")}
}

func (m *logMailer) Send(ctx context.Context, recipient, subject string, attachment Attachment) error {
	m.log.Info("document queued for delivery",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("filename", attachment.Filename),
		zap.Int("bytes", len(attachment.Content)))
	return nil
}

var Module = fx.Module("notify",
	fx.Provide(NewMailer),
)
