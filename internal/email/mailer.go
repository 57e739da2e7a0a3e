// Package email provides the outbound email transport and the composition
// of alert digest messages.
package email

import (
	"context"

	"github.com/k3a/html2text"

	"github.com/veritrack/veritrack-go/internal/logger"
)

// Mailer is the outbound email collaborator. A send either completed or it
// didn't; the engine assumes no further delivery guarantees.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogMailer writes messages to the log instead of sending them. Used in
// development and as the default provider.
type LogMailer struct {
	log logger.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send logs the message with the HTML body rendered to plain text.
func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.log.Info("email (log provider)",
		logger.String("to", to),
		logger.String("subject", subject),
		logger.String("body", html2text.HTML2Text(htmlBody)))
	return nil
}
