package email

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/veritrack/veritrack-go/internal/errors"
)

// smtpSendTimeout bounds one outbound SMTP delivery.
const smtpSendTimeout = 30 * time.Second

// SMTPMailer sends via an SMTP relay using a shoutrrr smtp:// service URL.
// The recipient varies per message, so the sender is built per send from
// the configured base URL.
type SMTPMailer struct {
	baseURL string
	from    string
}

// NewSMTPMailer validates the configured smtp:// URL and returns the mailer.
func NewSMTPMailer(serviceURL, from string) (*SMTPMailer, error) {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return nil, errors.New(err).
			Component("email").
			Category(errors.CategoryConfiguration).
			Context("operation", "parse_smtp_url").
			Build()
	}
	if parsed.Scheme != "smtp" {
		return nil, errors.Newf("smtp mailer requires an smtp:// URL, got %q", parsed.Scheme).
			Component("email").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return &SMTPMailer{baseURL: serviceURL, from: from}, nil
}

// Send delivers one HTML message to a single recipient.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	serviceURL, err := m.recipientURL(to)
	if err != nil {
		return err
	}

	sender, err := shoutrrr.CreateSender(serviceURL)
	if err != nil {
		return errors.New(err).
			Component("email").
			Category(errors.CategoryConfiguration).
			Context("operation", "create_smtp_sender").
			Build()
	}
	sender.Timeout = smtpSendTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < sender.Timeout {
			sender.Timeout = remaining
		}
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	params := stypes.Params{}
	params.SetTitle(subject)

	for _, sendErr := range sender.Send(htmlBody, &params) {
		if sendErr != nil {
			return errors.New(sendErr).
				Component("email").
				Category(errors.CategoryNetwork).
				Context("operation", "smtp_send").
				Build()
		}
	}
	return nil
}

// recipientURL injects the per-message recipient into the configured URL.
func (m *SMTPMailer) recipientURL(to string) (string, error) {
	parsed, err := url.Parse(m.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid smtp URL: %w", err)
	}
	query := parsed.Query()
	query.Set("toaddresses", to)
	if m.from != "" && query.Get("fromaddress") == "" {
		query.Set("fromaddress", m.from)
	}
	query.Set("usehtml", "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
