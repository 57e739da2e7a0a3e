package email

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/veritrack/veritrack-go/internal/errors"
)

// DefaultMailgunBaseURL is the Mailgun API root used unless overridden.
const DefaultMailgunBaseURL = "https://api.mailgun.net/v3"

// MailgunMailer sends via the Mailgun messages API: one form-encoded POST
// per message, authenticated with the "api" basic-auth user.
type MailgunMailer struct {
	domain  string
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

// NewMailgunMailer creates a MailgunMailer. An empty baseURL selects the
// default API root.
func NewMailgunMailer(domain, apiKey, from, baseURL string) *MailgunMailer {
	if baseURL == "" {
		baseURL = DefaultMailgunBaseURL
	}
	return &MailgunMailer{
		domain:  domain,
		apiKey:  apiKey,
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Send delivers one HTML message to a single recipient.
func (m *MailgunMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	form := url.Values{}
	form.Set("from", fmt.Sprintf("VeriTrack Alerts <%s>", m.from))
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("html", htmlBody)

	endpoint := fmt.Sprintf("%s/%s/messages", m.baseURL, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.New(err).
			Component("email").
			Category(errors.CategoryNetwork).
			Context("operation", "mailgun_request").
			Build()
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return errors.New(err).
			Component("email").
			Category(errors.CategoryNetwork).
			Context("operation", "mailgun_send").
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Newf("mailgun send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))).
			Component("email").
			Category(errors.CategoryNetwork).
			Context("status", resp.StatusCode).
			Build()
	}
	return nil
}
