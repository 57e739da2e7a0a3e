package email

import (
	"github.com/veritrack/veritrack-go/internal/conf"
	"github.com/veritrack/veritrack-go/internal/errors"
	"github.com/veritrack/veritrack-go/internal/logger"
)

// NewMailer builds the outbound transport selected by the configuration.
func NewMailer(settings *conf.EmailSettings, log logger.Logger) (Mailer, error) {
	switch settings.Provider {
	case "log", "":
		return NewLogMailer(log), nil
	case "smtp":
		return NewSMTPMailer(settings.SMTPURL, settings.From)
	case "mailgun":
		return NewMailgunMailer(settings.MailgunDomain, settings.MailgunAPIKey, settings.From, settings.MailgunBaseURL), nil
	default:
		return nil, errors.Newf("unsupported email provider %q", settings.Provider).
			Component("email").
			Category(errors.CategoryConfiguration).
			Build()
	}
}
