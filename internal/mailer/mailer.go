package mailer

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"
)

const (
	FromName            = "Vicinity"
	maxRetries          = 3
	UserWelcomeTemplate = "user_welcome.tmpl"
)

//go:embed "templates"
var FS embed.FS

var ErrNotConfigured = errors.New("mailer is not configured")

type Client interface {
	Send(templateFile, username, email string, data any) error
}

// sender is the part of *mail.Dialer the client needs.
type sender interface {
	DialAndSend(m ...*mail.Message) error
}

type SMTPClient struct {
	fromEmail string
	dialer    sender
	logger    *zap.SugaredLogger
	backoff   time.Duration
}

func NewSMTPClient(host string, port int, username, password, fromEmail string, logger *zap.SugaredLogger) (*SMTPClient, error) {
	if host == "" || fromEmail == "" {
		return nil, ErrNotConfigured
	}
	d := mail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second
	return &SMTPClient{fromEmail: fromEmail, dialer: d, logger: logger, backoff: time.Second}, nil
}

// Render executes the "subject" and "body" blocks of a template.
func Render(templateFile string, data any) (subject, body string, err error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", err
	}

	var subj, html bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subj, "subject", data); err != nil {
		return "", "", err
	}
	if err := tmpl.ExecuteTemplate(&html, "body", data); err != nil {
		return "", "", err
	}
	return subj.String(), html.String(), nil
}

func (c *SMTPClient) Send(templateFile, username, email string, data any) error {
	subject, body, err := Render(templateFile, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", templateFile, err)
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", c.fromEmail, FromName)
	m.SetAddressHeader("To", email, username)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = c.dialer.DialAndSend(m)
		if err == nil {
			return nil
		}
		c.logger.Warnw("failed to send email", "to", email, "attempt", attempt, "error", err)
		time.Sleep(c.backoff * time.Duration(attempt))
	}
	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, err)
}

// NoopClient is used when no SMTP host is configured.
type NoopClient struct {
	logger *zap.SugaredLogger
}

func NewNoopClient(logger *zap.SugaredLogger) *NoopClient {
	return &NoopClient{logger: logger}
}

func (c *NoopClient) Send(templateFile, _, email string, _ any) error {
	c.logger.Infow("mail disabled, not sending", "template", templateFile, "to", email)
	return nil
}
