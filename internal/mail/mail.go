// Package mail sends the transactional emails: the welcome greeting and
// the password reset notice. Delivery is best-effort.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"friendmarket/internal/config"
	"friendmarket/internal/middleware"
	"friendmarket/internal/models"
	"friendmarket/internal/observability"

	gomail "github.com/wneessen/go-mail"
)

const (
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "password_reset"
)

// Message is one plain-text email.
type Message struct {
	Template string
	To       string
	Subject  string
	Body     string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when SMTP_HOST is set and a log-only mailer
// otherwise.
func New(cfg *config.Config) Mailer {
	if cfg == nil || strings.TrimSpace(cfg.SMTPHost) == "" {
		return LogMailer{}
	}
	m, err := NewSMTPMailer(cfg)
	if err != nil {
		middleware.Logger.Warn("smtp mailer unavailable, logging mail instead", slog.String("error", err.Error()))
		return LogMailer{}
	}
	return m
}

// WelcomeMessage greets a freshly registered user.
func WelcomeMessage(u *models.User) Message {
	return Message{
		Template: TemplateWelcome,
		To:       u.Email,
		Subject:  "Welcome to Friendmarket!",
		Body: "Hello!\n\nWelcome to Friendmarket, the social network of friends!\n\n" +
			"--\n\nBest regards,\nYour Friendmarket",
	}
}

// PasswordResetMessage carries a newly generated password.
func PasswordResetMessage(u *models.User, password string) Message {
	return Message{
		Template: TemplatePasswordReset,
		To:       u.Email,
		Subject:  "Password reset",
		Body: fmt.Sprintf("Hello, %s!\n\nYour new password: %s\n\n--\n\nBest regards,\nYour Friendmarket",
			u.FullName(), password),
	}
}

type sendFunc func(ctx context.Context, msg *gomail.Msg) error

// SMTPMailer sends through one SMTP relay, upgrading to TLS when the relay
// offers STARTTLS and using PLAIN auth when a user is set.
type SMTPMailer struct {
	from string
	send sendFunc
}

// NewSMTPMailer builds a mailer from the SMTP_* settings.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUser),
			gomail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{
		from: cfg.MailFrom,
		send: func(ctx context.Context, msg *gomail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

// Send delivers msg. Dialing and the SMTP exchange are bounded by ctx.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (err error) {
	defer func() {
		observability.MailDeliveries.WithLabelValues(msg.Template, observability.Result(err)).Inc()
	}()

	out, err := buildMessage(m.from, msg)
	if err != nil {
		return fmt.Errorf("build %s mail: %w", msg.Template, err)
	}
	if err = m.send(ctx, out); err != nil {
		return fmt.Errorf("send %s mail: %w", msg.Template, err)
	}
	middleware.Logger.DebugContext(ctx, "mail sent", slog.String("template", msg.Template), slog.String("to", msg.To))
	return nil
}

func buildMessage(from string, msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("from %q: %w", from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("to %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return out, nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

// Send logs msg.
func (LogMailer) Send(ctx context.Context, msg Message) error {
	observability.MailDeliveries.WithLabelValues(msg.Template, "logged").Inc()
	middleware.Logger.InfoContext(ctx, "mail (not sent)",
		slog.String("template", msg.Template),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject))
	return nil
}

// Background delivers messages off the request path. Each send is
// bounded by timeout; failures are logged and never reach the caller.
type Background struct {
	mailer  Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewBackground wraps m. A nil mailer makes Send a no-op.
func NewBackground(m Mailer, timeout time.Duration) *Background {
	return &Background{mailer: m, timeout: timeout}
}

// Send queues msg for delivery in its own goroutine.
func (b *Background) Send(ctx context.Context, msg Message) {
	if b == nil || b.mailer == nil {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		defer cancel()
		if err := b.mailer.Send(ctx, msg); err != nil {
			middleware.Logger.WarnContext(ctx, "mail delivery failed",
				slog.String("template", msg.Template), slog.String("error", err.Error()))
		}
	}()
}

// Wait blocks until every queued message was handled.
func (b *Background) Wait() {
	if b != nil {
		b.wg.Wait()
	}
}
