package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"friendmarket/internal/config"
	"friendmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

func TestNew_FallsBackToLogMailer(t *testing.T) {
	assert.IsType(t, LogMailer{}, New(nil))
	assert.IsType(t, LogMailer{}, New(&config.Config{SMTPHost: "  "}))
	assert.IsType(t, &SMTPMailer{}, New(&config.Config{SMTPHost: "smtp.example.com"}))
}

func TestMessages(t *testing.T) {
	u := &models.User{Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"}

	welcome := WelcomeMessage(u)
	assert.Equal(t, "ann@example.com", welcome.To)
	assert.Equal(t, "Welcome to Friendmarket!", welcome.Subject)
	assert.Contains(t, welcome.Body, "the social network of friends")

	reset := PasswordResetMessage(u, "s3cret!")
	assert.Equal(t, "Password reset", reset.Subject)
	assert.True(t, strings.HasPrefix(reset.Body, "Hello, Ann Lee!\n\nYour new password: s3cret!"))
	assert.Equal(t, TemplatePasswordReset, reset.Template)
}

func newTestSMTPMailer(t *testing.T, cfg *config.Config) *SMTPMailer {
	t.Helper()
	m, err := NewSMTPMailer(cfg)
	require.NoError(t, err)
	return m
}

func TestSMTPMailer_Send(t *testing.T) {
	m := newTestSMTPMailer(t, &config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     2525,
		SMTPUser:     "mailer",
		SMTPPassword: "pw",
		MailFrom:     "Friendmarket <noreply@friendmarket.local>",
	})

	var got *gomail.Msg
	m.send = func(_ context.Context, msg *gomail.Msg) error {
		got = msg
		return nil
	}

	err := m.Send(context.Background(), WelcomeMessage(&models.User{Email: "bob@example.com"}))
	require.NoError(t, err)
	require.NotNil(t, got)

	from, err := got.GetSender(false)
	require.NoError(t, err)
	assert.Equal(t, "noreply@friendmarket.local", from)
	rcpts, err := got.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@example.com"}, rcpts)
	assert.Equal(t, []string{"Welcome to Friendmarket!"}, got.GetGenHeader(gomail.HeaderSubject))

	var raw bytes.Buffer
	_, err = got.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Hello!")
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := newTestSMTPMailer(t, &config.Config{SMTPHost: "smtp.example.com", MailFrom: "noreply@friendmarket.local"})
	m.send = func(context.Context, *gomail.Msg) error {
		return errors.New("connection refused")
	}
	err := m.Send(context.Background(), Message{Template: TemplateWelcome, To: "x@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPMailer_SendHonoursDeadline(t *testing.T) {
	m := newTestSMTPMailer(t, &config.Config{SMTPHost: "smtp.example.com", MailFrom: "noreply@friendmarket.local"})
	m.send = func(ctx context.Context, _ *gomail.Msg) error {
		<-ctx.Done()
		return ctx.Err()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := m.Send(ctx, Message{Template: TemplateWelcome, To: "x@example.com"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("a@b.c", Message{To: "d@e.f", Subject: "Привет", Body: "x"})
	require.NoError(t, err)
	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(raw.String()), "subject: =?utf-8?q?")

	_, err = buildMessage("not an address", Message{To: "d@e.f"})
	assert.Error(t, err)
	_, err = buildMessage("a@b.c", Message{To: ""})
	assert.Error(t, err)
}

type captureMailer struct {
	ch chan Message
}

func (c captureMailer) Send(_ context.Context, msg Message) error {
	c.ch <- msg
	return errors.New("ignored")
}

func TestBackground(t *testing.T) {
	var nilBackground *Background
	nilBackground.Send(context.Background(), Message{})
	nilBackground.Wait()
	NewBackground(nil, time.Second).Send(context.Background(), Message{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := captureMailer{ch: make(chan Message, 1)}
	bg := NewBackground(c, time.Second)
	bg.Send(ctx, Message{To: "z@example.com"})
	bg.Wait()

	select {
	case msg := <-c.ch:
		assert.Equal(t, "z@example.com", msg.To)
	default:
		t.Fatal("mail was not delivered")
	}
}
