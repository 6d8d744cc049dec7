package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"friendmarket/internal/featureflags"
	"friendmarket/internal/middleware"
	"friendmarket/internal/models"
	"friendmarket/internal/notifications"
	"friendmarket/internal/observability"
	"friendmarket/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	KindPost    = "post"
	KindComment = "comment"
	KindManual  = "manual"
)

// DefaultTimeout bounds one background delivery.
const DefaultTimeout = 15 * time.Second

// Dispatcher turns domain events into push messages and in-app events.
// The async entry points return immediately; failures are only logged.
type Dispatcher struct {
	recipients repository.RecipientRepository
	sender     Sender
	notifier   *notifications.Notifier
	flags      *featureflags.Manager
	timeout    time.Duration
	wg         sync.WaitGroup
}

// NewDispatcher wires a dispatcher. notifier and flags may be nil; a nil
// flag manager leaves pushes enabled.
func NewDispatcher(
	recipients repository.RecipientRepository,
	sender Sender,
	notifier *notifications.Notifier,
	flags *featureflags.Manager,
) *Dispatcher {
	return &Dispatcher{
		recipients: recipients,
		sender:     sender,
		notifier:   notifier,
		flags:      flags,
		timeout:    DefaultTimeout,
	}
}

// PostMessage builds the new-post notification.
func PostMessage(post *models.Post, author *models.User) Message {
	return Message{Title: author.FullName(), Body: post.Title, Post: post.ID}
}

// CommentMessage builds the new-comment notification. On a question the
// body quotes the attached note's title instead of the comment text.
func CommentMessage(post *models.Post, comment *models.Comment, author *models.User, note *models.Post) Message {
	text := comment.Text
	if post.TypeContent == models.PostTypeQuestion && note != nil {
		text = note.Title
	}
	return Message{
		Title:   post.Title,
		Body:    fmt.Sprintf("%s: %s", author.FullName(), text),
		Post:    post.ID,
		Comment: comment.ID,
	}
}

func (d *Dispatcher) pushAllowed(authorID uint) bool {
	return d.flags == nil || d.flags.Enabled(featureflags.PushNotifications, authorID)
}

// PostCreated notifies the author's followers in the background.
func (d *Dispatcher) PostCreated(ctx context.Context, post *models.Post, author *models.User) {
	d.background(ctx, KindPost, func(ctx context.Context) error {
		return d.DeliverPost(ctx, post, author)
	})
}

// CommentCreated notifies the post's audience in the background.
func (d *Dispatcher) CommentCreated(ctx context.Context, post *models.Post, comment *models.Comment, author *models.User, note *models.Post) {
	d.background(ctx, KindComment, func(ctx context.Context) error {
		return d.DeliverComment(ctx, post, comment, author, note)
	})
}

// DeliverPost is the synchronous form of PostCreated.
func (d *Dispatcher) DeliverPost(ctx context.Context, post *models.Post, author *models.User) error {
	if !d.pushAllowed(author.ID) {
		return nil
	}
	recipients, err := d.recipients.PostRecipients(ctx, author.ID)
	if err != nil {
		return err
	}
	return d.deliver(ctx, KindPost, recipients, PostMessage(post, author))
}

// DeliverComment is the synchronous form of CommentCreated.
func (d *Dispatcher) DeliverComment(ctx context.Context, post *models.Post, comment *models.Comment, author *models.User, note *models.Post) error {
	if !d.pushAllowed(author.ID) {
		return nil
	}
	recipients, err := d.recipients.CommentRecipients(ctx, comment)
	if err != nil {
		return err
	}
	return d.deliver(ctx, KindComment, recipients, CommentMessage(post, comment, author, note))
}

// SendManual delivers msg to the listed users, or to every reachable user
// when emails is empty. It returns the number of tokens targeted.
func (d *Dispatcher) SendManual(ctx context.Context, emails []string, msg Message) (int, error) {
	recipients, err := d.recipients.ByEmails(ctx, emails)
	if err != nil {
		return 0, err
	}
	return len(repository.Tokens(recipients)), d.deliver(ctx, KindManual, recipients, msg)
}

func (d *Dispatcher) deliver(ctx context.Context, kind string, recipients []repository.Recipient, msg Message) (err error) {
	ctx, span := observability.StartSpan(ctx, "push", kind, attribute.Int("push.recipients", len(recipients)))
	defer func() { observability.EndSpan(span, err) }()

	tokens := repository.Tokens(recipients)
	observability.PushRecipients.WithLabelValues(kind).Observe(float64(len(tokens)))
	if len(tokens) == 0 {
		observability.PushDeliveries.WithLabelValues(kind, "skipped").Inc()
		return nil
	}

	err = d.sender.Send(ctx, tokens, msg)
	switch {
	case errors.Is(err, ErrNotConfigured):
		observability.PushDeliveries.WithLabelValues(kind, "skipped").Inc()
		middleware.Logger.WarnContext(ctx, "push skipped, gateway not configured", slog.String("kind", kind))
		err = nil
	default:
		observability.PushDeliveries.WithLabelValues(kind, observability.Result(err)).Inc()
	}

	if perr := d.notifier.PublishEvent(ctx, repository.UserIDs(recipients), notifications.Event{
		Type: eventType(kind),
		Data: map[string]any{"title": msg.Title, "body": msg.Body, "post": msg.Post, "comment": msg.Comment},
	}); perr != nil {
		middleware.Logger.WarnContext(ctx, "in-app notification publish failed", slog.String("error", perr.Error()))
	}
	return err
}

func eventType(kind string) string {
	switch kind {
	case KindPost:
		return notifications.EventNewPost
	case KindComment:
		return notifications.EventNewComment
	default:
		return notifications.EventManual
	}
}

// background runs fn detached from the request, bounded by the timeout.
func (d *Dispatcher) background(parent context.Context, kind string, fn func(context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				middleware.Logger.ErrorContext(ctx, "panic in push delivery",
					slog.String("kind", kind), slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			}
		}()
		if err := fn(ctx); err != nil {
			middleware.Logger.WarnContext(ctx, "push delivery failed",
				slog.String("kind", kind), slog.String("error", err.Error()))
		}
	}()
}

// Wait blocks until background deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
