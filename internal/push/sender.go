// Package push delivers device notifications through the FCM legacy HTTP
// gateway and fans new posts and comments out to their recipients.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"friendmarket/internal/config"
	"friendmarket/internal/middleware"

	"github.com/sony/gobreaker"
)

// DefaultGatewayURL is the FCM legacy send endpoint.
const DefaultGatewayURL = "https://fcm.googleapis.com/fcm/send"

// ErrNotConfigured is returned when no server key is set.
var ErrNotConfigured = errors.New("push gateway not configured")

// Message is the data block every notification carries.
type Message struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Post    uint   `json:"post"`
	Comment uint   `json:"comment"`
}

// Payload is the request body posted to the gateway.
type Payload struct {
	RegistrationIDs []string `json:"registration_ids"`
	Data            Message  `json:"data"`
}

// Sender delivers one message to a set of device tokens.
type Sender interface {
	Send(ctx context.Context, tokens []string, msg Message) error
}

// FCMSender posts payloads to the gateway behind a circuit breaker.
// In debug mode payloads are only logged.
type FCMSender struct {
	url     string
	key     string
	debug   bool
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewFCMSender builds a sender from config.
func NewFCMSender(cfg *config.Config) *FCMSender {
	timeout := time.Duration(cfg.FCMTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	url := cfg.FCMURL
	if url == "" {
		url = DefaultGatewayURL
	}
	return &FCMSender{
		url:     url,
		key:     cfg.FCMServerKey,
		debug:   cfg.Debug,
		client:  &http.Client{Timeout: timeout},
		breaker: newBreaker("fcm"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			middleware.Logger.Warn("push circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
}

// Send posts msg to tokens. An empty token list is a no-op.
func (s *FCMSender) Send(ctx context.Context, tokens []string, msg Message) error {
	if len(tokens) == 0 {
		return nil
	}
	payload := Payload{RegistrationIDs: tokens, Data: msg}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	if s.debug {
		middleware.Logger.InfoContext(ctx, "push payload (debug, not sent)", slog.String("payload", string(body)))
		return nil
	}
	if s.key == "" {
		return ErrNotConfigured
	}

	_, err = s.breaker.Execute(func() (any, error) {
		return nil, s.post(ctx, body)
	})
	return err
}

func (s *FCMSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.key)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
