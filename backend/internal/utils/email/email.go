// Package email delivers transactional messages through a Postmark-compatible
// HTTP API. One Send is one POST /email; there are no retries.
package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mrz1836/postmark"

	"github.com/itchan-dev/newsletter/shared/config"
	"github.com/itchan-dev/newsletter/shared/domain"
)

const defaultTimeout = 10 * time.Second

// Message is one outbound email. From is taken from the client configuration.
type Message struct {
	To       domain.SubscriberEmail
	Subject  string
	HTMLBody string
	TextBody string
}

type Client struct {
	postmark *postmark.Client
	sender   domain.SubscriberEmail
}

// New builds a client for cfg. The sender address must itself be a valid
// subscriber email.
func New(cfg config.Email, serverToken, accountToken string) (*Client, error) {
	sender, err := domain.ParseSubscriberEmail(cfg.Sender)
	if err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	pm := postmark.NewClient(serverToken, accountToken)
	pm.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	pm.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: statusTransport{next: http.DefaultTransport},
	}

	return &Client{postmark: pm, sender: sender}, nil
}

// Send performs exactly one delivery attempt. Any failure is returned as a
// *TransportError.
func (c *Client) Send(ctx context.Context, msg Message) error {
	resp, err := c.postmark.SendEmail(ctx, postmark.Email{
		From:     c.sender.String(),
		To:       msg.To.String(),
		Subject:  msg.Subject,
		HTMLBody: msg.HTMLBody,
		TextBody: msg.TextBody,
	})
	if err != nil {
		return &TransportError{Recipient: msg.To, Err: err}
	}
	if resp.ErrorCode > 0 {
		return &TransportError{Recipient: msg.To, Err: fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message)}
	}
	return nil
}

// TransportError means the provider could not be reached or refused the
// message. Recipient is kept for structured logs and is left out of Error().
type TransportError struct {
	Recipient domain.SubscriberEmail
	Err       error
}

func (e *TransportError) Error() string {
	return "email delivery failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is returned for a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider responded %d: %s", e.StatusCode, e.Body)
}

const maxErrorBody = 512

// statusTransport turns non-2xx responses into errors before the postmark
// client tries to decode them, and gives empty 2xx bodies a JSON object so
// they decode cleanly.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}
