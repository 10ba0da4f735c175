// Package sms sends text messages through a configured gateway.
package sms

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"telcobridge.dev/gateway/core/config"
)

// Sender delivers one SMS to a phone number in E.164 form.
type Sender interface {
	Send(ctx context.Context, phoneNumber, text string) error
}

// NewSender picks the driver for the configured backend.
func NewSender(cfg config.SMSConfig) Sender {
	if cfg.Backend == config.SMSBackendSMSC {
		return &SMSC{
			httpClient: &http.Client{Timeout: 10 * time.Second},
			baseURL:    cfg.SMSCURL,
		}
	}
	return &Mock{}
}

// SMSC submits messages over an SMSC HTTP gateway: a GET with the recipient
// and text as query parameters. The gateway expects bare digits, no plus.
type SMSC struct {
	httpClient *http.Client
	baseURL    string
}

func (s *SMSC) Send(ctx context.Context, phoneNumber, text string) error {
	query := url.Values{
		"to":   {strings.TrimPrefix(phoneNumber, "+")},
		"text": {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building SMSC request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling SMSC: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("SMSC returned %d", resp.StatusCode)
	}
	return nil
}

// Mock logs instead of sending. Default in development.
type Mock struct{}

func (*Mock) Send(ctx context.Context, phoneNumber, text string) error {
	slog.InfoContext(ctx, "mock SMS", "to", phoneNumber, "text", text)
	return nil
}
