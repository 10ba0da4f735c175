// Package nef drives the upstream Network Exposure Function's
// monitoring-event API, handling bearer-token auth transparently.
package nef

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"telcobridge.dev/gateway/common/logger"
	"telcobridge.dev/gateway/core/config"
)

// ErrAuthentication indicates a login failure or a 401 that survived a fresh
// login. Persistently invalid credentials fail loudly instead of looping.
var ErrAuthentication = errors.New("nef: authentication failed")

// ErrNoSelfLink indicates a create response without the self link needed to
// delete the resource later.
var ErrNoSelfLink = errors.New("nef: no 'self' in monitoring subscription response")

// UpstreamError is a non-success NEF response.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("nef: upstream returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	afID       string

	mu    sync.Mutex
	token string
}

func NewClient(cfg config.NEFConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		afID:       cfg.AFID,
	}
}

func (c *Client) subscriptionsURL() string {
	return fmt.Sprintf("%s/3gpp-monitoring-event/v1/%s/subscriptions", c.baseURL, c.afID)
}

// CreateSubscription registers a monitoring-event subscription and returns
// the NEF resource, which always carries a self link.
func (c *Client) CreateSubscription(ctx context.Context, sub MonitoringEventSubscription) (*MonitoringEventSubscription, error) {
	res, body, err := c.do(ctx, http.MethodPost, c.subscriptionsURL(), sub)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var created MonitoringEventSubscription
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("decoding subscription response: %w", err)
	}
	if created.Self == nil {
		return nil, ErrNoSelfLink
	}

	return &created, nil
}

// Probe creates a one-shot subscription (maximumNumberOfReports=1). A 200
// response carries an immediate report. A 201 means no report was available;
// the upstream resource NEF created anyway is deleted fire-and-forget and nil
// is returned.
func (c *Client) Probe(ctx context.Context, sub MonitoringEventSubscription) (*MonitoringEventReport, error) {
	one := 1
	sub.MaximumNumberOfReports = &one
	if sub.NotificationDestination == "" {
		// A destination is mandatory on the wire even for one-shot requests.
		sub.NotificationDestination = "https://0.0.0.0"
	}

	res, body, err := c.do(ctx, http.MethodPost, c.subscriptionsURL(), sub)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Body: string(body)}
	}

	if res.StatusCode == http.StatusCreated {
		var created MonitoringEventSubscription
		if err := json.Unmarshal(body, &created); err != nil {
			return nil, fmt.Errorf("decoding subscription response: %w", err)
		}
		if created.Self != nil {
			c.DeleteSubscriptionAsync(*created.Self)
		}
		return nil, nil
	}

	var report MonitoringEventReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decoding event report: %w", err)
	}
	return &report, nil
}

// DeleteSubscription removes the upstream resource at its self link. A 404 is
// tolerated; other failures are logged, never propagated, since callers treat
// upstream deletion as best-effort.
func (c *Client) DeleteSubscription(ctx context.Context, selfURL string) {
	res, body, err := c.do(ctx, http.MethodDelete, selfURL, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete NEF subscription", "error", err, "url", selfURL)
		return
	}
	if res.StatusCode == http.StatusNotFound {
		slog.WarnContext(ctx, "NEF subscription not found on delete", "url", selfURL)
		return
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		slog.ErrorContext(ctx, "failed to delete NEF subscription",
			"status", res.StatusCode,
			"body", string(body),
			"url", selfURL)
	}
}

// DeleteSubscriptionAsync schedules DeleteSubscription on a detached
// goroutine. A crash between scheduling and completion can leak the upstream
// subscription, bounded by its own expiry.
func (c *Client) DeleteSubscriptionAsync(selfURL string) {
	go func() {
		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			Component: "gateway.nef.client",
		})
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(ctx, "panic in scheduled NEF deletion", "panic", r, "url", selfURL)
			}
		}()
		c.DeleteSubscription(ctx, selfURL)
	}()
}

// do sends an authenticated request. On 401 it performs exactly one fresh
// login and retries once; a second 401 surfaces as ErrAuthentication.
func (c *Client) do(ctx context.Context, method, rawURL string, payload any) (*http.Response, []byte, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, nil, err
	}

	res, body, err := c.send(ctx, method, rawURL, payload, token)
	if err != nil {
		return nil, nil, err
	}
	if res.StatusCode != http.StatusUnauthorized {
		return res, body, nil
	}

	token, err = c.login(ctx)
	if err != nil {
		return nil, nil, err
	}

	res, body, err = c.send(ctx, method, rawURL, payload, token)
	if err != nil {
		return nil, nil, err
	}
	if res.StatusCode == http.StatusUnauthorized {
		return nil, nil, ErrAuthentication
	}
	return res, body, nil
}

func (c *Client) send(ctx context.Context, method, rawURL string, payload any, token string) (*http.Response, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("calling NEF: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading NEF response: %w", err)
	}
	return res, body, nil
}

// ensureToken returns the cached bearer token, logging in first if none is
// cached. Two concurrent refreshes just cost an extra login.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}
	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) (string, error) {
	form := url.Values{
		"username": {c.username},
		"password": {c.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/login/access-token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling NEF login: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("reading login response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		slog.ErrorContext(ctx, "NEF login failed", "status", res.StatusCode, "body", string(body))
		return "", ErrAuthentication
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}

	token := "Bearer " + payload.AccessToken
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return token, nil
}
