// Package notify delivers CloudEvents to consumer-provided sinks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"telcobridge.dev/gateway/common/logger"
	"telcobridge.dev/gateway/internal/model"
)

const deliveryTimeout = 10 * time.Second

// Notifier posts CloudEvents v1.0 envelopes to HTTP sinks. One notifier is
// built per domain so every event it emits carries that domain's source URI.
type Notifier struct {
	httpClient *http.Client
	source     string
}

func New(source string) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: deliveryTimeout},
		source:     source,
	}
}

// Notify wraps data in a CloudEvent and posts it to the sink on a detached
// goroutine. Delivery failures are logged and never reported to the caller;
// a dead sink must not affect subscription processing.
func (n *Notifier) Notify(ctx context.Context, sink, eventType string, data any) {
	event := model.CloudEvent{
		ID:              uuid.NewString(),
		Source:          n.source,
		Type:            eventType,
		SpecVersion:     model.SpecVersion,
		DataContentType: model.DataContentType,
		Data:            data,
		Time:            time.Now().UTC(),
	}

	fields := logger.GetLogFields(ctx)
	fields.EventType = logger.Ptr(eventType)
	detached := logger.WithLogFields(context.WithoutCancel(ctx), fields)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(detached, "panic delivering notification", slog.Any("panic", r))
			}
		}()
		if err := n.deliver(detached, sink, event); err != nil {
			slog.ErrorContext(detached, "failed to deliver notification",
				slog.String("sink", sink),
				slog.String("error", err.Error()))
			return
		}
		slog.InfoContext(detached, "notification delivered", slog.String("sink", sink))
	}()
}

func (n *Notifier) deliver(ctx context.Context, sink string, event model.CloudEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sink, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/cloudevents+json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sink returned %d", resp.StatusCode)
	}
	return nil
}
