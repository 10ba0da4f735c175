package subscription_test

import (
	"context"
	"sync"

	"telcobridge.dev/gateway/internal/nef"
)

type mockNEF struct {
	createFn func(ctx context.Context, sub nef.MonitoringEventSubscription) (*nef.MonitoringEventSubscription, error)
	probeFn  func(ctx context.Context, sub nef.MonitoringEventSubscription) (*nef.MonitoringEventReport, error)

	mu      sync.Mutex
	created []nef.MonitoringEventSubscription
	deleted []string
}

func (m *mockNEF) CreateSubscription(ctx context.Context, sub nef.MonitoringEventSubscription) (*nef.MonitoringEventSubscription, error) {
	m.mu.Lock()
	m.created = append(m.created, sub)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, sub)
	}
	created := sub
	self := "http://nef.example.com/3gpp-monitoring-event/v1/af1/subscriptions/42"
	created.Self = &self
	return &created, nil
}

func (m *mockNEF) Probe(ctx context.Context, sub nef.MonitoringEventSubscription) (*nef.MonitoringEventReport, error) {
	if m.probeFn != nil {
		return m.probeFn(ctx, sub)
	}
	return nil, nil
}

func (m *mockNEF) DeleteSubscriptionAsync(selfURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, selfURL)
}

func (m *mockNEF) deletedURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func (m *mockNEF) lastCreated() nef.MonitoringEventSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created[len(m.created)-1]
}

type recordedEvent struct {
	sink      string
	eventType string
	data      any
}

// recorderSink captures deliveries synchronously so specs can assert on
// exact event sequences.
type recorderSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorderSink) Notify(_ context.Context, sink, eventType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{sink: sink, eventType: eventType, data: data})
}

func (r *recorderSink) all() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

func (r *recorderSink) ofType(eventType string) []recordedEvent {
	var out []recordedEvent
	for _, e := range r.all() {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
