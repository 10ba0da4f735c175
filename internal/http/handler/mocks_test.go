package handler_test

import (
	"context"
	"sync"
	"time"

	"telcobridge.dev/gateway/internal/model"
)

type mockSubscriptionService[D any] struct {
	createFn func(ctx context.Context, req model.SubscriptionRequest[D]) (model.Subscription[D], error)
	getFn    func(ctx context.Context, id string) (model.Subscription[D], error)
	listFn   func(ctx context.Context) ([]model.Subscription[D], error)
	deleteFn func(ctx context.Context, id string, reason model.TerminationReason) error
}

func (m *mockSubscriptionService[D]) Create(ctx context.Context, req model.SubscriptionRequest[D]) (model.Subscription[D], error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return model.Subscription[D]{}, nil
}

func (m *mockSubscriptionService[D]) Get(ctx context.Context, id string) (model.Subscription[D], error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return model.Subscription[D]{}, nil
}

func (m *mockSubscriptionService[D]) List(ctx context.Context) ([]model.Subscription[D], error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockSubscriptionService[D]) Delete(ctx context.Context, id string, reason model.TerminationReason) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, reason)
	}
	return nil
}

type mockOTPStore struct {
	createFn func(ctx context.Context, code string, maxAttempts int, ttl time.Duration) (string, error)
	verifyFn func(ctx context.Context, authenticationID, code string) error
}

func (m *mockOTPStore) Create(ctx context.Context, code string, maxAttempts int, ttl time.Duration) (string, error) {
	if m.createFn != nil {
		return m.createFn(ctx, code, maxAttempts, ttl)
	}
	return "auth-1", nil
}

func (m *mockOTPStore) Verify(ctx context.Context, authenticationID, code string) error {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, authenticationID, code)
	}
	return nil
}

type mockSMSSender struct {
	sendFn func(ctx context.Context, phoneNumber, text string) error

	mu   sync.Mutex
	sent []string
}

func (m *mockSMSSender) Send(ctx context.Context, phoneNumber, text string) error {
	m.mu.Lock()
	m.sent = append(m.sent, text)
	m.mu.Unlock()
	if m.sendFn != nil {
		return m.sendFn(ctx, phoneNumber, text)
	}
	return nil
}
