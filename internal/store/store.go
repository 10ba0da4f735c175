// Package store implements the subscription lifecycle over a key-value
// store: one generic implementation shared by every domain, parameterized by
// the domain's key prefix and subscriptionDetail type.
//
// Persisted layout per domain:
//
//	{prefix}:{id}         JSON subscription record
//	{prefix}_nef_url:{id} upstream NEF subscription URL
//	{prefix}_state:{id}   last-observed domain state
//	{prefix}_counter:{id} delivered-event counter
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"telcobridge.dev/gateway/internal/model"
)

type Store[D any] struct {
	kv     KV
	prefix string
}

func New[D any](kv KV, prefix string) *Store[D] {
	return &Store[D]{kv: kv, prefix: prefix}
}

func (s *Store[D]) subKey(id string) string     { return s.prefix + ":" + id }
func (s *Store[D]) urlKey(id string) string     { return s.prefix + "_nef_url:" + id }
func (s *Store[D]) stateKey(id string) string   { return s.prefix + "_state:" + id }
func (s *Store[D]) counterKey(id string) string { return s.prefix + "_counter:" + id }

// Create assigns a fresh id and persists the subscription as ACTIVE. The
// detail payload is stored as-is; the store never interprets it.
func (s *Store[D]) Create(ctx context.Context, req model.SubscriptionRequest[D]) (model.Subscription[D], error) {
	sub := model.Subscription[D]{
		Protocol:       req.Protocol,
		Sink:           req.Sink,
		SinkCredential: req.SinkCredential,
		Types:          req.Types,
		Config:         req.Config,
		ID:             uuid.NewString(),
		StartsAt:       time.Now().UTC(),
		ExpiresAt:      req.Config.SubscriptionExpireTime,
		Status:         model.StatusActive,
	}

	if err := s.persist(ctx, sub); err != nil {
		return model.Subscription[D]{}, err
	}
	return sub, nil
}

func (s *Store[D]) Get(ctx context.Context, id string) (model.Subscription[D], error) {
	raw, err := s.kv.Get(ctx, s.subKey(id))
	if errors.Is(err, errKeyMissing) {
		return model.Subscription[D]{}, ErrNotFound
	}
	if err != nil {
		return model.Subscription[D]{}, fmt.Errorf("fetching subscription: %w", err)
	}

	var sub model.Subscription[D]
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return model.Subscription[D]{}, fmt.Errorf("decoding subscription %s: %w", id, err)
	}
	return sub, nil
}

func (s *Store[D]) List(ctx context.Context) ([]model.Subscription[D], error) {
	keys, err := s.kv.Keys(ctx, s.prefix+":*")
	if err != nil {
		return nil, fmt.Errorf("scanning subscriptions: %w", err)
	}

	subs := make([]model.Subscription[D], 0, len(keys))
	for _, key := range keys {
		raw, err := s.kv.Get(ctx, key)
		if errors.Is(err, errKeyMissing) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetching subscription: %w", err)
		}
		var sub model.Subscription[D]
		if err := json.Unmarshal([]byte(raw), &sub); err != nil {
			return nil, fmt.Errorf("decoding subscription at %s: %w", key, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// PermanentlyDelete removes the record unconditionally. Only used to roll
// back a creation whose upstream half failed; normal deletion goes through
// Delete so the terminal record survives.
func (s *Store[D]) PermanentlyDelete(ctx context.Context, id string) error {
	return s.kv.Del(ctx, s.subKey(id))
}

// Delete transitions the subscription to the terminal status for reason and
// returns the pre-mutation record. If the record is already terminal it
// returns nil without touching the status: callers use the nil to avoid
// double-delivering the subscription-ends event, which keeps racing deletes
// (sweeper vs. max-events trip) idempotent without locks. The event counter
// is removed in both cases.
func (s *Store[D]) Delete(ctx context.Context, id string, reason model.TerminationReason) (*model.Subscription[D], error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.kv.Del(ctx, s.counterKey(id)); err != nil {
		return nil, fmt.Errorf("deleting event counter: %w", err)
	}

	if sub.Status.Terminal() {
		return nil, nil
	}

	terminated := sub
	terminated.Status = reason.StatusFor()
	if err := s.persist(ctx, terminated); err != nil {
		return nil, err
	}

	return &sub, nil
}

func (s *Store[D]) persist(ctx context.Context, sub model.Subscription[D]) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encoding subscription: %w", err)
	}
	if err := s.kv.Set(ctx, s.subKey(sub.ID), string(data)); err != nil {
		return fmt.Errorf("persisting subscription: %w", err)
	}
	return nil
}

// --- Upstream correlation ---------------------------------------------------

func (s *Store[D]) SetUpstreamURL(ctx context.Context, id, url string) error {
	return s.kv.Set(ctx, s.urlKey(id), url)
}

// UpstreamURL returns the NEF subscription URL, or "" when no correlation
// exists.
func (s *Store[D]) UpstreamURL(ctx context.Context, id string) (string, error) {
	v, err := s.kv.Get(ctx, s.urlKey(id))
	if errors.Is(err, errKeyMissing) {
		return "", nil
	}
	return v, err
}

// --- Last-observed state ----------------------------------------------------

// State returns the last-observed domain state and whether one was recorded.
func (s *Store[D]) State(ctx context.Context, id string) (string, bool, error) {
	v, err := s.kv.Get(ctx, s.stateKey(id))
	if errors.Is(err, errKeyMissing) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store[D]) SetState(ctx context.Context, id, state string) error {
	return s.kv.Set(ctx, s.stateKey(id), state)
}

// PurgeAux deletes the correlation and state keys. Called on deletion after
// the upstream removal has been scheduled.
func (s *Store[D]) PurgeAux(ctx context.Context, id string) error {
	return s.kv.Del(ctx, s.urlKey(id), s.stateKey(id))
}

// --- Event counter ----------------------------------------------------------

// IncrCounter atomically increments the delivered-event counter and returns
// the new value.
func (s *Store[D]) IncrCounter(ctx context.Context, id string) (int64, error) {
	return s.kv.Incr(ctx, s.counterKey(id))
}
