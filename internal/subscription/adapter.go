// Package subscription holds the per-domain adapters that translate CAMARA
// subscriptions into upstream NEF monitoring-event subscriptions and classify
// NEF reports back into CAMARA CloudEvents.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"telcobridge.dev/gateway/internal/apierror"
	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/nef"
	"telcobridge.dev/gateway/internal/store"
)

// ErrInactive is returned by HandleReport when the target subscription is
// already terminal; the webhook receiver uses it to schedule cleanup of the
// upstream resource that is still reporting.
var ErrInactive = errors.New("subscription: not active")

// NEFClient is the slice of the NEF client the adapters use.
type NEFClient interface {
	CreateSubscription(ctx context.Context, sub nef.MonitoringEventSubscription) (*nef.MonitoringEventSubscription, error)
	Probe(ctx context.Context, sub nef.MonitoringEventSubscription) (*nef.MonitoringEventReport, error)
	DeleteSubscriptionAsync(selfURL string)
}

// Sink delivers a CloudEvent of the given type to a consumer sink.
// Production wiring uses notify.Notifier; deliveries are fire-and-forget.
type Sink interface {
	Notify(ctx context.Context, sink, eventType string, data any)
}

// NEF rejects subscriptions without an expire time, so open-ended CAMARA
// subscriptions get one far enough out to never matter.
func monitorExpireTime(expireTime *time.Time) *time.Time {
	if expireTime != nil {
		return expireTime
	}
	farFuture := time.Now().UTC().AddDate(10, 0, 0)
	return &farFuture
}

func callbackURL(base, domain, subscriptionID string) string {
	return fmt.Sprintf("%s/callbacks/v1/%s/%s", base, domain, subscriptionID)
}

// validate enforces the CAMARA create constraints shared by every domain:
// HTTP-only sink protocol and an addressable target device.
func validate(protocol model.Protocol, device *model.Device) error {
	if protocol != model.ProtocolHTTP {
		return apierror.InvalidProtocol()
	}
	if device == nil || !device.Identifiable() {
		return apierror.UnsupportedIdentifier()
	}
	return nil
}

func subscribed(sub []string, eventType string) bool {
	for _, t := range sub {
		if t == eventType {
			return true
		}
	}
	return false
}

// createWithUpstream persists the local record first, then registers the
// upstream NEF subscription built by build, which receives the freshly
// assigned local id for the notification destination. Any failure after the
// local write rolls the record back, so no local subscription survives
// without a live upstream counterpart.
func createWithUpstream[D any](
	ctx context.Context,
	st *store.Store[D],
	client NEFClient,
	req model.SubscriptionRequest[D],
	build func(id string) nef.MonitoringEventSubscription,
) (model.Subscription[D], error) {
	var zero model.Subscription[D]

	sub, err := st.Create(ctx, req)
	if err != nil {
		return zero, err
	}

	created, err := client.CreateSubscription(ctx, build(sub.ID))
	if err != nil {
		rollback(ctx, st, client, sub.ID, nil)
		return zero, err
	}
	if err := st.SetUpstreamURL(ctx, sub.ID, *created.Self); err != nil {
		rollback(ctx, st, client, sub.ID, created.Self)
		return zero, err
	}

	return sub, nil
}

func rollback[D any](ctx context.Context, st *store.Store[D], client NEFClient, id string, selfURL *string) {
	if err := st.PermanentlyDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to roll back subscription", "error", err)
	}
	if selfURL != nil {
		client.DeleteSubscriptionAsync(*selfURL)
	}
}

// terminate moves the subscription to its terminal status and, exactly once,
// schedules upstream deletion, purges the auxiliary keys and delivers the
// subscription-ends event built by endData from the pre-termination record.
// Safe to race from the sweeper and a max-events trip: the store's terminal
// check makes the loser a no-op.
func terminate[D any](
	ctx context.Context,
	st *store.Store[D],
	client NEFClient,
	sink Sink,
	id string,
	reason model.TerminationReason,
	endEvent string,
	endData func(sub model.Subscription[D], reason model.TerminationReason) any,
) error {
	sub, err := st.Delete(ctx, id, reason)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	if selfURL, err := st.UpstreamURL(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to load upstream subscription url", "error", err)
	} else if selfURL != "" {
		client.DeleteSubscriptionAsync(selfURL)
	}
	if err := st.PurgeAux(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to purge subscription keys", "error", err)
	}

	sink.Notify(ctx, sub.Sink, endEvent, endData(*sub, reason))
	return nil
}

// emit posts the triggering event to the sink and enforces
// subscriptionMaxEvents: the event that reaches the ceiling is still
// delivered, then the subscription is terminated with MAX_EVENTS_REACHED,
// which produces the final subscription-ends event.
func emit[D any](
	ctx context.Context,
	st *store.Store[D],
	sink Sink,
	sub model.Subscription[D],
	eventType string,
	data any,
	terminate func(context.Context, string, model.TerminationReason) error,
) {
	// A multi-type report can trip max events partway through; once the
	// subscription is terminal nothing further is delivered.
	current, err := st.Get(ctx, sub.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to load subscription before delivery", "error", err)
		}
		return
	}
	if current.Status.Terminal() {
		return
	}

	sink.Notify(ctx, sub.Sink, eventType, data)

	if sub.Config.SubscriptionMaxEvents == nil {
		return
	}
	n, err := st.IncrCounter(ctx, sub.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to increment event counter", "error", err)
		return
	}
	if n >= int64(*sub.Config.SubscriptionMaxEvents) {
		if err := terminate(ctx, sub.ID, model.TerminationMaxEventsReached); err != nil {
			slog.ErrorContext(ctx, "failed to terminate subscription at max events", "error", err)
		}
	}
}
