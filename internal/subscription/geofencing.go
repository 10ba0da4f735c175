package subscription

import (
	"context"
	"log/slog"

	"telcobridge.dev/gateway/internal/geo"
	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/nef"
	"telcobridge.dev/gateway/internal/store"
)

// Last-observed geofence side, persisted per subscription. An absent key is
// the UNKNOWN state.
const (
	stateInside  = "INSIDE"
	stateOutside = "OUTSIDE"
)

const geofencingDomain = "geofencing"

// Geofencing tracks devices against a circular area through NEF
// LOCATION_REPORTING subscriptions and emits edge-triggered
// area-entered/area-left events.
type Geofencing struct {
	store        *store.Store[model.GeofencingDetail]
	nef          NEFClient
	sink         Sink
	callbackBase string
}

func NewGeofencing(st *store.Store[model.GeofencingDetail], client NEFClient, sink Sink, callbackBase string) *Geofencing {
	return &Geofencing{store: st, nef: client, sink: sink, callbackBase: callbackBase}
}

// Create registers a LOCATION_REPORTING subscription with NEF, pointing its
// notifications at this subscription's callback URL.
func (g *Geofencing) Create(ctx context.Context, req model.SubscriptionRequest[model.GeofencingDetail]) (model.Subscription[model.GeofencingDetail], error) {
	if err := validate(req.Protocol, req.Config.SubscriptionDetail.Device); err != nil {
		return model.Subscription[model.GeofencingDetail]{}, err
	}

	return createWithUpstream(ctx, g.store, g.nef, req, func(id string) nef.MonitoringEventSubscription {
		nefSub := nef.MonitoringEventSubscription{
			MonitoringType:          nef.MonitoringLocationReporting,
			NotificationDestination: callbackURL(g.callbackBase, geofencingDomain, id),
			MonitorExpireTime:       monitorExpireTime(req.Config.SubscriptionExpireTime),
			ImmediateRep:            &req.Config.InitialEvent,
		}
		nefSub.InstallDeviceIdentifiers(*req.Config.SubscriptionDetail.Device)
		return nefSub
	})
}

func (g *Geofencing) Get(ctx context.Context, id string) (model.Subscription[model.GeofencingDetail], error) {
	return g.store.Get(ctx, id)
}

func (g *Geofencing) List(ctx context.Context) ([]model.Subscription[model.GeofencingDetail], error) {
	return g.store.List(ctx)
}

// Delete terminates the subscription. Idempotent: a second call on an
// already-terminal record is a silent no-op and re-notifies nobody.
func (g *Geofencing) Delete(ctx context.Context, id string, reason model.TerminationReason) error {
	return terminate(ctx, g.store, g.nef, g.sink, id, reason, model.EventGeofencingSubscriptionEnd,
		func(sub model.Subscription[model.GeofencingDetail], reason model.TerminationReason) any {
			return model.GeofencingEventData{
				Device:            sub.Config.SubscriptionDetail.Device,
				Area:              &sub.Config.SubscriptionDetail.Area,
				SubscriptionID:    sub.ID,
				TerminationReason: &reason,
			}
		})
}

// HandleReport classifies one NEF monitoring report against the
// subscription's circle. Reports without a usable point are dropped.
func (g *Geofencing) HandleReport(ctx context.Context, id string, report nef.MonitoringEventReport) error {
	sub, err := g.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status != model.StatusActive {
		return ErrInactive
	}

	point := reportPoint(report)
	if point == nil {
		slog.WarnContext(ctx, "location report without a point, dropping")
		return nil
	}

	area := sub.Config.SubscriptionDetail.Area
	distance := geo.DistanceMeters(point.Lat, point.Lon, area.Center.Latitude, area.Center.Longitude)

	var candidate string
	switch {
	case distance < area.Radius:
		candidate = stateInside
	case distance > area.Radius:
		candidate = stateOutside
	default:
		// Exactly on the boundary: neither side, nothing recorded.
		return nil
	}

	last, known, err := g.store.State(ctx, id)
	if err != nil {
		return err
	}
	if known && last == candidate {
		return nil
	}
	if err := g.store.SetState(ctx, id, candidate); err != nil {
		return err
	}
	if !known && !sub.Config.InitialEvent {
		return nil
	}

	eventType := model.EventAreaLeft
	if candidate == stateInside {
		eventType = model.EventAreaEntered
	}
	if !subscribed(sub.Types, eventType) {
		return nil
	}

	emit(ctx, g.store, g.sink, sub, eventType, model.GeofencingEventData{
		Device:         sub.Config.SubscriptionDetail.Device,
		Area:           &area,
		SubscriptionID: sub.ID,
	}, g.Delete)
	return nil
}

func reportPoint(report nef.MonitoringEventReport) *nef.GeographicalCoordinates {
	if report.LocationInfo == nil || report.LocationInfo.GeographicArea == nil {
		return nil
	}
	return report.LocationInfo.GeographicArea.Point
}
