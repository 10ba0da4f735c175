package subscription

import (
	"context"
	"log/slog"
	"time"

	"telcobridge.dev/gateway/internal/apierror"
	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/nef"
	"telcobridge.dev/gateway/internal/store"
)

const reachabilityDomain = "reachability-status"

// Reachability maps CAMARA reachability subscriptions onto NEF
// UE_REACHABILITY and LOSS_OF_CONNECTIVITY monitoring. Unlike the other
// domains there is no persisted state diffing: NEF reports already are the
// edges and map 1:1 onto CAMARA events.
type Reachability struct {
	store        *store.Store[model.DeviceDetail]
	nef          NEFClient
	sink         Sink
	callbackBase string
}

func NewReachability(st *store.Store[model.DeviceDetail], client NEFClient, sink Sink, callbackBase string) *Reachability {
	return &Reachability{store: st, nef: client, sink: sink, callbackBase: callbackBase}
}

func (r *Reachability) Create(ctx context.Context, req model.SubscriptionRequest[model.DeviceDetail]) (model.Subscription[model.DeviceDetail], error) {
	if err := validate(req.Protocol, req.Config.SubscriptionDetail.Device); err != nil {
		return model.Subscription[model.DeviceDetail]{}, err
	}
	if len(req.Types) == 0 {
		return model.Subscription[model.DeviceDetail]{}, apierror.InvalidArgument("types must contain a reachability event type")
	}

	monitoringType, reachabilityType, ok := upstreamMonitoring(req.Types[0])
	if !ok {
		return model.Subscription[model.DeviceDetail]{}, apierror.InvalidArgument("unknown event type " + req.Types[0])
	}

	return createWithUpstream(ctx, r.store, r.nef, req, func(id string) nef.MonitoringEventSubscription {
		nefSub := nef.MonitoringEventSubscription{
			MonitoringType:          monitoringType,
			ReachabilityType:        reachabilityType,
			NotificationDestination: callbackURL(r.callbackBase, reachabilityDomain, id),
			MonitorExpireTime:       monitorExpireTime(req.Config.SubscriptionExpireTime),
			ImmediateRep:            &req.Config.InitialEvent,
		}
		nefSub.InstallDeviceIdentifiers(*req.Config.SubscriptionDetail.Device)
		return nefSub
	})
}

// upstreamMonitoring resolves a subscribed CAMARA event type to the NEF
// monitoring configuration that produces it.
func upstreamMonitoring(eventType string) (nef.MonitoringType, *nef.ReachabilityType, bool) {
	switch eventType {
	case model.EventReachabilityData:
		t := nef.ReachabilityData
		return nef.MonitoringUEReachability, &t, true
	case model.EventReachabilitySMS:
		t := nef.ReachabilitySMS
		return nef.MonitoringUEReachability, &t, true
	case model.EventReachabilityDisconnected:
		return nef.MonitoringLossOfConnectivity, nil, true
	default:
		return "", nil, false
	}
}

func (r *Reachability) Get(ctx context.Context, id string) (model.Subscription[model.DeviceDetail], error) {
	return r.store.Get(ctx, id)
}

func (r *Reachability) List(ctx context.Context) ([]model.Subscription[model.DeviceDetail], error) {
	return r.store.List(ctx)
}

func (r *Reachability) Delete(ctx context.Context, id string, reason model.TerminationReason) error {
	return terminate(ctx, r.store, r.nef, r.sink, id, reason, model.EventReachabilitySubscriptionEnd,
		func(sub model.Subscription[model.DeviceDetail], reason model.TerminationReason) any {
			return model.ReachabilityEventData{
				Device:            sub.Config.SubscriptionDetail.Device,
				SubscriptionID:    sub.ID,
				TerminationReason: &reason,
			}
		})
}

// HandleReport translates a NEF report directly into its CAMARA event.
func (r *Reachability) HandleReport(ctx context.Context, id string, report nef.MonitoringEventReport) error {
	sub, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status != model.StatusActive {
		return ErrInactive
	}

	eventType, ok := reportEventType(report)
	if !ok {
		slog.WarnContext(ctx, "unclassifiable reachability report, dropping",
			"monitoring_type", string(report.MonitoringType))
		return nil
	}
	if !subscribed(sub.Types, eventType) {
		return nil
	}

	emit(ctx, r.store, r.sink, sub, eventType, model.ReachabilityEventData{
		Device:         sub.Config.SubscriptionDetail.Device,
		SubscriptionID: sub.ID,
	}, r.Delete)
	return nil
}

func reportEventType(report nef.MonitoringEventReport) (string, bool) {
	switch report.MonitoringType {
	case nef.MonitoringLossOfConnectivity:
		return model.EventReachabilityDisconnected, true
	case nef.MonitoringUEReachability:
		if report.ReachabilityType != nil && *report.ReachabilityType == nef.ReachabilitySMS {
			return model.EventReachabilitySMS, true
		}
		return model.EventReachabilityData, true
	default:
		return "", false
	}
}

// Retrieve answers the one-shot reachability query with a probe per
// connectivity type. A probe that yields no immediate UE_REACHABILITY report
// counts as unreachable on that path.
func (r *Reachability) Retrieve(ctx context.Context, device *model.Device) (model.ReachabilityStatusResponse, error) {
	if device == nil || !device.Identifiable() {
		return model.ReachabilityStatusResponse{}, apierror.UnsupportedIdentifier()
	}

	var connectivity []model.ConnectivityType
	for _, probe := range []struct {
		reachability nef.ReachabilityType
		connectivity model.ConnectivityType
	}{
		{nef.ReachabilityData, model.ConnectivityData},
		{nef.ReachabilitySMS, model.ConnectivitySMS},
	} {
		reachabilityType := probe.reachability
		sub := nef.MonitoringEventSubscription{
			MonitoringType:    nef.MonitoringUEReachability,
			ReachabilityType:  &reachabilityType,
			AddnMonTypes:      []nef.MonitoringType{nef.MonitoringLossOfConnectivity},
			MonitorExpireTime: monitorExpireTime(nil),
		}
		sub.InstallDeviceIdentifiers(*device)

		report, err := r.nef.Probe(ctx, sub)
		if err != nil {
			return model.ReachabilityStatusResponse{}, err
		}
		if report != nil && report.MonitoringType == nef.MonitoringUEReachability {
			connectivity = append(connectivity, probe.connectivity)
		}
	}

	resp := model.ReachabilityStatusResponse{
		Reachable:    len(connectivity) > 0,
		Connectivity: connectivity,
	}
	if resp.Reachable {
		now := time.Now().UTC()
		resp.LastStatusTime = &now
	}
	return resp, nil
}
