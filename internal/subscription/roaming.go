package subscription

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"telcobridge.dev/gateway/internal/apierror"
	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/nef"
	"telcobridge.dev/gateway/internal/store"
)

const roamingDomain = "roaming-status"

// Last-observed roaming state is a single integer string: -1 when the device
// was last seen on its home network, the serving MCC while roaming. An
// absent key means no observation yet.
const notRoamingState = -1

// Roaming watches a device's serving network through NEF ROAMING_STATUS
// subscriptions and classifies each report against the last observation.
type Roaming struct {
	store        *store.Store[model.DeviceDetail]
	nef          NEFClient
	sink         Sink
	callbackBase string
}

func NewRoaming(st *store.Store[model.DeviceDetail], client NEFClient, sink Sink, callbackBase string) *Roaming {
	return &Roaming{store: st, nef: client, sink: sink, callbackBase: callbackBase}
}

func (r *Roaming) Create(ctx context.Context, req model.SubscriptionRequest[model.DeviceDetail]) (model.Subscription[model.DeviceDetail], error) {
	if err := validate(req.Protocol, req.Config.SubscriptionDetail.Device); err != nil {
		return model.Subscription[model.DeviceDetail]{}, err
	}

	return createWithUpstream(ctx, r.store, r.nef, req, func(id string) nef.MonitoringEventSubscription {
		plmn := true
		nefSub := nef.MonitoringEventSubscription{
			MonitoringType:          nef.MonitoringRoamingStatus,
			NotificationDestination: callbackURL(r.callbackBase, roamingDomain, id),
			MonitorExpireTime:       monitorExpireTime(req.Config.SubscriptionExpireTime),
			ImmediateRep:            &req.Config.InitialEvent,
			PLMNIndication:          &plmn,
		}
		nefSub.InstallDeviceIdentifiers(*req.Config.SubscriptionDetail.Device)
		return nefSub
	})
}

func (r *Roaming) Get(ctx context.Context, id string) (model.Subscription[model.DeviceDetail], error) {
	return r.store.Get(ctx, id)
}

func (r *Roaming) List(ctx context.Context) ([]model.Subscription[model.DeviceDetail], error) {
	return r.store.List(ctx)
}

func (r *Roaming) Delete(ctx context.Context, id string, reason model.TerminationReason) error {
	return terminate(ctx, r.store, r.nef, r.sink, id, reason, model.EventRoamingSubscriptionEnd,
		func(sub model.Subscription[model.DeviceDetail], reason model.TerminationReason) any {
			return model.RoamingEventData{
				Device:            sub.Config.SubscriptionDetail.Device,
				SubscriptionID:    sub.ID,
				TerminationReason: &reason,
			}
		})
}

// HandleReport classifies one ROAMING_STATUS report. Which transitions are
// notified depends on the subscribed event type; every report updates the
// last-observed state regardless.
func (r *Roaming) HandleReport(ctx context.Context, id string, report nef.MonitoringEventReport) error {
	sub, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status != model.StatusActive {
		return ErrInactive
	}
	if report.RoamingStatus == nil {
		slog.WarnContext(ctx, "roaming report without a status, dropping")
		return nil
	}

	roaming := *report.RoamingStatus
	mcc := notRoamingState
	if roaming {
		mcc = 0
		if report.PLMNID != nil {
			mcc = report.PLMNID.MCC
		}
	}

	lastRaw, known, err := r.store.State(ctx, id)
	if err != nil {
		return err
	}
	lastMCC := notRoamingState
	if known {
		if lastMCC, err = strconv.Atoi(lastRaw); err != nil {
			slog.ErrorContext(ctx, "corrupt roaming state, treating as unknown", "state", lastRaw)
			known = false
			lastMCC = notRoamingState
		}
	}
	wasRoaming := known && lastMCC != notRoamingState

	if err := r.store.SetState(ctx, id, strconv.Itoa(mcc)); err != nil {
		return err
	}

	device := sub.Config.SubscriptionDetail.Device
	for _, eventType := range sub.Types {
		data := model.RoamingEventData{Device: device, SubscriptionID: sub.ID}

		switch eventType {
		case model.EventRoamingStatus:
			if !known && !sub.Config.InitialEvent {
				continue
			}
			data.Roaming = &roaming
			if roaming {
				code := mcc
				data.CountryCode = &code
				data.CountryName = countryNames(mcc)
			}
		case model.EventRoamingOn:
			if !roaming {
				continue
			}
			if wasRoaming || (!known && !sub.Config.InitialEvent) {
				continue
			}
		case model.EventRoamingOff:
			if roaming {
				continue
			}
			if known && !wasRoaming {
				continue
			}
			if !known && !sub.Config.InitialEvent {
				continue
			}
		case model.EventRoamingChangeCountry:
			if !roaming || !wasRoaming {
				continue
			}
			// A report without plmnId observes roaming but not the
			// serving country; a placeholder on either side of the
			// diff is not an observed country change.
			if mcc == 0 || lastMCC == 0 || sameCountries(lastMCC, mcc) {
				continue
			}
			code := mcc
			data.CountryCode = &code
			data.CountryName = countryNames(mcc)
		default:
			continue
		}

		emit(ctx, r.store, r.sink, sub, eventType, data, r.Delete)
	}
	return nil
}

// Retrieve answers the one-shot roaming query with a probe subscription; a
// probe without an immediate report means the status is not currently known
// and reads as not roaming.
func (r *Roaming) Retrieve(ctx context.Context, device *model.Device) (model.RoamingStatusResponse, error) {
	if device == nil || !device.Identifiable() {
		return model.RoamingStatusResponse{}, apierror.UnsupportedIdentifier()
	}

	plmn := true
	probe := nef.MonitoringEventSubscription{
		MonitoringType:    nef.MonitoringRoamingStatus,
		MonitorExpireTime: monitorExpireTime(nil),
		PLMNIndication:    &plmn,
	}
	probe.InstallDeviceIdentifiers(*device)

	report, err := r.nef.Probe(ctx, probe)
	if err != nil {
		return model.RoamingStatusResponse{}, err
	}
	if report == nil || report.RoamingStatus == nil {
		return model.RoamingStatusResponse{Roaming: false}, nil
	}

	now := time.Now().UTC()
	resp := model.RoamingStatusResponse{
		LastStatusTime: &now,
		Roaming:        *report.RoamingStatus,
	}
	if resp.Roaming && report.PLMNID != nil {
		code := report.PLMNID.MCC
		resp.CountryCode = &code
		resp.CountryName = countryNames(code)
	}
	return resp, nil
}
