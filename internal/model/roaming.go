package model

import "time"

// CAMARA device-roaming-status-subscriptions event types.
const (
	EventRoamingStatus          = "org.camaraproject.device-roaming-status-subscriptions.v0.roaming-status"
	EventRoamingOn              = "org.camaraproject.device-roaming-status-subscriptions.v0.roaming-on"
	EventRoamingOff             = "org.camaraproject.device-roaming-status-subscriptions.v0.roaming-off"
	EventRoamingChangeCountry   = "org.camaraproject.device-roaming-status-subscriptions.v0.roaming-change-country"
	EventRoamingSubscriptionEnd = "org.camaraproject.device-roaming-status-subscriptions.v0.subscription-ends"
)

// DeviceDetail is the subscriptionDetail payload shared by the roaming and
// reachability domains: just the target device.
type DeviceDetail struct {
	Device *Device `json:"device,omitempty"`
}

// RoamingStatusResponse answers the one-shot roaming retrieval.
type RoamingStatusResponse struct {
	LastStatusTime *time.Time `json:"lastStatusTime,omitempty"`
	Roaming        bool       `json:"roaming"`
	// CountryCode is the mobile country code (MCC) of the serving network.
	CountryCode *int `json:"countryCode,omitempty"`
	// CountryName lists the ISO 3166 alpha-2 codes the MCC maps to; an MCC
	// can span multiple countries.
	CountryName []string `json:"countryName,omitempty"`
}

// RoamingEventData is the CloudEvent data payload for roaming notifications.
// Roaming is non-nil only on roaming-status events; CountryCode/CountryName
// only on roaming-status and roaming-change-country; TerminationReason only
// on subscription-ends.
type RoamingEventData struct {
	Device            *Device            `json:"device,omitempty"`
	SubscriptionID    string             `json:"subscriptionId"`
	Roaming           *bool              `json:"roaming,omitempty"`
	CountryCode       *int               `json:"countryCode,omitempty"`
	CountryName       []string           `json:"countryName,omitempty"`
	TerminationReason *TerminationReason `json:"terminationReason,omitempty"`
}
