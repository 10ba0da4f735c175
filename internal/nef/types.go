package nef

import (
	"time"

	"telcobridge.dev/gateway/internal/model"
)

// 3GPP TS 29.522 monitoring-event API wire types, limited to the fields this
// gateway reads and writes.

type MonitoringType string

const (
	MonitoringLocationReporting  MonitoringType = "LOCATION_REPORTING"
	MonitoringLossOfConnectivity MonitoringType = "LOSS_OF_CONNECTIVITY"
	MonitoringUEReachability     MonitoringType = "UE_REACHABILITY"
	MonitoringRoamingStatus      MonitoringType = "ROAMING_STATUS"
)

type ReachabilityType string

const (
	ReachabilitySMS  ReachabilityType = "SMS"
	ReachabilityData ReachabilityType = "DATA"
)

const ShapePoint = "POINT"

type MonitoringEventSubscription struct {
	ExternalID              *string           `json:"externalId,omitempty"`
	MSISDN                  *string           `json:"msisdn,omitempty"`
	IPv4Addr                *string           `json:"ipv4Addr,omitempty"`
	IPv6Addr                *string           `json:"ipv6Addr,omitempty"`
	NotificationDestination string            `json:"notificationDestination,omitempty"`
	MonitoringType          MonitoringType    `json:"monitoringType"`
	MaximumNumberOfReports  *int              `json:"maximumNumberOfReports,omitempty"`
	MonitorExpireTime       *time.Time        `json:"monitorExpireTime,omitempty"`
	Self                    *string           `json:"self,omitempty"`
	ImmediateRep            *bool             `json:"immediateRep,omitempty"`
	AddnMonTypes            []MonitoringType  `json:"addnMonTypes,omitempty"`
	ReachabilityType        *ReachabilityType `json:"reachabilityType,omitempty"`
	PLMNIndication          *bool             `json:"plmnIndication,omitempty"`
}

// InstallDeviceIdentifiers copies the first usable identifier of the device
// onto the subscription, in the NEF's preference order.
func (s *MonitoringEventSubscription) InstallDeviceIdentifiers(device model.Device) {
	switch {
	case device.PhoneNumber != nil:
		msisdn := strippedMSISDN(*device.PhoneNumber)
		s.MSISDN = &msisdn
	case device.IPv4Address != nil:
		addr := device.IPv4Address.PublicAddress
		s.IPv4Addr = &addr
	case device.IPv6Address != nil:
		s.IPv6Addr = device.IPv6Address
	case device.NetworkAccessIdentifier != nil:
		s.ExternalID = device.NetworkAccessIdentifier
	}
}

// strippedMSISDN drops the E.164 leading plus; NEF expects bare digits.
func strippedMSISDN(phoneNumber string) string {
	if len(phoneNumber) > 0 && phoneNumber[0] == '+' {
		return phoneNumber[1:]
	}
	return phoneNumber
}

type PLMNID struct {
	MCC int `json:"mcc"`
	MNC int `json:"mnc,omitempty"`
}

type GeographicalCoordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type GeographicArea struct {
	Shape string                   `json:"shape"`
	Point *GeographicalCoordinates `json:"point,omitempty"`
}

type LocationInfo struct {
	GeographicArea *GeographicArea `json:"geographicArea,omitempty"`
}

type MonitoringEventReport struct {
	LocationInfo        *LocationInfo     `json:"locationInfo,omitempty"`
	MonitoringType      MonitoringType    `json:"monitoringType"`
	ReachabilityType    *ReachabilityType `json:"reachabilityType,omitempty"`
	LossOfConnectReason *int              `json:"lossOfConnectReason,omitempty"`
	RoamingStatus       *bool             `json:"roamingStatus,omitempty"`
	PLMNID              *PLMNID           `json:"plmnId,omitempty"`
}

// MonitoringNotification is the callback body NEF posts to the gateway.
type MonitoringNotification struct {
	Subscription           string                  `json:"subscription"`
	MonitoringEventReports []MonitoringEventReport `json:"monitoringEventReports,omitempty"`
}
