package model

import "time"

// CAMARA device-reachability-status-subscriptions event types.
const (
	EventReachabilityData            = "org.camaraproject.device-reachability-status-subscriptions.v0.reachability-data"
	EventReachabilitySMS             = "org.camaraproject.device-reachability-status-subscriptions.v0.reachability-sms"
	EventReachabilityDisconnected    = "org.camaraproject.device-reachability-status-subscriptions.v0.reachability-disconnected"
	EventReachabilitySubscriptionEnd = "org.camaraproject.device-reachability-status-subscriptions.v0.subscription-ends"
)

type ConnectivityType string

const (
	ConnectivityData ConnectivityType = "DATA"
	ConnectivitySMS  ConnectivityType = "SMS"
)

// ReachabilityStatusResponse answers the one-shot reachability retrieval.
type ReachabilityStatusResponse struct {
	LastStatusTime *time.Time         `json:"lastStatusTime,omitempty"`
	Reachable      bool               `json:"reachable"`
	Connectivity   []ConnectivityType `json:"connectivity,omitempty"`
}

// ReachabilityEventData is the CloudEvent data payload for reachability
// notifications.
type ReachabilityEventData struct {
	Device            *Device            `json:"device,omitempty"`
	SubscriptionID    string             `json:"subscriptionId"`
	TerminationReason *TerminationReason `json:"terminationReason,omitempty"`
}
