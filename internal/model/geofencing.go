package model

// CAMARA geofencing-subscriptions event types.
const (
	EventAreaEntered               = "org.camaraproject.geofencing-subscriptions.v0.area-entered"
	EventAreaLeft                  = "org.camaraproject.geofencing-subscriptions.v0.area-left"
	EventGeofencingSubscriptionEnd = "org.camaraproject.geofencing-subscriptions.v0.subscription-ends"
)

type AreaType string

const AreaTypeCircle AreaType = "CIRCLE"

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Circle is the only supported geofence shape.
type Circle struct {
	AreaType AreaType `json:"areaType"`
	Center   Point    `json:"center"`
	// Radius in meters from center.
	Radius float64 `json:"radius"`
}

// GeofencingDetail is the geofencing subscriptionDetail payload.
type GeofencingDetail struct {
	Device *Device `json:"device,omitempty"`
	Area   Circle  `json:"area"`
}

// GeofencingEventData is the CloudEvent data payload for all geofencing
// notifications; TerminationReason is set only on subscription-ends.
type GeofencingEventData struct {
	Device            *Device            `json:"device,omitempty"`
	Area              *Circle            `json:"area,omitempty"`
	SubscriptionID    string             `json:"subscriptionId"`
	TerminationReason *TerminationReason `json:"terminationReason,omitempty"`
}
