package model

// Device identifies the target device of a subscription or retrieval the way
// CAMARA does: by phone number (MSISDN), network access identifier (GPSI
// external identifier), or IP address.
type Device struct {
	PhoneNumber             *string         `json:"phoneNumber,omitempty"`
	NetworkAccessIdentifier *string         `json:"networkAccessIdentifier,omitempty"`
	IPv4Address             *DeviceIPv4Addr `json:"ipv4Address,omitempty"`
	IPv6Address             *string         `json:"ipv6Address,omitempty"`
}

type DeviceIPv4Addr struct {
	PublicAddress  string  `json:"publicAddress"`
	PrivateAddress *string `json:"privateAddress,omitempty"`
	PublicPort     *int    `json:"publicPort,omitempty"`
}

// Identifiable reports whether the device carries at least one identifier the
// NEF monitoring-event API can address.
func (d Device) Identifiable() bool {
	return d.PhoneNumber != nil || d.IPv4Address != nil || d.IPv6Address != nil || d.NetworkAccessIdentifier != nil
}
