package model

import "time"

type Protocol string

const (
	ProtocolHTTP  Protocol = "HTTP"
	ProtocolMQTT3 Protocol = "MQTT3"
	ProtocolMQTT5 Protocol = "MQTT5"
	ProtocolAMQP  Protocol = "AMQP"
	ProtocolNATS  Protocol = "NATS"
	ProtocolKafka Protocol = "KAFKA"
)

type SubscriptionStatus string

const (
	StatusActivationRequested SubscriptionStatus = "ACTIVATION_REQUESTED"
	StatusActive              SubscriptionStatus = "ACTIVE"
	StatusExpired             SubscriptionStatus = "EXPIRED"
	StatusInactive            SubscriptionStatus = "INACTIVE"
	StatusDeleted             SubscriptionStatus = "DELETED"
)

// Terminal reports whether the status is an end state. Status transitions are
// monotone: once terminal, a subscription never becomes ACTIVE again.
func (s SubscriptionStatus) Terminal() bool {
	return s == StatusExpired || s == StatusDeleted
}

type TerminationReason string

const (
	TerminationMaxEventsReached          TerminationReason = "MAX_EVENTS_REACHED"
	TerminationNetworkTerminated         TerminationReason = "NETWORK_TERMINATED"
	TerminationSubscriptionUnprocessable TerminationReason = "SUBSCRIPTION_UNPROCESSABLE"
	TerminationSubscriptionExpired       TerminationReason = "SUBSCRIPTION_EXPIRED"
	TerminationSubscriptionDeleted       TerminationReason = "SUBSCRIPTION_DELETED"
	TerminationAccessTokenExpired        TerminationReason = "ACCESS_TOKEN_EXPIRED"
)

// StatusFor maps a termination reason onto the final subscription status.
func (r TerminationReason) StatusFor() SubscriptionStatus {
	switch r {
	case TerminationSubscriptionDeleted:
		return StatusDeleted
	default:
		return StatusExpired
	}
}

type CredentialType string

const (
	CredentialPlain        CredentialType = "PLAIN"
	CredentialAccessToken  CredentialType = "ACCESSTOKEN"
	CredentialRefreshToken CredentialType = "REFRESHTOKEN"
)

// SinkCredential is accepted and stored for CAMARA schema compatibility but
// never applied to deliveries; sink posting is unauthenticated.
type SinkCredential struct {
	CredentialType        CredentialType `json:"credentialType"`
	Identifier            *string        `json:"identifier,omitempty"`
	Secret                *string        `json:"secret,omitempty"`
	AccessToken           *string        `json:"accessToken,omitempty"`
	AccessTokenExpiresUTC *time.Time     `json:"accessTokenExpiresUtc,omitempty"`
	AccessTokenType       *string        `json:"accessTokenType,omitempty"`
	RefreshToken          *string        `json:"refreshToken,omitempty"`
	RefreshTokenEndpoint  *string        `json:"refreshTokenEndpoint,omitempty"`
}

// SubscriptionConfig is the consumer-supplied configuration, generic over the
// domain's subscriptionDetail shape.
type SubscriptionConfig[D any] struct {
	SubscriptionDetail     D          `json:"subscriptionDetail"`
	SubscriptionExpireTime *time.Time `json:"subscriptionExpireTime,omitempty"`
	SubscriptionMaxEvents  *int       `json:"subscriptionMaxEvents,omitempty"`
	InitialEvent           bool       `json:"initialEvent,omitempty"`
}

// SubscriptionRequest is the inbound creation payload.
type SubscriptionRequest[D any] struct {
	Protocol       Protocol              `json:"protocol"`
	Sink           string                `json:"sink"`
	SinkCredential *SinkCredential       `json:"sinkCredential,omitempty"`
	Types          []string              `json:"types"`
	Config         SubscriptionConfig[D] `json:"config"`
}

// Subscription is the stored and returned subscription record. The id is
// assigned exactly once at creation and is immutable; all mutation goes
// through the store.
type Subscription[D any] struct {
	Protocol       Protocol              `json:"protocol"`
	Sink           string                `json:"sink"`
	SinkCredential *SinkCredential       `json:"sinkCredential,omitempty"`
	Types          []string              `json:"types"`
	Config         SubscriptionConfig[D] `json:"config"`
	ID             string                `json:"id"`
	StartsAt       time.Time             `json:"startsAt"`
	ExpiresAt      *time.Time            `json:"expiresAt,omitempty"`
	Status         SubscriptionStatus    `json:"status,omitempty"`
}

// Expired reports whether the subscription's expire time has passed.
func (s Subscription[D]) Expired(now time.Time) bool {
	return s.Config.SubscriptionExpireTime != nil && now.After(*s.Config.SubscriptionExpireTime)
}
