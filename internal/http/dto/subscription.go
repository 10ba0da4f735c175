// Package dto defines the request payloads with their binding rules; the
// response shapes come straight from internal/model.
package dto

import (
	"time"

	"telcobridge.dev/gateway/internal/model"
)

type CreateSubscriptionRequest[D any] struct {
	Protocol       string                `json:"protocol" binding:"required"`
	Sink           string                `json:"sink" binding:"required,url"`
	SinkCredential *model.SinkCredential `json:"sinkCredential"`
	Types          []string              `json:"types" binding:"required,len=1"`
	Config         SubscriptionConfig[D] `json:"config" binding:"required"`
}

type SubscriptionConfig[D any] struct {
	SubscriptionDetail     D          `json:"subscriptionDetail"`
	SubscriptionExpireTime *time.Time `json:"subscriptionExpireTime"`
	SubscriptionMaxEvents  *int       `json:"subscriptionMaxEvents" binding:"omitempty,gt=0"`
	InitialEvent           bool       `json:"initialEvent"`
}

func (r CreateSubscriptionRequest[D]) Model() model.SubscriptionRequest[D] {
	return model.SubscriptionRequest[D]{
		Protocol:       model.Protocol(r.Protocol),
		Sink:           r.Sink,
		SinkCredential: r.SinkCredential,
		Types:          r.Types,
		Config: model.SubscriptionConfig[D]{
			SubscriptionDetail:     r.Config.SubscriptionDetail,
			SubscriptionExpireTime: r.Config.SubscriptionExpireTime,
			SubscriptionMaxEvents:  r.Config.SubscriptionMaxEvents,
			InitialEvent:           r.Config.InitialEvent,
		},
	}
}

// RetrieveRequest is the body of the one-shot POST /retrieve endpoints.
type RetrieveRequest struct {
	Device *model.Device `json:"device" binding:"required"`
}
