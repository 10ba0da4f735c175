package model

import "time"

const (
	SpecVersion     = "1.0"
	DataContentType = "application/json"
)

// CloudEvent is the notification envelope delivered to subscriber sinks.
// Ephemeral: built per notification, never persisted.
type CloudEvent struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	Type            string    `json:"type"`
	SpecVersion     string    `json:"specversion"`
	DataContentType string    `json:"datacontenttype"`
	Data            any       `json:"data"`
	Time            time.Time `json:"time"`
}
