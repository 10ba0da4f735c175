package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Handlers and adapters enrich the context once and every log
// statement downstream carries the subscription/domain identifiers.
type LogFields struct {
	SubscriptionID *string // Gateway subscription ID
	Domain         *string // Subscription domain ("geofencing", "roaming-status", ...)
	EventType      *string // CAMARA event type currently being processed
	Correlator     *string // Inbound x-correlator header value
	Component      string  // Component name (e.g., "gateway.subscription.sweeper")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.SubscriptionID != nil {
		result.SubscriptionID = next.SubscriptionID
	}
	if next.Domain != nil {
		result.Domain = next.Domain
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.Correlator != nil {
		result.Correlator = next.Correlator
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline.
func Ptr[T any](v T) *T {
	return &v
}
