// Package webhook receives the NEF monitoring-event callbacks and routes
// them to the owning domain adapter.
package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"telcobridge.dev/gateway/common/logger"
	"telcobridge.dev/gateway/internal/nef"
	"telcobridge.dev/gateway/internal/store"
	"telcobridge.dev/gateway/internal/subscription"
)

// ReportHandler is the adapter side of report processing.
type ReportHandler interface {
	HandleReport(ctx context.Context, id string, report nef.MonitoringEventReport) error
}

// Cleaner removes a dangling upstream subscription so NEF stops notifying
// for records this gateway no longer tracks.
type Cleaner interface {
	DeleteSubscriptionAsync(selfURL string)
}

// Handler serves one domain's callback endpoint. The local subscription id
// is carried in the callback path, registered with NEF at create time; NEF
// itself is never told about local processing problems, so every callback
// answers 204.
type Handler struct {
	domain  string
	reports ReportHandler
	cleaner Cleaner
}

func New(domain string, reports ReportHandler, cleaner Cleaner) *Handler {
	return &Handler{domain: domain, reports: reports, cleaner: cleaner}
}

func (h *Handler) Notify(c *gin.Context) {
	subscriptionID := c.Param("subscriptionId")
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		Component:      "gateway.webhook",
		Domain:         logger.Ptr(h.domain),
		SubscriptionID: logger.Ptr(subscriptionID),
	})

	var notification nef.MonitoringNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		slog.WarnContext(ctx, "undecodable NEF notification", "error", err)
		c.Status(http.StatusNoContent)
		return
	}

	for _, report := range notification.MonitoringEventReports {
		err := h.reports.HandleReport(ctx, subscriptionID, report)
		switch {
		case err == nil:
		case errors.Is(err, store.ErrNotFound), errors.Is(err, subscription.ErrInactive):
			slog.WarnContext(ctx, "notification for unknown or inactive subscription", "error", err)
			if notification.Subscription != "" {
				h.cleaner.DeleteSubscriptionAsync(notification.Subscription)
			}
		default:
			slog.ErrorContext(ctx, "failed to process NEF report", "error", err)
		}
	}

	c.Status(http.StatusNoContent)
}
