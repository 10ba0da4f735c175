package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"telcobridge.dev/gateway/internal/apierror"
	"telcobridge.dev/gateway/internal/http/dto"
	"telcobridge.dev/gateway/internal/model"
)

// SubscriptionService is what a domain adapter exposes to the HTTP layer.
type SubscriptionService[D any] interface {
	Create(ctx context.Context, req model.SubscriptionRequest[D]) (model.Subscription[D], error)
	Get(ctx context.Context, id string) (model.Subscription[D], error)
	List(ctx context.Context) ([]model.Subscription[D], error)
	Delete(ctx context.Context, id string, reason model.TerminationReason) error
}

// SubscriptionHandler serves one domain's subscription CRUD. validateDetail
// carries the domain's extra payload checks beyond binding, if any.
type SubscriptionHandler[D any] struct {
	svc            SubscriptionService[D]
	validateDetail func(D) error
}

func NewSubscriptionHandler[D any](svc SubscriptionService[D], validateDetail func(D) error) *SubscriptionHandler[D] {
	return &SubscriptionHandler[D]{svc: svc, validateDetail: validateDetail}
}

func (h *SubscriptionHandler[D]) Create(c *gin.Context) {
	var req dto.CreateSubscriptionRequest[D]
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, apierror.InvalidArgument(err.Error()))
		return
	}
	if h.validateDetail != nil {
		if err := h.validateDetail(req.Config.SubscriptionDetail); err != nil {
			renderError(c, err)
			return
		}
	}

	sub, err := h.svc.Create(c.Request.Context(), req.Model())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler[D]) List(c *gin.Context) {
	subs, err := h.svc.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	if subs == nil {
		subs = []model.Subscription[D]{}
	}
	c.JSON(http.StatusOK, subs)
}

func (h *SubscriptionHandler[D]) Get(c *gin.Context) {
	sub, err := h.svc.Get(c.Request.Context(), c.Param("subscriptionId"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler[D]) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("subscriptionId"), model.TerminationSubscriptionDeleted)
	if err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Retrieve wraps a domain's one-shot status query into a handler.
func Retrieve[R any](retrieve func(ctx context.Context, device *model.Device) (R, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RetrieveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			renderError(c, apierror.InvalidArgument(err.Error()))
			return
		}

		resp, err := retrieve(c.Request.Context(), req.Device)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ValidateGeofencingDetail enforces the circle constraints binding cannot
// express.
func ValidateGeofencingDetail(detail model.GeofencingDetail) error {
	area := detail.Area
	if area.AreaType != model.AreaTypeCircle {
		return apierror.InvalidArgument("area.areaType must be CIRCLE")
	}
	if area.Radius <= 0 {
		return apierror.InvalidArgument("area.radius must be positive")
	}
	if area.Center.Latitude < -90 || area.Center.Latitude > 90 ||
		area.Center.Longitude < -180 || area.Center.Longitude > 180 {
		return apierror.InvalidArgument("area.center is out of range")
	}
	return nil
}
