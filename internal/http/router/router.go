package router

import (
	"github.com/gin-gonic/gin"

	"telcobridge.dev/gateway/core/config"
	"telcobridge.dev/gateway/internal/http/handler"
	"telcobridge.dev/gateway/internal/http/handler/webhook"
	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/otp"
	"telcobridge.dev/gateway/internal/sms"
	"telcobridge.dev/gateway/internal/subscription"
)

// Dependencies carries the constructed adapters and drivers the routes are
// wired to.
type Dependencies struct {
	Geofencing   *subscription.Geofencing
	Roaming      *subscription.Roaming
	Reachability *subscription.Reachability
	OTPStore     otp.Store
	SMSSender    sms.Sender
	Cleaner      webhook.Cleaner
}

func SetupRoutes(router *gin.Engine, deps Dependencies, cfg config.Config) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	geofencing := handler.NewSubscriptionHandler(deps.Geofencing, handler.ValidateGeofencingDetail)
	SubscriptionRouter(router.Group("/geofencing-subscriptions/v0.3"), geofencing)

	roaming := handler.NewSubscriptionHandler[model.DeviceDetail](deps.Roaming, nil)
	roamingGroup := router.Group("/device-roaming-status-subscriptions/v0.7")
	SubscriptionRouter(roamingGroup, roaming)
	roamingGroup.POST("/retrieve", handler.Retrieve(deps.Roaming.Retrieve))

	reachability := handler.NewSubscriptionHandler[model.DeviceDetail](deps.Reachability, nil)
	reachabilityGroup := router.Group("/device-reachability-status-subscriptions/v0.7")
	SubscriptionRouter(reachabilityGroup, reachability)
	reachabilityGroup.POST("/retrieve", handler.Retrieve(deps.Reachability.Retrieve))

	otpHandler := handler.NewOTPHandler(deps.OTPStore, deps.SMSSender, cfg.OTP)
	otpGroup := router.Group("/one-time-password-sms/v1")
	{
		otpGroup.POST("/send-code", otpHandler.SendCode)
		otpGroup.POST("/validate-code", otpHandler.ValidateCode)
	}

	callbacks := router.Group("/callbacks/v1")
	{
		callbacks.POST("/geofencing/:subscriptionId",
			webhook.New("geofencing", deps.Geofencing, deps.Cleaner).Notify)
		callbacks.POST("/roaming-status/:subscriptionId",
			webhook.New("roaming-status", deps.Roaming, deps.Cleaner).Notify)
		callbacks.POST("/reachability-status/:subscriptionId",
			webhook.New("reachability-status", deps.Reachability, deps.Cleaner).Notify)
	}
}

// SubscriptionRouter registers the CRUD surface shared by every domain.
func SubscriptionRouter[D any](group *gin.RouterGroup, h *handler.SubscriptionHandler[D]) {
	group.POST("/subscriptions", h.Create)
	group.GET("/subscriptions", h.List)
	group.GET("/subscriptions/:subscriptionId", h.Get)
	group.DELETE("/subscriptions/:subscriptionId", h.Delete)
}
