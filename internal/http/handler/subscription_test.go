package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"telcobridge.dev/gateway/internal/http/handler"
	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/store"
)

var _ = Describe("SubscriptionHandler", func() {
	var (
		router *gin.Engine
		svc    *mockSubscriptionService[model.GeofencingDetail]
	)

	validBody := func() map[string]any {
		return map[string]any{
			"protocol": "HTTP",
			"sink":     "https://consumer.example.com/hook",
			"types":    []string{"org.camaraproject.geofencing-subscriptions.v0.area-entered"},
			"config": map[string]any{
				"subscriptionDetail": map[string]any{
					"device": map[string]any{"phoneNumber": "+306912345678"},
					"area": map[string]any{
						"areaType": "CIRCLE",
						"center":   map[string]any{"latitude": 38.0, "longitude": 23.818},
						"radius":   65,
					},
				},
			},
		}
	}

	doRequest := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockSubscriptionService[model.GeofencingDetail]{}
		h := handler.NewSubscriptionHandler[model.GeofencingDetail](svc, handler.ValidateGeofencingDetail)

		group := router.Group("/geofencing-subscriptions/v0.3")
		group.POST("/subscriptions", h.Create)
		group.GET("/subscriptions", h.List)
		group.GET("/subscriptions/:subscriptionId", h.Get)
		group.DELETE("/subscriptions/:subscriptionId", h.Delete)
	})

	Describe("Create", func() {
		It("returns 201 with the created subscription", func() {
			svc.createFn = func(_ context.Context, req model.SubscriptionRequest[model.GeofencingDetail]) (model.Subscription[model.GeofencingDetail], error) {
				return model.Subscription[model.GeofencingDetail]{
					Protocol: req.Protocol,
					Sink:     req.Sink,
					Types:    req.Types,
					Config:   req.Config,
					ID:       "sub-1",
					Status:   model.StatusActive,
				}, nil
			}

			w := doRequest(http.MethodPost, "/geofencing-subscriptions/v0.3/subscriptions", validBody())
			Expect(w.Code).To(Equal(http.StatusCreated))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["id"]).To(Equal("sub-1"))
			Expect(resp["status"]).To(Equal("ACTIVE"))
		})

		It("returns 400 INVALID_ARGUMENT when the sink is missing", func() {
			body := validBody()
			delete(body, "sink")

			w := doRequest(http.MethodPost, "/geofencing-subscriptions/v0.3/subscriptions", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("INVALID_ARGUMENT"))
		})

		It("returns 400 when more than one type is subscribed", func() {
			body := validBody()
			body["types"] = []string{
				"org.camaraproject.geofencing-subscriptions.v0.area-entered",
				"org.camaraproject.geofencing-subscriptions.v0.area-left",
			}

			w := doRequest(http.MethodPost, "/geofencing-subscriptions/v0.3/subscriptions", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 for a non-circle area", func() {
			body := validBody()
			body["config"].(map[string]any)["subscriptionDetail"].(map[string]any)["area"].(map[string]any)["areaType"] = "POLYGON"

			w := doRequest(http.MethodPost, "/geofencing-subscriptions/v0.3/subscriptions", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("CIRCLE"))
		})

		It("passes adapter errors through the envelope", func() {
			svc.createFn = func(context.Context, model.SubscriptionRequest[model.GeofencingDetail]) (model.Subscription[model.GeofencingDetail], error) {
				return model.Subscription[model.GeofencingDetail]{}, context.DeadlineExceeded
			}

			w := doRequest(http.MethodPost, "/geofencing-subscriptions/v0.3/subscriptions", validBody())
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(ContainSubstring("INTERNAL_SERVER_ERROR"))
		})
	})

	Describe("Get", func() {
		It("returns 404 through the uniform envelope for unknown ids", func() {
			svc.getFn = func(context.Context, string) (model.Subscription[model.GeofencingDetail], error) {
				return model.Subscription[model.GeofencingDetail]{}, store.ErrNotFound
			}

			w := doRequest(http.MethodGet, "/geofencing-subscriptions/v0.3/subscriptions/nope", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["code"]).To(Equal("NOT_FOUND"))
			Expect(resp["status"]).To(Equal(float64(http.StatusNotFound)))
		})
	})

	Describe("List", func() {
		It("returns an empty array rather than null", func() {
			w := doRequest(http.MethodGet, "/geofencing-subscriptions/v0.3/subscriptions", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON("[]"))
		})
	})

	Describe("Delete", func() {
		It("returns 204 and requests SUBSCRIPTION_DELETED termination", func() {
			var gotReason model.TerminationReason
			svc.deleteFn = func(_ context.Context, _ string, reason model.TerminationReason) error {
				gotReason = reason
				return nil
			}

			w := doRequest(http.MethodDelete, "/geofencing-subscriptions/v0.3/subscriptions/sub-1", nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(gotReason).To(Equal(model.TerminationSubscriptionDeleted))
		})

		It("returns 404 for unknown ids", func() {
			svc.deleteFn = func(context.Context, string, model.TerminationReason) error {
				return store.ErrNotFound
			}

			w := doRequest(http.MethodDelete, "/geofencing-subscriptions/v0.3/subscriptions/nope", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
