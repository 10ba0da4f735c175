package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"telcobridge.dev/gateway/core/config"
	"telcobridge.dev/gateway/internal/http/handler"
	"telcobridge.dev/gateway/internal/otp"
)

var _ = Describe("OTPHandler", func() {
	var (
		router *gin.Engine
		store  *mockOTPStore
		sender *mockSMSSender
	)

	doRequest := func(path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		store = &mockOTPStore{}
		sender = &mockSMSSender{}
		h := handler.NewOTPHandler(store, sender, config.OTPConfig{
			CodeSize:    6,
			MaxAttempts: 5,
			Expiry:      5 * time.Minute,
		})

		group := router.Group("/one-time-password-sms/v1")
		group.POST("/send-code", h.SendCode)
		group.POST("/validate-code", h.ValidateCode)
	})

	Describe("SendCode", func() {
		It("stores a code, sends it by SMS and returns the authenticationId", func() {
			var storedCode string
			store.createFn = func(_ context.Context, code string, maxAttempts int, ttl time.Duration) (string, error) {
				storedCode = code
				Expect(maxAttempts).To(Equal(5))
				Expect(ttl).To(Equal(5 * time.Minute))
				return "auth-42", nil
			}

			w := doRequest("/one-time-password-sms/v1/send-code", map[string]string{
				"phoneNumber": "+306912345678",
				"message":     "Your code: {{code}}",
			})
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]string
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["authenticationId"]).To(Equal("auth-42"))

			Expect(storedCode).To(HaveLen(6))
			Expect(sender.sent).To(HaveLen(1))
			Expect(sender.sent[0]).To(Equal("Your code: " + storedCode))
		})

		It("rejects a message without the code placeholder", func() {
			w := doRequest("/one-time-password-sms/v1/send-code", map[string]string{
				"phoneNumber": "+306912345678",
				"message":     "no placeholder here",
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a phone number that is not E.164", func() {
			w := doRequest("/one-time-password-sms/v1/send-code", map[string]string{
				"phoneNumber": "6912345678",
				"message":     "Your code: {{code}}",
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ValidateCode", func() {
		body := map[string]string{"authenticationId": "auth-42", "code": "AB12CD"}

		It("returns 204 on a matching code", func() {
			w := doRequest("/one-time-password-sms/v1/validate-code", body)
			Expect(w.Code).To(Equal(http.StatusNoContent))
		})

		It("maps an invalid code onto INVALID_OTP", func() {
			store.verifyFn = func(context.Context, string, string) error { return otp.ErrInvalidCode }
			w := doRequest("/one-time-password-sms/v1/validate-code", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("ONE_TIME_PASSWORD_SMS.INVALID_OTP"))
		})

		It("maps exhausted attempts onto VERIFICATION_FAILED", func() {
			store.verifyFn = func(context.Context, string, string) error { return otp.ErrTooManyAttempts }
			w := doRequest("/one-time-password-sms/v1/validate-code", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("ONE_TIME_PASSWORD_SMS.VERIFICATION_FAILED"))
		})

		It("maps unknown and expired ids onto VERIFICATION_EXPIRED", func() {
			store.verifyFn = func(context.Context, string, string) error { return otp.ErrNotFound }
			w := doRequest("/one-time-password-sms/v1/validate-code", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("ONE_TIME_PASSWORD_SMS.VERIFICATION_EXPIRED"))
		})
	})
})
