package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"telcobridge.dev/gateway/core/config"
	"telcobridge.dev/gateway/internal/apierror"
	"telcobridge.dev/gateway/internal/http/dto"
	"telcobridge.dev/gateway/internal/otp"
	"telcobridge.dev/gateway/internal/sms"
)

const codePlaceholder = "{{code}}"

// OTPHandler serves the one-time-password-sms flow: send a code by SMS,
// then validate it against the stored attempt-limited record.
type OTPHandler struct {
	store  otp.Store
	sender sms.Sender
	cfg    config.OTPConfig
}

func NewOTPHandler(store otp.Store, sender sms.Sender, cfg config.OTPConfig) *OTPHandler {
	return &OTPHandler{store: store, sender: sender, cfg: cfg}
}

func (h *OTPHandler) SendCode(c *gin.Context) {
	var req dto.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, apierror.InvalidArgument(err.Error()))
		return
	}

	ctx := c.Request.Context()
	code, err := otp.GenerateCode(h.cfg.CodeSize)
	if err != nil {
		renderError(c, err)
		return
	}

	authenticationID, err := h.store.Create(ctx, code, h.cfg.MaxAttempts, h.cfg.Expiry)
	if err != nil {
		renderError(c, err)
		return
	}

	text := strings.ReplaceAll(req.Message, codePlaceholder, code)
	if err := h.sender.Send(ctx, req.PhoneNumber, text); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SendCodeResponse{AuthenticationID: authenticationID})
}

func (h *OTPHandler) ValidateCode(c *gin.Context) {
	var req dto.ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, apierror.InvalidArgument(err.Error()))
		return
	}

	err := h.store.Verify(c.Request.Context(), req.AuthenticationID, req.Code)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, otp.ErrInvalidCode):
		renderError(c, apierror.New(http.StatusBadRequest,
			"ONE_TIME_PASSWORD_SMS.INVALID_OTP", "The provided OTP is not valid for this authenticationId"))
	case errors.Is(err, otp.ErrTooManyAttempts):
		renderError(c, apierror.New(http.StatusBadRequest,
			"ONE_TIME_PASSWORD_SMS.VERIFICATION_FAILED", "The maximum number of attempts for this authenticationId was exceeded without providing a valid OTP"))
	case errors.Is(err, otp.ErrNotFound):
		renderError(c, apierror.New(http.StatusBadRequest,
			"ONE_TIME_PASSWORD_SMS.VERIFICATION_EXPIRED", "The authenticationId is no longer valid"))
	default:
		renderError(c, err)
	}
}
