// Package handler implements the CAMARA-facing HTTP endpoints.
package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"telcobridge.dev/gateway/internal/apierror"
	"telcobridge.dev/gateway/internal/store"
)

// renderError writes the uniform {status, code, message} envelope for err.
func renderError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		apiErr := apierror.NotFound("Subscription not found.")
		c.JSON(apiErr.Status, apiErr)
		return
	}

	apiErr := apierror.From(err)
	if apiErr.Status >= 500 {
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
	}
	c.JSON(apiErr.Status, apiErr)
}
