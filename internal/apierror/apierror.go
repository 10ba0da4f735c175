// Package apierror defines the uniform error envelope rendered by every API
// endpoint: {status, code, message}.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func InvalidArgument(message string) *Error {
	return New(http.StatusBadRequest, "INVALID_ARGUMENT", message)
}

func InvalidProtocol() *Error {
	return New(http.StatusBadRequest, "INVALID_PROTOCOL", "Only HTTP is supported.")
}

func UnsupportedIdentifier() *Error {
	return New(http.StatusUnprocessableEntity, "UNSUPPORTED_IDENTIFIER", "The identifier provided is not supported.")
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, "NOT_FOUND", message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, "CONFLICT", message)
}

func Internal() *Error {
	return New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unknown error has occured.")
}

// UpstreamCommunication covers NEF non-success responses and unreachability.
func UpstreamCommunication() *Error {
	return New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Error communicating with the core")
}

// From extracts an *Error from err, falling back to a generic 500.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal()
}
