package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   message,
	})
}

// statusFor maps an error kind to an HTTP status code
func statusFor(err error) int {
	switch {
	case errs.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyExists), errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the plain-language message shown to the caller.
// Validation and lookup errors carry their own text; infrastructure
// details are not exposed.
func messageFor(err error, fallback string) string {
	switch statusFor(err) {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
		return err.Error()
	case http.StatusBadGateway:
		return fallback + ": a backing service is unavailable, please retry"
	default:
		return fallback
	}
}
