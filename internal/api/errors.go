package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chefmenu/internal/session"
	"chefmenu/pkg/domain"
)

const retryAfterSeconds = "5"

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsParse(err):
		return http.StatusUnprocessableEntity
	case domain.IsPersistence(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrLoginRequired),
		errors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status its kind maps to. Store failures carry a
// Retry-After hint; internal errors are logged and not echoed.
func (h *handler) fail(c *gin.Context, err error) {
	h.failWith(c, err, nil)
}

// failWith is fail with extra top-level fields merged into the error body.
func (h *handler) failWith(c *gin.Context, err error, extra gin.H) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		c.Header("Retry-After", retryAfterSeconds)
		h.log.WithError(err).Error("dish store unavailable")
		msg = "dish store unavailable, try again later"
	case http.StatusInternalServerError:
		h.log.WithError(err).Error("request failed")
		msg = "internal error"
	case http.StatusUnauthorized:
		c.Header("WWW-Authenticate", `Bearer realm="chefmenu"`)
		if errors.Is(err, session.ErrInvalidToken) {
			msg = session.ErrInvalidToken.Error()
		}
	}
	body := gin.H{"success": false, "error": msg}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
