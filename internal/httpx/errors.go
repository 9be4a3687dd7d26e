package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
)

// HTTPError is the body of every non-2xx response.
// swagger:model HTTPError
type HTTPError struct {
	Error string `json:"error" example:"Customer with id 1 was not found"`
}

func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindTypeMismatch, apperr.KindInvalidPatch, apperr.KindInvalid:
		return http.StatusBadRequest
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindConflict:
		return http.StatusConflict
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// WriteError hides the cause of 5xx responses from the caller.
func WriteError(c *gin.Context, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = "something went wrong"
	}
	_ = c.Error(err)
	c.JSON(status, HTTPError{Error: msg})
}

// BadRequest reports a payload that failed to bind.
func BadRequest(c *gin.Context, err error) {
	WriteError(c, apperr.Invalid(err.Error(), err))
}
