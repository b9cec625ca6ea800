package handler

import (
	"errors"
	"net/http"

	"keepsake/internal/transport/httpdto"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, keepsake_errors.ErrInvalidInput
	}
	return uuid.Parse(value)
}

// statusForError maps sentinel errors to HTTP status codes.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, keepsake_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, keepsake_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, keepsake_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, keepsake_errors.ErrConflict), errors.Is(err, keepsake_errors.ErrAlreadyExists):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, keepsake_errors.ErrLocked):
		return http.StatusForbidden, "LOCKED"
	case errors.Is(err, keepsake_errors.ErrInvalidInput), errors.Is(err, keepsake_errors.ErrInvalidTransition):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, keepsake_errors.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "TOO_LARGE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func abortWithError(c *gin.Context, err error) {
	status, code := statusForError(err)
	c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
}
