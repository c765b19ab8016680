package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
	"github.com/sweepdreams/curbside-notifications/internal/infra/runlock"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, errType, message string) {
	c.JSON(status, &ErrorResponse{
		Error:   errType,
		Message: message,
	})
}

// respondServiceError maps domain errors onto HTTP statuses. Not-found
// errors become 404, upstream store outages 502, everything unexpected 500.
func respondServiceError(c *gin.Context, err error) {
	status, errType := statusForError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	respondError(c, status, errType, err.Error())
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidLeadMinutes):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrScheduleNotFound),
		errors.Is(err, domain.ErrRegulationNotFound),
		errors.Is(err, domain.ErrSubscriptionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, runlock.ErrAlreadyLocked):
		return http.StatusConflict, "run_in_progress"
	case errors.Is(err, domain.ErrStoreAuth):
		return http.StatusInternalServerError, "store_auth_error"
	case errors.Is(err, domain.ErrStoreConnection):
		return http.StatusBadGateway, "store_unavailable"
	case errors.Is(err, domain.ErrScheduling):
		return http.StatusInternalServerError, "scheduling_error"
	default:
		return http.StatusInternalServerError, "processing_error"
	}
}
