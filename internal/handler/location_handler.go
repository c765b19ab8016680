package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sweepdreams/curbside-notifications/internal/service/lookup"
)

type LocationHandler struct {
	lookupService *lookup.Service
}

func NewLocationHandler(lookupService *lookup.Service) *LocationHandler {
	return &LocationHandler{
		lookupService: lookupService,
	}
}

// HandleCheckLocation resolves the sweeping schedules nearest to a
// latitude/longitude pair.
func (h *LocationHandler) HandleCheckLocation(c *gin.Context) {
	ctx := c.Request.Context()

	latitude, err := parseCoordinate(c.Query("latitude"), -90, 90)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "latitude must be a number between -90 and 90")
		return
	}
	longitude, err := parseCoordinate(c.Query("longitude"), -180, 180)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "longitude must be a number between -180 and 180")
		return
	}

	slog.InfoContext(ctx, "handling location check",
		slog.Float64("latitude", latitude),
		slog.Float64("longitude", longitude),
	)

	result, err := h.lookupService.CheckLocation(ctx, latitude, longitude, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseCoordinate(raw string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, strconv.ErrRange
	}
	return v, nil
}
