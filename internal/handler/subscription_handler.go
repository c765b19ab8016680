package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
	"github.com/sweepdreams/curbside-notifications/internal/service/subscription"
)

type SubscriptionHandler struct {
	subscriptionService *subscription.Service
}

func NewSubscriptionHandler(subscriptionService *subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// HandleSubscribe creates or replaces the subscription for a device token.
func (h *SubscriptionHandler) HandleSubscribe(c *gin.Context) {
	ctx := c.Request.Context()

	var req subscription.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "request unmarshal failed",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if req.DeviceToken == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "device_token is required")
		return
	}
	if req.ScheduleBlockSweepID <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "schedule_block_sweep_id is required")
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		respondError(c, http.StatusBadRequest, "validation_error", "latitude/longitude out of range")
		return
	}
	switch req.Type {
	case "", domain.SubscriptionSweeping, domain.SubscriptionTiming:
	default:
		respondError(c, http.StatusBadRequest, "validation_error", "subscription_type must be sweeping or timing")
		return
	}

	status, err := h.subscriptionService.Subscribe(ctx, &req, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, status)
}

// HandleStatus returns the stored subscription with its next window.
func (h *SubscriptionHandler) HandleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	deviceToken := c.Param("device_token")
	if deviceToken == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "device_token is required")
		return
	}

	status, err := h.subscriptionService.Status(ctx, deviceToken, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// HandleDelete removes the subscription for a device token.
func (h *SubscriptionHandler) HandleDelete(c *gin.Context) {
	ctx := c.Request.Context()

	deviceToken := c.Param("device_token")
	if deviceToken == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "device_token is required")
		return
	}

	if err := h.subscriptionService.Delete(ctx, deviceToken); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deviceToken})
}
