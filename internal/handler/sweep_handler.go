package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sweepdreams/curbside-notifications/internal/infra/runlock"
	"github.com/sweepdreams/curbside-notifications/internal/service/sweep"
)

type SweepHandler struct {
	sweepService *sweep.Service
	lock         *runlock.Lock
}

// NewSweepHandler wires the notification run endpoint. The lock may be nil
// when the deployment runs a single worker without redis.
func NewSweepHandler(sweepService *sweep.Service, lock *runlock.Lock) *SweepHandler {
	return &SweepHandler{
		sweepService: sweepService,
		lock:         lock,
	}
}

// HandleSweep triggers one notification run. A "now" query parameter
// evaluates the run at a virtual time instead of the wall clock.
func (h *SweepHandler) HandleSweep(c *gin.Context) {
	ctx := c.Request.Context()

	var now time.Time
	if nowStr := c.Query("now"); nowStr != "" {
		parsed, err := time.Parse(time.RFC3339, nowStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "invalid now time format, expected RFC3339")
			return
		}
		now = parsed
		slog.InfoContext(ctx, "using virtual time",
			slog.Time("virtual_now", now),
		)
	} else {
		now = time.Now()
	}

	if h.lock != nil {
		release, err := h.lock.Acquire(ctx, uuid.NewString())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		defer func() {
			if err := release(ctx); err != nil {
				slog.WarnContext(ctx, "failed to release run lock",
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	result, err := h.sweepService.Run(ctx, now)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
