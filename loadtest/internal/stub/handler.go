package stub

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

// Handler emulates the subset of the schedule database's REST interface the
// service talks to, so load tests need no real database.
type Handler struct {
	storage *Storage
}

func NewHandler(storage *Storage) *Handler {
	return &Handler{storage: storage}
}

func (h *Handler) Register(r *gin.Engine) {
	r.POST("/admin/seed", h.HandleSeed)
	r.POST("/admin/reset", h.HandleReset)

	rest := r.Group("/rest/v1")
	{
		rest.POST("/rpc/:fn", h.HandleSchedulesNear)
		rest.GET("/schedules", h.HandleGetSchedules)
		rest.GET("/parking_regulations", h.HandleGetRegulations)
		rest.POST("/subscriptions", h.HandleUpsertSubscription)
		rest.GET("/subscriptions", h.HandleGetSubscriptions)
		rest.PATCH("/subscriptions", h.HandleMarkNotified)
		rest.DELETE("/subscriptions", h.HandleDeleteSubscription)
	}
}

func (h *Handler) HandleReset(c *gin.Context) {
	h.storage.Reset()

	slog.Info("reset stub data")

	c.JSON(http.StatusOK, gin.H{"status": "reset complete"})
}

func (h *Handler) HandleSeed(c *gin.Context) {
	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedules, regulations := h.storage.Seed(&req)

	slog.Info("seeded stub data",
		slog.Int("schedule_count", schedules),
		slog.Int("regulation_count", regulations),
	)

	c.JSON(http.StatusOK, gin.H{
		"status":           "seeded",
		"schedule_count":   schedules,
		"regulation_count": regulations,
	})
}

// HandleSchedulesNear ignores the coordinate and returns every seeded row;
// proximity ranking belongs to the real database.
func (h *Handler) HandleSchedulesNear(c *gin.Context) {
	var req struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows := h.storage.AllSchedules()

	slog.Debug("schedules near",
		slog.String("fn", c.Param("fn")),
		slog.Float64("lat", req.Lat),
		slog.Float64("lon", req.Lon),
		slog.Int("count", len(rows)),
	)

	c.JSON(http.StatusOK, rows)
}

func (h *Handler) HandleGetSchedules(c *gin.Context) {
	id, ok := eqFilterInt(c.Query("block_sweep_id"))
	if !ok {
		c.JSON(http.StatusOK, h.storage.AllSchedules())
		return
	}

	row, found := h.storage.ScheduleByID(id)
	if !found {
		c.JSON(http.StatusOK, []domain.SweepRow{})
		return
	}
	c.JSON(http.StatusOK, []domain.SweepRow{row})
}

func (h *Handler) HandleGetRegulations(c *gin.Context) {
	id, ok := eqFilterInt(c.Query("id"))
	if !ok {
		c.JSON(http.StatusOK, []domain.ParkingRegulation{})
		return
	}

	reg, found := h.storage.RegulationByID(id)
	if !found {
		c.JSON(http.StatusOK, []domain.ParkingRegulation{})
		return
	}
	c.JSON(http.StatusOK, []domain.ParkingRegulation{reg})
}

func (h *Handler) HandleUpsertSubscription(c *gin.Context) {
	var rows []subscriptionRecord
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty payload"})
		return
	}

	stored := make([]subscriptionRecord, 0, len(rows))
	for i := range rows {
		stored = append(stored, *h.storage.UpsertSubscription(&rows[i]))
	}

	c.JSON(http.StatusCreated, stored)
}

func (h *Handler) HandleGetSubscriptions(c *gin.Context) {
	if token, ok := eqFilter(c.Query("device_token")); ok {
		rec, found := h.storage.SubscriptionByToken(token)
		if !found {
			c.JSON(http.StatusOK, []subscriptionRecord{})
			return
		}
		c.JSON(http.StatusOK, []subscriptionRecord{*rec})
		return
	}

	recs := h.storage.ListSubscriptions()
	out := make([]subscriptionRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *rec)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) HandleMarkNotified(c *gin.Context) {
	token, tokenOK := eqFilter(c.Query("device_token"))
	id, idOK := eqFilterInt(c.Query("schedule_block_sweep_id"))
	if !tokenOK || !idOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_token and schedule_block_sweep_id filters are required"})
		return
	}

	var body struct {
		LastNotifiedAt time.Time `json:"last_notified_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.storage.MarkNotified(token, id, body.LastNotifiedAt)
	c.Status(http.StatusNoContent)
}

func (h *Handler) HandleDeleteSubscription(c *gin.Context) {
	token, ok := eqFilter(c.Query("device_token"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_token filter is required"})
		return
	}

	rec, found := h.storage.DeleteSubscription(token)
	if !found {
		c.JSON(http.StatusOK, []subscriptionRecord{})
		return
	}
	c.JSON(http.StatusOK, []subscriptionRecord{*rec})
}

// eqFilter unwraps a PostgREST "eq.value" query filter.
func eqFilter(raw string) (string, bool) {
	if !strings.HasPrefix(raw, "eq.") {
		return "", false
	}
	return strings.TrimPrefix(raw, "eq."), true
}

func eqFilterInt(raw string) (int64, bool) {
	value, ok := eqFilter(raw)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
