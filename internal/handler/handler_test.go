package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
	"github.com/sweepdreams/curbside-notifications/internal/infra/push"
	"github.com/sweepdreams/curbside-notifications/internal/infra/schedulestore"
	"github.com/sweepdreams/curbside-notifications/internal/infra/subscriptionstore"
	"github.com/sweepdreams/curbside-notifications/internal/observability/metrics"
	"github.com/sweepdreams/curbside-notifications/internal/service/lookup"
	"github.com/sweepdreams/curbside-notifications/internal/service/occurrence"
	"github.com/sweepdreams/curbside-notifications/internal/service/subscription"
	"github.com/sweepdreams/curbside-notifications/internal/service/sweep"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func intPtr(v int) *int { return &v }

func testHandlerRow() *domain.SweepRow {
	return &domain.SweepRow{
		CNN:          922000,
		Corridor:     "Valencia St",
		Limits:       "14th St to 15th St",
		CNNRightLeft: "R",
		BlockSide:    "East",
		FullName:     "Valencia St",
		WeekDay:      "Fri",
		FromHour:     intPtr(14),
		ToHour:       intPtr(16),
		Week2:        true,
		Week4:        true,
		BlockSweepID: 37,
	}
}

func testCalculator(t *testing.T) *occurrence.Calculator {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	return occurrence.NewCalculator(loc, 0, 0)
}

func TestHandleCheckLocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	schedules := schedulestore.NewMockRepository(ctrl)
	schedules.EXPECT().
		Closest(gomock.Any(), 37.7599, -122.4213).
		Return([]domain.SweepRow{*testHandlerRow()}, nil)

	h := NewLocationHandler(lookup.NewService(schedules, testCalculator(t)))

	router := gin.New()
	router.GET("/check-location", h.HandleCheckLocation)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/check-location?latitude=37.7599&longitude=-122.4213", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result lookup.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Schedules) != 1 {
		t.Fatalf("expected 1 schedule, got %d", len(result.Schedules))
	}
	if result.Schedules[0].Schedule.Block.Corridor != "Valencia St" {
		t.Errorf("unexpected corridor %q", result.Schedules[0].Schedule.Block.Corridor)
	}
	if result.Timezone != "America/Los_Angeles" {
		t.Errorf("unexpected timezone %q", result.Timezone)
	}
}

func TestHandleCheckLocation_InvalidCoordinates(t *testing.T) {
	h := NewLocationHandler(nil)

	router := gin.New()
	router.GET("/check-location", h.HandleCheckLocation)

	for _, query := range []string{
		"latitude=abc&longitude=-122.4",
		"latitude=91&longitude=-122.4",
		"latitude=37.7&longitude=-181",
		"longitude=-122.4",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/check-location?"+query, nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected status 400, got %d", query, w.Code)
		}
	}
}

func TestHandleCheckLocation_NoSchedules(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	schedules := schedulestore.NewMockRepository(ctrl)
	schedules.EXPECT().
		Closest(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrScheduleNotFound)

	h := NewLocationHandler(lookup.NewService(schedules, testCalculator(t)))

	router := gin.New()
	router.GET("/check-location", h.HandleCheckLocation)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/check-location?latitude=0&longitude=0", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func newSubscriptionRouter(t *testing.T, ctrl *gomock.Controller) (*gin.Engine, *subscriptionstore.MockRepository, *schedulestore.MockRepository) {
	t.Helper()

	subscriptions := subscriptionstore.NewMockRepository(ctrl)
	schedules := schedulestore.NewMockRepository(ctrl)
	h := NewSubscriptionHandler(subscription.NewService(subscriptions, schedules, testCalculator(t)))

	router := gin.New()
	router.POST("/subscriptions", h.HandleSubscribe)
	router.GET("/subscriptions/:device_token", h.HandleStatus)
	router.DELETE("/subscriptions/:device_token", h.HandleDelete)

	return router, subscriptions, schedules
}

func TestHandleSubscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, subscriptions, schedules := newSubscriptionRouter(t, ctrl)

	stored := &domain.Subscription{
		DeviceToken:          "device-1",
		Platform:             "ios",
		ScheduleBlockSweepID: 37,
		LeadMinutes:          30,
		Type:                 domain.SubscriptionSweeping,
	}
	subscriptions.EXPECT().
		Upsert(gomock.Any(), gomock.Any(), 37.7599, -122.4213).
		Return(stored, nil)
	schedules.EXPECT().
		GetByBlockSweepID(gomock.Any(), int64(37)).
		Return(testHandlerRow(), nil)

	body := `{"device_token":"device-1","platform":"ios","schedule_block_sweep_id":37,"latitude":37.7599,"longitude":-122.4213,"lead_minutes":30}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var status subscription.Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.DeviceToken != "device-1" {
		t.Errorf("unexpected device token %q", status.DeviceToken)
	}
	if status.Schedule == nil {
		t.Error("expected schedule to be set for sweeping subscription")
	}
}

func TestHandleSubscribe_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, _, _ := newSubscriptionRouter(t, ctrl)

	tests := []struct {
		name string
		body string
	}{
		{"missing device token", `{"schedule_block_sweep_id":37,"latitude":37.7,"longitude":-122.4,"lead_minutes":30}`},
		{"missing schedule id", `{"device_token":"d","latitude":37.7,"longitude":-122.4,"lead_minutes":30}`},
		{"latitude out of range", `{"device_token":"d","schedule_block_sweep_id":37,"latitude":95,"longitude":-122.4,"lead_minutes":30}`},
		{"invalid lead minutes", `{"device_token":"d","schedule_block_sweep_id":37,"latitude":37.7,"longitude":-122.4,"lead_minutes":20}`},
		{"unknown type", `{"device_token":"d","schedule_block_sweep_id":37,"latitude":37.7,"longitude":-122.4,"lead_minutes":30,"subscription_type":"hourly"}`},
		{"malformed json", `{"device_token":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleStatus_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, subscriptions, _ := newSubscriptionRouter(t, ctrl)
	subscriptions.EXPECT().
		GetByDeviceToken(gomock.Any(), "missing").
		Return(nil, domain.ErrSubscriptionNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/subscriptions/missing", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestHandleStatus_StoreDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, subscriptions, _ := newSubscriptionRouter(t, ctrl)
	subscriptions.EXPECT().
		GetByDeviceToken(gomock.Any(), "device-1").
		Return(nil, domain.ErrStoreConnection)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/subscriptions/device-1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, subscriptions, _ := newSubscriptionRouter(t, ctrl)
	subscriptions.EXPECT().
		Delete(gomock.Any(), "device-1").
		Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/subscriptions/device-1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func newSweepRouter(t *testing.T, ctrl *gomock.Controller) (*gin.Engine, *subscriptionstore.MockRepository) {
	t.Helper()

	subscriptions := subscriptionstore.NewMockRepository(ctrl)
	schedules := schedulestore.NewMockRepository(ctrl)
	gateway := push.NewMockGateway(ctrl)

	sweepMetrics, err := metrics.NewSweepMetrics()
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	svc := sweep.NewService(
		subscriptions,
		schedules,
		gateway,
		testCalculator(t),
		time.Hour,
		sweepMetrics,
		nil,
	)
	h := NewSweepHandler(svc, nil)

	router := gin.New()
	router.POST("/sweep", h.HandleSweep)

	return router, subscriptions
}

func TestHandleSweep_VirtualTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, subscriptions := newSweepRouter(t, ctrl)
	subscriptions.EXPECT().
		List(gomock.Any()).
		Return([]domain.Subscription{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sweep?now=2024-03-08T12:30:00-08:00", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result sweep.RunResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.RunID == "" {
		t.Error("expected run_id to be set")
	}
	if !result.WindowEnd.Equal(result.StartedAt.Add(time.Hour)) {
		t.Errorf("expected window end one cadence after start, got %v -> %v", result.StartedAt, result.WindowEnd)
	}
}

func TestHandleSweep_InvalidVirtualTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, _ := newSweepRouter(t, ctrl)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sweep?now=yesterday", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestHandleSweep_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, subscriptions := newSweepRouter(t, ctrl)
	subscriptions.EXPECT().
		List(gomock.Any()).
		Return(nil, domain.ErrStoreConnection)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sweep", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
}
