package schedulestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
	"github.com/sweepdreams/curbside-notifications/internal/observability/logging"
	"github.com/sweepdreams/curbside-notifications/internal/observability/tracing"
)

// Settings configures access to the schedule database's REST interface.
type Settings struct {
	BaseURL         string
	APIKey          string
	ScheduleTable   string
	RegulationTable string
	RPCFunction     string
}

func (s Settings) withDefaults() Settings {
	if s.ScheduleTable == "" {
		s.ScheduleTable = "schedules"
	}
	if s.RegulationTable == "" {
		s.RegulationTable = "parking_regulations"
	}
	if s.RPCFunction == "" {
		s.RPCFunction = "schedules_near"
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	return s
}

type Client struct {
	settings   Settings
	httpClient *http.Client
}

func NewClient(settings Settings) *Client {
	return &Client{
		settings: settings.withDefaults(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Closest(ctx context.Context, latitude, longitude float64) ([]domain.SweepRow, error) {
	endpoint := c.settings.BaseURL + "/rest/v1/rpc/" + c.settings.RPCFunction

	body, err := json.Marshal(map[string]float64{
		"lat": latitude,
		"lon": longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	slog.DebugContext(ctx, "fetching closest schedules",
		slog.String("url", endpoint),
		slog.Float64("latitude", latitude),
		slog.Float64("longitude", longitude),
	)

	ctx, span := tracing.StartExternalAPISpan(ctx, "closest_schedules", endpoint)
	defer span.End()

	payload, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	var rows []domain.SweepRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode schedule rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no schedule near location", domain.ErrScheduleNotFound)
	}

	slog.DebugContext(ctx, "fetched closest schedules",
		slog.Int("row_count", len(rows)),
	)

	return rows, nil
}

func (c *Client) GetByBlockSweepID(ctx context.Context, blockSweepID int64) (*domain.SweepRow, error) {
	u, err := url.Parse(c.settings.BaseURL + "/rest/v1/" + c.settings.ScheduleTable)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("block_sweep_id", "eq."+strconv.FormatInt(blockSweepID, 10))
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	ctx, span := tracing.StartExternalAPISpan(ctx, "get_schedule", u.String())
	defer span.End()

	payload, err := c.do(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	var rows []domain.SweepRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode schedule row: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: block_sweep_id %d", domain.ErrScheduleNotFound, blockSweepID)
	}

	return &rows[0], nil
}

func (c *Client) GetRegulationByID(ctx context.Context, id int64) (*domain.ParkingRegulation, error) {
	u, err := url.Parse(c.settings.BaseURL + "/rest/v1/" + c.settings.RegulationTable)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	ctx, span := tracing.StartExternalAPISpan(ctx, "get_regulation", u.String())
	defer span.End()

	payload, err := c.do(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	var regs []domain.ParkingRegulation
	if err := json.Unmarshal(payload, &regs); err != nil {
		return nil, fmt.Errorf("failed to decode regulation: %w", err)
	}
	if len(regs) == 0 {
		return nil, fmt.Errorf("%w: id %d", domain.ErrRegulationNotFound, id)
	}

	return &regs[0], nil
}

// Ping issues a minimal query against the schedule table so readiness
// probes can tell authentication and connectivity problems apart.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := c.settings.BaseURL + "/rest/v1/" + c.settings.ScheduleTable + "?limit=1"
	_, err := c.do(ctx, http.MethodGet, endpoint, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.settings.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.settings.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx))
	req.Header.Set("x-request-id", requestID)
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to reach schedule database",
			slog.String("url", endpoint),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreConnection, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := mapStatus(resp.StatusCode, payload); err != nil {
		slog.ErrorContext(ctx, "schedule database returned error",
			slog.String("url", endpoint),
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, err
	}

	return payload, nil
}

func mapStatus(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrStoreAuth, status)
	case status >= 500:
		return fmt.Errorf("%w: status %d", domain.ErrStoreConnection, status)
	case status < 200 || status >= 300:
		return fmt.Errorf("%w: status %d: %s", domain.ErrStoreConnection, status, string(body))
	}
	return nil
}
