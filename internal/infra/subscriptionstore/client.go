package subscriptionstore

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

// listLimit caps how many subscriptions a single run will pull.
const listLimit = 10000

// Settings configures access to the subscription table's REST interface.
type Settings struct {
	BaseURL string
	APIKey  string
	Table   string
}

func (s Settings) withDefaults() Settings {
	if s.Table == "" {
		s.Table = "subscriptions"
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

type subscriptionRow struct {
	DeviceToken          string     `json:"device_token"`
	Platform             string     `json:"platform"`
	ScheduleBlockSweepID int64      `json:"schedule_block_sweep_id"`
	LeadMinutes          int        `json:"lead_minutes"`
	LastNotifiedAt       *time.Time `json:"last_notified_at"`
	SubscriptionType     string     `json:"subscription_type"`
}

func (r subscriptionRow) toDomain() domain.Subscription {
	subType := domain.SubscriptionType(r.SubscriptionType)
	if subType == "" {
		subType = domain.SubscriptionSweeping
	}
	return domain.Subscription{
		DeviceToken:          r.DeviceToken,
		Platform:             r.Platform,
		ScheduleBlockSweepID: r.ScheduleBlockSweepID,
		LeadMinutes:          r.LeadMinutes,
		LastNotifiedAt:       r.LastNotifiedAt,
		Type:                 subType,
	}
}

func (c *Client) endpoint() string {
	return c.settings.BaseURL + "/rest/v1/" + c.settings.Table
}

func (c *Client) Upsert(ctx context.Context, sub *domain.Subscription, latitude, longitude float64) (*domain.Subscription, error) {
	u, err := url.Parse(c.endpoint())
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("on_conflict", "device_token")
	u.RawQuery = q.Encode()

	payload := map[string]any{
		"device_token":            sub.DeviceToken,
		"platform":                sub.Platform,
		"schedule_block_sweep_id": sub.ScheduleBlockSweepID,
		"location":                fmt.Sprintf("SRID=4326;POINT(%g %g)", longitude, latitude),
		"lead_minutes":            sub.LeadMinutes,
		"subscription_type":       string(sub.Type),
	}
	body, err := json.Marshal([]map[string]any{payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subscription: %w", err)
	}

	ctx, span := tracing.StartExternalAPISpan(ctx, "upsert_subscription", u.String())
	defer span.End()

	headers := http.Header{
		"Prefer": []string{"resolution=merge-duplicates,return=representation"},
	}
	respBody, err := c.do(ctx, http.MethodPost, u.String(), body, headers)
	if err != nil {
		return nil, err
	}

	var rows []subscriptionRow
	if err := json.Unmarshal(respBody, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode subscription: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: upsert returned no content", domain.ErrStoreConnection)
	}

	stored := rows[0].toDomain()

	slog.DebugContext(ctx, "subscription upserted",
		slog.String("device_token", stored.DeviceToken),
		slog.Int64("schedule_block_sweep_id", stored.ScheduleBlockSweepID),
	)

	return &stored, nil
}

func (c *Client) GetByDeviceToken(ctx context.Context, deviceToken string) (*domain.Subscription, error) {
	u, err := url.Parse(c.endpoint())
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("device_token", "eq."+deviceToken)
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	ctx, span := tracing.StartExternalAPISpan(ctx, "get_subscription", u.String())
	defer span.End()

	body, err := c.do(ctx, http.MethodGet, u.String(), nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []subscriptionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode subscription: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: device token %s", domain.ErrSubscriptionNotFound, deviceToken)
	}

	sub := rows[0].toDomain()
	return &sub, nil
}

func (c *Client) List(ctx context.Context) ([]domain.Subscription, error) {
	ctx, span := tracing.StartExternalAPISpan(ctx, "list_subscriptions", c.endpoint())
	defer span.End()

	headers := http.Header{
		"Range": []string{fmt.Sprintf("0-%d", listLimit-1)},
	}
	body, err := c.do(ctx, http.MethodGet, c.endpoint(), nil, headers)
	if err != nil {
		return nil, err
	}

	var rows []subscriptionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions: %w", err)
	}

	subs := make([]domain.Subscription, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toDomain())
	}

	slog.DebugContext(ctx, "listed subscriptions",
		slog.Int("count", len(subs)),
	)

	return subs, nil
}

func (c *Client) MarkNotified(ctx context.Context, deviceToken string, scheduleBlockSweepID int64, at time.Time) error {
	u, err := url.Parse(c.endpoint())
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("device_token", "eq."+deviceToken)
	q.Set("schedule_block_sweep_id", "eq."+strconv.FormatInt(scheduleBlockSweepID, 10))
	u.RawQuery = q.Encode()

	body, err := json.Marshal(map[string]string{
		"last_notified_at": at.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	ctx, span := tracing.StartExternalAPISpan(ctx, "mark_notified", u.String())
	defer span.End()

	headers := http.Header{
		"Prefer": []string{"return=minimal"},
	}
	if _, err := c.do(ctx, http.MethodPatch, u.String(), body, headers); err != nil {
		return err
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, deviceToken string) error {
	u, err := url.Parse(c.endpoint())
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("device_token", "eq."+deviceToken)
	u.RawQuery = q.Encode()

	ctx, span := tracing.StartExternalAPISpan(ctx, "delete_subscription", u.String())
	defer span.End()

	headers := http.Header{
		"Prefer": []string{"return=representation"},
	}
	body, err := c.do(ctx, http.MethodDelete, u.String(), nil, headers)
	if err != nil {
		return err
	}

	// With return=representation an empty array means nothing matched.
	var deleted []json.RawMessage
	if err := json.Unmarshal(body, &deleted); err == nil && len(deleted) == 0 {
		return fmt.Errorf("%w: device token %s", domain.ErrSubscriptionNotFound, deviceToken)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, headers http.Header) ([]byte, error) {
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
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	requestID := logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx))
	req.Header.Set("x-request-id", requestID)
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to reach subscription database",
			slog.String("url", endpoint),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreConnection, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", domain.ErrStoreAuth, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", domain.ErrStoreConnection, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrStoreConnection, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
