package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sweepdreams/curbside-notifications/internal/observability/tracing"
)

const (
	fcmScope       = "https://www.googleapis.com/auth/firebase.messaging"
	fcmEndpointFmt = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
)

// FCMConfig configures the Firebase Cloud Messaging HTTP v1 gateway.
type FCMConfig struct {
	ProjectID          string
	ServiceAccountJSON []byte

	// DryRun logs what would be sent instead of calling FCM. Forced on
	// when no service account is configured.
	DryRun bool
}

type FCMGateway struct {
	projectID   string
	endpoint    string
	tokenSource oauth2.TokenSource
	httpClient  *http.Client
	dryRun      bool
}

func NewFCMGateway(ctx context.Context, cfg FCMConfig) (*FCMGateway, error) {
	g := &FCMGateway{
		projectID: cfg.ProjectID,
		dryRun:    cfg.DryRun,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if len(cfg.ServiceAccountJSON) == 0 {
		if !g.dryRun {
			slog.Warn("no FCM service account configured, falling back to dry run")
			g.dryRun = true
		}
		return g, nil
	}

	creds, err := google.CredentialsFromJSON(ctx, cfg.ServiceAccountJSON, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("failed to load FCM credentials: %w", err)
	}
	if g.projectID == "" {
		g.projectID = creds.ProjectID
	}
	if g.projectID == "" {
		return nil, fmt.Errorf("FCM project ID is not configured and not present in credentials")
	}
	g.tokenSource = creds.TokenSource
	g.endpoint = fmt.Sprintf(fcmEndpointFmt, g.projectID)

	return g, nil
}

type fcmMessage struct {
	Message struct {
		Token        string            `json:"token"`
		Notification fcmNotification   `json:"notification"`
		Data         map[string]string `json:"data,omitempty"`
	} `json:"message"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (g *FCMGateway) Send(ctx context.Context, n *Notification) error {
	if g.dryRun {
		slog.InfoContext(ctx, "dry run: would send notification",
			slog.String("device_token", n.DeviceToken),
			slog.String("title", n.Title),
			slog.Any("data", n.Data),
		)
		return nil
	}

	token, err := g.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain FCM access token: %w", err)
	}

	var msg fcmMessage
	msg.Message.Token = n.DeviceToken
	msg.Message.Notification = fcmNotification{Title: n.Title, Body: n.Body}
	msg.Message.Data = n.Data

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal FCM message: %w", err)
	}

	ctx, span := tracing.StartExternalAPISpan(ctx, "fcm_send", g.endpoint)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send FCM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("FCM returned status %d: %s", resp.StatusCode, string(respBody))
	}

	slog.DebugContext(ctx, "notification sent",
		slog.String("device_token", n.DeviceToken),
	)

	return nil
}
