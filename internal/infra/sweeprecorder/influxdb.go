//go:build !gcloud

package sweeprecorder

import (
	"context"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.SweepRunRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "sweep run recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, sweep run recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "sweep run recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

func (r *influxDBRecorder) RecordRun(ctx context.Context, record domain.SweepRunRecord) error {
	runID := record.RunID
	if runID == "" {
		runID = "default"
	}

	point := influxdb2.NewPoint(
		"sweep_run",
		map[string]string{
			"run_id": runID,
		},
		map[string]any{
			"subscriptions":     record.Subscriptions,
			"sent_count":        record.Sent,
			"skipped_count":     record.Skipped,
			"failed_count":      record.Failed,
			"duration_seconds":  record.Duration.Seconds(),
			"window_start_unix": record.StartedAt.Unix(),
			"window_end_unix":   record.WindowEnd.Unix(),
		},
		time.Now(),
	)

	if err := r.writeAPI.WritePoint(ctx, point); err != nil {
		slog.WarnContext(ctx, "failed to write sweep run to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("run_id", runID),
		)
	}

	return nil
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return r.writeAPI.Flush(ctx)
}

func (r *influxDBRecorder) Close() error {
	r.client.Close()
	return nil
}
