//go:build gcloud

package sweeprecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt    time.Time `bigquery:"recorded_at"`
	RunID         string    `bigquery:"run_id"`
	WindowStart   time.Time `bigquery:"window_start"`
	WindowEnd     time.Time `bigquery:"window_end"`
	Subscriptions int64     `bigquery:"subscriptions"`
	SentCount     int64     `bigquery:"sent_count"`
	SkippedCount  int64     `bigquery:"skipped_count"`
	FailedCount   int64     `bigquery:"failed_count"`
	DurationMs    int64     `bigquery:"duration_ms"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	dataset  string
	table    string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.SweepRunRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "sweep run recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, sweep run recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, sweep run recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	table := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable)
	inserter := table.Inserter()

	slog.InfoContext(ctx, "sweep run recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
		dataset:  cfg.BigQueryDataset,
		table:    cfg.BigQueryTable,
	}, nil
}

func (r *bigQueryRecorder) RecordRun(ctx context.Context, record domain.SweepRunRecord) error {
	row := &bigQueryRecord{
		RecordedAt:    time.Now(),
		RunID:         record.RunID,
		WindowStart:   record.StartedAt,
		WindowEnd:     record.WindowEnd,
		Subscriptions: int64(record.Subscriptions),
		SentCount:     int64(record.Sent),
		SkippedCount:  int64(record.Skipped),
		FailedCount:   int64(record.Failed),
		DurationMs:    record.Duration.Milliseconds(),
	}

	if err := r.inserter.Put(ctx, []*bigQueryRecord{row}); err != nil {
		slog.WarnContext(ctx, "failed to insert sweep run to BigQuery",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(_ context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
