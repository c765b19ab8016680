package domain

import (
	"context"
	"time"
)

type SweepRunRecord struct {
	RunID         string
	StartedAt     time.Time
	WindowEnd     time.Time
	Subscriptions int
	Sent          int
	Skipped       int
	Failed        int
	Duration      time.Duration
}

type SweepRunRecorder interface {
	RecordRun(ctx context.Context, record SweepRunRecord) error
	Flush(ctx context.Context) error
	Close() error
}
