package sweeprecorder

import (
	"context"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.SweepRunRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordRun(_ context.Context, _ domain.SweepRunRecord) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
