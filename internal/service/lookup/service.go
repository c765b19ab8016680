package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
	"github.com/sweepdreams/curbside-notifications/internal/infra/schedulestore"
	"github.com/sweepdreams/curbside-notifications/internal/service/merge"
	"github.com/sweepdreams/curbside-notifications/internal/service/occurrence"
)

// Service answers "when is this curb swept next" for a coordinate.
type Service struct {
	schedules schedulestore.Repository
	calc      *occurrence.Calculator
}

func NewService(schedules schedulestore.Repository, calc *occurrence.Calculator) *Service {
	return &Service{
		schedules: schedules,
		calc:      calc,
	}
}

// BlockResult is one merged block schedule with its computed next window.
type BlockResult struct {
	Schedule       domain.BlockSchedule `json:"schedule"`
	HumanRules     []string             `json:"human_rules"`
	NextSweepStart time.Time            `json:"next_sweep_start"`
	NextSweepEnd   time.Time            `json:"next_sweep_end"`
}

type Result struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Timezone  string        `json:"timezone"`
	Schedules []BlockResult `json:"schedules"`
}

// CheckLocation fetches the schedule rows nearest to the coordinate, merges
// them into per-block schedules and resolves each block's next occurrence
// relative to the reference time.
func (s *Service) CheckLocation(ctx context.Context, latitude, longitude float64, reference time.Time) (*Result, error) {
	rows, err := s.schedules.Closest(ctx, latitude, longitude)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch closest schedules",
			slog.Float64("latitude", latitude),
			slog.Float64("longitude", longitude),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	blocks, err := merge.RowsToBlocks(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to merge schedule rows: %w", err)
	}

	reference = reference.In(s.calc.Location())
	results := make([]BlockResult, 0, len(blocks))
	for _, block := range blocks {
		window, err := s.calc.EarliestWindow(block, reference)
		if err != nil {
			return nil, fmt.Errorf("failed to compute sweep window: %w", err)
		}
		results = append(results, BlockResult{
			Schedule:       block,
			HumanRules:     domain.HumanSchedule(block),
			NextSweepStart: window.Start,
			NextSweepEnd:   window.End,
		})
	}

	slog.DebugContext(ctx, "resolved location schedules",
		slog.Float64("latitude", latitude),
		slog.Float64("longitude", longitude),
		slog.Int("block_count", len(results)),
	)

	return &Result{
		Latitude:  latitude,
		Longitude: longitude,
		Timezone:  s.calc.Location().String(),
		Schedules: results,
	}, nil
}
