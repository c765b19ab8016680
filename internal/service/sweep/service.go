package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
	"github.com/sweepdreams/curbside-notifications/internal/infra/push"
	"github.com/sweepdreams/curbside-notifications/internal/infra/schedulestore"
	"github.com/sweepdreams/curbside-notifications/internal/infra/subscriptionstore"
	"github.com/sweepdreams/curbside-notifications/internal/observability/metrics"
	"github.com/sweepdreams/curbside-notifications/internal/observability/tracing"
	"github.com/sweepdreams/curbside-notifications/internal/service/occurrence"
)

// Service runs one notification pass over every stored subscription:
// resolve the next occurrence, decide, send, record.
type Service struct {
	subscriptions subscriptionstore.Repository
	schedules     schedulestore.Repository
	gateway       push.Gateway
	calc          *occurrence.Calculator
	cadence       time.Duration
	metrics       *metrics.SweepMetrics
	recorder      domain.SweepRunRecorder
}

func NewService(
	subscriptions subscriptionstore.Repository,
	schedules schedulestore.Repository,
	gateway push.Gateway,
	calc *occurrence.Calculator,
	cadence time.Duration,
	sweepMetrics *metrics.SweepMetrics,
	recorder domain.SweepRunRecorder,
) *Service {
	return &Service{
		subscriptions: subscriptions,
		schedules:     schedules,
		gateway:       gateway,
		calc:          calc,
		cadence:       cadence,
		metrics:       sweepMetrics,
		recorder:      recorder,
	}
}

type RunResult struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	WindowEnd     time.Time `json:"window_end"`
	Subscriptions int       `json:"subscriptions"`
	Sent          int       `json:"sent"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
}

// Run evaluates all subscriptions against the polling window
// [now, now+cadence). One subscription failing does not abort the run.
func (s *Service) Run(ctx context.Context, now time.Time) (*RunResult, error) {
	runID := uuid.New().String()
	now = now.In(s.calc.Location())
	windowEnd := now.Add(s.cadence)
	started := time.Now()

	ctx, span := tracing.StartRunSpan(ctx, runID, now, windowEnd)
	defer span.End()

	slog.InfoContext(ctx, "starting notification run",
		slog.String("run_id", runID),
		slog.Time("window_start", now),
		slog.Time("window_end", windowEnd),
	)

	subs, err := s.subscriptions.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list subscriptions",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		tracing.RecordRunResult(span, 0, 0, 0, 0, err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	rowCache := make(map[int64]*domain.SweepRow)
	regulationCache := make(map[int64]*domain.ParkingRegulation)

	result := &RunResult{
		RunID:         runID,
		StartedAt:     now,
		WindowEnd:     windowEnd,
		Subscriptions: len(subs),
	}

	for i := range subs {
		sub := &subs[i]

		sent, reason, err := s.processSubscription(ctx, sub, now, windowEnd, rowCache, regulationCache)
		if err != nil {
			slog.ErrorContext(ctx, "failed to process subscription",
				slog.String("run_id", runID),
				slog.String("device_token", sub.DeviceToken),
				slog.Int64("schedule_block_sweep_id", sub.ScheduleBlockSweepID),
				slog.String("error", err.Error()),
			)
			result.Failed++
			s.metrics.RecordSubscriptionEvaluated(ctx, string(sub.Type), "failed")
			continue
		}

		if sent {
			result.Sent++
			s.metrics.RecordNotificationSent(ctx, string(sub.Type), reason == ReasonLateSend)
		} else {
			result.Skipped++
		}
		s.metrics.RecordSubscriptionEvaluated(ctx, string(sub.Type), string(reason))
	}

	duration := time.Since(started)
	s.metrics.RecordRunDuration(ctx, duration)
	tracing.RecordRunResult(span, result.Subscriptions, result.Sent, result.Skipped, result.Failed, nil)

	if s.recorder != nil {
		record := domain.SweepRunRecord{
			RunID:         runID,
			StartedAt:     now,
			WindowEnd:     windowEnd,
			Subscriptions: result.Subscriptions,
			Sent:          result.Sent,
			Skipped:       result.Skipped,
			Failed:        result.Failed,
			Duration:      duration,
		}
		if err := s.recorder.RecordRun(ctx, record); err != nil {
			slog.WarnContext(ctx, "failed to record run",
				slog.String("run_id", runID),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.InfoContext(ctx, "notification run finished",
		slog.String("run_id", runID),
		slog.Int("subscriptions", result.Subscriptions),
		slog.Int("sent", result.Sent),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", duration),
	)

	return result, nil
}

func (s *Service) processSubscription(
	ctx context.Context,
	sub *domain.Subscription,
	now, windowEnd time.Time,
	rowCache map[int64]*domain.SweepRow,
	regulationCache map[int64]*domain.ParkingRegulation,
) (bool, Reason, error) {
	switch sub.Type {
	case domain.SubscriptionTiming:
		return s.processTiming(ctx, sub, now, windowEnd, regulationCache)
	case domain.SubscriptionSweeping:
		return s.processSweeping(ctx, sub, now, windowEnd, rowCache)
	default:
		return false, "", fmt.Errorf("unknown subscription type %q", sub.Type)
	}
}

func (s *Service) processSweeping(
	ctx context.Context,
	sub *domain.Subscription,
	now, windowEnd time.Time,
	rowCache map[int64]*domain.SweepRow,
) (bool, Reason, error) {
	row, ok := rowCache[sub.ScheduleBlockSweepID]
	if !ok {
		fetched, err := s.schedules.GetByBlockSweepID(ctx, sub.ScheduleBlockSweepID)
		if err != nil {
			return false, "", fmt.Errorf("failed to fetch schedule row %d: %w", sub.ScheduleBlockSweepID, err)
		}
		row = fetched
		rowCache[sub.ScheduleBlockSweepID] = row
	}

	window, err := s.calc.NextRowWindow(row, now)
	if err != nil {
		return false, "", fmt.Errorf("failed to resolve next sweeping window for row %d: %w", sub.ScheduleBlockSweepID, err)
	}

	decision := Decide(sub.LastNotifiedAt, sub.LeadMinutes, now, windowEnd, window.Start, window.End)
	if !decision.Send {
		return false, decision.Reason, nil
	}

	if err := s.gateway.Send(ctx, sweepingNotification(sub, row, window)); err != nil {
		return false, "", fmt.Errorf("failed to send push: %w", err)
	}
	s.markNotified(ctx, sub, *decision.NotifyAt)

	return true, decision.Reason, nil
}

func (s *Service) processTiming(
	ctx context.Context,
	sub *domain.Subscription,
	now, windowEnd time.Time,
	regulationCache map[int64]*domain.ParkingRegulation,
) (bool, Reason, error) {
	reg, ok := regulationCache[sub.ScheduleBlockSweepID]
	if !ok {
		fetched, err := s.schedules.GetRegulationByID(ctx, sub.ScheduleBlockSweepID)
		if err != nil {
			return false, "", fmt.Errorf("failed to fetch regulation %d: %w", sub.ScheduleBlockSweepID, err)
		}
		reg = fetched
		regulationCache[sub.ScheduleBlockSweepID] = reg
	}

	window, err := s.calc.NextRegulationWindow(*reg, now)
	if err != nil {
		return false, "", fmt.Errorf("failed to resolve next regulation window for %d: %w", sub.ScheduleBlockSweepID, err)
	}

	decision := Decide(sub.LastNotifiedAt, sub.LeadMinutes, now, windowEnd, window.Start, window.End)
	if !decision.Send {
		return false, decision.Reason, nil
	}

	if err := s.gateway.Send(ctx, timingNotification(sub, reg, window)); err != nil {
		return false, "", fmt.Errorf("failed to send push: %w", err)
	}
	s.markNotified(ctx, sub, *decision.NotifyAt)

	return true, decision.Reason, nil
}

// markNotified persists last_notified_at after a successful send. Failures
// are tolerated: delivery is at-least-once, and the worst case is one
// duplicate notification on the next run.
func (s *Service) markNotified(ctx context.Context, sub *domain.Subscription, at time.Time) {
	if err := s.subscriptions.MarkNotified(ctx, sub.DeviceToken, sub.ScheduleBlockSweepID, at); err != nil {
		slog.WarnContext(ctx, "failed to record last notified time",
			slog.String("device_token", sub.DeviceToken),
			slog.Int64("schedule_block_sweep_id", sub.ScheduleBlockSweepID),
			slog.String("error", err.Error()),
		)
	}
}
