package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
	"github.com/sweepdreams/curbside-notifications/internal/infra/schedulestore"
	"github.com/sweepdreams/curbside-notifications/internal/infra/subscriptionstore"
	"github.com/sweepdreams/curbside-notifications/internal/service/merge"
	"github.com/sweepdreams/curbside-notifications/internal/service/occurrence"
)

// Service manages device subscriptions and reports their next window.
type Service struct {
	subscriptions subscriptionstore.Repository
	schedules     schedulestore.Repository
	calc          *occurrence.Calculator
}

func NewService(
	subscriptions subscriptionstore.Repository,
	schedules schedulestore.Repository,
	calc *occurrence.Calculator,
) *Service {
	return &Service{
		subscriptions: subscriptions,
		schedules:     schedules,
		calc:          calc,
	}
}

type SubscribeRequest struct {
	DeviceToken          string                  `json:"device_token"`
	Platform             string                  `json:"platform"`
	ScheduleBlockSweepID int64                   `json:"schedule_block_sweep_id"`
	Latitude             float64                 `json:"latitude"`
	Longitude            float64                 `json:"longitude"`
	LeadMinutes          int                     `json:"lead_minutes"`
	Type                 domain.SubscriptionType `json:"subscription_type"`
}

// ScheduleStatus is the merged block schedule behind a sweeping
// subscription with its computed next window.
type ScheduleStatus struct {
	Schedule       domain.BlockSchedule `json:"schedule"`
	HumanRules     []string             `json:"human_rules"`
	NextSweepStart time.Time            `json:"next_sweep_start"`
	NextSweepEnd   time.Time            `json:"next_sweep_end"`
}

type Status struct {
	DeviceToken          string                  `json:"device_token"`
	Platform             string                  `json:"platform"`
	ScheduleBlockSweepID int64                   `json:"schedule_block_sweep_id"`
	LeadMinutes          int                     `json:"lead_minutes"`
	Type                 domain.SubscriptionType `json:"subscription_type"`

	// Schedule is set for sweeping subscriptions only.
	Schedule *ScheduleStatus `json:"schedule,omitempty"`

	NextWindowStart time.Time `json:"next_window_start"`
	NextWindowEnd   time.Time `json:"next_window_end"`
}

// Subscribe creates or replaces the device's subscription and returns it
// with the next computed window. Re-subscribing with the same device token
// overwrites the previous subscription.
func (s *Service) Subscribe(ctx context.Context, req *SubscribeRequest, reference time.Time) (*Status, error) {
	if err := domain.ValidateLeadMinutes(req.LeadMinutes); err != nil {
		return nil, err
	}

	subType := req.Type
	if subType == "" {
		subType = domain.SubscriptionSweeping
	}

	sub := &domain.Subscription{
		DeviceToken:          req.DeviceToken,
		Platform:             req.Platform,
		ScheduleBlockSweepID: req.ScheduleBlockSweepID,
		LeadMinutes:          req.LeadMinutes,
		Type:                 subType,
	}

	stored, err := s.subscriptions.Upsert(ctx, sub, req.Latitude, req.Longitude)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upsert subscription",
			slog.String("device_token", req.DeviceToken),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	slog.InfoContext(ctx, "subscription stored",
		slog.String("device_token", stored.DeviceToken),
		slog.Int64("schedule_block_sweep_id", stored.ScheduleBlockSweepID),
		slog.String("type", string(stored.Type)),
	)

	return s.buildStatus(ctx, stored, reference)
}

// Status returns the stored subscription with its next computed window.
func (s *Service) Status(ctx context.Context, deviceToken string, reference time.Time) (*Status, error) {
	sub, err := s.subscriptions.GetByDeviceToken(ctx, deviceToken)
	if err != nil {
		return nil, err
	}
	return s.buildStatus(ctx, sub, reference)
}

// Delete removes the device's subscription.
func (s *Service) Delete(ctx context.Context, deviceToken string) error {
	if err := s.subscriptions.Delete(ctx, deviceToken); err != nil {
		return err
	}
	slog.InfoContext(ctx, "subscription deleted",
		slog.String("device_token", deviceToken),
	)
	return nil
}

func (s *Service) buildStatus(ctx context.Context, sub *domain.Subscription, reference time.Time) (*Status, error) {
	reference = reference.In(s.calc.Location())

	status := &Status{
		DeviceToken:          sub.DeviceToken,
		Platform:             sub.Platform,
		ScheduleBlockSweepID: sub.ScheduleBlockSweepID,
		LeadMinutes:          sub.LeadMinutes,
		Type:                 sub.Type,
	}

	switch sub.Type {
	case domain.SubscriptionTiming:
		reg, err := s.schedules.GetRegulationByID(ctx, sub.ScheduleBlockSweepID)
		if err != nil {
			return nil, err
		}
		window, err := s.calc.NextRegulationWindow(*reg, reference)
		if err != nil {
			return nil, fmt.Errorf("failed to compute regulation window: %w", err)
		}
		status.NextWindowStart = window.Start
		status.NextWindowEnd = window.End
	default:
		row, err := s.schedules.GetByBlockSweepID(ctx, sub.ScheduleBlockSweepID)
		if err != nil {
			return nil, err
		}
		blocks, err := merge.RowsToBlocks([]domain.SweepRow{*row})
		if err != nil {
			return nil, fmt.Errorf("failed to merge schedule row: %w", err)
		}
		if len(blocks) == 0 {
			return nil, domain.ErrScheduleNotFound
		}
		block := blocks[0]
		window, err := s.calc.EarliestWindow(block, reference)
		if err != nil {
			return nil, fmt.Errorf("failed to compute sweep window: %w", err)
		}
		status.Schedule = &ScheduleStatus{
			Schedule:       block,
			HumanRules:     domain.HumanSchedule(block),
			NextSweepStart: window.Start,
			NextSweepEnd:   window.End,
		}
		status.NextWindowStart = window.Start
		status.NextWindowEnd = window.End
	}

	return status, nil
}
