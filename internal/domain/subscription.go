package domain

import "time"

// SubscriptionType selects which kind of regulation a subscription watches.
type SubscriptionType string

const (
	SubscriptionSweeping SubscriptionType = "sweeping"
	SubscriptionTiming   SubscriptionType = "timing"
)

// Subscription is one device's request to be warned ahead of the next
// occurrence of a schedule row or parking regulation.
type Subscription struct {
	DeviceToken          string           `json:"device_token"`
	Platform             string           `json:"platform"`
	ScheduleBlockSweepID int64            `json:"schedule_block_sweep_id"`
	LeadMinutes          int              `json:"lead_minutes"`
	LastNotifiedAt       *time.Time       `json:"last_notified_at"`
	Type                 SubscriptionType `json:"subscription_type"`
}

// leadMinutesStep is the granularity the clients offer for lead time.
const leadMinutesStep = 15

// ValidateLeadMinutes checks the lead time is a positive multiple of the
// 15-minute step the clients offer.
func ValidateLeadMinutes(leadMinutes int) error {
	if leadMinutes <= 0 || leadMinutes%leadMinutesStep != 0 {
		return ErrInvalidLeadMinutes
	}
	return nil
}
