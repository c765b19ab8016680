package stub

import (
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

type SeedRequest struct {
	Schedules   []domain.SweepRow          `json:"schedules"`
	Regulations []domain.ParkingRegulation `json:"regulations"`
}

// subscriptionRecord mirrors the wire shape of the subscriptions table.
type subscriptionRecord struct {
	DeviceToken          string     `json:"device_token"`
	Platform             string     `json:"platform"`
	ScheduleBlockSweepID int64      `json:"schedule_block_sweep_id"`
	Location             string     `json:"location"`
	LeadMinutes          int        `json:"lead_minutes"`
	LastNotifiedAt       *time.Time `json:"last_notified_at"`
	SubscriptionType     string     `json:"subscription_type"`
}
