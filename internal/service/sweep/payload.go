package sweep

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
	"github.com/sweepdreams/curbside-notifications/internal/infra/push"
	"github.com/sweepdreams/curbside-notifications/internal/service/occurrence"
)

// clockLabel renders a wall-clock time like "2:05 PM".
func clockLabel(t time.Time) string {
	return t.Format("3:04 PM")
}

func sweepingNotification(sub *domain.Subscription, row *domain.SweepRow, w occurrence.Window) *push.Notification {
	location := row.Corridor
	if row.Limits != "" {
		location += " (" + row.Limits + ")"
	}
	if row.BlockSide != "" {
		location += " - " + row.BlockSide + " side"
	}

	return &push.Notification{
		DeviceToken: sub.DeviceToken,
		Title:       fmt.Sprintf("Street sweeping on %s in %d minutes!", row.Corridor, sub.LeadMinutes),
		Body:        fmt.Sprintf("%s: %s - %s", location, clockLabel(w.Start), clockLabel(w.End)),
		Data: map[string]string{
			"schedule_block_sweep_id": strconv.FormatInt(sub.ScheduleBlockSweepID, 10),
			"next_sweep_start":        w.Start.Format(time.RFC3339),
			"next_sweep_end":          w.End.Format(time.RFC3339),
		},
	}
}

func timingNotification(sub *domain.Subscription, reg *domain.ParkingRegulation, w occurrence.Window) *push.Notification {
	hourLimit := 2
	if reg.HourLimit != nil {
		hourLimit = *reg.HourLimit
	}

	body := fmt.Sprintf("%d-hour limit %s - %s", hourLimit, clockLabel(w.Start), clockLabel(w.End))
	if reg.Neighborhood != "" {
		body = reg.Neighborhood + ": " + body
	}

	return &push.Notification{
		DeviceToken: sub.DeviceToken,
		Title:       "Move your car by " + clockLabel(w.Start),
		Body:        body,
		Data: map[string]string{
			"regulation_id":     strconv.FormatInt(sub.ScheduleBlockSweepID, 10),
			"regulation_start":  w.Start.Format(time.RFC3339),
			"regulation_end":    w.End.Format(time.RFC3339),
			"subscription_type": "timing",
		},
	}
}
