package sweep

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	day := func(hour, min int) time.Time {
		return time.Date(2024, 3, 8, hour, min, 0, 0, time.UTC)
	}
	start := day(14, 0)
	end := day(16, 0)

	tests := []struct {
		name           string
		lastNotifiedAt *time.Time
		leadMinutes    int
		now            time.Time
		windowEnd      time.Time
		wantSend       bool
		wantReason     Reason
		wantNotifyAt   *time.Time
	}{
		{
			name:         "ideal moment inside polling window",
			leadMinutes:  60,
			now:          day(12, 30),
			windowEnd:    day(13, 30),
			wantSend:     true,
			wantReason:   ReasonSend,
			wantNotifyAt: timePtr(day(13, 0)),
		},
		{
			name:           "already notified at ideal moment",
			lastNotifiedAt: timePtr(day(13, 0)),
			leadMinutes:    60,
			now:            day(12, 30),
			windowEnd:      day(13, 30),
			wantSend:       false,
			wantReason:     ReasonAlreadyNotified,
			wantNotifyAt:   timePtr(day(13, 0)),
		},
		{
			name:         "ideal moment passed but occurrence upcoming sends late",
			leadMinutes:  60,
			now:          day(13, 5),
			windowEnd:    day(14, 5),
			wantSend:     true,
			wantReason:   ReasonLateSend,
			wantNotifyAt: timePtr(day(13, 5)),
		},
		{
			name:         "late send ignores polling window end",
			leadMinutes:  60,
			now:          day(13, 5),
			windowEnd:    day(13, 6),
			wantSend:     true,
			wantReason:   ReasonLateSend,
			wantNotifyAt: timePtr(day(13, 5)),
		},
		{
			name:           "late path already covered by prior pass",
			lastNotifiedAt: timePtr(day(13, 1)),
			leadMinutes:    60,
			now:            day(13, 5),
			windowEnd:      day(14, 5),
			wantSend:       false,
			wantReason:     ReasonAlreadyNotified,
			wantNotifyAt:   timePtr(day(13, 5)),
		},
		{
			name:        "occurrence already started",
			leadMinutes: 60,
			now:         day(14, 0),
			windowEnd:   day(15, 0),
			wantSend:    false,
			wantReason:  ReasonAlreadyStarted,
		},
		{
			name:         "too early, next run covers the ideal moment",
			leadMinutes:  60,
			now:          day(11, 0),
			windowEnd:    day(12, 0),
			wantSend:     false,
			wantReason:   ReasonNextRunCovers,
			wantNotifyAt: timePtr(day(13, 0)),
		},
		{
			name:         "ideal moment exactly at window end is left for next run",
			leadMinutes:  60,
			now:          day(12, 0),
			windowEnd:    day(13, 0),
			wantSend:     false,
			wantReason:   ReasonNextRunCovers,
			wantNotifyAt: timePtr(day(13, 0)),
		},
		{
			name:         "ideal moment exactly now sends on the normal path",
			leadMinutes:  60,
			now:          day(13, 0),
			windowEnd:    day(14, 0),
			wantSend:     true,
			wantReason:   ReasonSend,
			wantNotifyAt: timePtr(day(13, 0)),
		},
		{
			name:           "last notified before ideal moment does not suppress",
			lastNotifiedAt: timePtr(day(12, 59)),
			leadMinutes:    60,
			now:            day(12, 30),
			windowEnd:      day(13, 30),
			wantSend:       true,
			wantReason:     ReasonSend,
			wantNotifyAt:   timePtr(day(13, 0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.lastNotifiedAt, tt.leadMinutes, tt.now, tt.windowEnd, start, end)

			if d.Send != tt.wantSend {
				t.Errorf("Send: got %v, want %v", d.Send, tt.wantSend)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Reason: got %q, want %q", d.Reason, tt.wantReason)
			}
			switch {
			case tt.wantNotifyAt == nil:
				if d.NotifyAt != nil {
					t.Errorf("NotifyAt: got %v, want nil", d.NotifyAt)
				}
			case d.NotifyAt == nil:
				t.Errorf("NotifyAt: got nil, want %v", tt.wantNotifyAt)
			default:
				if !d.NotifyAt.Equal(*tt.wantNotifyAt) {
					t.Errorf("NotifyAt: got %v, want %v", d.NotifyAt, tt.wantNotifyAt)
				}
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
