package sweep

import "time"

// Reason explains a notification decision, mainly for logs and counters.
type Reason string

const (
	ReasonSend            Reason = "send"
	ReasonLateSend        Reason = "late_send"
	ReasonAlreadyStarted  Reason = "already_started"
	ReasonAlreadyNotified Reason = "already_notified"
	ReasonNextRunCovers   Reason = "next_run_covers"
)

// Decision is the outcome of evaluating one subscription against one
// upcoming occurrence.
type Decision struct {
	Send bool

	// NotifyAt is the instant to persist as last_notified_at after a
	// successful send: the ideal notification moment, or the evaluation
	// time itself on the late path. It also reports the ideal moment for
	// skipped-as-too-early decisions; nil when the occurrence has already
	// started.
	NotifyAt *time.Time

	Reason Reason
}

// Decide converts a computed occurrence plus a subscriber's lead time and
// last-notified timestamp into a send/skip decision. Pure function; the
// caller owns the send and the last_notified_at persistence.
//
// De-duplication compares last_notified_at against the ideal notify moment
// (occurrence start minus lead), on the late path as well. Comparing against
// the occurrence start instead would behave differently whenever lead time
// is positive; this engine uses the ideal moment everywhere.
func Decide(lastNotifiedAt *time.Time, leadMinutes int, now, pollingWindowEnd, occurrenceStart, occurrenceEnd time.Time) Decision {
	// Already started or passed: an advance warning is no longer useful.
	if !occurrenceStart.After(now) {
		return Decision{Reason: ReasonAlreadyStarted}
	}

	idealNotifyAt := occurrenceStart.Add(-time.Duration(leadMinutes) * time.Minute)
	alreadyNotified := lastNotifiedAt != nil && !lastNotifiedAt.Before(idealNotifyAt)

	// The ideal moment slipped past between polls but the occurrence is
	// still ahead: send immediately unless a prior pass covered it.
	if idealNotifyAt.Before(now) {
		if alreadyNotified {
			return Decision{NotifyAt: &now, Reason: ReasonAlreadyNotified}
		}
		return Decision{Send: true, NotifyAt: &now, Reason: ReasonLateSend}
	}

	// Too early: the next scheduled run will catch it.
	if !idealNotifyAt.Before(pollingWindowEnd) {
		return Decision{NotifyAt: &idealNotifyAt, Reason: ReasonNextRunCovers}
	}

	if alreadyNotified {
		return Decision{NotifyAt: &idealNotifyAt, Reason: ReasonAlreadyNotified}
	}
	return Decision{Send: true, NotifyAt: &idealNotifyAt, Reason: ReasonSend}
}
