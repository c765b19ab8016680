package occurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

// EarliestWindow resolves the minimum next window across all rules of a
// merged block schedule. Rules that cannot produce a window (holiday-only
// rows, empty patterns) are skipped; when every rule fails the schedule has
// no computable future window.
func (c *Calculator) EarliestWindow(schedule domain.BlockSchedule, reference time.Time) (Window, error) {
	var best Window
	found := false

	for _, rule := range schedule.Rules {
		w, err := c.NextRuleWindow(rule, reference)
		if err != nil {
			if errors.Is(err, domain.ErrScheduling) {
				continue
			}
			return Window{}, err
		}
		if !found || w.Start.Before(best.Start) {
			best = w
			found = true
		}
	}

	if !found {
		return Window{}, fmt.Errorf("%w: block %+v", domain.ErrNoValidWindow, schedule.Block)
	}
	return best, nil
}

// EarliestWindowWithRowID resolves the minimum next window across raw rows so
// the winning row's identity survives for subscription lookups. Equal starts
// are broken toward the numerically smaller block_sweep_id; subscribers are
// keyed by that id downstream, so the tie-break must stay deterministic.
func (c *Calculator) EarliestWindowWithRowID(rows []domain.SweepRow, reference time.Time) (Window, int64, error) {
	var best Window
	var bestID int64
	found := false

	for i := range rows {
		row := &rows[i]
		w, err := c.NextRowWindow(row, reference)
		if err != nil {
			if errors.Is(err, domain.ErrScheduling) {
				continue
			}
			return Window{}, 0, err
		}

		better := !found || w.Start.Before(best.Start)
		sameStart := found && w.Start.Equal(best.Start)
		if better || (sameStart && row.BlockSweepID < bestID) {
			best = w
			bestID = row.BlockSweepID
			found = true
		}
	}

	if !found {
		return Window{}, 0, domain.ErrNoValidWindow
	}
	return best, bestID, nil
}
