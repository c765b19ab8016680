package occurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

var dayRangeWeekdays = map[string]domain.WeekdaySet{
	"m-f":   domain.NewWeekdaySet(domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday),
	"m-sa":  domain.NewWeekdaySet(domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday, domain.Saturday),
	"m-su":  domain.NewWeekdaySet(domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday, domain.Saturday, domain.Sunday),
	"sa-su": domain.NewWeekdaySet(domain.Saturday, domain.Sunday),
	"sa":    domain.NewWeekdaySet(domain.Saturday),
	"su":    domain.NewWeekdaySet(domain.Sunday),
}

// splitMilitary parses military-style times: 800 -> (8, 0), 1830 -> (18, 30).
func splitMilitary(military int) (hour, minute int) {
	return military / 100, military % 100
}

// NextRegulationWindow finds the next window in which a parking regulation is
// active. The day-range label (e.g. "M-F") selects the weekdays; the search
// scans forward day by day within the regulation horizon.
func (c *Calculator) NextRegulationWindow(reg domain.ParkingRegulation, reference time.Time) (Window, error) {
	daysLabel := strings.ToLower(strings.TrimSpace(reg.Days))
	activeWeekdays, ok := dayRangeWeekdays[daysLabel]
	if !ok {
		return Window{}, fmt.Errorf("%w: unknown or missing days pattern %q", domain.ErrInvalidRule, reg.Days)
	}
	if reg.HrsBegin == nil || reg.HrsEnd == nil {
		return Window{}, fmt.Errorf("%w: missing hrs_begin/hrs_end", domain.ErrInvalidRule)
	}

	startHour, startMin := splitMilitary(*reg.HrsBegin)
	endHour, endMin := splitMilitary(*reg.HrsEnd)

	reference = reference.In(c.loc)

	for offset := 0; offset < c.regulationHorizonDays; offset++ {
		year, month, day := reference.Date()
		day += offset

		candidate := time.Date(year, month, day, 0, 0, 0, 0, c.loc)
		if !activeWeekdays.Contains(domain.FromTime(candidate.Weekday())) {
			continue
		}

		start := time.Date(year, month, day, startHour, startMin, 0, 0, c.loc)
		end := time.Date(year, month, day, endHour, endMin, 0, 0, c.loc)
		if !end.After(start) {
			end = time.Date(year, month, day+1, endHour, endMin, 0, 0, c.loc)
		}

		if !end.After(reference) {
			continue
		}

		return Window{Start: start, End: end}, nil
	}

	return Window{}, domain.ErrNoOccurrence
}
