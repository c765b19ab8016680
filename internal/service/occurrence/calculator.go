package occurrence

import (
	"fmt"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

const (
	// DefaultHorizonMonths bounds the nth-weekday forward search. Twelve
	// months covers every recurrence the dataset expresses, including
	// 5th-occurrence rules that skip several months in a row.
	DefaultHorizonMonths = 12

	// DefaultRegulationHorizonDays bounds the parking-regulation search.
	// Weekly day-range patterns always recur within eight days.
	DefaultRegulationHorizonDays = 8
)

// Window is a concrete occurrence of a rule: the local start and end instants.
type Window struct {
	Start time.Time
	End   time.Time
}

// Calculator resolves recurring rules into concrete calendar windows.
// All date arithmetic happens in the target location; reference instants in
// other zones are converted before any month or day boundary is considered.
type Calculator struct {
	loc                   *time.Location
	horizonMonths         int
	regulationHorizonDays int
}

func NewCalculator(loc *time.Location, horizonMonths, regulationHorizonDays int) *Calculator {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	if regulationHorizonDays <= 0 {
		regulationHorizonDays = DefaultRegulationHorizonDays
	}
	return &Calculator{
		loc:                   loc,
		horizonMonths:         horizonMonths,
		regulationHorizonDays: regulationHorizonDays,
	}
}

func (c *Calculator) Location() *time.Location {
	return c.loc
}

// nthWeekday returns the day of the month for the nth occurrence of a weekday
// (Monday = 0), or false when the month has fewer occurrences than asked for.
func nthWeekday(year int, month time.Month, weekday domain.Weekday, occurrence int) (int, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstWeekday := domain.FromTime(first.Weekday())
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	day := 1 + (int(weekday-firstWeekday)+7)%7 + 7*(occurrence-1)
	if day > daysInMonth {
		return 0, false
	}
	return day, true
}

// NextWindow finds the first window for the given weekday, occurrence indices
// and hour range whose end falls after the reference instant. Months are
// scanned forward from the reference month up to the search horizon, and
// occurrence indices in the order given (callers pass them ascending).
// An end hour numerically at or before the start hour crosses midnight.
func (c *Calculator) NextWindow(weekday domain.Weekday, activeWeeks []int, startHour, endHour int, reference time.Time) (Window, error) {
	if len(activeWeeks) == 0 {
		return Window{}, fmt.Errorf("%w: no active weeks", domain.ErrInvalidRule)
	}

	reference = reference.In(c.loc)

	for monthOffset := 0; monthOffset <= c.horizonMonths; monthOffset++ {
		monthIndex := int(reference.Month()) - 1 + monthOffset
		year := reference.Year() + monthIndex/12
		month := time.Month(monthIndex%12 + 1)

		for _, occurrence := range activeWeeks {
			day, ok := nthWeekday(year, month, weekday, occurrence)
			if !ok {
				continue
			}

			start := time.Date(year, month, day, startHour, 0, 0, 0, c.loc)
			end := time.Date(year, month, day, endHour, 0, 0, 0, c.loc)
			if !end.After(start) {
				end = time.Date(year, month, day+1, endHour, 0, 0, 0, c.loc)
			}

			if !end.After(reference) {
				continue // Window already passed; the end boundary is exclusive.
			}

			return Window{Start: start, End: end}, nil
		}
	}

	return Window{}, domain.ErrNoOccurrence
}

// NextRuleWindow resolves the next window of a merged rule. A merged rule may
// carry several weekdays; the earliest window across them wins.
func (c *Calculator) NextRuleWindow(rule domain.RecurringRule, reference time.Time) (Window, error) {
	if len(rule.Pattern.Weekdays) == 0 {
		return Window{}, fmt.Errorf("%w: no weekdays", domain.ErrInvalidRule)
	}

	activeWeeks := rule.Pattern.WeeksOfMonth
	if len(activeWeeks) == 0 {
		activeWeeks = []int{1, 2, 3, 4, 5}
	}

	var best Window
	found := false
	for _, weekday := range rule.Pattern.Weekdays.Sorted() {
		w, err := c.NextWindow(weekday, activeWeeks, rule.TimeWindow.StartHour, rule.TimeWindow.EndHour, reference)
		if err != nil {
			continue
		}
		if !found || w.Start.Before(best.Start) {
			best = w
			found = true
		}
	}
	if !found {
		return Window{}, domain.ErrNoOccurrence
	}
	return best, nil
}

// NextRowWindow resolves the next window of one raw schedule row.
func (c *Calculator) NextRowWindow(row *domain.SweepRow, reference time.Time) (Window, error) {
	if domain.IsHolidayLabel(row.WeekDay) {
		return Window{}, fmt.Errorf("%w: schedule applies only on holidays", domain.ErrInvalidRule)
	}
	weekday, err := domain.ParseWeekday(row.WeekDay)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", domain.ErrInvalidRule, err)
	}

	activeWeeks := row.ActiveWeeks()
	if len(activeWeeks) == 0 {
		return Window{}, fmt.Errorf("%w: no active weeks", domain.ErrInvalidRule)
	}
	if row.FromHour == nil || row.ToHour == nil {
		return Window{}, fmt.Errorf("%w: missing from/to hours", domain.ErrInvalidRule)
	}

	return c.NextWindow(weekday, activeWeeks, *row.FromHour, *row.ToHour, reference)
}
