package occurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

func pacific(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	return loc
}

func intPtr(v int) *int { return &v }

func testRow(weekDay string, weeks []int, fromHour, toHour int) *domain.SweepRow {
	row := &domain.SweepRow{
		CNN:          1234,
		Corridor:     "Valencia St",
		Limits:       "16th St - 17th St",
		CNNRightLeft: "R",
		BlockSide:    "East",
		WeekDay:      weekDay,
		FromHour:     intPtr(fromHour),
		ToHour:       intPtr(toHour),
		BlockSweepID: 1,
	}
	for _, w := range weeks {
		switch w {
		case 1:
			row.Week1 = true
		case 2:
			row.Week2 = true
		case 3:
			row.Week3 = true
		case 4:
			row.Week4 = true
		case 5:
			row.Week5 = true
		}
	}
	return row
}

func TestNextWindowMultiWeekPicksNext(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	// 2nd and 4th Friday, 12:00-14:00. March 2024 Fridays: 1, 8, 15, 22, 29.
	tests := []struct {
		name       string
		reference  time.Time
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{
			name:      "before any march window",
			reference: time.Date(2024, 3, 6, 10, 0, 0, 0, loc),
			wantStart: time.Date(2024, 3, 8, 12, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 8, 14, 0, 0, 0, loc),
		},
		{
			name:      "before start on sweep day",
			reference: time.Date(2024, 3, 8, 10, 0, 0, 0, loc),
			wantStart: time.Date(2024, 3, 8, 12, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 8, 14, 0, 0, 0, loc),
		},
		{
			name:      "during window returns current window",
			reference: time.Date(2024, 3, 8, 12, 30, 0, 0, loc),
			wantStart: time.Date(2024, 3, 8, 12, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 8, 14, 0, 0, 0, loc),
		},
		{
			name:      "exactly at end rolls to next occurrence",
			reference: time.Date(2024, 3, 8, 14, 0, 0, 0, loc),
			wantStart: time.Date(2024, 3, 22, 12, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 22, 14, 0, 0, 0, loc),
		},
		{
			name:      "after fourth friday rolls to next month",
			reference: time.Date(2024, 3, 23, 9, 0, 0, 0, loc),
			wantStart: time.Date(2024, 4, 12, 12, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 4, 12, 14, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := calc.NextWindow(domain.Friday, []int{2, 4}, 12, 14, tt.reference)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !w.Start.Equal(tt.wantStart) || !w.End.Equal(tt.wantEnd) {
				t.Errorf("got (%v, %v), want (%v, %v)", w.Start, w.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestNextWindowCrossMidnight(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	// First Monday of April 2024 is April 1; the 23:00-01:00 window ends on
	// April 2.
	reference := time.Date(2024, 4, 2, 0, 30, 0, 0, loc)
	w, err := calc.NextWindow(domain.Monday, []int{1}, 23, 1, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2024, 4, 1, 23, 0, 0, 0, loc)
	wantEnd := time.Date(2024, 4, 2, 1, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Errorf("got (%v, %v), want (%v, %v)", w.Start, w.End, wantStart, wantEnd)
	}
	if got := w.End.Sub(w.Start); got != 2*time.Hour {
		t.Errorf("cross-midnight window spans %v, want 2h", got)
	}
}

func TestNextWindowSkipsMonthsWithoutOccurrence(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	// February 2025 has only four Saturdays; the next fifth Saturday is
	// March 29.
	reference := time.Date(2025, 2, 1, 12, 0, 0, 0, loc)
	w, err := calc.NextWindow(domain.Saturday, []int{5}, 9, 11, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2025, 3, 29, 9, 0, 0, 0, loc)
	wantEnd := time.Date(2025, 3, 29, 11, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Errorf("got (%v, %v), want (%v, %v)", w.Start, w.End, wantStart, wantEnd)
	}
}

func TestNextWindowTimezoneConversion(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	// 20:30 UTC on March 8 is 12:30 Pacific, inside the window.
	reference := time.Date(2024, 3, 8, 20, 30, 0, 0, time.UTC)
	w, err := calc.NextWindow(domain.Friday, []int{2, 4}, 12, 14, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2024, 3, 8, 12, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) {
		t.Errorf("got start %v, want %v", w.Start, wantStart)
	}
}

func TestNextWindowEmptyWeeksIsInvalid(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	_, err := calc.NextWindow(domain.Friday, nil, 12, 14, time.Date(2024, 1, 1, 9, 0, 0, 0, loc))
	if !errors.Is(err, domain.ErrInvalidRule) {
		t.Errorf("got %v, want ErrInvalidRule", err)
	}
	if !errors.Is(err, domain.ErrScheduling) {
		t.Errorf("ErrInvalidRule should wrap the base scheduling error")
	}
}

func TestNextWindowHorizonExhausted(t *testing.T) {
	loc := pacific(t)
	// June and July 2025 both have four Saturdays; a one-month horizon from
	// June cannot find a fifth.
	calc := NewCalculator(loc, 1, DefaultRegulationHorizonDays)

	_, err := calc.NextWindow(domain.Saturday, []int{5}, 9, 11, time.Date(2025, 6, 1, 0, 0, 0, 0, loc))
	if !errors.Is(err, domain.ErrNoOccurrence) {
		t.Errorf("got %v, want ErrNoOccurrence", err)
	}
}

// TestNextWindowMatchesExhaustiveSearch cross-checks the month-hopping search
// against a brute-force day scan over a two-year span.
func TestNextWindowMatchesExhaustiveSearch(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, 24, DefaultRegulationHorizonDays)

	configs := []struct {
		weekday   domain.Weekday
		weeks     []int
		startHour int
		endHour   int
	}{
		{domain.Friday, []int{2, 4}, 12, 14},
		{domain.Saturday, []int{5}, 9, 11},
		{domain.Monday, []int{1, 3, 5}, 23, 1},
		{domain.Wednesday, []int{1, 2, 3, 4, 5}, 0, 6},
	}

	bruteForce := func(weekday domain.Weekday, weeks []int, startHour, endHour int, ref time.Time) (Window, bool) {
		weekSet := make(map[int]bool, len(weeks))
		for _, w := range weeks {
			weekSet[w] = true
		}
		day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
		for i := 0; i < 740; i++ {
			d := day.AddDate(0, 0, i)
			if domain.FromTime(d.Weekday()) != weekday {
				continue
			}
			if !weekSet[(d.Day()-1)/7+1] {
				continue
			}
			start := time.Date(d.Year(), d.Month(), d.Day(), startHour, 0, 0, 0, loc)
			end := time.Date(d.Year(), d.Month(), d.Day(), endHour, 0, 0, 0, loc)
			if !end.After(start) {
				end = time.Date(d.Year(), d.Month(), d.Day()+1, endHour, 0, 0, 0, loc)
			}
			if !end.After(ref) {
				continue
			}
			return Window{Start: start, End: end}, true
		}
		return Window{}, false
	}

	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)
	endOfSpan := time.Date(2026, 1, 1, 0, 0, 0, 0, loc)
	for _, cfg := range configs {
		for r := ref; r.Before(endOfSpan); r = r.Add(31 * time.Hour) {
			got, err := calc.NextWindow(cfg.weekday, cfg.weeks, cfg.startHour, cfg.endHour, r)
			if err != nil {
				t.Fatalf("weekday=%v weeks=%v ref=%v: unexpected error: %v", cfg.weekday, cfg.weeks, r, err)
			}
			want, ok := bruteForce(cfg.weekday, cfg.weeks, cfg.startHour, cfg.endHour, r)
			if !ok {
				t.Fatalf("brute force found nothing for weekday=%v weeks=%v ref=%v", cfg.weekday, cfg.weeks, r)
			}
			if !got.Start.Equal(want.Start) || !got.End.Equal(want.End) {
				t.Fatalf("weekday=%v weeks=%v ref=%v: got (%v, %v), want (%v, %v)",
					cfg.weekday, cfg.weeks, r, got.Start, got.End, want.Start, want.End)
			}
		}
	}
}

func TestNextRuleWindowUsesEarliestWeekday(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	rule := domain.RecurringRule{
		Pattern: domain.MonthlyPattern{
			Weekdays:     domain.NewWeekdaySet(domain.Tuesday, domain.Thursday),
			WeeksOfMonth: []int{1},
		},
		TimeWindow: domain.TimeWindow{StartHour: 8, EndHour: 10},
	}

	// 2024-10-01 is the first Tuesday, 2024-10-03 the first Thursday.
	reference := time.Date(2024, 9, 30, 12, 0, 0, 0, loc)
	w, err := calc.NextRuleWindow(rule, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantStart := time.Date(2024, 10, 1, 8, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) {
		t.Errorf("got start %v, want %v", w.Start, wantStart)
	}

	// From Wednesday the Thursday occurrence is next.
	reference = time.Date(2024, 10, 2, 12, 0, 0, 0, loc)
	w, err = calc.NextRuleWindow(rule, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantStart = time.Date(2024, 10, 3, 8, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) {
		t.Errorf("got start %v, want %v", w.Start, wantStart)
	}
}

func TestNextRowWindowInputErrors(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)
	reference := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)

	tests := []struct {
		name string
		row  *domain.SweepRow
	}{
		{"holiday only", testRow("Holiday", []int{1}, 9, 11)},
		{"unknown label", testRow("Funday", []int{1}, 9, 11)},
		{"no active weeks", testRow("Fri", nil, 9, 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.NextRowWindow(tt.row, reference)
			if !errors.Is(err, domain.ErrInvalidRule) {
				t.Errorf("got %v, want ErrInvalidRule", err)
			}
		})
	}

	t.Run("missing hours", func(t *testing.T) {
		row := testRow("Fri", []int{1}, 9, 11)
		row.FromHour = nil
		_, err := calc.NextRowWindow(row, reference)
		if !errors.Is(err, domain.ErrInvalidRule) {
			t.Errorf("got %v, want ErrInvalidRule", err)
		}
	})
}
