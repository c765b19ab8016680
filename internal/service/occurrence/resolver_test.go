package occurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

func TestEarliestWindowAcrossRules(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	schedule := domain.BlockSchedule{
		Block: domain.BlockKey{CNN: 1},
		Rules: []domain.RecurringRule{
			{
				Pattern:    domain.MonthlyPattern{Weekdays: domain.NewWeekdaySet(domain.Friday), WeeksOfMonth: []int{4}},
				TimeWindow: domain.TimeWindow{StartHour: 12, EndHour: 14},
			},
			{
				Pattern:    domain.MonthlyPattern{Weekdays: domain.NewWeekdaySet(domain.Tuesday), WeeksOfMonth: []int{2}},
				TimeWindow: domain.TimeWindow{StartHour: 9, EndHour: 11},
			},
		},
	}

	// March 2024: 2nd Tuesday is the 12th, 4th Friday the 22nd.
	reference := time.Date(2024, 3, 6, 10, 0, 0, 0, loc)
	w, err := calc.EarliestWindow(schedule, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantStart := time.Date(2024, 3, 12, 9, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) {
		t.Errorf("got start %v, want %v", w.Start, wantStart)
	}
}

func TestEarliestWindowSkipsUnresolvableRules(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	schedule := domain.BlockSchedule{
		Block: domain.BlockKey{CNN: 1},
		Rules: []domain.RecurringRule{
			{
				// Holiday-only row kept through the merge: no weekdays.
				Pattern:    domain.MonthlyPattern{Weekdays: domain.NewWeekdaySet()},
				TimeWindow: domain.TimeWindow{StartHour: 9, EndHour: 11},
			},
			{
				Pattern:    domain.MonthlyPattern{Weekdays: domain.NewWeekdaySet(domain.Friday), WeeksOfMonth: []int{2}},
				TimeWindow: domain.TimeWindow{StartHour: 12, EndHour: 14},
			},
		},
	}

	reference := time.Date(2024, 3, 6, 10, 0, 0, 0, loc)
	w, err := calc.EarliestWindow(schedule, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantStart := time.Date(2024, 3, 8, 12, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) {
		t.Errorf("got start %v, want %v", w.Start, wantStart)
	}
}

func TestEarliestWindowAllRulesFail(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	schedule := domain.BlockSchedule{
		Block: domain.BlockKey{CNN: 1, Corridor: "Valencia St"},
		Rules: []domain.RecurringRule{
			{Pattern: domain.MonthlyPattern{Weekdays: domain.NewWeekdaySet()}},
		},
	}

	_, err := calc.EarliestWindow(schedule, time.Date(2024, 3, 6, 10, 0, 0, 0, loc))
	if !errors.Is(err, domain.ErrNoValidWindow) {
		t.Errorf("got %v, want ErrNoValidWindow", err)
	}
}

func TestEarliestWindowWithRowIDTieBreak(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	// Identical patterns, so identical starts; the smaller id must win even
	// though the larger id is scanned first.
	rowA := testRow("Fri", []int{2}, 12, 14)
	rowA.BlockSweepID = 42
	rowB := testRow("Fri", []int{2}, 12, 14)
	rowB.BlockSweepID = 7

	reference := time.Date(2024, 3, 6, 10, 0, 0, 0, loc)
	_, id, err := calc.EarliestWindowWithRowID([]domain.SweepRow{*rowA, *rowB}, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("got row id %d, want 7", id)
	}
}

func TestEarliestWindowWithRowIDPicksEarlierRow(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	late := testRow("Fri", []int{4}, 12, 14)
	late.BlockSweepID = 1
	early := testRow("Tue", []int{2}, 9, 11)
	early.BlockSweepID = 2

	reference := time.Date(2024, 3, 6, 10, 0, 0, 0, loc)
	w, id, err := calc.EarliestWindowWithRowID([]domain.SweepRow{*late, *early}, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 2 {
		t.Errorf("got row id %d, want 2", id)
	}
	wantStart := time.Date(2024, 3, 12, 9, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) {
		t.Errorf("got start %v, want %v", w.Start, wantStart)
	}
}

func TestEarliestWindowWithRowIDAllRowsFail(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	holiday := testRow("Holiday", []int{1}, 9, 11)
	_, _, err := calc.EarliestWindowWithRowID([]domain.SweepRow{*holiday}, time.Date(2024, 3, 6, 10, 0, 0, 0, loc))
	if !errors.Is(err, domain.ErrNoValidWindow) {
		t.Errorf("got %v, want ErrNoValidWindow", err)
	}
}
