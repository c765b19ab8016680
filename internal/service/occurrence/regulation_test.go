package occurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

func testRegulation(days string, hrsBegin, hrsEnd int) domain.ParkingRegulation {
	return domain.ParkingRegulation{
		ID:         99,
		Regulation: "Time limited",
		Days:       days,
		HrsBegin:   intPtr(hrsBegin),
		HrsEnd:     intPtr(hrsEnd),
		HourLimit:  intPtr(2),
	}
}

func TestNextRegulationWindow(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)

	tests := []struct {
		name      string
		reg       domain.ParkingRegulation
		reference time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "weekday evening rolls to next weekday morning",
			reg:       testRegulation("M-F", 800, 1800),
			reference: time.Date(2024, 3, 6, 19, 0, 0, 0, loc), // Wednesday
			wantStart: time.Date(2024, 3, 7, 8, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 7, 18, 0, 0, 0, loc),
		},
		{
			name:      "inside active window returns current window",
			reg:       testRegulation("M-F", 800, 1800),
			reference: time.Date(2024, 3, 6, 12, 0, 0, 0, loc),
			wantStart: time.Date(2024, 3, 6, 8, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 6, 18, 0, 0, 0, loc),
		},
		{
			name:      "saturday-only skips the week",
			reg:       testRegulation("Sa", 900, 1700),
			reference: time.Date(2024, 3, 3, 10, 0, 0, 0, loc), // Sunday
			wantStart: time.Date(2024, 3, 9, 9, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 9, 17, 0, 0, 0, loc),
		},
		{
			name:      "minutes in military time survive",
			reg:       testRegulation("M-Su", 830, 1745),
			reference: time.Date(2024, 3, 6, 6, 0, 0, 0, loc),
			wantStart: time.Date(2024, 3, 6, 8, 30, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 6, 17, 45, 0, 0, loc),
		},
		{
			name:      "cross midnight window ends next day",
			reg:       testRegulation("M-F", 2200, 600),
			reference: time.Date(2024, 3, 6, 20, 0, 0, 0, loc),
			wantStart: time.Date(2024, 3, 6, 22, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 7, 6, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := calc.NextRegulationWindow(tt.reg, tt.reference)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !w.Start.Equal(tt.wantStart) || !w.End.Equal(tt.wantEnd) {
				t.Errorf("got (%v, %v), want (%v, %v)", w.Start, w.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestNextRegulationWindowInputErrors(t *testing.T) {
	loc := pacific(t)
	calc := NewCalculator(loc, DefaultHorizonMonths, DefaultRegulationHorizonDays)
	reference := time.Date(2024, 3, 6, 10, 0, 0, 0, loc)

	unknownDays := testRegulation("Tu-Th", 800, 1800)
	if _, err := calc.NextRegulationWindow(unknownDays, reference); !errors.Is(err, domain.ErrInvalidRule) {
		t.Errorf("unknown days: got %v, want ErrInvalidRule", err)
	}

	missingHours := testRegulation("M-F", 800, 1800)
	missingHours.HrsBegin = nil
	if _, err := calc.NextRegulationWindow(missingHours, reference); !errors.Is(err, domain.ErrInvalidRule) {
		t.Errorf("missing hours: got %v, want ErrInvalidRule", err)
	}
}
