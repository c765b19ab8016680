package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weekday is a day of the week with Monday = 0, matching the ordering the
// schedule dataset uses for its week_day column.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// FromTime converts a time.Weekday (Sunday = 0) to the dataset convention.
func FromTime(w time.Weekday) Weekday {
	return Weekday((int(w) + 6) % 7)
}

// Dataset values observed: Mon, Tues, Wed, Thu, Fri, Sat, Sun, Holiday.
var weekdayLookup = map[string]Weekday{
	"mon": Monday, "monday": Monday,
	"tue": Tuesday, "tues": Tuesday, "tuesday": Tuesday,
	"wed": Wednesday, "weds": Wednesday, "wednesday": Wednesday,
	"thu": Thursday, "thur": Thursday, "thurs": Thursday, "thursday": Thursday,
	"fri": Friday, "friday": Friday,
	"sat": Saturday, "saturday": Saturday,
	"sun": Sunday, "sunday": Sunday,
}

// ParseWeekday resolves a dataset weekday label to a Weekday.
func ParseWeekday(label string) (Weekday, error) {
	w, ok := weekdayLookup[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday label %q", label)
	}
	return w, nil
}

// IsHolidayLabel reports whether a week_day column value marks a
// holiday-only row rather than a concrete weekday.
func IsHolidayLabel(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), "holiday")
}

// WeekdaySet is an unordered set of weekdays.
type WeekdaySet map[Weekday]struct{}

func NewWeekdaySet(days ...Weekday) WeekdaySet {
	s := make(WeekdaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

func (s WeekdaySet) Add(d Weekday) {
	s[d] = struct{}{}
}

func (s WeekdaySet) Contains(d Weekday) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the members in ascending order (Monday first).
func (s WeekdaySet) Sorted() []Weekday {
	out := make([]Weekday, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
