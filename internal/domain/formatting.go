package domain

import (
	"fmt"
	"strings"
)

var ordinalNames = map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 5: "5th"}

// HumanRule renders a rule like "Every 2nd and 4th Monday at 12pm-2pm".
func HumanRule(rule RecurringRule) string {
	weeksPrefix := ""
	if len(rule.Pattern.WeeksOfMonth) > 0 && len(rule.Pattern.WeeksOfMonth) < 5 {
		names := make([]string, 0, len(rule.Pattern.WeeksOfMonth))
		for _, w := range rule.Pattern.WeeksOfMonth {
			names = append(names, ordinalNames[w])
		}
		switch len(names) {
		case 1:
			weeksPrefix = names[0] + " "
		case 2:
			weeksPrefix = names[0] + " and " + names[1] + " "
		default:
			weeksPrefix = strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1] + " "
		}
	}

	dayNames := make([]string, 0, len(rule.Pattern.Weekdays))
	for _, d := range rule.Pattern.Weekdays.Sorted() {
		dayNames = append(dayNames, d.String())
	}

	return fmt.Sprintf("Every %s%s at %s-%s",
		weeksPrefix,
		strings.Join(dayNames, ", "),
		formatHour(rule.TimeWindow.StartHour),
		formatHour(rule.TimeWindow.EndHour),
	)
}

// HumanSchedule renders every rule of a block schedule.
func HumanSchedule(schedule BlockSchedule) []string {
	out := make([]string, 0, len(schedule.Rules))
	for _, r := range schedule.Rules {
		out = append(out, HumanRule(r))
	}
	return out
}

func formatHour(hour int) string {
	switch {
	case hour == 0:
		return "12am"
	case hour < 12:
		return fmt.Sprintf("%dam", hour)
	case hour == 12:
		return "12pm"
	default:
		return fmt.Sprintf("%dpm", hour-12)
	}
}
