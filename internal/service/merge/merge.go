// Package merge folds raw per-weekday schedule rows into per-block schedules
// with a minimal rule set.
package merge

import (
	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

// RowsToBlocks groups rows by block identity and merges rows that differ only
// in weekday into single rules. Rows of one block must agree on geometry;
// divergence means the ingest is corrupt and fails the conversion outright.
func RowsToBlocks(rows []domain.SweepRow) ([]domain.BlockSchedule, error) {
	grouped := make(map[domain.BlockKey][]*domain.SweepRow)
	var order []domain.BlockKey

	for i := range rows {
		row := &rows[i]
		key := row.Key()
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], row)
	}

	result := make([]domain.BlockSchedule, 0, len(order))
	for _, key := range order {
		blockRows := grouped[key]

		geometry := blockRows[0].Line
		for _, row := range blockRows[1:] {
			if !row.Line.Equal(geometry) {
				return nil, &domain.GeometryMismatchError{
					Block:    key,
					Expected: geometry,
					Got:      row.Line,
				}
			}
		}

		rules := make([]domain.RecurringRule, 0, len(blockRows))
		for _, row := range blockRows {
			rules = append(rules, rowToRule(row))
		}

		result = append(result, domain.BlockSchedule{
			Block: key,
			Rules: mergeRules(rules),
			Line:  geometry,
		})
	}

	return result, nil
}

// rowToRule converts one raw row into a single-weekday rule. Rows that cannot
// fire (holiday-only labels, unknown labels, missing hours) keep an empty
// weekday set; the merger passes them through and the error surfaces at
// occurrence-resolution time.
func rowToRule(row *domain.SweepRow) domain.RecurringRule {
	weekdays := domain.NewWeekdaySet()
	if !domain.IsHolidayLabel(row.WeekDay) && row.FromHour != nil && row.ToHour != nil {
		if weekday, err := domain.ParseWeekday(row.WeekDay); err == nil {
			weekdays.Add(weekday)
		}
	}

	var window domain.TimeWindow
	if row.FromHour != nil && row.ToHour != nil {
		window = domain.TimeWindow{StartHour: *row.FromHour, EndHour: *row.ToHour}
	}

	return domain.RecurringRule{
		Pattern: domain.MonthlyPattern{
			Weekdays:     weekdays,
			WeeksOfMonth: row.ActiveWeeks(),
		},
		TimeWindow:   window,
		SkipHolidays: row.Holidays,
	}
}

// mergeRules greedily folds each rule into the first already-emitted rule with
// an identical time window, week set and holiday flag. Small-N linear scan;
// a block carries at most seven rows. Keep the first-compatible policy as is:
// downstream behavior depends on this exact merge order.
func mergeRules(rules []domain.RecurringRule) []domain.RecurringRule {
	merged := make([]domain.RecurringRule, 0, len(rules))

	for _, rule := range rules {
		target := -1
		for i := range merged {
			if merged[i].TimeWindow == rule.TimeWindow &&
				equalWeeks(merged[i].Pattern.WeeksOfMonth, rule.Pattern.WeeksOfMonth) &&
				merged[i].SkipHolidays == rule.SkipHolidays {
				target = i
				break
			}
		}
		if target < 0 {
			merged = append(merged, rule)
			continue
		}
		for d := range rule.Pattern.Weekdays {
			merged[target].Pattern.Weekdays.Add(d)
		}
	}

	return merged
}

// equalWeeks treats nil and empty as the same "all weeks" value. ActiveWeeks
// produces ascending slices, so positional comparison is enough.
func equalWeeks(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
