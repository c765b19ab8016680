package domain

// BlockKey identifies one physical block side. It is comparable by value and
// used as the grouping key when raw rows are merged into block schedules.
type BlockKey struct {
	CNN          int64
	Corridor     string
	Limits       string
	CNNRightLeft string
	BlockSide    string
}

// TimeWindow is an hour range in 24-hour local time. EndHour numerically at
// or before StartHour means the window crosses midnight.
type TimeWindow struct {
	StartHour int
	EndHour   int
}

// MonthlyPattern describes which weekdays a rule fires on and, optionally,
// which occurrences of those weekdays within the month. A nil or empty
// WeeksOfMonth means every occurrence.
type MonthlyPattern struct {
	Weekdays     WeekdaySet
	WeeksOfMonth []int
}

// RecurringRule is one merged scheduling rule for a block.
type RecurringRule struct {
	Pattern      MonthlyPattern
	TimeWindow   TimeWindow
	SkipHolidays bool
}

// BlockSchedule is the merged, per-block view of the raw schedule rows.
// It is recomputed on demand and never persisted.
type BlockSchedule struct {
	Block BlockKey
	Rules []RecurringRule
	Line  Line
}

// SweepRow is one raw schedule row as served by the schedule store:
// a single (block, weekday) combination with five week-of-month flags.
type SweepRow struct {
	CNN          int64  `json:"cnn"`
	Corridor     string `json:"corridor"`
	Limits       string `json:"limits"`
	CNNRightLeft string `json:"cnn_right_left"`
	BlockSide    string `json:"block_side"`
	FullName     string `json:"full_name"`
	WeekDay      string `json:"week_day"`
	FromHour     *int   `json:"from_hour"`
	ToHour       *int   `json:"to_hour"`
	Week1        bool   `json:"week1"`
	Week2        bool   `json:"week2"`
	Week3        bool   `json:"week3"`
	Week4        bool   `json:"week4"`
	Week5        bool   `json:"week5"`
	Holidays     bool   `json:"holidays"`
	BlockSweepID int64  `json:"block_sweep_id"`
	Line         Line   `json:"line"`
}

// Key returns the block identity fields of the row.
func (r *SweepRow) Key() BlockKey {
	return BlockKey{
		CNN:          r.CNN,
		Corridor:     r.Corridor,
		Limits:       r.Limits,
		CNNRightLeft: r.CNNRightLeft,
		BlockSide:    r.BlockSide,
	}
}

// ActiveWeeks returns the enabled week-of-month indices in ascending order,
// or nil when every flag is false.
func (r *SweepRow) ActiveWeeks() []int {
	flags := [5]bool{r.Week1, r.Week2, r.Week3, r.Week4, r.Week5}
	var weeks []int
	for i, on := range flags {
		if on {
			weeks = append(weeks, i+1)
		}
	}
	return weeks
}

// ParkingRegulation is a time-limited parking regulation keyed by a day-range
// label and a military-time hour range.
type ParkingRegulation struct {
	ID           int64  `json:"id"`
	Regulation   string `json:"regulation"`
	Days         string `json:"days"`
	HrsBegin     *int   `json:"hrs_begin"`
	HrsEnd       *int   `json:"hrs_end"`
	HourLimit    *int   `json:"hour_limit"`
	RPPArea1     string `json:"rpp_area1"`
	RPPArea2     string `json:"rpp_area2"`
	Exceptions   string `json:"exceptions"`
	FromTime     string `json:"from_time"`
	ToTime       string `json:"to_time"`
	Neighborhood string `json:"neighborhood"`
	Line         Line   `json:"line"`
}
