package domain

import (
	"fmt"
	"time"
)

// CalendarCells is the fixed size of a month grid: six weeks of seven days
const CalendarCells = 42

// WeekdayHeaders are the column headers of the grid, Sunday first
var WeekdayHeaders = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Month identifies a calendar month
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewMonth validates and builds a Month
func NewMonth(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: month %d", ErrInvalidMonth, month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("%w: year %d", ErrInvalidMonth, year)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// MonthOf returns the month containing t, in t's location
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Valid reports whether the month is in range
func (m Month) Valid() bool {
	return m.Month >= time.January && m.Month <= time.December && m.Year >= 1 && m.Year <= 9999
}

// First returns midnight UTC of the first day of the month
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// Prev returns the preceding month
func (m Month) Prev() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}

// Bounds returns the half-open range [from, to) covering every cell of the month grid
// Follow-ups on leading and trailing days of adjacent months are in range too
func (m Month) Bounds() (from, to time.Time) {
	first := m.First()
	from = first.AddDate(0, 0, -int(first.Weekday()))
	to = from.AddDate(0, 0, CalendarCells)
	return from, to
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// ColorTier is the heatmap color class of one day
type ColorTier string

const (
	TierNone     ColorTier = "none"
	TierOverdue  ColorTier = "overdue"
	TierPending  ColorTier = "pending"
	TierLow      ColorTier = "low"
	TierMedium   ColorTier = "medium"
	TierHigh     ColorTier = "high"
	TierVeryHigh ColorTier = "very_high"
)

// DayBucket aggregates the follow-ups scheduled on one calendar day
type DayBucket struct {
	Date          time.Time `json:"date"`
	InTargetMonth bool      `json:"in_target_month"`
	IsToday       bool      `json:"is_today"`
	Total         int       `json:"total"`
	Completed     int       `json:"completed"`
	Pending       int       `json:"pending"`
	Overdue       int       `json:"overdue"`
	Tier          ColorTier `json:"tier"`
}

// MonthSummary totals the in-month cells of a calendar
type MonthSummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
	BusyDays  int `json:"busy_days"`
}

// FollowUpCalendar is the full heatmap view of one month
type FollowUpCalendar struct {
	Month   Month                    `json:"month"`
	Cells   [CalendarCells]DayBucket `json:"cells"`
	Summary MonthSummary             `json:"summary"`
}
