package heatmap_test

import (
	"testing"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/heatmap"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func followUp(status domain.FollowUpStatus, scheduled time.Time) domain.FollowUp {
	return domain.FollowUp{ID: uuid.New(), Status: status, ScheduledDate: scheduled}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestBuildMonth_AlwaysFortyTwoCells(t *testing.T) {
	months := []domain.Month{
		{Year: 2024, Month: time.February}, // leap year
		{Year: 2023, Month: time.February},
		{Year: 2026, Month: time.February}, // starts on Sunday, 28 days
		{Year: 2023, Month: time.December}, // 31 days starting on Friday
		{Year: 2023, Month: time.October},  // 31 days starting on Sunday
		{Year: 2024, Month: time.June},     // 30 days starting on Saturday
	}

	for _, m := range months {
		t.Run(m.String(), func(t *testing.T) {
			cal := heatmap.BuildMonth(m, nil, date(2024, time.January, 1))
			require.Len(t, cal.Cells, domain.CalendarCells)

			first := m.First()
			lead := int(first.Weekday())
			daysInMonth := first.AddDate(0, 1, -1).Day()

			for i, c := range cal.Cells {
				want := i >= lead && i < lead+daysInMonth
				assert.Equal(t, want, c.InTargetMonth, "cell %d", i)
				if i > 0 {
					assert.Equal(t, 24*time.Hour, c.Date.Sub(cal.Cells[i-1].Date))
				}
			}
			assert.Equal(t, time.Sunday, cal.Cells[0].Date.Weekday())
			assert.Equal(t, 1, cal.Cells[lead].Date.Day())
		})
	}
}

func TestBuildMonth_Bucketing(t *testing.T) {
	today := date(2024, time.March, 22)
	followUps := []domain.FollowUp{
		followUp(domain.FollowUpCompleted, date(2024, time.March, 5)),
		followUp(domain.FollowUpCompleted, date(2024, time.March, 5)),
		followUp(domain.FollowUpPending, date(2024, time.March, 5)),
		followUp(domain.FollowUpNoAnswer, date(2024, time.March, 5)),
		followUp(domain.FollowUpPending, date(2024, time.March, 25)),
		followUp(domain.FollowUpPending, time.Date(2024, time.March, 22, 0, 1, 0, 0, time.UTC)),
	}

	cal := heatmap.BuildMonth(domain.Month{Year: 2024, Month: time.March}, followUps, today)

	// March 2024 starts on Friday
	fifth := cal.Cells[5+4]
	assert.Equal(t, 5, fifth.Date.Day())
	assert.Equal(t, 4, fifth.Total)
	assert.Equal(t, 2, fifth.Completed)
	assert.Equal(t, 1, fifth.Overdue)
	assert.Equal(t, 0, fifth.Pending)
	assert.Equal(t, domain.TierOverdue, fifth.Tier)

	todayCell := cal.Cells[22+4]
	assert.True(t, todayCell.IsToday)
	assert.Equal(t, 1, todayCell.Pending, "scheduled today is not overdue")

	future := cal.Cells[25+4]
	assert.Equal(t, 1, future.Pending)
	assert.Equal(t, domain.TierPending, future.Tier)

	todays := 0
	for _, c := range cal.Cells {
		if c.IsToday {
			todays++
		}
	}
	assert.Equal(t, 1, todays)
}

func TestBuildMonth_PendingBecomesOverdueOnceDatePasses(t *testing.T) {
	f := []domain.FollowUp{followUp(domain.FollowUpPending, date(2024, time.March, 25))}
	month := domain.Month{Year: 2024, Month: time.March}

	before := heatmap.BuildMonth(month, f, date(2024, time.March, 22))
	assert.Equal(t, domain.TierPending, before.Cells[25+4].Tier)

	onDay := heatmap.BuildMonth(month, f, date(2024, time.March, 25))
	assert.Equal(t, domain.TierPending, onDay.Cells[25+4].Tier)

	after := heatmap.BuildMonth(month, f, date(2024, time.March, 26))
	assert.Equal(t, domain.TierOverdue, after.Cells[25+4].Tier)
	assert.Equal(t, 1, after.Summary.Overdue)
}

func TestBuildMonth_SummaryExcludesFillerDays(t *testing.T) {
	followUps := []domain.FollowUp{
		followUp(domain.FollowUpCompleted, date(2024, time.February, 29)), // leading filler
		followUp(domain.FollowUpCompleted, date(2024, time.April, 2)),     // trailing filler
		followUp(domain.FollowUpCompleted, date(2024, time.March, 10)),
		followUp(domain.FollowUpCancelled, date(2024, time.March, 10)),
		followUp(domain.FollowUpPending, date(2024, time.March, 28)),
	}

	cal := heatmap.BuildMonth(domain.Month{Year: 2024, Month: time.March}, followUps, date(2024, time.March, 22))

	assert.Equal(t, 1, cal.Cells[4].Total, "Feb 29 is visible in the grid")
	assert.Equal(t, domain.MonthSummary{Total: 3, Completed: 1, Pending: 1, Overdue: 0, BusyDays: 2}, cal.Summary)
}

func TestBuildMonth_KeysOnScheduledLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 00:30 IST on the 10th is the 9th in UTC; the follow-up belongs to the 10th
	f := followUp(domain.FollowUpCompleted, time.Date(2024, time.March, 10, 0, 30, 0, 0, ist))

	cal := heatmap.BuildMonth(domain.Month{Year: 2024, Month: time.March}, []domain.FollowUp{f}, date(2024, time.March, 22))
	assert.Equal(t, 1, cal.Cells[10+4].Total)
	assert.Equal(t, 0, cal.Cells[9+4].Total)
}

func TestClassifyDay_Priority(t *testing.T) {
	tests := []struct {
		name   string
		bucket domain.DayBucket
		want   domain.ColorTier
	}{
		{"empty", domain.DayBucket{}, domain.TierNone},
		{"overdue beats completed", domain.DayBucket{Total: 6, Completed: 3, Pending: 1, Overdue: 2}, domain.TierOverdue},
		{"overdue ties pending", domain.DayBucket{Total: 2, Pending: 1, Overdue: 1}, domain.TierOverdue},
		{"pending over overdue", domain.DayBucket{Total: 3, Pending: 2, Overdue: 1}, domain.TierPending},
		{"pending over completed", domain.DayBucket{Total: 3, Completed: 1, Pending: 2}, domain.TierPending},
		{"only other statuses", domain.DayBucket{Total: 2}, domain.TierNone},
		{"low", domain.DayBucket{Total: 2, Completed: 2}, domain.TierLow},
		{"medium", domain.DayBucket{Total: 5, Completed: 3, Pending: 2}, domain.TierMedium},
		{"high", domain.DayBucket{Total: 10, Completed: 10}, domain.TierHigh},
		{"very high", domain.DayBucket{Total: 11, Completed: 11}, domain.TierVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, heatmap.ClassifyDay(tt.bucket))
		})
	}
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, domain.TierNone, heatmap.Intensity(0))
	assert.Equal(t, domain.TierLow, heatmap.Intensity(1))
	assert.Equal(t, domain.TierMedium, heatmap.Intensity(3))
	assert.Equal(t, domain.TierMedium, heatmap.Intensity(5))
	assert.Equal(t, domain.TierHigh, heatmap.Intensity(6))
	assert.Equal(t, domain.TierVeryHigh, heatmap.Intensity(11))
}

func TestIsOverdue(t *testing.T) {
	ref := date(2024, time.March, 22)
	assert.True(t, heatmap.IsOverdue(followUp(domain.FollowUpPending, date(2024, time.March, 21)), ref))
	assert.False(t, heatmap.IsOverdue(followUp(domain.FollowUpPending, time.Date(2024, time.March, 22, 0, 0, 0, 0, time.UTC)), ref))
	assert.False(t, heatmap.IsOverdue(followUp(domain.FollowUpNoAnswer, date(2024, time.March, 1)), ref))
}

func TestMonthNavigation(t *testing.T) {
	dec := domain.Month{Year: 2023, Month: time.December}
	assert.Equal(t, domain.Month{Year: 2024, Month: time.January}, dec.Next())
	assert.Equal(t, domain.Month{Year: 2023, Month: time.November}, dec.Prev())

	from, to := domain.Month{Year: 2024, Month: time.March}.Bounds()
	assert.Equal(t, time.Date(2024, time.February, 25, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, time.April, 7, 0, 0, 0, 0, time.UTC), to)

	_, err := domain.NewMonth(2024, 13)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}
