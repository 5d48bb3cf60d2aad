// Package heatmap buckets follow-up calls into a month calendar grid.
package heatmap

import (
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
)

const dateKeyLayout = "2006-01-02"

// dateKey truncates t to its calendar date in t's own location
func dateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// civilDate is t's calendar date at midnight UTC, read in t's own location
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsOverdue reports whether a follow-up is still pending and its scheduled date
// is strictly before the reference date. Only the calendar dates are compared.
func IsOverdue(f domain.FollowUp, ref time.Time) bool {
	if f.Status != domain.FollowUpPending {
		return false
	}
	return civilDate(f.ScheduledDate).Before(civilDate(ref))
}

type counts struct {
	total, completed, pending, overdue int
}

// BuildMonth lays out the 42-cell grid for month and aggregates follow-ups per day.
// Cells before the 1st and after the last day belong to the adjacent months.
func BuildMonth(month domain.Month, followUps []domain.FollowUp, ref time.Time) domain.FollowUpCalendar {
	byDate := make(map[string]*counts, len(followUps))
	for _, f := range followUps {
		if f.ScheduledDate.IsZero() {
			continue
		}
		key := dateKey(f.ScheduledDate)
		c, ok := byDate[key]
		if !ok {
			c = &counts{}
			byDate[key] = c
		}

		c.total++
		switch f.Status {
		case domain.FollowUpCompleted:
			c.completed++
		case domain.FollowUpPending:
			if IsOverdue(f, ref) {
				c.overdue++
			} else {
				c.pending++
			}
		}
	}

	first := month.First()
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today := dateKey(civilDate(ref))

	cal := domain.FollowUpCalendar{Month: month}
	for i := range cal.Cells {
		date := start.AddDate(0, 0, i)
		key := dateKey(date)

		bucket := domain.DayBucket{
			Date:          date,
			InTargetMonth: date.Month() == month.Month && date.Year() == month.Year,
			IsToday:       key == today,
		}
		if c, ok := byDate[key]; ok {
			bucket.Total = c.total
			bucket.Completed = c.completed
			bucket.Pending = c.pending
			bucket.Overdue = c.overdue
		}
		bucket.Tier = ClassifyDay(bucket)
		cal.Cells[i] = bucket
	}
	cal.Summary = Summarize(cal.Cells[:])
	return cal
}

// ClassifyDay picks the color tier of a day. Rules are checked in order and the first match wins.
func ClassifyDay(b domain.DayBucket) domain.ColorTier {
	switch {
	case b.Total == 0:
		return domain.TierNone
	case b.Overdue > 0 && b.Overdue >= b.Pending:
		return domain.TierOverdue
	case b.Pending > b.Completed:
		return domain.TierPending
	default:
		return Intensity(b.Completed)
	}
}

// Intensity maps a completed count onto the five-step scale
func Intensity(completed int) domain.ColorTier {
	switch {
	case completed <= 0:
		return domain.TierNone
	case completed <= 2:
		return domain.TierLow
	case completed <= 5:
		return domain.TierMedium
	case completed <= 10:
		return domain.TierHigh
	default:
		return domain.TierVeryHigh
	}
}

// Summarize totals the cells that belong to the target month
func Summarize(cells []domain.DayBucket) domain.MonthSummary {
	var s domain.MonthSummary
	for _, c := range cells {
		if !c.InTargetMonth {
			continue
		}
		s.Total += c.Total
		s.Completed += c.Completed
		s.Pending += c.Pending
		s.Overdue += c.Overdue
		if c.Total > 0 {
			s.BusyDays++
		}
	}
	return s
}
