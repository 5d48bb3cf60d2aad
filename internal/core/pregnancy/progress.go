// Package pregnancy computes gestational progress on a fixed 40-week axis.
package pregnancy

import (
	"math"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
)

const day = 24 * time.Hour

// EDDFromLMP derives the estimated due date, 280 calendar days after the LMP
func EDDFromLMP(lmp time.Time) time.Time {
	return lmp.AddDate(0, 0, domain.PregnancyDays)
}

// daysBetween is floor((to - from) / 1 day)
func daysBetween(from, to time.Time) int {
	return int(math.Floor(float64(to.Sub(from)) / float64(day)))
}

// weekOf returns the unclamped gestational week of t: floor(days since LMP / 7) + 1
func weekOf(lmp, t time.Time) int {
	return int(math.Floor(float64(daysBetween(lmp, t))/7)) + 1
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// ComputeProgress returns the gestational snapshot at ref.
// edd overrides the derived due date when set. Each health check becomes a
// marker on the 1-40 axis regardless of the current week.
func ComputeProgress(lmp time.Time, edd *time.Time, checks []domain.HealthCheck, ref time.Time) (domain.GestationalSnapshot, error) {
	if lmp.IsZero() {
		return domain.GestationalSnapshot{}, domain.ErrLMPNotRecorded
	}

	due := EDDFromLMP(lmp)
	if edd != nil && !edd.IsZero() {
		due = *edd
	}

	week := clamp(weekOf(lmp, ref), 0, domain.PregnancyWeeks)

	markers := make([]domain.CheckMarker, 0, len(checks))
	for _, hc := range checks {
		if hc.CheckDate.IsZero() {
			continue
		}
		markers = append(markers, domain.CheckMarker{
			Week:      clamp(weekOf(lmp, hc.CheckDate), 1, domain.PregnancyWeeks),
			Date:      hc.CheckDate,
			RiskLevel: hc.RiskLevel,
		})
	}

	return domain.GestationalSnapshot{
		CurrentWeek:     week,
		DaysRemaining:   max(0, daysBetween(ref, due)),
		Trimester:       domain.TrimesterForWeek(week),
		ProgressPercent: math.Min(100, float64(week)/domain.PregnancyWeeks*100),
		LMP:             lmp,
		EDD:             due,
		Markers:         markers,
	}, nil
}
