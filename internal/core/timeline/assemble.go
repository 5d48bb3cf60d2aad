package timeline

import (
	"sort"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
)

// Sources are the per-patient collections merged into a timeline.
// A nil collection is treated as empty.
type Sources struct {
	HealthChecks  []domain.HealthCheck
	Consultations []domain.Consultation
	FollowUps     []domain.FollowUp
	Alerts        []domain.RiskAlert
}

// Options controls assembly
type Options struct {
	// MaxItems truncates the sorted timeline; zero or negative keeps everything
	MaxItems int
	// ReferenceDate is "now" for the timeline
	ReferenceDate time.Time
	// IncludeUpcoming keeps events scheduled after ReferenceDate
	IncludeUpcoming bool
}

// Assemble merges every record of a patient into one timeline, newest first.
// The registration event is synthesized from the patient and the delivery event
// is added once the delivery outcome is known. Records without a timestamp are skipped.
func Assemble(patient domain.Patient, src Sources, opts Options) []domain.TimelineEvent {
	records := make([]ClinicalRecord, 0, 2+len(src.HealthChecks)+len(src.Consultations)+len(src.FollowUps)+len(src.Alerts))

	if !patient.RegistrationDate.IsZero() {
		records = append(records, patient.Registration())
	}
	for _, hc := range src.HealthChecks {
		if !hc.CheckDate.IsZero() {
			records = append(records, hc)
		}
	}
	for _, c := range src.Consultations {
		if !c.ScheduledAt.IsZero() {
			records = append(records, c)
		}
	}
	for _, f := range src.FollowUps {
		if !f.ScheduledDate.IsZero() {
			records = append(records, f)
		}
	}
	for _, a := range src.Alerts {
		if !a.CreatedAt.IsZero() {
			records = append(records, a)
		}
	}
	if dl, ok := patient.Delivery(); ok {
		records = append(records, dl)
	}

	events := make([]domain.TimelineEvent, 0, len(records))
	for _, rec := range records {
		ev, err := Normalize(rec, opts.ReferenceDate)
		if err != nil {
			continue
		}
		if !opts.IncludeUpcoming && !opts.ReferenceDate.IsZero() && ev.Timestamp.After(opts.ReferenceDate) {
			continue
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	if opts.MaxItems > 0 && len(events) > opts.MaxItems {
		events = events[:opts.MaxItems]
	}
	return events
}
