package ports

import (
	"context"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/google/uuid"
)

// DashboardService defines the read-side operations behind the staff dashboard
type DashboardService interface {
	// PatientTimeline assembles the activity timeline of one patient, newest first
	// Returns domain.ErrPatientNotFound when the patient doesn't exist
	// A collection that fails to load is left out of the timeline instead of failing the request
	PatientTimeline(ctx context.Context, patientID uuid.UUID, query TimelineQuery) (*TimelineView, error)

	// FollowUpCalendar builds the follow-up heatmap for a month; the zero Month means the current one
	// Returns domain.ErrInvalidMonth for an out of range month
	FollowUpCalendar(ctx context.Context, month domain.Month) (*CalendarView, error)

	// PregnancyProgress computes the gestational snapshot of a patient
	// A patient without an LMP gets a view with LMPRecorded=false and no snapshot
	PregnancyProgress(ctx context.Context, patientID uuid.UUID) (*PregnancyView, error)
}

// TimelineQuery holds the optional timeline parameters
type TimelineQuery struct {
	Limit           int  // zero keeps every event
	IncludeUpcoming bool // include events scheduled after now
}

// TimelineView is a patient's timeline at a reference time
type TimelineView struct {
	PatientID     uuid.UUID              `json:"patient_id"`
	ReferenceDate time.Time              `json:"reference_date"`
	Events        []domain.TimelineEvent `json:"events"`
}

// CalendarView is a month calendar at a reference time
type CalendarView struct {
	ReferenceDate time.Time               `json:"reference_date"`
	Calendar      domain.FollowUpCalendar `json:"calendar"`
}

// PregnancyView is a patient's gestational progress
// Snapshot is nil when LMPRecorded is false
type PregnancyView struct {
	PatientID     uuid.UUID                   `json:"patient_id"`
	LMPRecorded   bool                        `json:"lmp_recorded"`
	ReferenceDate time.Time                   `json:"reference_date"`
	Snapshot      *domain.GestationalSnapshot `json:"snapshot,omitempty"`
}
