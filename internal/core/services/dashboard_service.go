package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/heatmap"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/ports"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/pregnancy"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/timeline"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Clock returns the current time
type Clock func() time.Time

// referenceClock yields the reference date handed to the engine
type referenceClock struct {
	clock    Clock
	location *time.Location
}

func newReferenceClock(opts []Option) referenceClock {
	rc := referenceClock{clock: time.Now, location: time.UTC}
	for _, opt := range opts {
		opt(&rc)
	}
	return rc
}

func (rc referenceClock) now() time.Time {
	return rc.clock().In(rc.location)
}

// Option configures how a service reads "today"
type Option func(*referenceClock)

// WithClock overrides the clock used for the reference date
func WithClock(clock Clock) Option {
	return func(rc *referenceClock) {
		if clock != nil {
			rc.clock = clock
		}
	}
}

// WithLocation sets the location "today" is evaluated in
func WithLocation(loc *time.Location) Option {
	return func(rc *referenceClock) {
		if loc != nil {
			rc.location = loc
		}
	}
}

// DashboardService implements the dashboard read operations on top of the record store.
// The reference date passed to the engine is read once per request from the clock,
// in the configured location.
type DashboardService struct {
	referenceClock
	patients ports.PatientRepository
	records  ports.ClinicalRecordRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	patients ports.PatientRepository,
	records ports.ClinicalRecordRepository,
	opts ...Option,
) *DashboardService {
	return &DashboardService{
		referenceClock: newReferenceClock(opts),
		patients:       patients,
		records:        records,
	}
}

func (s *DashboardService) loadPatient(ctx context.Context, patientID uuid.UUID) (*domain.Patient, error) {
	patient, err := s.patients.GetPatientByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if patient == nil {
		return nil, domain.ErrPatientNotFound
	}
	return patient, nil
}

// fetch runs one collection load; a failure is logged and yields an empty collection
func fetch[T any](ctx context.Context, patientID uuid.UUID, source string, load func(context.Context, uuid.UUID) ([]T, error), out *[]T) func() error {
	return func() error {
		items, err := load(ctx, patientID)
		if err != nil {
			log.Warn().
				Err(err).
				Str("patient_id", patientID.String()).
				Str("source", source).
				Msg("timeline source unavailable, treating as empty")
			return nil
		}
		*out = items
		return nil
	}
}

// PatientTimeline assembles the activity timeline of one patient.
// The four collections are fetched concurrently and independently.
func (s *DashboardService) PatientTimeline(ctx context.Context, patientID uuid.UUID, query ports.TimelineQuery) (*ports.TimelineView, error) {
	if query.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative")
	}

	patient, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var src timeline.Sources
	var g errgroup.Group
	g.Go(fetch(ctx, patientID, "health_checks", s.records.ListHealthChecks, &src.HealthChecks))
	g.Go(fetch(ctx, patientID, "consultations", s.records.ListConsultations, &src.Consultations))
	g.Go(fetch(ctx, patientID, "follow_ups", s.records.ListFollowUps, &src.FollowUps))
	g.Go(fetch(ctx, patientID, "alerts", s.records.ListAlerts, &src.Alerts))
	_ = g.Wait()

	ref := s.now()
	events := timeline.Assemble(*patient, src, timeline.Options{
		MaxItems:        query.Limit,
		ReferenceDate:   ref,
		IncludeUpcoming: query.IncludeUpcoming,
	})
	timelineEventsAssembled.Add(float64(len(events)))

	log.Debug().
		Str("patient_id", patientID.String()).
		Int("events", len(events)).
		Msg("timeline assembled")

	return &ports.TimelineView{
		PatientID:     patientID,
		ReferenceDate: ref,
		Events:        events,
	}, nil
}

// FollowUpCalendar builds the follow-up heatmap for a month.
// The zero Month selects the month containing the reference date.
func (s *DashboardService) FollowUpCalendar(ctx context.Context, month domain.Month) (*ports.CalendarView, error) {
	ref := s.now()
	if month == (domain.Month{}) {
		month = domain.MonthOf(ref)
	}
	if !month.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidMonth, month)
	}

	from, to := month.Bounds()
	followUps, err := s.records.ListFollowUpsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}

	cal := heatmap.BuildMonth(month, followUps, ref)
	calendarBuilds.Inc()

	return &ports.CalendarView{
		ReferenceDate: ref,
		Calendar:      cal,
	}, nil
}

// PregnancyProgress computes the gestational snapshot of a patient.
// Health checks only provide markers, so a failure to load them is not fatal.
func (s *DashboardService) PregnancyProgress(ctx context.Context, patientID uuid.UUID) (*ports.PregnancyView, error) {
	patient, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	ref := s.now()
	view := &ports.PregnancyView{PatientID: patientID, ReferenceDate: ref}
	if patient.LMPDate == nil || patient.LMPDate.IsZero() {
		return view, nil
	}

	checks, err := s.records.ListHealthChecks(ctx, patientID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("patient_id", patientID.String()).
			Msg("health checks unavailable, progress without markers")
		checks = nil
	}

	snap, err := pregnancy.ComputeProgress(*patient.LMPDate, patient.EDDDate, checks, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to compute progress: %w", err)
	}

	view.LMPRecorded = true
	view.Snapshot = &snap
	return view, nil
}
