package ports

import (
	"context"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/google/uuid"
)

// PatientRepository defines the interface for reading patient summaries
type PatientRepository interface {
	// GetPatientByID retrieves a patient summary by ID
	// Returns domain.ErrPatientNotFound if the patient doesn't exist
	GetPatientByID(ctx context.Context, patientID uuid.UUID) (*domain.Patient, error)
}

// ClinicalRecordRepository defines the interface for reading the per-patient
// record collections that feed the timeline and the progress calculator
type ClinicalRecordRepository interface {
	// ListHealthChecks retrieves all health checks of a patient
	ListHealthChecks(ctx context.Context, patientID uuid.UUID) ([]domain.HealthCheck, error)

	// ListConsultations retrieves all consultations of a patient
	ListConsultations(ctx context.Context, patientID uuid.UUID) ([]domain.Consultation, error)

	// ListFollowUps retrieves all follow-ups of a patient
	ListFollowUps(ctx context.Context, patientID uuid.UUID) ([]domain.FollowUp, error)

	// ListAlerts retrieves all risk alerts of a patient
	ListAlerts(ctx context.Context, patientID uuid.UUID) ([]domain.RiskAlert, error)

	// ListFollowUpsBetween retrieves follow-ups of every patient scheduled in [from, to)
	// Used to build the month calendar
	ListFollowUpsBetween(ctx context.Context, from, to time.Time) ([]domain.FollowUp, error)

	// ListPendingFollowUpsBefore retrieves PENDING follow-ups of every patient scheduled before the given time
	// There is no lower bound, so follow-ups left pending for months are still returned
	ListPendingFollowUpsBefore(ctx context.Context, before time.Time) ([]domain.FollowUp, error)
}

// AlertPublisher defines the interface for publishing alerts to RabbitMQ
type AlertPublisher interface {
	// PublishOverdueFollowUp publishes an OVERDUE_FOLLOWUP alert for a pending follow-up
	// whose scheduled date has passed at ref
	PublishOverdueFollowUp(ctx context.Context, followUp domain.FollowUp, ref time.Time) error
}
