package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/ports"
	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// psql builds PostgreSQL statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// BreakerSettings configures the circuit breakers guarding the database
type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// SQLRepository implements PatientRepository and ClinicalRecordRepository using PostgreSQL
// Includes retry logic and circuit breaker for resilience
type SQLRepository struct {
	db         *sql.DB
	patientCB  *gobreaker.CircuitBreaker
	recordCB   *gobreaker.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
}

var (
	_ ports.PatientRepository        = (*SQLRepository)(nil)
	_ ports.ClinicalRecordRepository = (*SQLRepository)(nil)
)

// NewSQLRepository creates a new PostgreSQL repository with circuit breakers
func NewSQLRepository(db *sql.DB, breaker BreakerSettings) *SQLRepository {
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: breaker.MaxRequests,
			Interval:    breaker.Interval,
			Timeout:     breaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
			// a missing patient is an answer, not a database failure
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, sql.ErrNoRows)
			},
		}
	}

	return &SQLRepository{
		db:         db,
		patientCB:  gobreaker.NewCircuitBreaker(settings("patients")),
		recordCB:   gobreaker.NewCircuitBreaker(settings("clinical-records")),
		maxRetries: 3,
		retryDelay: 1 * time.Second,
	}
}

// executeWithRetry executes a database operation with retry logic
func (r *SQLRepository) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error
	for i := 0; i < r.maxRetries; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		// sql.ErrNoRows is not transient
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if i < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.retryDelay):
			}
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", r.maxRetries, lastErr)
}

// query runs a select under the records breaker and scans every row with scan
func query[T any](ctx context.Context, r *SQLRepository, builder squirrel.SelectBuilder, scan func(*sql.Rows) (T, error)) ([]T, error) {
	stmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	result, err := r.recordCB.Execute(func() (interface{}, error) {
		var items []T
		err := r.executeWithRetry(ctx, func() error {
			items = items[:0]
			rows, err := r.db.QueryContext(ctx, stmt, args...)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				item, err := scan(rows)
				if err != nil {
					return err
				}
				items = append(items, item)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]T), nil
}

// PatientRepository implementation

func patientQuery(patientID uuid.UUID) squirrel.SelectBuilder {
	return psql.Select(
		"id", "name", "mother_id", "current_risk_level", "registration_date", "lmp_date", "edd_date",
		"delivery_outcome", "delivery_type", "delivery_date", "delivery_completed_at", "delivery_notes",
		"baby_weight", "baby_gender", "delivery_hospital",
	).From("patients").Where(squirrel.Eq{"id": patientID})
}

func (r *SQLRepository) GetPatientByID(ctx context.Context, patientID uuid.UUID) (*domain.Patient, error) {
	stmt, args, err := patientQuery(patientID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	result, err := r.patientCB.Execute(func() (interface{}, error) {
		var patient *domain.Patient
		err := r.executeWithRetry(ctx, func() error {
			var (
				p                                     domain.Patient
				lmp, edd, deliveryDate, completedAt   sql.NullTime
				deliveryType, notes, gender, hospital sql.NullString
				babyWeight                            sql.NullFloat64
			)
			row := r.db.QueryRowContext(ctx, stmt, args...)
			if err := row.Scan(
				&p.ID, &p.Name, &p.MotherID, &p.CurrentRiskLevel, &p.RegistrationDate, &lmp, &edd,
				&p.DeliveryOutcome, &deliveryType, &deliveryDate, &completedAt, &notes,
				&babyWeight, &gender, &hospital,
			); err != nil {
				return err
			}
			p.LMPDate = nullTime(lmp)
			p.EDDDate = nullTime(edd)
			p.DeliveryType = domain.DeliveryType(deliveryType.String)
			p.DeliveryDate = nullTime(deliveryDate)
			p.DeliveryCompletedAt = nullTime(completedAt)
			p.DeliveryNotes = notes.String
			p.BabyWeight = nullFloat(babyWeight)
			p.BabyGender = gender.String
			p.DeliveryHospital = hospital.String
			patient = &p
			return nil
		})
		if err != nil {
			return nil, err
		}
		return patient, nil
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, err
	}

	return result.(*domain.Patient), nil
}

// ClinicalRecordRepository implementation

func healthChecksQuery(patientID uuid.UUID) squirrel.SelectBuilder {
	return psql.Select(
		"id", "patient_id", "check_date", "risk_level", "risk_score",
		"bp_systolic", "bp_diastolic", "pulse_rate", "temperature", "hemoglobin", "weight", "notes",
	).From("health_checks").Where(squirrel.Eq{"patient_id": patientID}).OrderBy("check_date DESC")
}

func (r *SQLRepository) ListHealthChecks(ctx context.Context, patientID uuid.UUID) ([]domain.HealthCheck, error) {
	return query(ctx, r, healthChecksQuery(patientID), scanHealthCheck)
}

func scanHealthCheck(rows *sql.Rows) (domain.HealthCheck, error) {
	var (
		hc                         domain.HealthCheck
		systolic, diastolic, pulse sql.NullInt64
		temperature, hb, weight    sql.NullFloat64
		notes                      sql.NullString
	)
	err := rows.Scan(&hc.ID, &hc.PatientID, &hc.CheckDate, &hc.RiskLevel, &hc.RiskScore,
		&systolic, &diastolic, &pulse, &temperature, &hb, &weight, &notes)
	if err != nil {
		return hc, err
	}
	hc.BPSystolic = nullInt(systolic)
	hc.BPDiastolic = nullInt(diastolic)
	hc.PulseRate = nullInt(pulse)
	hc.Temperature = nullFloat(temperature)
	hc.Hemoglobin = nullFloat(hb)
	hc.Weight = nullFloat(weight)
	hc.Notes = notes.String
	return hc, nil
}

func consultationsQuery(patientID uuid.UUID) squirrel.SelectBuilder {
	return psql.Select(
		"c.id", "c.patient_id", "u.name", "c.type", "c.status", "c.scheduled_at", "c.chief_complaint", "c.diagnosis",
	).From("consultations c").
		LeftJoin("users u ON u.id = c.doctor_id").
		Where(squirrel.Eq{"c.patient_id": patientID}).
		OrderBy("c.scheduled_at DESC")
}

func (r *SQLRepository) ListConsultations(ctx context.Context, patientID uuid.UUID) ([]domain.Consultation, error) {
	return query(ctx, r, consultationsQuery(patientID), func(rows *sql.Rows) (domain.Consultation, error) {
		var (
			c                            domain.Consultation
			doctor, complaint, diagnosis sql.NullString
		)
		err := rows.Scan(&c.ID, &c.PatientID, &doctor, &c.Type, &c.Status, &c.ScheduledAt, &complaint, &diagnosis)
		c.DoctorName = doctor.String
		c.ChiefComplaint = complaint.String
		c.Diagnosis = diagnosis.String
		return c, err
	})
}

func followUpsQuery() squirrel.SelectBuilder {
	return psql.Select(
		"f.id", "f.patient_id", "u.name", "f.scheduled_date", "f.status", "f.attempt_count", "f.patient_condition", "f.notes",
	).From("follow_ups f").
		LeftJoin("users u ON u.id = f.assigned_to").
		OrderBy("f.scheduled_date DESC")
}

func scanFollowUp(rows *sql.Rows) (domain.FollowUp, error) {
	var (
		f                          domain.FollowUp
		assignee, condition, notes sql.NullString
	)
	err := rows.Scan(&f.ID, &f.PatientID, &assignee, &f.ScheduledDate, &f.Status, &f.AttemptCount, &condition, &notes)
	f.AssigneeName = assignee.String
	f.PatientCondition = condition.String
	f.Notes = notes.String
	return f, err
}

func (r *SQLRepository) ListFollowUps(ctx context.Context, patientID uuid.UUID) ([]domain.FollowUp, error) {
	return query(ctx, r, followUpsQuery().Where(squirrel.Eq{"f.patient_id": patientID}), scanFollowUp)
}

func followUpsBetweenQuery(from, to time.Time) squirrel.SelectBuilder {
	return followUpsQuery().Where(squirrel.And{
		squirrel.GtOrEq{"f.scheduled_date": from},
		squirrel.Lt{"f.scheduled_date": to},
	})
}

func (r *SQLRepository) ListFollowUpsBetween(ctx context.Context, from, to time.Time) ([]domain.FollowUp, error) {
	return query(ctx, r, followUpsBetweenQuery(from, to), scanFollowUp)
}

func pendingFollowUpsBeforeQuery(before time.Time) squirrel.SelectBuilder {
	return followUpsQuery().Where(squirrel.And{
		squirrel.Eq{"f.status": domain.FollowUpPending},
		squirrel.Lt{"f.scheduled_date": before},
	})
}

func (r *SQLRepository) ListPendingFollowUpsBefore(ctx context.Context, before time.Time) ([]domain.FollowUp, error) {
	return query(ctx, r, pendingFollowUpsBeforeQuery(before), scanFollowUp)
}

func alertsQuery(patientID uuid.UUID) squirrel.SelectBuilder {
	return psql.Select(
		"id", "patient_id", "severity", "title", "description", "alert_type", "created_at", "is_acknowledged", "is_resolved",
	).From("risk_alerts").Where(squirrel.Eq{"patient_id": patientID}).OrderBy("created_at DESC")
}

func (r *SQLRepository) ListAlerts(ctx context.Context, patientID uuid.UUID) ([]domain.RiskAlert, error) {
	return query(ctx, r, alertsQuery(patientID), func(rows *sql.Rows) (domain.RiskAlert, error) {
		var a domain.RiskAlert
		err := rows.Scan(&a.ID, &a.PatientID, &a.Severity, &a.Title, &a.Description, &a.AlertType,
			&a.CreatedAt, &a.IsAcknowledged, &a.IsResolved)
		return a, err
	})
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
