package domain

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the triage color assigned to a patient, health check or alert
type RiskLevel string

const (
	RiskLevelGreen  RiskLevel = "GREEN"
	RiskLevelYellow RiskLevel = "YELLOW"
	RiskLevelRed    RiskLevel = "RED"
)

// ConsultationType represents how a consultation is held
type ConsultationType string

const (
	ConsultationTypeTele      ConsultationType = "TELECONSULTATION"
	ConsultationTypeInPerson  ConsultationType = "IN_PERSON"
	ConsultationTypeEmergency ConsultationType = "EMERGENCY"
)

// ConsultationStatus represents the lifecycle state of a consultation
type ConsultationStatus string

const (
	ConsultationScheduled  ConsultationStatus = "SCHEDULED"
	ConsultationInProgress ConsultationStatus = "IN_PROGRESS"
	ConsultationCompleted  ConsultationStatus = "COMPLETED"
	ConsultationCancelled  ConsultationStatus = "CANCELLED"
	ConsultationNoShow     ConsultationStatus = "NO_SHOW"
)

// FollowUpStatus represents the outcome of a follow-up call
type FollowUpStatus string

const (
	FollowUpPending     FollowUpStatus = "PENDING"
	FollowUpCompleted   FollowUpStatus = "COMPLETED"
	FollowUpNoAnswer    FollowUpStatus = "NO_ANSWER"
	FollowUpRescheduled FollowUpStatus = "RESCHEDULED"
	FollowUpCancelled   FollowUpStatus = "CANCELLED"
)

// DeliveryOutcome represents the recorded outcome of a delivery
type DeliveryOutcome string

const (
	DeliveryPending         DeliveryOutcome = "PENDING"
	DeliverySuccessful      DeliveryOutcome = "SUCCESSFUL"
	DeliveryMotherMortality DeliveryOutcome = "MOTHER_MORTALITY"
	DeliveryBabyMortality   DeliveryOutcome = "BABY_MORTALITY"
	DeliveryBothMortality   DeliveryOutcome = "BOTH_MORTALITY"
)

// DeliveryType represents how the delivery happened
type DeliveryType string

const (
	DeliveryTypeNormal   DeliveryType = "NORMAL"
	DeliveryTypeCesarean DeliveryType = "CESAREAN"
	DeliveryTypeAssisted DeliveryType = "ASSISTED"
	DeliveryTypeInduced  DeliveryType = "INDUCED"
)

// AlertType classifies why a risk alert was raised
type AlertType string

const (
	AlertHighRiskDetected     AlertType = "HIGH_RISK_DETECTED"
	AlertCriticalVitals       AlertType = "CRITICAL_VITALS"
	AlertMissedAppointment    AlertType = "MISSED_APPOINTMENT"
	AlertOverdueFollowUp      AlertType = "OVERDUE_FOLLOWUP"
	AlertComplicationReported AlertType = "COMPLICATION_REPORTED"
	AlertEmergency            AlertType = "EMERGENCY"
)

// Patient is the patient summary the dashboard reads
// Delivery fields are only meaningful once DeliveryOutcome is set and not PENDING
type Patient struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	MotherID         string     `json:"mother_id"`
	CurrentRiskLevel RiskLevel  `json:"current_risk_level"`
	RegistrationDate time.Time  `json:"registration_date"`
	LMPDate          *time.Time `json:"lmp_date,omitempty"`
	EDDDate          *time.Time `json:"edd_date,omitempty"`

	DeliveryOutcome     DeliveryOutcome `json:"delivery_outcome,omitempty"`
	DeliveryType        DeliveryType    `json:"delivery_type,omitempty"`
	DeliveryDate        *time.Time      `json:"delivery_date,omitempty"`
	DeliveryCompletedAt *time.Time      `json:"delivery_completed_at,omitempty"`
	DeliveryNotes       string          `json:"delivery_notes,omitempty"`
	BabyWeight          *float64        `json:"baby_weight,omitempty"` // kg
	BabyGender          string          `json:"baby_gender,omitempty"`
	DeliveryHospital    string          `json:"delivery_hospital,omitempty"`
}

// Registration returns the registration record synthesized from the patient
func (p *Patient) Registration() Registration {
	return Registration{
		PatientID:               p.ID,
		PatientName:             p.Name,
		RegisteredAt:            p.RegistrationDate,
		MotherIdentifier:        p.MotherID,
		RiskLevelAtRegistration: p.CurrentRiskLevel,
	}
}

// Delivery returns the delivery record, or false while the outcome is still pending
func (p *Patient) Delivery() (Delivery, bool) {
	if p.DeliveryOutcome == "" || p.DeliveryOutcome == DeliveryPending {
		return Delivery{}, false
	}
	return Delivery{
		PatientID:           p.ID,
		Outcome:             p.DeliveryOutcome,
		DeliveryType:        p.DeliveryType,
		DeliveryDate:        p.DeliveryDate,
		DeliveryCompletedAt: p.DeliveryCompletedAt,
		Notes:               p.DeliveryNotes,
		BabyWeight:          p.BabyWeight,
		BabyGender:          p.BabyGender,
		Hospital:            p.DeliveryHospital,
	}, true
}

// Registration is the patient registration event
type Registration struct {
	PatientID               uuid.UUID `json:"patient_id"`
	PatientName             string    `json:"patient_name,omitempty"`
	RegisteredAt            time.Time `json:"registered_at"`
	MotherIdentifier        string    `json:"mother_identifier"`
	RiskLevelAtRegistration RiskLevel `json:"risk_level_at_registration"`
}

// Vitals holds the optional measurements taken during a health check
type Vitals struct {
	BPSystolic  *int     `json:"bp_systolic,omitempty"`
	BPDiastolic *int     `json:"bp_diastolic,omitempty"`
	PulseRate   *int     `json:"pulse_rate,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Hemoglobin  *float64 `json:"hemoglobin,omitempty"` // g/dL
	Weight      *float64 `json:"weight,omitempty"`     // kg
}

// HealthCheck is an antenatal health check with its computed risk
type HealthCheck struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	CheckDate time.Time `json:"check_date"`
	RiskLevel RiskLevel `json:"risk_level"`
	RiskScore int       `json:"risk_score"`
	Vitals
	Notes string `json:"notes,omitempty"`
}

// Consultation is a scheduled or completed doctor consultation
type Consultation struct {
	ID             uuid.UUID          `json:"id"`
	PatientID      uuid.UUID          `json:"patient_id"`
	DoctorName     string             `json:"doctor_name,omitempty"`
	Type           ConsultationType   `json:"type"`
	Status         ConsultationStatus `json:"status"`
	ScheduledAt    time.Time          `json:"scheduled_at"`
	ChiefComplaint string             `json:"chief_complaint,omitempty"`
	Diagnosis      string             `json:"diagnosis,omitempty"`
}

// FollowUp is a follow-up call assigned to a staff member
type FollowUp struct {
	ID               uuid.UUID      `json:"id"`
	PatientID        uuid.UUID      `json:"patient_id"`
	AssigneeName     string         `json:"assignee_name,omitempty"`
	ScheduledDate    time.Time      `json:"scheduled_date"`
	Status           FollowUpStatus `json:"status"`
	AttemptCount     int            `json:"attempt_count"`
	PatientCondition string         `json:"patient_condition,omitempty"`
	Notes            string         `json:"notes,omitempty"`
}

// RiskAlert is an alert raised against a patient
type RiskAlert struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	Severity       RiskLevel `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	AlertType      AlertType `json:"alert_type"`
	CreatedAt      time.Time `json:"created_at"`
	IsAcknowledged bool      `json:"is_acknowledged"`
	IsResolved     bool      `json:"is_resolved"`
}

// Delivery is the recorded delivery outcome of a patient
type Delivery struct {
	PatientID           uuid.UUID       `json:"patient_id"`
	Outcome             DeliveryOutcome `json:"outcome"`
	DeliveryType        DeliveryType    `json:"delivery_type,omitempty"`
	DeliveryDate        *time.Time      `json:"delivery_date,omitempty"`
	DeliveryCompletedAt *time.Time      `json:"delivery_completed_at,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	BabyWeight          *float64        `json:"baby_weight,omitempty"`
	BabyGender          string          `json:"baby_gender,omitempty"`
	Hospital            string          `json:"hospital,omitempty"`
}

// ClinicalRecord is implemented by the six record shapes that appear on a patient timeline
type ClinicalRecord interface {
	clinicalRecord()
}

func (Registration) clinicalRecord() {}
func (HealthCheck) clinicalRecord()  {}
func (Consultation) clinicalRecord() {}
func (FollowUp) clinicalRecord()     {}
func (RiskAlert) clinicalRecord()    {}
func (Delivery) clinicalRecord()     {}
