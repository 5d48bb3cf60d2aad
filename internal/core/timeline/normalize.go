// Package timeline turns clinical records into display events and assembles
// them into a patient activity timeline.
package timeline

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
)

// ClinicalRecord is any record that can be placed on a timeline
type ClinicalRecord = domain.ClinicalRecord

var ErrUnsupportedRecord = errors.New("unsupported clinical record")

// Normalize converts one clinical record into a TimelineEvent.
// ref is only consulted for a delivery that carries neither a delivery date nor a completion time.
// A delivery still PENDING has no event and yields ErrUnsupportedRecord.
func Normalize(record ClinicalRecord, ref time.Time) (domain.TimelineEvent, error) {
	switch r := record.(type) {
	case domain.Registration:
		return normalizeRegistration(r), nil
	case *domain.Registration:
		if r != nil {
			return normalizeRegistration(*r), nil
		}
	case domain.HealthCheck:
		return normalizeHealthCheck(r), nil
	case *domain.HealthCheck:
		if r != nil {
			return normalizeHealthCheck(*r), nil
		}
	case domain.Consultation:
		return normalizeConsultation(r), nil
	case *domain.Consultation:
		if r != nil {
			return normalizeConsultation(*r), nil
		}
	case domain.FollowUp:
		return normalizeFollowUp(r), nil
	case *domain.FollowUp:
		if r != nil {
			return normalizeFollowUp(*r), nil
		}
	case domain.RiskAlert:
		return normalizeAlert(r), nil
	case *domain.RiskAlert:
		if r != nil {
			return normalizeAlert(*r), nil
		}
	case domain.Delivery:
		return normalizeDelivery(r, ref)
	case *domain.Delivery:
		if r != nil {
			return normalizeDelivery(*r, ref)
		}
	}
	return domain.TimelineEvent{}, fmt.Errorf("%w: %T", ErrUnsupportedRecord, record)
}

// details collects label/value pairs, dropping absent values
type details []domain.DetailField

func (d *details) add(label, value string) {
	if value == "" {
		return
	}
	*d = append(*d, domain.DetailField{Label: label, Value: value})
}

// measured reports whether a reading was taken; zero counts as not recorded
func measured[T int | float64](v *T) bool {
	return v != nil && *v != 0
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func normalizeRegistration(r domain.Registration) domain.TimelineEvent {
	d := details{}
	d.add("Mother ID", r.MotherIdentifier)
	d.add("Risk Level", string(r.RiskLevelAtRegistration))

	return domain.TimelineEvent{
		ID:          "registration-" + r.PatientID.String(),
		Category:    domain.CategoryRegistration,
		Timestamp:   r.RegisteredAt,
		Title:       "Patient Registered",
		Description: fmt.Sprintf("%s was registered in the system", r.PatientName),
		Icon:        domain.IconUserPlus,
		Color:       domain.TonePrimary,
		Details:     d,
		Source:      r,
	}
}

func normalizeHealthCheck(hc domain.HealthCheck) domain.TimelineEvent {
	description := hc.Notes
	if description == "" {
		description = fmt.Sprintf("Routine health check - Risk Score: %d", hc.RiskScore)
	}

	d := details{}
	if measured(hc.BPSystolic) && measured(hc.BPDiastolic) {
		d.add("BP", fmt.Sprintf("%d/%d mmHg", *hc.BPSystolic, *hc.BPDiastolic))
	}
	if measured(hc.Hemoglobin) {
		d.add("Hemoglobin", formatNumber(*hc.Hemoglobin)+" g/dL")
	}
	if measured(hc.Weight) {
		d.add("Weight", formatNumber(*hc.Weight)+" kg")
	}
	d.add("Risk Score", strconv.Itoa(hc.RiskScore))

	return domain.TimelineEvent{
		ID:          "hc-" + hc.ID.String(),
		Category:    domain.CategoryHealthCheck,
		Timestamp:   hc.CheckDate,
		Title:       "Health Check",
		Description: description,
		Icon:        domain.IconClipboardCheck,
		Color:       hc.RiskLevel.Tone(),
		RiskLevel:   hc.RiskLevel,
		Details:     d,
		Source:      hc,
	}
}

func consultationTitle(t domain.ConsultationType) string {
	switch t {
	case domain.ConsultationTypeTele:
		return "Tele Consultation"
	case domain.ConsultationTypeEmergency:
		return "Emergency Consultation"
	default:
		return "In-Person Consultation"
	}
}

func normalizeConsultation(c domain.Consultation) domain.TimelineEvent {
	badge := c.Status.Badge()

	description := c.ChiefComplaint
	if description == "" {
		doctor := c.DoctorName
		if doctor == "" {
			doctor = "Unknown"
		}
		description = "Consultation with Dr. " + doctor
	}

	d := details{}
	d.add("Doctor", c.DoctorName)
	d.add("Diagnosis", c.Diagnosis)
	d.add("Status", badge.Label)

	return domain.TimelineEvent{
		ID:          "consultation-" + c.ID.String(),
		Category:    domain.CategoryConsultation,
		Timestamp:   c.ScheduledAt,
		Title:       consultationTitle(c.Type),
		Description: description,
		Icon:        domain.IconVideoCamera,
		Color:       badge.Tone,
		StatusLabel: badge.Label,
		StatusColor: badge.Tone,
		Details:     d,
		Source:      c,
	}
}

func normalizeFollowUp(f domain.FollowUp) domain.TimelineEvent {
	badge := f.Status.Badge()

	description := f.PatientCondition
	if description == "" {
		description = f.Notes
	}
	if description == "" {
		assignee := f.AssigneeName
		if assignee == "" {
			assignee = "Staff"
		}
		description = "Follow-up by " + assignee
	}

	d := details{}
	d.add("Assigned To", f.AssigneeName)
	d.add("Attempts", strconv.Itoa(f.AttemptCount))
	d.add("Status", badge.Label)

	return domain.TimelineEvent{
		ID:          "followup-" + f.ID.String(),
		Category:    domain.CategoryFollowUp,
		Timestamp:   f.ScheduledDate,
		Title:       "Follow-up Call",
		Description: description,
		Icon:        domain.IconPhone,
		Color:       badge.Tone,
		StatusLabel: badge.Label,
		StatusColor: badge.Tone,
		Details:     d,
		Source:      f,
	}
}

func normalizeAlert(a domain.RiskAlert) domain.TimelineEvent {
	badge := a.Badge()

	icon := domain.IconBellAlert
	if a.Severity == domain.RiskLevelRed {
		icon = domain.IconWarning
	}

	resolved := "No"
	if a.IsResolved {
		resolved = "Yes"
	}

	d := details{}
	d.add("Alert Type", a.AlertType.Label())
	d.add("Severity", string(a.Severity))
	d.add("Resolved", resolved)

	return domain.TimelineEvent{
		ID:          "alert-" + a.ID.String(),
		Category:    domain.CategoryAlert,
		Timestamp:   a.CreatedAt,
		Title:       a.Title,
		Description: a.Description,
		Icon:        icon,
		Color:       a.Severity.Tone(),
		StatusLabel: badge.Label,
		StatusColor: badge.Tone,
		RiskLevel:   a.Severity,
		Details:     d,
		Source:      a,
	}
}

// deliveryTime prefers the delivery date, then the completion time, then ref
func deliveryTime(dl domain.Delivery, ref time.Time) time.Time {
	if dl.DeliveryDate != nil && !dl.DeliveryDate.IsZero() {
		return *dl.DeliveryDate
	}
	if dl.DeliveryCompletedAt != nil && !dl.DeliveryCompletedAt.IsZero() {
		return *dl.DeliveryCompletedAt
	}
	return ref
}

func normalizeDelivery(dl domain.Delivery, ref time.Time) (domain.TimelineEvent, error) {
	if dl.Outcome == "" || dl.Outcome == domain.DeliveryPending {
		return domain.TimelineEvent{}, fmt.Errorf("%w: delivery outcome pending", ErrUnsupportedRecord)
	}

	description := dl.Notes
	if description == "" {
		description = "Delivery type: " + string(dl.DeliveryType)
	}

	icon, tone := domain.IconHeart, domain.ToneDanger
	if dl.Outcome == domain.DeliverySuccessful {
		icon, tone = domain.IconHeartSolid, domain.ToneSuccess
	}

	d := details{}
	d.add("Delivery Type", string(dl.DeliveryType))
	d.add("Baby Gender", dl.BabyGender)
	if measured(dl.BabyWeight) {
		d.add("Baby Weight", formatNumber(*dl.BabyWeight)+" kg")
	}
	d.add("Hospital", dl.Hospital)

	return domain.TimelineEvent{
		ID:          "delivery-" + dl.PatientID.String(),
		Category:    domain.CategoryDelivery,
		Timestamp:   deliveryTime(dl, ref),
		Title:       dl.Outcome.Title(),
		Description: description,
		Icon:        icon,
		Color:       tone,
		Details:     d,
		Source:      dl,
	}, nil
}
