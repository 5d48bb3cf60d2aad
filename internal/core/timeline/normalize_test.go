package timeline_test

import (
	"testing"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/timeline"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2024, time.March, 22, 10, 0, 0, 0, time.UTC)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func timePtr(t time.Time) *time.Time {
	return &t
}

func TestNormalize_Registration(t *testing.T) {
	pid := uuid.New()
	reg := domain.Registration{
		PatientID:               pid,
		PatientName:             "Lakshmi Devi",
		RegisteredAt:            ref.AddDate(0, -2, 0),
		MotherIdentifier:        "MCH-0042",
		RiskLevelAtRegistration: domain.RiskLevelYellow,
	}

	ev, err := timeline.Normalize(reg, ref)
	require.NoError(t, err)
	assert.Equal(t, "registration-"+pid.String(), ev.ID)
	assert.Equal(t, reg, ev.Source)
	assert.Equal(t, domain.CategoryRegistration, ev.Category)
	assert.Equal(t, "Patient Registered", ev.Title)
	assert.Equal(t, "Lakshmi Devi was registered in the system", ev.Description)
	assert.Empty(t, ev.StatusLabel)
	assert.Equal(t, []domain.DetailField{
		{Label: "Mother ID", Value: "MCH-0042"},
		{Label: "Risk Level", Value: "YELLOW"},
	}, ev.Details)
}

func TestNormalize_HealthCheck_FullVitals(t *testing.T) {
	hc := domain.HealthCheck{
		ID:        uuid.New(),
		CheckDate: ref.AddDate(0, 0, -3),
		RiskLevel: domain.RiskLevelRed,
		RiskScore: 7,
		Vitals: domain.Vitals{
			BPSystolic:  intPtr(150),
			BPDiastolic: intPtr(95),
			Hemoglobin:  floatPtr(9.5),
			Weight:      floatPtr(62),
		},
	}

	ev, err := timeline.Normalize(hc, ref)
	require.NoError(t, err)
	assert.Equal(t, "Health Check", ev.Title)
	assert.Equal(t, "Routine health check - Risk Score: 7", ev.Description)
	assert.Equal(t, hc, ev.Source)
	assert.Equal(t, domain.RiskLevelRed, ev.RiskLevel)
	assert.Equal(t, domain.ToneDanger, ev.Color)
	assert.Equal(t, []domain.DetailField{
		{Label: "BP", Value: "150/95 mmHg"},
		{Label: "Hemoglobin", Value: "9.5 g/dL"},
		{Label: "Weight", Value: "62 kg"},
		{Label: "Risk Score", Value: "7"},
	}, ev.Details)
}

func TestNormalize_HealthCheck_PartialBloodPressureOmitted(t *testing.T) {
	hc := domain.HealthCheck{
		ID:        uuid.New(),
		CheckDate: ref,
		RiskLevel: domain.RiskLevelGreen,
		RiskScore: 1,
		Notes:     "Feeling well",
		Vitals:    domain.Vitals{BPSystolic: intPtr(120)},
	}

	ev, err := timeline.Normalize(hc, ref)
	require.NoError(t, err)
	assert.Equal(t, "Feeling well", ev.Description)

	_, hasBP := ev.Detail("BP")
	assert.False(t, hasBP)
	_, hasHb := ev.Detail("Hemoglobin")
	assert.False(t, hasHb)
	for _, d := range ev.Details {
		assert.NotContains(t, d.Value, "undefined")
		assert.NotEmpty(t, d.Value)
	}
}

func TestNormalize_ZeroReadingsOmitted(t *testing.T) {
	hc := domain.HealthCheck{
		ID:        uuid.New(),
		CheckDate: ref,
		RiskLevel: domain.RiskLevelGreen,
		Vitals: domain.Vitals{
			BPSystolic:  intPtr(0),
			BPDiastolic: intPtr(80),
			Hemoglobin:  floatPtr(0),
			Weight:      floatPtr(0),
		},
	}

	ev, err := timeline.Normalize(hc, ref)
	require.NoError(t, err)
	assert.Equal(t, []domain.DetailField{{Label: "Risk Score", Value: "0"}}, ev.Details)

	dl := domain.Delivery{Outcome: domain.DeliverySuccessful, DeliveryType: domain.DeliveryTypeNormal, BabyWeight: floatPtr(0)}
	ev, err = timeline.Normalize(dl, ref)
	require.NoError(t, err)
	_, hasWeight := ev.Detail("Baby Weight")
	assert.False(t, hasWeight)
}

func TestNormalize_ConsultationTitlesAndStatus(t *testing.T) {
	tests := []struct {
		name      string
		ctype     domain.ConsultationType
		status    domain.ConsultationStatus
		wantTitle string
		wantLabel string
		wantTone  domain.Tone
	}{
		{"tele scheduled", domain.ConsultationTypeTele, domain.ConsultationScheduled, "Tele Consultation", "Scheduled", domain.ToneInfo},
		{"emergency in progress", domain.ConsultationTypeEmergency, domain.ConsultationInProgress, "Emergency Consultation", "In Progress", domain.ToneWarning},
		{"in person completed", domain.ConsultationTypeInPerson, domain.ConsultationCompleted, "In-Person Consultation", "Completed", domain.ToneSuccess},
		{"cancelled", domain.ConsultationTypeInPerson, domain.ConsultationCancelled, "In-Person Consultation", "Cancelled", domain.ToneGray},
		{"no show", domain.ConsultationTypeTele, domain.ConsultationNoShow, "Tele Consultation", "No Show", domain.ToneDanger},
		{"unknown status", domain.ConsultationTypeTele, domain.ConsultationStatus("ON_HOLD"), "Tele Consultation", "ON_HOLD", domain.ToneNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.Consultation{ID: uuid.New(), Type: tt.ctype, Status: tt.status, ScheduledAt: ref}
			ev, err := timeline.Normalize(c, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, ev.Title)
			assert.Equal(t, tt.wantLabel, ev.StatusLabel)
			assert.Equal(t, tt.wantTone, ev.StatusColor)
			assert.Equal(t, c, ev.Source)
		})
	}
}

func TestNormalize_ConsultationDescriptionFallback(t *testing.T) {
	c := domain.Consultation{ID: uuid.New(), Type: domain.ConsultationTypeTele, Status: domain.ConsultationScheduled, ScheduledAt: ref}
	ev, err := timeline.Normalize(c, ref)
	require.NoError(t, err)
	assert.Equal(t, "Consultation with Dr. Unknown", ev.Description)
	_, hasDoctor := ev.Detail("Doctor")
	assert.False(t, hasDoctor)

	c.DoctorName = "Rao"
	ev, err = timeline.Normalize(c, ref)
	require.NoError(t, err)
	assert.Equal(t, "Consultation with Dr. Rao", ev.Description)

	c.ChiefComplaint = "Headache"
	ev, err = timeline.Normalize(c, ref)
	require.NoError(t, err)
	assert.Equal(t, "Headache", ev.Description)
}

func TestNormalize_FollowUpDescriptionPreference(t *testing.T) {
	f := domain.FollowUp{
		ID:               uuid.New(),
		ScheduledDate:    ref,
		Status:           domain.FollowUpNoAnswer,
		AttemptCount:     2,
		PatientCondition: "Stable",
		Notes:            "Called twice",
		AssigneeName:     "Anita",
	}

	ev, err := timeline.Normalize(f, ref)
	require.NoError(t, err)
	assert.Equal(t, "Follow-up Call", ev.Title)
	assert.Equal(t, "Stable", ev.Description)
	assert.Equal(t, f, ev.Source)
	assert.Equal(t, "No Answer", ev.StatusLabel)
	assert.Equal(t, domain.ToneDanger, ev.StatusColor)

	f.PatientCondition = ""
	ev, _ = timeline.Normalize(f, ref)
	assert.Equal(t, "Called twice", ev.Description)

	f.Notes = ""
	ev, _ = timeline.Normalize(f, ref)
	assert.Equal(t, "Follow-up by Anita", ev.Description)

	attempts, ok := ev.Detail("Attempts")
	require.True(t, ok)
	assert.Equal(t, "2", attempts)
}

func TestNormalize_Alert(t *testing.T) {
	a := domain.RiskAlert{
		ID:          uuid.New(),
		Severity:    domain.RiskLevelRed,
		Title:       "High risk detected",
		Description: "BP above threshold",
		AlertType:   domain.AlertHighRiskDetected,
		CreatedAt:   ref,
	}

	ev, err := timeline.Normalize(a, ref)
	require.NoError(t, err)
	assert.Equal(t, domain.IconWarning, ev.Icon)
	assert.Equal(t, a, ev.Source)
	assert.Equal(t, "Active", ev.StatusLabel)
	alertType, _ := ev.Detail("Alert Type")
	assert.Equal(t, "HIGH RISK DETECTED", alertType)
	resolved, _ := ev.Detail("Resolved")
	assert.Equal(t, "No", resolved)

	a.Severity = domain.RiskLevelYellow
	a.IsAcknowledged = true
	ev, _ = timeline.Normalize(a, ref)
	assert.Equal(t, domain.IconBellAlert, ev.Icon)
	assert.Equal(t, "Acknowledged", ev.StatusLabel)

	a.IsResolved = true
	ev, _ = timeline.Normalize(a, ref)
	assert.Equal(t, "Resolved", ev.StatusLabel)
	assert.Equal(t, domain.ToneSuccess, ev.StatusColor)
}

func TestNormalize_DeliveryTimestampFallback(t *testing.T) {
	delivered := ref.AddDate(0, 0, -5)
	completed := ref.AddDate(0, 0, -4)

	dl := domain.Delivery{
		PatientID:           uuid.New(),
		Outcome:             domain.DeliverySuccessful,
		DeliveryType:        domain.DeliveryTypeNormal,
		DeliveryDate:        timePtr(delivered),
		DeliveryCompletedAt: timePtr(completed),
		BabyWeight:          floatPtr(3.2),
	}

	ev, err := timeline.Normalize(dl, ref)
	require.NoError(t, err)
	assert.Equal(t, "Successful Delivery", ev.Title)
	assert.Equal(t, dl, ev.Source)
	assert.Equal(t, "Delivery type: NORMAL", ev.Description)
	assert.Equal(t, domain.IconHeartSolid, ev.Icon)
	assert.True(t, ev.Timestamp.Equal(delivered))
	weight, _ := ev.Detail("Baby Weight")
	assert.Equal(t, "3.2 kg", weight)

	dl.DeliveryDate = nil
	ev, _ = timeline.Normalize(dl, ref)
	assert.True(t, ev.Timestamp.Equal(completed))

	dl.DeliveryCompletedAt = nil
	dl.Outcome = domain.DeliveryBabyMortality
	ev, _ = timeline.Normalize(dl, ref)
	assert.True(t, ev.Timestamp.Equal(ref))
	assert.Equal(t, "Baby Mortality", ev.Title)
	assert.Equal(t, domain.ToneDanger, ev.Color)
}

func TestNormalize_PointerRecordKeepsValueSource(t *testing.T) {
	hc := &domain.HealthCheck{ID: uuid.New(), CheckDate: ref, RiskLevel: domain.RiskLevelGreen, RiskScore: 2}

	ev, err := timeline.Normalize(hc, ref)
	require.NoError(t, err)

	src, ok := ev.Source.(domain.HealthCheck)
	require.True(t, ok)
	assert.Equal(t, hc.ID, src.ID)

	// later changes to the caller's record do not reach the event
	hc.RiskScore = 9
	assert.Equal(t, 2, ev.Source.(domain.HealthCheck).RiskScore)
}

func TestNormalize_PendingDeliveryRejected(t *testing.T) {
	_, err := timeline.Normalize(domain.Delivery{Outcome: domain.DeliveryPending}, ref)
	assert.ErrorIs(t, err, timeline.ErrUnsupportedRecord)
}

func TestNormalize_NilRecord(t *testing.T) {
	_, err := timeline.Normalize(nil, ref)
	assert.ErrorIs(t, err, timeline.ErrUnsupportedRecord)

	var hc *domain.HealthCheck
	_, err = timeline.Normalize(hc, ref)
	assert.ErrorIs(t, err, timeline.ErrUnsupportedRecord)
}
