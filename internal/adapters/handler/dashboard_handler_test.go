package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/adapters/handler"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/heatmap"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/ports"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/pregnancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var refDate = time.Date(2024, time.March, 22, 10, 0, 0, 0, time.UTC)

func patientRequest(path string, patientID string) *http.Request {
	req := httptest.NewRequest("GET", path, nil)
	req.SetPathValue("patient_id", patientID)
	return req
}

func TestDashboardHandler_Timeline(t *testing.T) {
	svc := new(MockDashboardService)
	h := handler.NewDashboardHandler(svc)
	pid := uuid.New()

	svc.On("PatientTimeline", mock.Anything, pid, ports.TimelineQuery{Limit: 5, IncludeUpcoming: true}).Return(&ports.TimelineView{
		PatientID:     pid,
		ReferenceDate: refDate,
		Events: []domain.TimelineEvent{
			{ID: "hc-1", Category: domain.CategoryHealthCheck, Timestamp: refDate.Add(-2 * time.Hour), Title: "Health Check"},
			{ID: "registration-1", Category: domain.CategoryRegistration, Timestamp: refDate.AddDate(0, 0, -1), Title: "Patient Registered"},
		},
	}, nil)

	req := patientRequest(fmt.Sprintf("/patients/%s/timeline?limit=5&include_upcoming=true", pid), pid.String())
	w := httptest.NewRecorder()

	h.Timeline(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp handler.TimelineResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Today", resp.Events[0].RelativeDate)
	assert.Equal(t, "08:00 am", resp.Events[0].Time)
	assert.Equal(t, "Yesterday", resp.Events[1].RelativeDate)
	assert.Equal(t, "hc-1", resp.Events[0].ID)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_Timeline_IncludesSourceRecord(t *testing.T) {
	svc := new(MockDashboardService)
	h := handler.NewDashboardHandler(svc)
	pid := uuid.New()
	hc := domain.HealthCheck{ID: uuid.New(), PatientID: pid, CheckDate: refDate, RiskScore: 4}

	svc.On("PatientTimeline", mock.Anything, pid, ports.TimelineQuery{}).Return(&ports.TimelineView{
		PatientID:     pid,
		ReferenceDate: refDate,
		Events: []domain.TimelineEvent{
			{ID: "hc-" + hc.ID.String(), Category: domain.CategoryHealthCheck, Timestamp: refDate, Source: hc},
		},
	}, nil)

	w := httptest.NewRecorder()
	h.Timeline(w, patientRequest("/patients/"+pid.String()+"/timeline", pid.String()))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Events []struct {
			Source map[string]any `json:"source"`
		} `json:"events"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, hc.ID.String(), body.Events[0].Source["id"])
	assert.EqualValues(t, 4, body.Events[0].Source["risk_score"])
}

func TestDashboardHandler_Timeline_BadInput(t *testing.T) {
	pid := uuid.NewString()
	tests := []struct {
		name      string
		patientID string
		query     string
	}{
		{"invalid patient id", "not-a-uuid", ""},
		{"negative limit", pid, "?limit=-3"},
		{"non numeric limit", pid, "?limit=ten"},
		{"invalid include_upcoming", pid, "?include_upcoming=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			h := handler.NewDashboardHandler(svc)

			w := httptest.NewRecorder()
			h.Timeline(w, patientRequest("/patients/x/timeline"+tt.query, tt.patientID))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "PatientTimeline", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDashboardHandler_Timeline_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", domain.ErrPatientNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrPatientNotFound), http.StatusNotFound},
		{"store failure", errors.New("failed to get patient: timeout"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			h := handler.NewDashboardHandler(svc)
			pid := uuid.New()
			svc.On("PatientTimeline", mock.Anything, pid, ports.TimelineQuery{}).Return(nil, tt.err)

			w := httptest.NewRecorder()
			h.Timeline(w, patientRequest("/patients/x/timeline", pid.String()))

			assert.Equal(t, tt.code, w.Code)
			var resp handler.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
			assert.NotContains(t, resp.Error, "timeout")
		})
	}
}

func TestDashboardHandler_Calendar(t *testing.T) {
	svc := new(MockDashboardService)
	h := handler.NewDashboardHandler(svc)
	month := domain.Month{Year: 2024, Month: time.January}
	cal := heatmap.BuildMonth(month, []domain.FollowUp{
		{ID: uuid.New(), Status: domain.FollowUpCompleted, ScheduledDate: time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)},
	}, refDate)
	svc.On("FollowUpCalendar", mock.Anything, month).Return(&ports.CalendarView{ReferenceDate: refDate, Calendar: cal}, nil)

	w := httptest.NewRecorder()
	h.Calendar(w, httptest.NewRequest("GET", "/follow-ups/calendar?year=2024&month=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp handler.CalendarResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "2024-01", resp.Month)
	assert.Equal(t, "January", resp.MonthName)
	assert.Equal(t, handler.MonthRef{Year: 2023, Month: 12}, resp.Prev)
	assert.Equal(t, handler.MonthRef{Year: 2024, Month: 2}, resp.Next)
	assert.Equal(t, "Sun", resp.WeekdayHeaders[0])
	assert.Equal(t, 1, resp.Summary.Completed)
	// January 2024 starts on a Monday
	assert.Equal(t, domain.TierLow, resp.Cells[1+9].Tier)
}

func TestDashboardHandler_Calendar_DefaultsToCurrentMonth(t *testing.T) {
	svc := new(MockDashboardService)
	h := handler.NewDashboardHandler(svc)
	month := domain.MonthOf(refDate)
	svc.On("FollowUpCalendar", mock.Anything, domain.Month{}).Return(&ports.CalendarView{
		ReferenceDate: refDate,
		Calendar:      heatmap.BuildMonth(month, nil, refDate),
	}, nil)

	w := httptest.NewRecorder()
	h.Calendar(w, httptest.NewRequest("GET", "/follow-ups/calendar", nil))

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_Calendar_InvalidMonth(t *testing.T) {
	for _, query := range []string{"?year=2024&month=13", "?year=2024", "?month=3", "?year=abc&month=3"} {
		t.Run(query, func(t *testing.T) {
			svc := new(MockDashboardService)
			h := handler.NewDashboardHandler(svc)

			w := httptest.NewRecorder()
			h.Calendar(w, httptest.NewRequest("GET", "/follow-ups/calendar"+query, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "FollowUpCalendar", mock.Anything, mock.Anything)
		})
	}
}

func TestDashboardHandler_PregnancyProgress(t *testing.T) {
	svc := new(MockDashboardService)
	h := handler.NewDashboardHandler(svc)
	pid := uuid.New()
	snap, err := pregnancy.ComputeProgress(refDate.AddDate(0, 0, -100), nil, nil, refDate)
	require.NoError(t, err)
	svc.On("PregnancyProgress", mock.Anything, pid).Return(&ports.PregnancyView{
		PatientID: pid, LMPRecorded: true, ReferenceDate: refDate, Snapshot: &snap,
	}, nil)

	w := httptest.NewRecorder()
	h.PregnancyProgress(w, patientRequest("/patients/x/pregnancy-progress", pid.String()))

	require.Equal(t, http.StatusOK, w.Code)
	var resp handler.PregnancyResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.LMPRecorded)
	require.NotNil(t, resp.Snapshot)
	assert.Equal(t, 15, resp.Snapshot.CurrentWeek)
	require.Len(t, resp.Trimesters, 3)
	assert.False(t, resp.Trimesters[0].Current)
	assert.True(t, resp.Trimesters[1].Current)
}

func TestDashboardHandler_PregnancyProgress_NoLMP(t *testing.T) {
	svc := new(MockDashboardService)
	h := handler.NewDashboardHandler(svc)
	pid := uuid.New()
	svc.On("PregnancyProgress", mock.Anything, pid).Return(&ports.PregnancyView{PatientID: pid, ReferenceDate: refDate}, nil)

	w := httptest.NewRecorder()
	h.PregnancyProgress(w, patientRequest("/patients/x/pregnancy-progress", pid.String()))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, false, body["lmp_recorded"])
	assert.NotContains(t, body, "snapshot")
	assert.NotContains(t, body, "trimesters")
}

func TestDashboardHandler_PregnancyProgress_NotFound(t *testing.T) {
	svc := new(MockDashboardService)
	h := handler.NewDashboardHandler(svc)
	pid := uuid.New()
	svc.On("PregnancyProgress", mock.Anything, pid).Return(nil, domain.ErrPatientNotFound)

	w := httptest.NewRecorder()
	h.PregnancyProgress(w, patientRequest("/patients/x/pregnancy-progress", pid.String()))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
