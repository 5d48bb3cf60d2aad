package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/ports"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/timeline"
	"github.com/google/uuid"
)

// DashboardHandler handles HTTP requests for the staff dashboard views
type DashboardHandler struct {
	service ports.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// TimelineEventResponse is a timeline event with its display strings
type TimelineEventResponse struct {
	domain.TimelineEvent
	RelativeDate string `json:"relative_date"`
	Time         string `json:"time"`
}

// TimelineResponse is the body of GET /patients/{patient_id}/timeline
type TimelineResponse struct {
	PatientID     uuid.UUID               `json:"patient_id"`
	ReferenceDate time.Time               `json:"reference_date"`
	Count         int                     `json:"count"`
	Events        []TimelineEventResponse `json:"events"`
}

// MonthRef points at an adjacent month
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CalendarResponse is the body of GET /follow-ups/calendar
type CalendarResponse struct {
	Month          string                                 `json:"month"`
	Year           int                                    `json:"year"`
	MonthNumber    int                                    `json:"month_number"`
	MonthName      string                                 `json:"month_name"`
	Prev           MonthRef                               `json:"prev"`
	Next           MonthRef                               `json:"next"`
	WeekdayHeaders [7]string                              `json:"weekday_headers"`
	Cells          [domain.CalendarCells]domain.DayBucket `json:"cells"`
	Summary        domain.MonthSummary                    `json:"summary"`
	ReferenceDate  time.Time                              `json:"reference_date"`
}

// TrimesterResponse describes one segment of the progress bar
type TrimesterResponse struct {
	domain.TrimesterSpan
	Current bool `json:"current"`
}

// PregnancyResponse is the body of GET /patients/{patient_id}/pregnancy-progress
type PregnancyResponse struct {
	PatientID     uuid.UUID                   `json:"patient_id"`
	LMPRecorded   bool                        `json:"lmp_recorded"`
	ReferenceDate time.Time                   `json:"reference_date"`
	Snapshot      *domain.GestationalSnapshot `json:"snapshot,omitempty"`
	Trimesters    []TrimesterResponse         `json:"trimesters,omitempty"`
}

func patientIDFrom(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("patient_id"))
	return id, err == nil
}

// Timeline handles GET /patients/{patient_id}/timeline
func (h *DashboardHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/patients/{patient_id}/timeline"

	patientID, ok := patientIDFrom(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid patient ID")
		logStructured(r, endpoint, http.StatusBadRequest, time.Since(start), nil)
		return
	}

	var query ports.TimelineQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			logStructured(r, endpoint, http.StatusBadRequest, time.Since(start), nil)
			return
		}
		query.Limit = limit
	}
	if raw := r.URL.Query().Get("include_upcoming"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "include_upcoming must be a boolean")
			logStructured(r, endpoint, http.StatusBadRequest, time.Since(start), nil)
			return
		}
		query.IncludeUpcoming = include
	}

	view, err := h.service.PatientTimeline(r.Context(), patientID, query)
	if err != nil {
		status, message := statusForError(err)
		writeError(w, r, status, message)
		logStructured(r, endpoint, status, time.Since(start), err)
		return
	}

	resp := TimelineResponse{
		PatientID:     view.PatientID,
		ReferenceDate: view.ReferenceDate,
		Count:         len(view.Events),
		Events:        make([]TimelineEventResponse, 0, len(view.Events)),
	}
	loc := view.ReferenceDate.Location()
	for _, ev := range view.Events {
		resp.Events = append(resp.Events, TimelineEventResponse{
			TimelineEvent: ev,
			RelativeDate:  timeline.RelativeDate(ev.Timestamp, view.ReferenceDate),
			Time:          timeline.ClockTime(ev.Timestamp.In(loc)),
		})
	}

	writeJSON(w, http.StatusOK, resp)
	logStructured(r, endpoint, http.StatusOK, time.Since(start), nil)
}

// Calendar handles GET /follow-ups/calendar
// Without year and month the current month is returned
func (h *DashboardHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/follow-ups/calendar"

	var month domain.Month
	yearRaw, monthRaw := r.URL.Query().Get("year"), r.URL.Query().Get("month")
	if yearRaw != "" || monthRaw != "" {
		year, yErr := strconv.Atoi(yearRaw)
		m, mErr := strconv.Atoi(monthRaw)
		if yErr != nil || mErr != nil {
			writeError(w, r, http.StatusBadRequest, "year and month must both be integers")
			logStructured(r, endpoint, http.StatusBadRequest, time.Since(start), nil)
			return
		}
		var err error
		if month, err = domain.NewMonth(year, m); err != nil {
			status, message := statusForError(err)
			writeError(w, r, status, message)
			logStructured(r, endpoint, status, time.Since(start), err)
			return
		}
	}

	view, err := h.service.FollowUpCalendar(r.Context(), month)
	if err != nil {
		status, message := statusForError(err)
		writeError(w, r, status, message)
		logStructured(r, endpoint, status, time.Since(start), err)
		return
	}

	cal := view.Calendar
	prev, next := cal.Month.Prev(), cal.Month.Next()
	writeJSON(w, http.StatusOK, CalendarResponse{
		Month:          cal.Month.String(),
		Year:           cal.Month.Year,
		MonthNumber:    int(cal.Month.Month),
		MonthName:      cal.Month.Month.String(),
		Prev:           MonthRef{Year: prev.Year, Month: int(prev.Month)},
		Next:           MonthRef{Year: next.Year, Month: int(next.Month)},
		WeekdayHeaders: domain.WeekdayHeaders,
		Cells:          cal.Cells,
		Summary:        cal.Summary,
		ReferenceDate:  view.ReferenceDate,
	})
	logStructured(r, endpoint, http.StatusOK, time.Since(start), nil)
}

// PregnancyProgress handles GET /patients/{patient_id}/pregnancy-progress
func (h *DashboardHandler) PregnancyProgress(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/patients/{patient_id}/pregnancy-progress"

	patientID, ok := patientIDFrom(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid patient ID")
		logStructured(r, endpoint, http.StatusBadRequest, time.Since(start), nil)
		return
	}

	view, err := h.service.PregnancyProgress(r.Context(), patientID)
	if err != nil {
		status, message := statusForError(err)
		writeError(w, r, status, message)
		logStructured(r, endpoint, status, time.Since(start), err)
		return
	}

	resp := PregnancyResponse{
		PatientID:     view.PatientID,
		LMPRecorded:   view.LMPRecorded,
		ReferenceDate: view.ReferenceDate,
		Snapshot:      view.Snapshot,
	}
	if view.Snapshot != nil {
		for _, span := range domain.Trimesters {
			resp.Trimesters = append(resp.Trimesters, TrimesterResponse{
				TrimesterSpan: span,
				Current:       span.Trimester == view.Snapshot.Trimester,
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
	logStructured(r, endpoint, http.StatusOK, time.Since(start), nil)
}
