package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/timeline"
)

// Bundle is an offline export of one patient and the records the dashboard reads
type Bundle struct {
	Patient       domain.Patient        `json:"patient"`
	HealthChecks  []domain.HealthCheck  `json:"health_checks"`
	Consultations []domain.Consultation `json:"consultations"`
	FollowUps     []domain.FollowUp     `json:"follow_ups"`
	Alerts        []domain.RiskAlert    `json:"alerts"`
}

// Sources returns the per-patient collections for timeline assembly
func (b *Bundle) Sources() timeline.Sources {
	return timeline.Sources{
		HealthChecks:  b.HealthChecks,
		Consultations: b.Consultations,
		FollowUps:     b.FollowUps,
		Alerts:        b.Alerts,
	}
}

// loadBundle reads a bundle from path, or from stdin when path is "-"
func loadBundle(path string, stdin io.Reader) (*Bundle, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open bundle: %w", err)
		}
		defer f.Close()
		r = f
	}

	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}

// parseToday resolves the --today flag in loc. An empty value means now.
// Accepts a plain date or an RFC 3339 timestamp.
func parseToday(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	if raw == "" {
		return now.In(loc), nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		// midday keeps the civil date stable across offsets
		return t.Add(12 * time.Hour), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --today %q: want YYYY-MM-DD or RFC 3339", raw)
	}
	return t.In(loc), nil
}
