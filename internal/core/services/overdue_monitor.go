package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/heatmap"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OverdueMonitor periodically looks for pending follow-ups whose date has passed
// and publishes one OVERDUE_FOLLOWUP alert per follow-up.
// Published follow-ups are remembered for the lifetime of the process.
type OverdueMonitor struct {
	referenceClock
	records   ports.ClinicalRecordRepository
	publisher ports.AlertPublisher
	interval  time.Duration

	mu        sync.Mutex
	published map[uuid.UUID]struct{}
}

// NewOverdueMonitor creates a new overdue follow-up monitor
func NewOverdueMonitor(
	records ports.ClinicalRecordRepository,
	publisher ports.AlertPublisher,
	interval time.Duration,
	opts ...Option,
) *OverdueMonitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &OverdueMonitor{
		referenceClock: newReferenceClock(opts),
		records:        records,
		publisher:      publisher,
		interval:       interval,
		published:      make(map[uuid.UUID]struct{}),
	}
}

// Run scans immediately and then on every interval until ctx is cancelled
func (m *OverdueMonitor) Run(ctx context.Context) {
	log.Info().Dur("interval", m.interval).Msg("overdue follow-up monitor started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if _, err := m.ScanOnce(ctx); err != nil {
			log.Error().Err(err).Msg("overdue follow-up scan failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("overdue follow-up monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// ScanOnce checks every pending follow-up scheduled before now and returns how many alerts were published
func (m *OverdueMonitor) ScanOnce(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		overdueScanDuration.Observe(time.Since(start).Seconds())
	}()

	ref := m.now()

	followUps, err := m.records.ListPendingFollowUpsBefore(ctx, ref)
	if err != nil {
		return 0, fmt.Errorf("failed to list follow-ups: %w", err)
	}

	published := 0
	for _, f := range followUps {
		if !heatmap.IsOverdue(f, ref) || m.alreadyPublished(f.ID) {
			continue
		}

		if err := m.publisher.PublishOverdueFollowUp(ctx, f, ref); err != nil {
			overdueAlertsPublished.WithLabelValues("error").Inc()
			log.Error().
				Err(err).
				Str("follow_up_id", f.ID.String()).
				Str("patient_id", f.PatientID.String()).
				Msg("failed to publish overdue follow-up alert")
			continue
		}

		m.markPublished(f.ID)
		published++
		overdueAlertsPublished.WithLabelValues("success").Inc()
		log.Info().
			Str("event", "overdue_followup_published").
			Str("follow_up_id", f.ID.String()).
			Str("patient_id", f.PatientID.String()).
			Time("scheduled_date", f.ScheduledDate).
			Msg("overdue follow-up alert published")
	}

	return published, nil
}

func (m *OverdueMonitor) alreadyPublished(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.published[id]
	return ok
}

func (m *OverdueMonitor) markPublished(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[id] = struct{}{}
}
