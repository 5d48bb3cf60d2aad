package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	timelineEventsAssembled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timeline_events_assembled_total",
			Help: "Total number of timeline events returned to dashboards",
		},
	)

	calendarBuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "followup_calendar_builds_total",
			Help: "Total number of follow-up calendars built",
		},
	)

	overdueAlertsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overdue_followup_alerts_total",
			Help: "Total number of overdue follow-up alerts by publish status",
		},
		[]string{"status"},
	)

	overdueScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overdue_scan_duration_seconds",
			Help:    "Duration of overdue follow-up scans",
			Buckets: prometheus.DefBuckets,
		},
	)
)
