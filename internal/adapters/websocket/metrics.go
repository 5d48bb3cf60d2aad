package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of WebSocket connections",
		},
		[]string{"role"},
	)

	alertsBroadcastTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_broadcast_total",
			Help: "Total number of alert deliveries to WebSocket clients",
		},
	)
)
