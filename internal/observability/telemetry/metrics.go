package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wattscope_readings_ingested_total",
		Help: "Total device readings accepted by the pipeline",
	})

	SnapshotGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wattscope_snapshot_generation",
		Help: "Generation counter of the published snapshot",
	})

	SnapshotRebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wattscope_snapshot_rebuild_seconds",
		Help:    "Time spent rebuilding derived state after an ingest",
		Buckets: prometheus.DefBuckets,
	})

	AlertsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wattscope_alerts_triggered_total",
		Help: "Alerts fired by the background monitor",
	}, []string{"alert_type", "severity"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wattscope_emails_sent_total",
		Help: "Alert emails dispatched",
	}, []string{"status"})

	WeatherLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wattscope_weather_lookups_total",
		Help: "Weather upstream calls",
	}, []string{"outcome"})
)
