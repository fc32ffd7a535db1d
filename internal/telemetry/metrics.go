package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики Prometheus. Экспортируются на /metrics каждого сервиса.
var (
	// TaskExecutions — выполненные задачи по виду и исходу.
	// outcome: ok, retry, failed, noop.
	TaskExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hive",
			Subsystem: "worker",
			Name:      "task_executions_total",
			Help:      "Task executions by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	// TaskDuration — длительность выполнения задач.
	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hive",
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "Task execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// ScannerTicks — циклы сканера запланированных действий.
	ScannerTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hive",
			Subsystem: "scanner",
			Name:      "ticks_total",
			Help:      "Completed scanner ticks.",
		},
	)

	// ScannerClaims — захваченные сканером действия.
	ScannerClaims = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hive",
			Subsystem: "scanner",
			Name:      "claims_total",
			Help:      "Actions claimed for dispatch.",
		},
	)

	// ScannerRaceLosses — проигранные гонки за claim.
	// Ненулевое значение при нескольких экземплярах — норма.
	ScannerRaceLosses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hive",
			Subsystem: "scanner",
			Name:      "race_losses_total",
			Help:      "Claim attempts lost to a concurrent claimer.",
		},
	)

	// HTTPRequests — HTTP запросы к API по методу, маршруту и коду ответа.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hive",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "code"},
	)
)
