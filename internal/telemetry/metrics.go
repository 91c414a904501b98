package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики оркестратора. Регистрируются в default registry,
// отдаются через promhttp на /metrics.
var (
	// RunsStarted — количество запущенных обработок заказов.
	RunsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orderline",
		Name:      "runs_started_total",
		Help:      "Number of order workflow runs started.",
	})

	// RunsFinished — количество завершённых обработок по финальному статусу записи.
	RunsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orderline",
		Name:      "runs_finished_total",
		Help:      "Number of order workflow runs finished, by final status.",
	}, []string{"final_status"})

	// RunsFailed — количество обработок, упавших с ошибкой (до записи результата).
	RunsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orderline",
		Name:      "runs_failed_total",
		Help:      "Number of order workflow runs that failed before producing a record.",
	})

	// BranchDegraded — ветка (inventory/payment) упала или истёк таймаут,
	// результат заменён пустым значением.
	BranchDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orderline",
		Name:      "branch_degraded_total",
		Help:      "Number of parallel branches that failed or timed out and were replaced with an empty result.",
	}, []string{"step"})

	// StepDuration — длительность выполнения шагов.
	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "orderline",
		Name:      "step_duration_seconds",
		Help:      "Duration of workflow step execution.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step"})

	// RecordsPurged — количество записей, удалённых retention-джобой.
	RecordsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orderline",
		Name:      "records_purged_total",
		Help:      "Number of order records deleted by the retention job.",
	})
)
