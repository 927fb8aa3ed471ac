package reconciliation

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	contractsTotal *prometheus.CounterVec
	rowsTotal      prometheus.Counter
	batchDuration  *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		contractsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leasing",
			Subsystem: "import",
			Name:      "contracts_total",
			Help:      "Total number of imported contracts broken down by result.",
		}, []string{"result"}),
		rowsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "leasing",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Total number of data rows parsed from import files.",
		}),
		batchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leasing",
			Subsystem: "import",
			Name:      "batch_duration_seconds",
			Help:      "Duration of import batch execution.",
			Buckets: []float64{
				0.05, 0.1, 0.25, 0.5,
				1, 2.5, 5, 10,
				30, 60, 120,
			},
		}, []string{"status"}),
	}
})

func recordContract(action Action) {
	metricsSingleton().contractsTotal.WithLabelValues(string(action)).Inc()
}

func recordRows(n int) {
	if n <= 0 {
		return
	}
	metricsSingleton().rowsTotal.Add(float64(n))
}

func recordBatch(status string, seconds float64) {
	metricsSingleton().batchDuration.WithLabelValues(status).Observe(seconds)
}
