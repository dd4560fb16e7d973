package generation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts task lifecycle events.
type Metrics struct {
	tasksStarted  prometheus.Counter
	tasksFinished *prometheus.CounterVec
	itemsOK       prometheus.Counter
	itemsFailed   prometheus.Counter
	activeTasks   prometheus.Gauge
}

// NewMetrics registers the generation collectors with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		tasksStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "annotate",
			Subsystem: "generation",
			Name:      "tasks_started_total",
			Help:      "Generation tasks whose generator started.",
		}),
		tasksFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "annotate",
			Subsystem: "generation",
			Name:      "tasks_finished_total",
			Help:      "Generation tasks that reached a terminal state.",
		}, []string{"status"}),
		itemsOK: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "annotate",
			Subsystem: "generation",
			Name:      "items_generated_total",
			Help:      "Items produced by generation tasks.",
		}),
		itemsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "annotate",
			Subsystem: "generation",
			Name:      "item_failures_total",
			Help:      "Completion calls that failed and were skipped.",
		}),
		activeTasks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "annotate",
			Subsystem: "generation",
			Name:      "active_generators",
			Help:      "Generators currently running.",
		}),
	}
}

// The methods below are no-ops on a nil receiver so metrics stay optional.

func (m *Metrics) started() {
	if m == nil {
		return
	}
	m.tasksStarted.Inc()
	m.activeTasks.Inc()
}

func (m *Metrics) stopped() {
	if m == nil {
		return
	}
	m.activeTasks.Dec()
}

func (m *Metrics) finished(status Status) {
	if m == nil {
		return
	}
	m.tasksFinished.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) item(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.itemsOK.Inc()
		return
	}
	m.itemsFailed.Inc()
}
