package metrics

import "github.com/prometheus/client_golang/prometheus"

// Auto-cancel outcomes.
const (
	AutoCancelCancelled = "cancelled"
	AutoCancelRetry     = "retry"
	AutoCancelDropped   = "dropped"
	AutoCancelSkipped   = "skipped"
)

// AutoCancelMetrics counts what happened to each due auto-cancel entry.
type AutoCancelMetrics struct {
	fired     *prometheus.CounterVec
	scheduled prometheus.Counter
}

func NewAutoCancelMetrics(reg prometheus.Registerer) *AutoCancelMetrics {
	if reg == nil {
		return &AutoCancelMetrics{}
	}
	fired := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "autocancel_fired_total",
		Help:      "Due auto-cancel entries processed, by result.",
	}, []string{"result"})
	scheduled := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "autocancel_scheduled_total",
		Help:      "Pending orders anchored for auto-cancellation.",
	})
	reg.MustRegister(fired, scheduled)
	return &AutoCancelMetrics{fired: fired, scheduled: scheduled}
}

func (m *AutoCancelMetrics) IncFired(result string) {
	if m == nil || m.fired == nil {
		return
	}
	m.fired.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *AutoCancelMetrics) IncScheduled() {
	if m == nil || m.scheduled == nil {
		return
	}
	m.scheduled.Inc()
}

// FiredCounter exposes the counter for result, mostly for assertions.
func (m *AutoCancelMetrics) FiredCounter(result string) prometheus.Counter {
	if m == nil || m.fired == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: "autocancel_fired_unregistered"})
	}
	return m.fired.WithLabelValues(normalizeLabel(result))
}
