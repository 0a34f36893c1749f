package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RemoteAPIMetrics tracks calls made to the IoT Farm API.
type RemoteAPIMetrics struct {
	duration *prometheus.HistogramVec
}

func NewRemoteAPIMetrics(reg prometheus.Registerer) *RemoteAPIMetrics {
	if reg == nil {
		return &RemoteAPIMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_api_request_duration_seconds",
		Help:      "Latency of IoT Farm API calls by action and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action", "status"})
	reg.MustRegister(duration)
	return &RemoteAPIMetrics{duration: duration}
}

// ObserveCall records one call. status 0 means the request never got a response.
func (m *RemoteAPIMetrics) ObserveCall(action string, status int, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.duration.WithLabelValues(normalizeLabel(action), label).Observe(duration.Seconds())
}
