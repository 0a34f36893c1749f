package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "order-auto-cancel"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "iotfarm_cron_job_success_total", "job", job); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "iotfarm_cron_job_failure_total", "job", job); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "iotfarm_cron_job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestAutoCancelMetricsCountsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAutoCancelMetrics(reg)
	m.IncFired(AutoCancelCancelled)
	m.IncFired(AutoCancelCancelled)
	m.IncFired(AutoCancelRetry)
	m.IncScheduled()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "iotfarm_autocancel_fired_total", "result", AutoCancelCancelled); err != nil || got != 2 {
		t.Fatalf("expected cancelled=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "iotfarm_autocancel_fired_total", "result", AutoCancelRetry); err != nil || got != 1 {
		t.Fatalf("expected retry=1, got %f (%v)", got, err)
	}
}

func TestRemoteAPIMetricsLabelsTransportErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRemoteAPIMetrics(reg)
	m.ObserveCall("list orders", 0, 10*time.Millisecond)
	m.ObserveCall("list orders", 200, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if _, err := fetchHistogramSum(mfs, "iotfarm_remote_api_request_duration_seconds", "status", "error"); err != nil {
		t.Fatalf("expected error-labelled sample: %v", err)
	}
	if _, err := fetchHistogramSum(mfs, "iotfarm_remote_api_request_duration_seconds", "status", "200"); err != nil {
		t.Fatalf("expected 200-labelled sample: %v", err)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var cron *CronJobMetrics
	cron.IncSuccess("x")
	var ac *AutoCancelMetrics
	ac.IncFired(AutoCancelDropped)
	NewRemoteAPIMetrics(nil).ObserveCall("x", 500, time.Second)
}
