package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
				}
			}
			if match {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.Row("included")
	r.Row("included")
	r.Row("excluded_nature")
	r.Classified("Serious")
	r.Resolution("fuzzy")
	r.Run("success", 2*time.Second)
	r.Upload("accepted")

	if got := counterValue(t, reg, "rwdash_rows_total", map[string]string{"outcome": "included"}); got != 2 {
		t.Errorf("rows included = %v, want 2", got)
	}
	if got := counterValue(t, reg, "rwdash_records_classified_total", map[string]string{"category": "Serious"}); got != 1 {
		t.Errorf("records Serious = %v, want 1", got)
	}
	if got := counterValue(t, reg, "rwdash_pipeline_runs_total", map[string]string{"status": "success"}); got != 1 {
		t.Errorf("runs success = %v, want 1", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Row("included")
	r.Classified("Research")
	r.Resolution("none")
	r.Run("failure", time.Second)
	r.Upload("rejected")
}
