package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCronJobMetrics(t *testing.T) {
	m := NewCronJobMetrics(prometheus.NewRegistry())

	m.ObserveDuration("trending-score", 250*time.Millisecond)
	m.IncSuccess("trending-score")
	m.IncSuccess("trending-score")
	m.IncFailure("outbox-retention")
	m.IncSkipped("")

	if got := testutil.ToFloat64(m.success.WithLabelValues("trending-score")); got != 2 {
		t.Fatalf("success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("outbox-retention")); got != 1 {
		t.Fatalf("failure = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.skipped.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("empty skip reason should be labelled unknown, got %v", got)
	}
	if n := testutil.CollectAndCount(m.duration, "catalog_cron_job_duration_seconds"); n != 1 {
		t.Fatalf("expected one duration series, got %d", n)
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var cron *CronJobMetrics
	cron.IncSuccess("job")
	cron.IncSkipped("lock_held")
	NewCronJobMetrics(nil).ObserveDuration("job", time.Second)

	var catalog *CatalogMetrics
	catalog.ObserveValidation([]string{"title"})
	catalog.IncOutbox("product_created", "published")
	NewCatalogMetrics(nil).IncView(true)
}
