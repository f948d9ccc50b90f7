package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsServed.WithLabelValues("content", "ok"))
	ObserveRecommendation("content", "ok", time.Now())
	after := testutil.ToFloat64(RecommendationsServed.WithLabelValues("content", "ok"))

	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}

func TestRecordSnapshot(t *testing.T) {
	RecordSnapshot(7, 3, 10, 25, 50*time.Millisecond)

	if got := testutil.ToFloat64(SnapshotVersion); got != 7 {
		t.Errorf("SnapshotVersion = %v, want 7", got)
	}
	if got := testutil.ToFloat64(SnapshotSize.WithLabelValues("ratings")); got != 25 {
		t.Errorf("ratings size = %v, want 25", got)
	}
}
