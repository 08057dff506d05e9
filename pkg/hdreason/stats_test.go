package hdreason

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatsCollectorReportsLiveCounters(t *testing.T) {
	sess := newTestSession(t)
	sess.Learn("isA socrates Human")
	sess.stats.Queries = 3
	sess.stats.Proofs = 1

	collector := NewStatsCollector(sess)
	if count := testutil.CollectAndCount(collector); count == 0 {
		t.Fatal("expected the collector to emit at least one metric")
	}
}

func TestStatsCollectorReflectsLiveMutations(t *testing.T) {
	sess := newTestSession(t)
	collector := NewStatsCollector(sess)

	before := testutil.CollectAndCount(collector)
	sess.stats.MethodCounts["directMatch"] = 1
	after := testutil.CollectAndCount(collector)

	if after <= before {
		t.Fatal("expected a new method-count label to add a distinct metric series on the next scrape")
	}
}
