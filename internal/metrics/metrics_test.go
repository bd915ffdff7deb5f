package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRegistryIsIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Same(t, first, GetRegistry())
}

func TestRecordRunCountsAndTimes(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("analyze", "success"))

	RecordRun("analyze", "success", 0.42)

	after := testutil.ToFloat64(RunsTotal.WithLabelValues("analyze", "success"))
	assert.Equal(t, before+1, after)
}

func TestCounters(t *testing.T) {
	InitRegistry()

	written := testutil.ToFloat64(SnapshotsWrittenTotal)
	RecordSnapshotWritten()
	assert.Equal(t, written+1, testutil.ToFloat64(SnapshotsWrittenTotal))

	deduped := testutil.ToFloat64(SnapshotsDedupedTotal)
	RecordSnapshotDeduped()
	assert.Equal(t, deduped+1, testutil.ToFloat64(SnapshotsDedupedTotal))

	retries := testutil.ToFloat64(StoreRetriesTotal)
	RecordStoreRetry()
	assert.Equal(t, retries+1, testutil.ToFloat64(StoreRetriesTotal))
}

func TestGauges(t *testing.T) {
	InitRegistry()

	UpdateCohortSize("NCAAB", 1234)
	assert.Equal(t, 1234.0, testutil.ToFloat64(LastCohortSize.WithLabelValues("NCAAB")))

	RecordSweep(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(SnapshotsSweptTotal))
}

func TestHandlerServesRegistry(t *testing.T) {
	assert.NotNil(t, Handler())
}
