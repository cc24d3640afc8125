package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartRecover/internal/domain"
)

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.ObserveProcessed(true)
	r.ObserveProcessed(false)
	r.ObserveError(domain.StageDebtorProcessing)
	r.ObserveBatch(20 * time.Millisecond)
	r.ObserveRun(domain.RunStatistics{Elapsed: 2 * time.Second, Indexed: 7})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.processed))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.highPriority))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.batches))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues(string(domain.StageDebtorProcessing))))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.runDuration))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.indexed))
}

func TestRecorderDoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilRecorderIsNoop(t *testing.T) {
	t.Parallel()

	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveProcessed(true)
		r.ObserveError(domain.StagePriorityCalculation)
		r.ObserveBatch(time.Second)
		r.ObserveRun(domain.RunStatistics{})
	})
}

func TestPush(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Contains(t, r.URL.Path, "/metrics/job/smartrecover")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	require.NoError(t, Push(context.Background(), server.URL, "smartrecover", reg))
	assert.Equal(t, 1, calls)

	require.NoError(t, Push(context.Background(), "", "smartrecover", reg))
	assert.Equal(t, 1, calls)
}
