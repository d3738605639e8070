package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inforoute-cli/internal/adapter"
	"github.com/sells-group/inforoute-cli/internal/fusion"
)

var clock = time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC)

func sampleStats() []fusion.SourceStats {
	return []fusion.SourceStats{
		{Key: "cd35", Received: 10, Accepted: 8, Rejected: map[adapter.Reason]int{adapter.ReasonNoGeometry: 2}},
		{Key: "cd44", Rejected: map[adapter.Reason]int{}, FetchErr: errors.New("http 500")},
	}
}

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder(WithClock(func() time.Time { return clock }))
	r.ObserveRun(sampleStats(), 8, 1500*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.runs))
	assert.Equal(t, float64(10), testutil.ToFloat64(r.received.WithLabelValues("cd35")))
	assert.Equal(t, float64(2), testutil.ToFloat64(r.rejected.WithLabelValues("cd35", "no_geometry")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.fetchFailures.WithLabelValues("cd44")))
	assert.Equal(t, float64(8), testutil.ToFloat64(r.features.WithLabelValues("cd35")))
	assert.Equal(t, float64(0), testutil.ToFloat64(r.features.WithLabelValues("cd44")))
	assert.Equal(t, float64(0), testutil.ToFloat64(r.lastSuccess))
	assert.Equal(t, 1, testutil.CollectAndCount(r.runDuration))
}

func TestRecorder_ObserveWrite(t *testing.T) {
	r := NewRecorder(WithClock(func() time.Time { return clock }))

	r.ObserveWrite(errors.New("disk full"))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.writeFailures))
	assert.Equal(t, float64(0), testutil.ToFloat64(r.lastSuccess))

	r.ObserveWrite(nil)
	assert.Equal(t, float64(1), testutil.ToFloat64(r.writeFailures))
	assert.Equal(t, float64(clock.Unix()), testutil.ToFloat64(r.lastSuccess))
}

func TestRecorder_WithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(WithRegistry(reg))
	r.ObserveRun(sampleStats(), 8, time.Second)

	n, err := testutil.GatherAndCount(reg, "inforoute_fusion_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Panics(t, func() { NewRecorder(WithRegistry(reg)) })
}

func TestRecorder_CountersAccumulateGaugesReset(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun(sampleStats(), 8, time.Second)

	next := sampleStats()
	next[0].Received, next[0].Accepted = 3, 3
	next[0].Rejected = map[adapter.Reason]int{}
	r.ObserveRun(next, 3, time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.runs))
	assert.Equal(t, float64(13), testutil.ToFloat64(r.received.WithLabelValues("cd35")))
	assert.Equal(t, float64(3), testutil.ToFloat64(r.features.WithLabelValues("cd35")))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun(sampleStats(), 8, time.Second)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `inforoute_fusion_records_rejected_total{reason="no_geometry",source="cd35"} 2`)
	assert.Contains(t, string(body), "inforoute_fusion_run_duration_seconds_count 1")
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	// Two recorders must not collide on registration.
	assert.NotPanics(t, func() {
		NewRecorder()
		NewRecorder()
	})
}
