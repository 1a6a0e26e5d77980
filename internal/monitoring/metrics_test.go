package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecorders(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	defer m.Close()

	m.RecordGeneration(3, false, 10*time.Millisecond)
	m.RecordGeneration(0, true, time.Millisecond)
	m.RecordBridgeRequest(200)
	m.RecordBridgeRequest(404)
	m.RecordOverlayOp("insert", nil)
	m.RecordOverlayOp("commit", errors.New("boom"))
	m.SetHandlesLive(5)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("rendered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("placeholder")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RewritesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BridgeRequests.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BridgeRequests.WithLabelValues("404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OverlayOps.WithLabelValues("insert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OverlayOps.WithLabelValues("commit", "error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.HandlesLive))
}

func TestMetricsCloseStopsUptimeTicker(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.Close()
	m.Close() // idempotent

	// a ticker loop started after Close must return immediately
	done := make(chan struct{})
	go func() {
		m.updateUptime()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("uptime ticker loop did not exit after Close")
	}
}
