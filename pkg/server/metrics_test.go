package server

import (
	"context"
	"testing"
	"time"

	"github.com/inisipanji/sawebagi/pkg/donation"
	"github.com/inisipanji/sawebagi/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordIngest("saweria", "ok", time.Millisecond)
	m.RecordPoll("empty")
	m.RecordForward(true)
	m.SetStats(storage.Stats{})
}

func TestUpdateMetricsOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, record("Budi")))
	require.NoError(t, store.Enqueue(ctx, record("Siti")))
	require.NoError(t, store.Credit(ctx, "Budi", 10))

	updateMetricsOnce(ctx, store, metrics)

	assert.Equal(t, 2.0, gaugeValue(t, reg, "test_pending_events"))
	assert.Equal(t, 1.0, gaugeValue(t, reg, "test_leaderboard_donors"))
	assert.Equal(t, -1.0, gaugeValue(t, reg, "test_archived_events"))
}

func TestUpdateMetrics_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		updateMetrics(ctx, storage.NewMemoryStorage(), NewMetrics(prometheus.NewRegistry(), "test"), time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("updateMetrics did not stop")
	}
}

func record(donator string) storage.Record {
	return storage.Record{Event: donation.Event{Donator: donator, Amount: "1"}}
}
