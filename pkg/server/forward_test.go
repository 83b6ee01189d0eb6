package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/inisipanji/sawebagi/pkg/donation"
	"github.com/inisipanji/sawebagi/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwarder_Notify(t *testing.T) {
	var (
		mu       sync.Mutex
		received []donation.Event
		headers  []http.Header
	)
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var ev donation.Event
		_ = json.Unmarshal(body, &ev)
		mu.Lock()
		received = append(received, ev)
		headers = append(headers, r.Header.Clone())
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer target.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	reg := prometheus.NewRegistry()
	f := NewForwarder([]string{target.URL, failing.URL}, NewMetrics(reg, "test"))
	f.Notify(storage.Record{
		Event:     donation.Event{Donator: "Budi", Amount: "50000", Message: "gg"},
		Platform:  donation.PlatformSaweria,
		RequestID: "req-1",
	})
	f.Wait()

	require.Len(t, received, 1)
	assert.Equal(t, donation.Event{Donator: "Budi", Amount: "50000", Message: "gg"}, received[0])
	assert.Equal(t, "saweria", headers[0].Get("X-Donation-Platform"))
	assert.Equal(t, "req-1", headers[0].Get("X-Request-Id"))
	assert.Equal(t, "application/json", headers[0].Get("Content-Type"))

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "test_forwards_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"true": 1, "false": 1}, counts)
}

func TestForwarder_UnreachableTarget(t *testing.T) {
	f := NewForwarder([]string{"http://127.0.0.1:1/hook"}, nil)
	f.Notify(storage.Record{Event: donation.Event{Donator: "Budi", Amount: "1"}})
	f.Wait()
}
