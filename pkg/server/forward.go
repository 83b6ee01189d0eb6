package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/inisipanji/sawebagi/pkg/storage"
	"github.com/rs/zerolog/log"
)

// Forwarder posts every accepted donation to a fixed set of targets. It
// implements relay.Notifier.
type Forwarder struct {
	targets []string
	client  *http.Client
	metrics *Metrics
	wg      sync.WaitGroup
}

// NewForwarder creates a forwarder for targets
func NewForwarder(targets []string, metrics *Metrics) *Forwarder {
	return &Forwarder{
		targets: targets,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		metrics: metrics,
	}
}

// Notify forwards the donation to all targets in the background
func (f *Forwarder) Notify(rec storage.Record) {
	body, err := json.Marshal(rec.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode donation for forwarding")
		return
	}

	for _, target := range f.targets {
		f.wg.Add(1)
		go func(url string) {
			defer f.wg.Done()
			f.forward(url, body, rec)
		}(target)
	}
}

// Wait blocks until in-flight forwards are done
func (f *Forwarder) Wait() {
	f.wg.Wait()
}

func (f *Forwarder) forward(url string, body []byte, rec storage.Record) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Str("target", url).Msg("failed to create forward request")
		f.metrics.RecordForward(false)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Donation-Platform", string(rec.Platform))
	if rec.RequestID != "" {
		req.Header.Set("X-Request-Id", rec.RequestID)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("target", url).Msg("failed to forward donation")
		f.metrics.RecordForward(false)
		return
	}
	defer resp.Body.Close()

	ok := resp.StatusCode < 300
	f.metrics.RecordForward(ok)
	log.Info().
		Str("target", url).
		Int("status", resp.StatusCode).
		Str("request_id", rec.RequestID).
		Msg("forwarded donation")
}
