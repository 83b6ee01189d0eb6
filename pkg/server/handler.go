package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/inisipanji/sawebagi/pkg/relay"
	"github.com/inisipanji/sawebagi/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 256 * 1024

// HandlerOptions configures the HTTP surface.
type HandlerOptions struct {
	Relay   *relay.Relay
	Storage storage.Storage
	Metrics *Metrics

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Logger is attached to every request context.
	Logger zerolog.Logger

	// Debug logs headers and bodies of incoming requests.
	Debug bool
}

type handler struct {
	relay   *relay.Relay
	store   storage.Storage
	metrics *Metrics
	logger  zerolog.Logger
	debug   bool
}

type errorResponse struct {
	Error string `json:"error"`
}

type ingestResponse struct {
	Status   string `json:"status"`
	Platform string `json:"platform"`
	Donator  string `json:"donator"`
}

// NewHandler builds the routes: the webhook/poll endpoint, the leaderboard,
// health, metrics and the homepage.
func NewHandler(opts HandlerOptions) http.Handler {
	h := &handler{
		relay:   opts.Relay,
		store:   opts.Storage,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		debug:   opts.Debug,
	}

	mux := http.NewServeMux()
	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/api", h.handleDonations)
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Show homepage for GET requests to root path
		if r.Method == http.MethodGet && r.URL.Path == "/" {
			handleHomepage(w, r)
			return
		}
		http.NotFound(w, r)
	})

	return h.withRequestContext(mux)
}

// withRequestContext tags the request with an id and a logger carrying it
func (h *handler) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := requestID(r)
		w.Header().Set("X-Request-Id", reqID)

		logger := h.logger.With().Str("request_id", reqID).Logger()
		if h.debug {
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Interface("headers", r.Header).
				Msg("incoming request")
		}

		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

// handleDonations accepts webhooks on POST and serves the queue on GET
func (h *handler) handleDonations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleWebhook(w, r)
	case http.MethodGet:
		h.handlePoll(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleWebhook processes incoming donation webhooks
func (h *handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	body, err := readBody(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		logger.Warn().Err(err).Msg("failed to read webhook body")
		writeJSON(w, status, errorResponse{Error: "Failed to read request body"})
		return
	}

	if h.debug {
		logger.Debug().Str("body", string(body)).Msg("webhook body")
	}

	receipt, err := h.relay.Ingest(ctx, relay.Inbound{
		Body:      body,
		Headers:   r.Header,
		RequestID: w.Header().Get("X-Request-Id"),
	})
	if err != nil {
		platform := relay.PlatformOf(err)
		reason := relay.Reason(err)
		h.metrics.RecordIngest(string(platform), reason, time.Since(start))

		status := relay.StatusCode(err)
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(err).Str("platform", string(platform)).Str("reason", reason).Msg("webhook rejected")

		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	h.metrics.RecordIngest(string(receipt.Platform), relay.Reason(nil), time.Since(start))
	logger.Info().
		Str("platform", string(receipt.Platform)).
		Str("donator", receipt.Donator).
		Msg("donation received")

	writeJSON(w, http.StatusOK, ingestResponse{
		Status:   "ok",
		Platform: string(receipt.Platform),
		Donator:  receipt.Donator,
	})
}

// handlePoll hands out the oldest pending donation, or null
func (h *handler) handlePoll(w http.ResponseWriter, r *http.Request) {
	ev, err := h.relay.Poll(r.Context())
	if err != nil {
		h.metrics.RecordPoll("error")
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to poll donation queue")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if ev == nil {
		h.metrics.RecordPoll("empty")
		writeJSON(w, http.StatusOK, nil)
		return
	}

	h.metrics.RecordPoll("event")
	writeJSON(w, http.StatusOK, ev)
}

// handleLeaderboard returns every donor, highest total first
func (h *handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.relay.Leaderboard(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to read leaderboard")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Correlation-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

// writeJSON writes a JSON response with proper headers
func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}
