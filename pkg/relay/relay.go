// Package relay wires detection, verification and normalization to the
// donation queue and leaderboard.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/inisipanji/sawebagi/pkg/donation"
	"github.com/inisipanji/sawebagi/pkg/storage"
	"github.com/rs/zerolog"
)

// Notifier is told about every donation after it has been stored.
type Notifier interface {
	Notify(rec storage.Record)
}

// Options configures a Relay.
type Options struct {
	Storage storage.Storage

	// Secrets holds the webhook secret per signing platform. A missing or
	// empty secret disables verification for that platform.
	Secrets map[donation.Platform]string

	// Notifier is optional.
	Notifier Notifier

	// Now defaults to time.Now.
	Now func() time.Time
}

// Inbound is one webhook call.
type Inbound struct {
	Body      []byte
	Headers   http.Header
	RequestID string
}

// Receipt acknowledges an accepted donation.
type Receipt struct {
	Platform donation.Platform
	Donator  string
}

// Relay ingests webhooks and serves the queue and leaderboard.
type Relay struct {
	store     storage.Storage
	verifiers map[donation.Platform]*donation.Verifier
	notifier  Notifier
	now       func() time.Time
}

// New creates a Relay.
func New(opts Options) (*Relay, error) {
	if opts.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	verifiers := make(map[donation.Platform]*donation.Verifier)
	for _, p := range donation.Platforms() {
		if p.SupportsSignature() {
			verifiers[p] = donation.NewVerifier(opts.Secrets[p])
		}
	}

	return &Relay{
		store:     opts.Storage,
		verifiers: verifiers,
		notifier:  opts.Notifier,
		now:       now,
	}, nil
}

// VerificationEnabled reports whether signatures from p are checked.
func (r *Relay) VerificationEnabled(p donation.Platform) bool {
	return r.verifiers[p].Enabled()
}

// Ingest validates a webhook and stores the donation. Client errors are
// returned as *Error and leave storage untouched. Storage errors are returned
// unchanged.
//
// The queue append and the leaderboard credit are two separate writes; if
// the second one fails the event stays queued without its credit.
func (r *Relay) Ingest(ctx context.Context, in Inbound) (Receipt, error) {
	logger := zerolog.Ctx(ctx)

	payload, err := donation.DecodePayload(in.Body)
	if err != nil {
		return Receipt{}, malformedPayload(err)
	}

	platform := donation.Detect(payload, in.Headers)
	if !platform.Known() {
		return Receipt{}, unknownPlatform()
	}

	if platform.SupportsSignature() {
		v := r.verifiers[platform]
		if v.Enabled() && !v.Verify(in.Body, in.Headers.Get(platform.SignatureHeader())) {
			return Receipt{}, invalidSignature(platform)
		}
	}

	ev, ok := donation.Normalize(payload, platform)
	if !ok {
		return Receipt{}, invalidData(platform, donation.ErrMissingDonator)
	}
	if err := ev.Validate(); err != nil {
		return Receipt{}, invalidData(platform, err)
	}
	score, err := ev.Score()
	if err != nil {
		return Receipt{}, invalidData(platform, err)
	}

	rec := storage.Record{
		Event:      *ev,
		Platform:   platform,
		RequestID:  in.RequestID,
		ReceivedAt: r.now().UTC(),
	}

	if err := r.store.Enqueue(ctx, rec); err != nil {
		return Receipt{}, err
	}
	if err := r.store.Credit(ctx, ev.Donator, score); err != nil {
		logger.Error().Err(err).
			Str("platform", string(platform)).
			Str("donator", ev.Donator).
			Msg("donation queued without leaderboard credit")
		return Receipt{}, err
	}

	if r.notifier != nil {
		r.notifier.Notify(rec)
	}

	return Receipt{Platform: platform, Donator: ev.Donator}, nil
}

// Poll pops the oldest pending donation. It returns nil, nil when the queue
// is empty.
func (r *Relay) Poll(ctx context.Context) (*donation.Event, error) {
	return r.store.Dequeue(ctx)
}

// Leaderboard returns every donor ever recorded, highest score first.
func (r *Relay) Leaderboard(ctx context.Context) ([]storage.LeaderboardEntry, error) {
	entries, err := r.store.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []storage.LeaderboardEntry{}
	}
	return entries, nil
}
