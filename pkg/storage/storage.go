package storage

import (
	"context"
	"time"

	"github.com/inisipanji/sawebagi/pkg/donation"
)

// Record is an accepted donation on its way to storage. Only Event is
// queued; the rest is kept by archiving backends.
type Record struct {
	Event      donation.Event
	Platform   donation.Platform
	RequestID  string
	ReceivedAt time.Time
}

// LeaderboardEntry is one donor and their cumulative amount.
type LeaderboardEntry struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// Stats describes the current size of the stores. Archived is -1 when no
// archive is configured.
type Stats struct {
	Pending  int64
	Donors   int64
	Archived int64
}

// Storage is the interface for the donation queue and leaderboard
type Storage interface {
	// Enqueue appends an event to the tail of the pending queue
	Enqueue(ctx context.Context, rec Record) error

	// Dequeue pops the oldest pending event, or returns nil when the queue is empty
	Dequeue(ctx context.Context) (*donation.Event, error)

	// Credit adds amount to the donator's leaderboard score
	Credit(ctx context.Context, donator string, amount float64) error

	// Leaderboard returns every donor, highest score first
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)

	// Stats returns queue and leaderboard sizes
	Stats(ctx context.Context) (Stats, error)

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close closes the storage connection
	Close() error
}
