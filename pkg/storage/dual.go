package storage

import (
	"context"

	"github.com/inisipanji/sawebagi/pkg/donation"
	"github.com/rs/zerolog/log"
)

// Archiver keeps a copy of every accepted donation
type Archiver interface {
	Archive(ctx context.Context, rec Record) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

// DualStorage serves the queue and leaderboard from a primary Storage and
// mirrors every enqueued record into an Archiver
type DualStorage struct {
	primary Storage
	archive Archiver
}

// NewDualStorage creates a new dual storage backend (Redis + MongoDB)
func NewDualStorage(primary Storage, archive Archiver) *DualStorage {
	return &DualStorage{
		primary: primary,
		archive: archive,
	}
}

// Enqueue queues in the primary storage and archives the record
func (d *DualStorage) Enqueue(ctx context.Context, rec Record) error {
	// Store in primary first
	if err := d.primary.Enqueue(ctx, rec); err != nil {
		return err
	}

	// Archive failures are logged, the donation is already queued
	if err := d.archive.Archive(ctx, rec); err != nil {
		log.Warn().Err(err).Str("donator", rec.Event.Donator).Msg("failed to archive donation")
	}

	return nil
}

func (d *DualStorage) Dequeue(ctx context.Context) (*donation.Event, error) {
	return d.primary.Dequeue(ctx)
}

func (d *DualStorage) Credit(ctx context.Context, donator string, amount float64) error {
	return d.primary.Credit(ctx, donator, amount)
}

func (d *DualStorage) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	return d.primary.Leaderboard(ctx)
}

// Stats returns the primary stats with the archive count filled in
func (d *DualStorage) Stats(ctx context.Context) (Stats, error) {
	stats, err := d.primary.Stats(ctx)
	if err != nil {
		return stats, err
	}
	count, err := d.archive.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to count archived donations")
		return stats, nil
	}
	stats.Archived = count
	return stats, nil
}

func (d *DualStorage) Ping(ctx context.Context) error {
	return d.primary.Ping(ctx)
}

// Close closes both storage connections
func (d *DualStorage) Close() error {
	// Close both connections, log errors but continue
	var primaryErr, archiveErr error

	if err := d.primary.Close(); err != nil {
		log.Error().Err(err).Msg("error closing primary storage")
		primaryErr = err
	}

	if err := d.archive.Close(); err != nil {
		log.Error().Err(err).Msg("error closing archive storage")
		archiveErr = err
	}

	// Return the first error encountered
	if primaryErr != nil {
		return primaryErr
	}
	return archiveErr
}
