package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/inisipanji/sawebagi/pkg/donation"
)

// MemoryStorage implements Storage in process memory. Each method holds the
// lock for its whole body, matching the per-command atomicity of Redis.
// Intended for tests and local development.
type MemoryStorage struct {
	mu     sync.Mutex
	queue  [][]byte
	scores map[string]float64
	closed bool
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{scores: make(map[string]float64)}
}

func (m *MemoryStorage) Enqueue(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec.Event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.queue = append(m.queue, data)
	return nil
}

func (m *MemoryStorage) Dequeue(ctx context.Context) (*donation.Event, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, errClosed
	}
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return nil, nil
	}
	data := m.queue[0]
	m.queue[0] = nil
	m.queue = m.queue[1:]
	m.mu.Unlock()

	return decodeEvent(data)
}

func (m *MemoryStorage) Credit(ctx context.Context, donator string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.scores[donator] += amount
	return nil
}

// Leaderboard orders ties by member descending, as ZREVRANGE does
func (m *MemoryStorage) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errClosed
	}

	entries := make([]LeaderboardEntry, 0, len(m.scores))
	for member, score := range m.scores {
		entries = append(entries, LeaderboardEntry{Member: member, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Member > entries[j].Member
	})
	return entries, nil
}

func (m *MemoryStorage) Stats(ctx context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Stats{}, errClosed
	}
	return Stats{
		Pending:  int64(len(m.queue)),
		Donors:   int64(len(m.scores)),
		Archived: -1,
	}, nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	return nil
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
