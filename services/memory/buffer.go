// Package memory keeps a bounded, ordered log of recent interaction entries
// per user. The joined log is fed back into generation calls so puzzles,
// hints, and verdicts stay coherent across one solving session.
package memory

import (
	"strings"
	"sync"
)

// DefaultCapacity bounds the number of entries retained per user.
const DefaultCapacity = 500

const shardCount = 16

// Buffer stores per-user entry logs with FIFO eviction past capacity.
// Access is sharded by user ID so unrelated users never contend on one lock.
type Buffer struct {
	capacity int
	shards   [shardCount]bufferShard
}

type bufferShard struct {
	mu      sync.Mutex
	entries map[int64][]string
}

// NewBuffer creates a Buffer. A non-positive capacity falls back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Buffer{capacity: capacity}
	for i := range b.shards {
		b.shards[i].entries = make(map[int64][]string)
	}
	return b
}

func (b *Buffer) shard(userID int64) *bufferShard {
	return &b.shards[uint64(userID)%shardCount]
}

// Append adds an entry to the end of the user's log, creating the log on
// first use and evicting the oldest entry once capacity is exceeded.
func (b *Buffer) Append(userID int64, entry string) {
	s := b.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	log := append(s.entries[userID], entry)
	if len(log) > b.capacity {
		log = log[len(log)-b.capacity:]
	}
	s.entries[userID] = log
}

// Read returns all entries joined with newlines in insertion order,
// or an empty string when the user has no log.
func (b *Buffer) Read(userID int64) string {
	s := b.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.entries[userID]
	if !ok {
		return ""
	}
	return strings.Join(log, "\n")
}

// Len reports the current number of entries for the user.
func (b *Buffer) Len(userID int64) int {
	s := b.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries[userID])
}

// Clear removes the user's log entirely. Clearing an absent log is a no-op.
func (b *Buffer) Clear(userID int64) {
	s := b.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}
