package smpp

import (
	"sync"
	"time"
)

// defaultCorrelatorTTL matches spec.md's 900s default.
const defaultCorrelatorTTL = 900 * time.Second

// correlationEntry is what Correlator stores per outstanding sequence number.
type correlationEntry struct {
	logID        string
	hookMetadata string
	storedAt     time.Time
}

// Correlator remembers the (log_id, hook_metadata) an application attached
// to an outbound request, so that when the response echoes the
// sequence_number the application can be notified with the same
// identifiers. Entries older than MaxTTL are swept on every Put/Get.
type Correlator interface {
	Put(sequenceNumber uint32, logID, hookMetadata string)
	// Get returns ("", "") if there is no entry for sequenceNumber.
	Get(sequenceNumber uint32) (logID, hookMetadata string)
}

// MemoryCorrelator is the default in-memory Correlator. Mutex-guarded: the
// dequeue goroutine calls Put, the receive goroutine calls Get, and Go's
// runtime schedules both preemptively (unlike the single-threaded
// event-loop reference this core follows in spirit).
type MemoryCorrelator struct {
	mu     sync.Mutex
	store  map[uint32]correlationEntry
	maxTTL time.Duration
}

// NewCorrelator returns a MemoryCorrelator with the given TTL. A zero TTL
// selects the spec default of 900 seconds.
func NewCorrelator(maxTTL time.Duration) *MemoryCorrelator {
	if maxTTL <= 0 {
		maxTTL = defaultCorrelatorTTL
	}
	return &MemoryCorrelator{
		store:  make(map[uint32]correlationEntry),
		maxTTL: maxTTL,
	}
}

// Put inserts the entry and sweeps expired entries.
func (c *MemoryCorrelator) Put(sequenceNumber uint32, logID, hookMetadata string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[sequenceNumber] = correlationEntry{
		logID:        logID,
		hookMetadata: hookMetadata,
		storedAt:     time.Now(),
	}
	c.gc()
}

// Get returns the correlated identifiers without removing the entry
// (spec.md leaves whether to remove on first Get as a library choice; this
// implementation keeps it, so duplicate responses for the same
// sequence_number both resolve).
func (c *MemoryCorrelator) Get(sequenceNumber uint32) (logID, hookMetadata string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[sequenceNumber]
	c.gc()
	if !ok {
		return "", ""
	}
	return entry.logID, entry.hookMetadata
}

// gc sweeps entries older than maxTTL. Callers must hold c.mu.
func (c *MemoryCorrelator) gc() {
	now := time.Now()
	for seq, entry := range c.store {
		if now.Sub(entry.storedAt) > c.maxTTL {
			delete(c.store, seq)
		}
	}
}

// Len reports the number of live entries, mostly useful for tests asserting
// the bounded-memory invariant.
func (c *MemoryCorrelator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}
