// Package sharecache is the ephemeral server-side store behind share links:
// an in-memory map from opaque IDs to JSON blobs with TTL expiry and
// LRU eviction at capacity. Nothing here survives a process restart, and
// that is accepted behavior.
package sharecache

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const (
	DefaultTTL           = 30 * time.Minute
	DefaultMaxEntries    = 10000
	DefaultMaxEntryBytes = 5 << 20

	// Entries at or above this size are stored zstd-compressed.
	compressThreshold = 1 << 10
)

var ErrEntryTooLarge = errors.New("cache entry exceeds maximum size")

type entry struct {
	data       []byte
	compressed bool

	createdAt      time.Time
	expiresAt      time.Time
	lastAccessedAt time.Time
	accessCount    int64

	// rawSize is the uncompressed byte length, kept for stats.
	rawSize int
}

type Config struct {
	TTL           time.Duration
	MaxEntries    int
	MaxEntryBytes int

	// Now is the clock; tests override it. Defaults to time.Now.
	Now func() time.Time
}

// Cache must tolerate concurrent calls from in-flight requests, so every
// operation holds the mutex for its full critical section.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry

	ttl           time.Duration
	maxEntries    int
	maxEntryBytes int
	now           func() time.Time

	enc *zstd.Encoder
	dec *zstd.Decoder
}

func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.MaxEntryBytes <= 0 {
		cfg.MaxEntryBytes = DefaultMaxEntryBytes
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	// Options are static, so these cannot fail.
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		panic(err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}

	return &Cache{
		entries:       map[string]*entry{},
		ttl:           cfg.TTL,
		maxEntries:    cfg.MaxEntries,
		maxEntryBytes: cfg.MaxEntryBytes,
		now:           cfg.Now,
		enc:           enc,
		dec:           dec,
	}
}

// Store inserts json under a fresh random ID and returns the ID. Oversized
// payloads fail before anything is touched.
func (c *Cache) Store(json string) (string, error) {
	if len(json) > c.maxEntryBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrEntryTooLarge, len(json), c.maxEntryBytes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	id := uuid.NewString()
	c.entries[id] = c.newEntry(json)
	return id, nil
}

// Update overwrites the entry under id and resets its expiry. An unknown id
// is treated as a fresh store under that ID rather than an error.
func (c *Cache) Update(id, json string) error {
	if len(json) > c.maxEntryBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrEntryTooLarge, len(json), c.maxEntryBytes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	c.entries[id] = c.newEntry(json)
	return nil
}

// Get returns the stored JSON and true on a hit. Expired entries are deleted
// on the way out (lazy expiry) and reported as misses.
func (c *Cache) Get(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return "", false
	}
	now := c.now()
	if !e.expiresAt.After(now) {
		delete(c.entries, id)
		return "", false
	}

	e.accessCount++
	e.lastAccessedAt = now

	if !e.compressed {
		return string(e.data), true
	}
	raw, err := c.dec.DecodeAll(e.data, nil)
	if err != nil {
		// A corrupt entry is useless; drop it and miss.
		delete(c.entries, id)
		return "", false
	}
	return string(raw), true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) newEntry(json string) *entry {
	now := c.now()
	e := &entry{
		createdAt:      now,
		expiresAt:      now.Add(c.ttl),
		lastAccessedAt: now,
		rawSize:        len(json),
	}
	if len(json) >= compressThreshold {
		e.data = c.enc.EncodeAll([]byte(json), nil)
		e.compressed = true
	} else {
		e.data = []byte(json)
	}
	return e
}

// cleanupLocked drops expired entries, then evicts the least recently
// accessed entries until the cache is back at capacity. Callers hold c.mu.
func (c *Cache) cleanupLocked() {
	now := c.now()
	for id, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, id)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	type idAccess struct {
		id       string
		accessed time.Time
	}
	byAccess := make([]idAccess, 0, len(c.entries))
	for id, e := range c.entries {
		byAccess = append(byAccess, idAccess{id: id, accessed: e.lastAccessedAt})
	}
	sort.Slice(byAccess, func(i, j int) bool {
		return byAccess[i].accessed.Before(byAccess[j].accessed)
	})
	for _, ia := range byAccess[:len(c.entries)-c.maxEntries] {
		delete(c.entries, ia.id)
	}
}

type EntryStats struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	AccessCount int64     `json:"accessCount"`
	JSONSize    int       `json:"jsonSize"`
}

type Stats struct {
	Size    int          `json:"size"`
	MaxSize int          `json:"maxSize"`
	Entries []EntryStats `json:"entries"`
}

// Stats reports the cache contents for monitoring. It runs cleanup first so
// the numbers reflect live entries only.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	s := Stats{Size: len(c.entries), MaxSize: c.maxEntries}
	for id, e := range c.entries {
		s.Entries = append(s.Entries, EntryStats{
			ID:          id,
			CreatedAt:   e.createdAt,
			ExpiresAt:   e.expiresAt,
			AccessCount: e.accessCount,
			JSONSize:    e.rawSize,
		})
	}
	sort.Slice(s.Entries, func(i, j int) bool { return s.Entries[i].ID < s.Entries[j].ID })
	return s
}
