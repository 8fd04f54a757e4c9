package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is the uniform lifetime of every cached report. No sliding
// expiration, no per-entry override.
const DefaultTTL = 600 * time.Second

// Backend is the minimal contract a cache store has to meet. Backends are not
// required to support key enumeration; the per-user bookkeeping lives in
// ReportCache.
type Backend interface {
	Get(key string) (any, bool, error)
	Set(key string, value any, ttl time.Duration) error
	Delete(key string) error
	Flush() error
}

type memoryBackend struct {
	c *gocache.Cache
}

// NewMemoryBackend returns an in-process Backend with background expiry.
func NewMemoryBackend() Backend {
	return &memoryBackend{c: gocache.New(DefaultTTL, 2*DefaultTTL)}
}

func (m *memoryBackend) Get(key string) (any, bool, error) {
	v, ok := m.c.Get(key)
	return v, ok, nil
}

func (m *memoryBackend) Set(key string, value any, ttl time.Duration) error {
	m.c.Set(key, value, ttl)
	return nil
}

func (m *memoryBackend) Delete(key string) error {
	m.c.Delete(key)
	return nil
}

func (m *memoryBackend) Flush() error {
	m.c.Flush()
	return nil
}

// ReportCache memoizes generated reports keyed by a digest of the full
// request. Because a backend may not enumerate keys, it maintains a side
// index of issued keys per user so invalidation can stay coarse: everything
// for one user, or everything.
type ReportCache struct {
	backend Backend
	ttl     time.Duration

	mu    sync.Mutex
	index map[string]map[string]struct{} // userID -> issued keys
}

func New(backend Backend, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReportCache{
		backend: backend,
		ttl:     ttl,
		index:   make(map[string]map[string]struct{}),
	}
}

func (rc *ReportCache) TTL() time.Duration {
	return rc.ttl
}

// Key derives the deterministic digest for a report request. The filters
// value must serialize identically for equal filter sets (ID slices are
// sorted during normalization).
func (rc *ReportCache) Key(userID, reportType string, filters any, visualization string) (string, error) {
	payload := struct {
		UserID        string `json:"user_id"`
		ReportType    string `json:"report_type"`
		Filters       any    `json:"filters"`
		Visualization string `json:"visualization"`
	}{userID, reportType, filters, visualization}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal cache key payload: %w", err)
	}
	sum := sha256.Sum256(raw)
	return "report:" + hex.EncodeToString(sum[:]), nil
}

func (rc *ReportCache) Get(key string) (any, bool, error) {
	return rc.backend.Get(key)
}

func (rc *ReportCache) Has(key string) (bool, error) {
	_, ok, err := rc.backend.Get(key)
	return ok, err
}

// Put writes the value through to the backend and records the key in the
// user's index.
func (rc *ReportCache) Put(userID, key string, value any) error {
	if err := rc.backend.Set(key, value, rc.ttl); err != nil {
		return err
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	keys, ok := rc.index[userID]
	if !ok {
		keys = make(map[string]struct{})
		rc.index[userID] = keys
	}
	keys[key] = struct{}{}
	return nil
}

func (rc *ReportCache) Forget(userID, key string) error {
	rc.mu.Lock()
	if keys, ok := rc.index[userID]; ok {
		delete(keys, key)
	}
	rc.mu.Unlock()
	return rc.backend.Delete(key)
}

// InvalidateUser drops every cached report issued for one user.
func (rc *ReportCache) InvalidateUser(userID string) error {
	rc.mu.Lock()
	keys := rc.index[userID]
	delete(rc.index, userID)
	rc.mu.Unlock()

	for key := range keys {
		if err := rc.backend.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateAll drops every cached report system-wide.
func (rc *ReportCache) InvalidateAll() error {
	rc.mu.Lock()
	rc.index = make(map[string]map[string]struct{})
	rc.mu.Unlock()
	return rc.backend.Flush()
}
