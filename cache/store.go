// Package cache provides the content-addressed, two-tier store that makes
// repeated extraction incremental. Entries live in an LRU memory tier and a
// persisted tier partitioned by category; keys derive from a file's path,
// modification time, and size.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/minio/highwayhash"
)

// Category partitions cache entries by what they hold.
type Category string

const (
	CategoryRaw      Category = "raw"
	CategoryTree     Category = "tree"
	CategoryAnalysis Category = "analysis"
)

var categories = []Category{CategoryRaw, CategoryTree, CategoryAnalysis}

// Entry is one persisted cache record.
type Entry struct {
	Key       string          `json:"key"`
	Category  Category        `json:"category"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Key derives the content address for a file from its path, mtime, and size.
func Key(path string, modTime time.Time, size int64) (string, error) {
	hash, err := highwayhash.New64(hashKey)
	if err != nil {
		return "", err
	}
	payload := path + "|" + strconv.FormatInt(modTime.UnixNano(), 10) + "|" + strconv.FormatInt(size, 10)
	if _, err := hash.Write([]byte(payload)); err != nil {
		return "", err
	}
	sum := hash.Sum(nil)
	return hex.EncodeToString(sum), nil
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the refresh interval for one category.
func WithTTL(category Category, ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl[category] = ttl
	}
}

// WithMaxAge sets the global age bound past which entries are swept
// regardless of their TTL.
func WithMaxAge(maxAge time.Duration) Option {
	return func(s *Store) {
		s.maxAge = maxAge
	}
}

// WithMemoryEntries sets the capacity of the in-process tier.
func WithMemoryEntries(n int) Option {
	return func(s *Store) {
		s.memorySize = n
	}
}

// WithClock injects a time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is a two-tier content-addressed cache. It is safe for concurrent use
// by parallel extraction workers: the memory tier is a thread-safe LRU and
// persisted writes go through a temp file and an atomic rename, so a reader
// never observes a half-written entry.
type Store struct {
	dir        string
	ttl        map[Category]time.Duration
	maxAge     time.Duration
	memorySize int
	memory     *lru.Cache[string, *Entry]
	now        func() time.Time
}

// NewStore creates a cache rooted at dir, creating the category
// subdirectories as needed.
func NewStore(dir string, options ...Option) (*Store, error) {
	store := &Store{
		dir: dir,
		ttl: map[Category]time.Duration{
			CategoryRaw:      time.Hour,
			CategoryTree:     time.Hour,
			CategoryAnalysis: 24 * time.Hour,
		},
		maxAge:     7 * 24 * time.Hour,
		memorySize: 2048,
		now:        time.Now,
	}
	for _, option := range options {
		option(store)
	}
	memory, err := lru.New[string, *Entry](store.memorySize)
	if err != nil {
		return nil, err
	}
	store.memory = memory
	for _, category := range categories {
		if err := os.MkdirAll(filepath.Join(dir, string(category)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
	}
	return store, nil
}

// Get returns the payload for a key, treating expired, corrupt, or
// partially-written entries as misses. Corrupt entries are deleted.
func (s *Store) Get(category Category, key string) ([]byte, bool) {
	memoryKey := string(category) + "/" + key
	if entry, ok := s.memory.Get(memoryKey); ok {
		if s.expired(entry) {
			s.memory.Remove(memoryKey)
			if s.sweepable(entry) {
				s.removeFile(category, key)
			}
			return nil, false
		}
		return entry.Payload, true
	}

	data, err := os.ReadFile(s.entryPath(category, key))
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Key != key {
		// Corruption on read: delete rather than propagate.
		s.removeFile(category, key)
		return nil, false
	}
	if s.expired(&entry) {
		if s.sweepable(&entry) {
			s.removeFile(category, key)
		}
		return nil, false
	}
	s.memory.Add(memoryKey, &entry)
	return entry.Payload, true
}

// Set creates or refreshes an entry in both tiers.
func (s *Store) Set(category Category, key string, payload []byte) error {
	now := s.now()
	entry := &Entry{
		Key:       key,
		Category:  category,
		Payload:   json.RawMessage(payload),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl[category]),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	target := s.entryPath(category, key)
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+key+"-*")
	if err != nil {
		return fmt.Errorf("failed to stage cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to publish cache entry: %w", err)
	}
	s.memory.Add(string(category)+"/"+key, entry)
	return nil
}

// Invalidate removes an entry from both tiers.
func (s *Store) Invalidate(category Category, key string) {
	s.memory.Remove(string(category) + "/" + key)
	s.removeFile(category, key)
}

// Sweep deletes every persisted entry past both its expiry and the global
// max age, along with any entry that no longer decodes.
func (s *Store) Sweep() error {
	for _, category := range categories {
		dir := filepath.Join(s.dir, string(category))
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, dirEntry := range entries {
			if dirEntry.IsDir() {
				continue
			}
			path := filepath.Join(dir, dirEntry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			var entry Entry
			if err := json.Unmarshal(data, &entry); err != nil {
				os.Remove(path)
				continue
			}
			if s.sweepable(&entry) {
				s.memory.Remove(string(category) + "/" + entry.Key)
				os.Remove(path)
			}
		}
	}
	return nil
}

// Purge drops both tiers entirely.
func (s *Store) Purge() error {
	s.memory.Purge()
	for _, category := range categories {
		dir := filepath.Join(s.dir, string(category))
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// expired reports whether an entry no longer serves reads: its TTL elapsed
// or it outlived the global max age.
func (s *Store) expired(entry *Entry) bool {
	now := s.now()
	return now.After(entry.ExpiresAt) || now.After(entry.CreatedAt.Add(s.maxAge))
}

// sweepable reports whether an entry's backing file may be deleted:
// now > max(expiresAt, createdAt+maxAge).
func (s *Store) sweepable(entry *Entry) bool {
	deadline := entry.ExpiresAt
	if ageLimit := entry.CreatedAt.Add(s.maxAge); ageLimit.After(deadline) {
		deadline = ageLimit
	}
	return s.now().After(deadline)
}

func (s *Store) entryPath(category Category, key string) string {
	return filepath.Join(s.dir, string(category), key+".json")
}

func (s *Store) removeFile(category Category, key string) {
	os.Remove(s.entryPath(category, key))
}
