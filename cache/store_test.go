package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	modTime := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	key1, err := Key("src/routes/users.js", modTime, 2048)
	assert.NoError(t, err)
	key2, err := Key("src/routes/users.js", modTime, 2048)
	assert.NoError(t, err)
	assert.Equal(t, key1, key2)

	touched, err := Key("src/routes/users.js", modTime.Add(time.Second), 2048)
	assert.NoError(t, err)
	assert.NotEqual(t, key1, touched)

	grown, err := Key("src/routes/users.js", modTime, 2049)
	assert.NoError(t, err)
	assert.NotEqual(t, key1, grown)

	renamed, err := Key("src/routes/orders.js", modTime, 2048)
	assert.NoError(t, err)
	assert.NotEqual(t, key1, renamed)
}

func TestStore_SetGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	assert.NoError(t, err)

	_, ok := store.Get(CategoryAnalysis, "missing")
	assert.False(t, ok)

	payload := []byte(`{"endpoints":[]}`)
	assert.NoError(t, store.Set(CategoryAnalysis, "abc123", payload))

	got, ok := store.Get(CategoryAnalysis, "abc123")
	assert.True(t, ok)
	assert.Equal(t, payload, []byte(got))
}

func TestStore_TTLExpiry(t *testing.T) {
	current := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	store, err := NewStore(dir,
		WithClock(func() time.Time { return current }),
		WithTTL(CategoryRaw, time.Hour))
	assert.NoError(t, err)

	assert.NoError(t, store.Set(CategoryRaw, "k1", []byte(`"source"`)))

	current = current.Add(30 * time.Minute)
	_, ok := store.Get(CategoryRaw, "k1")
	assert.True(t, ok)

	current = current.Add(time.Hour)
	_, ok = store.Get(CategoryRaw, "k1")
	assert.False(t, ok)

	// TTL-expired but within max age: the file stays for sweeping policy.
	_, err = os.Stat(filepath.Join(dir, "raw", "k1.json"))
	assert.NoError(t, err)
}

func TestStore_MaxAgeRemoval(t *testing.T) {
	current := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	store, err := NewStore(dir,
		WithClock(func() time.Time { return current }),
		WithTTL(CategoryAnalysis, time.Hour),
		WithMaxAge(24*time.Hour))
	assert.NoError(t, err)

	assert.NoError(t, store.Set(CategoryAnalysis, "k1", []byte(`1`)))

	current = current.Add(25 * time.Hour)
	_, ok := store.Get(CategoryAnalysis, "k1")
	assert.False(t, ok)

	// Past both TTL and max age: the read deletes the file.
	_, err = os.Stat(filepath.Join(dir, "analysis", "k1.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_CorruptEntryIsMissAndDeleted(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	assert.NoError(t, err)

	path := filepath.Join(dir, "tree", "bad.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, ok := store.Get(CategoryTree, "bad")
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_KeyMismatchIsCorruption(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	assert.NoError(t, err)

	assert.NoError(t, store.Set(CategoryRaw, "original", []byte(`1`)))
	// Simulate a file copied under the wrong address.
	data, err := os.ReadFile(filepath.Join(dir, "raw", "original.json"))
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "raw", "copied.json"), data, 0o644))

	_, ok := store.Get(CategoryRaw, "copied")
	assert.False(t, ok)
	_, err = os.Stat(filepath.Join(dir, "raw", "copied.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_DiskTierSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir)
	assert.NoError(t, err)
	assert.NoError(t, first.Set(CategoryAnalysis, "k1", []byte(`{"v":2}`)))

	second, err := NewStore(dir)
	assert.NoError(t, err)
	got, ok := second.Get(CategoryAnalysis, "k1")
	assert.True(t, ok)
	assert.Equal(t, `{"v":2}`, string(got))
}

func TestStore_Invalidate(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	assert.NoError(t, err)

	assert.NoError(t, store.Set(CategoryRaw, "k1", []byte(`1`)))
	store.Invalidate(CategoryRaw, "k1")

	_, ok := store.Get(CategoryRaw, "k1")
	assert.False(t, ok)
	_, err = os.Stat(filepath.Join(dir, "raw", "k1.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Sweep(t *testing.T) {
	current := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	store, err := NewStore(dir,
		WithClock(func() time.Time { return current }),
		WithTTL(CategoryRaw, time.Hour),
		WithMaxAge(2*time.Hour))
	assert.NoError(t, err)

	assert.NoError(t, store.Set(CategoryRaw, "old", []byte(`1`)))
	current = current.Add(3 * time.Hour)
	assert.NoError(t, store.Set(CategoryRaw, "fresh", []byte(`2`)))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "raw", "junk.json"), []byte("??"), 0o644))

	assert.NoError(t, store.Sweep())

	_, err = os.Stat(filepath.Join(dir, "raw", "old.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "raw", "junk.json"))
	assert.True(t, os.IsNotExist(err))
	_, ok := store.Get(CategoryRaw, "fresh")
	assert.True(t, ok)
}

func TestStore_Purge(t *testing.T) {
	store, err := NewStore(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, store.Set(CategoryRaw, "k1", []byte(`1`)))
	assert.NoError(t, store.Set(CategoryAnalysis, "k2", []byte(`2`)))
	assert.NoError(t, store.Purge())

	_, ok := store.Get(CategoryRaw, "k1")
	assert.False(t, ok)
	_, ok = store.Get(CategoryAnalysis, "k2")
	assert.False(t, ok)

	// Category directories are recreated so the store remains usable.
	assert.NoError(t, store.Set(CategoryRaw, "k3", []byte(`3`)))
	_, ok = store.Get(CategoryRaw, "k3")
	assert.True(t, ok)
}
