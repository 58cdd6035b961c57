package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExportVersion is the on-disk format version. Imports with a different
// version are rejected so a format change never poisons the cache.
const ExportVersion = 1

// ExportEntry is one persisted cache entry. The original text is never
// written, only its fingerprint.
type ExportEntry struct {
	Key         string    `json:"key"`
	Vector      []float32 `json:"vector"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
}

// Export is the persisted cache artifact.
type Export struct {
	Version  int           `json:"version"`
	Capacity int           `json:"capacity"`
	SavedAt  time.Time     `json:"saved_at"`
	Entries  []ExportEntry `json:"entries"`
}

// Snapshot exports all entries in least-recently-used-first order, so an
// import that replays them in order reproduces the recency ordering.
func (c *Cache) Snapshot() Export {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.lru.Keys() // oldest to newest
	entries := make([]ExportEntry, 0, len(keys))
	for _, key := range keys {
		vec, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		entry := ExportEntry{Key: key, Vector: vec}
		if m := c.meta[key]; m != nil {
			entry.LastAccess = m.LastAccess
			entry.AccessCount = m.AccessCount
		}
		entries = append(entries, entry)
	}

	return Export{
		Version:  ExportVersion,
		Capacity: c.capacity,
		SavedAt:  c.now(),
		Entries:  entries,
	}
}

// Restore imports a previously exported snapshot. Entries are replayed in
// export order so recency survives the round trip. Snapshots with an
// unknown format version are rejected.
func (c *Cache) Restore(snapshot Export) error {
	if snapshot.Version != ExportVersion {
		return fmt.Errorf("unsupported cache format version %d (want %d)", snapshot.Version, ExportVersion)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range snapshot.Entries {
		if entry.Key == "" || len(entry.Vector) == 0 {
			continue
		}
		c.putLocked(entry.Key, entry.Vector, entry.LastAccess, entry.AccessCount)
	}
	return nil
}

// SaveFile writes the cache snapshot atomically (temp file + rename).
func (c *Cache) SaveFile(path string) error {
	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal cache snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write cache snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename cache snapshot: %w", err)
	}
	return nil
}

// LoadFile restores the cache from a snapshot file. A missing file is not an
// error; a corrupt or incompatible file is reported so the caller can log
// and continue with an empty cache.
func (c *Cache) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache snapshot: %w", err)
	}

	var snapshot Export
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("parse cache snapshot: %w", err)
	}
	return c.Restore(snapshot)
}
