// Package catalog manages the JSON-backed mapping from clip filename to
// transcript metadata produced by a transcription run. The on-disk file
// is the source of truth: it stays human-readable (pretty-printed,
// stable key order) and is only ever replaced whole, never partially
// written.
package catalog

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Segment is a fragment-level correction within one clip transcript.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Record is the transcript metadata for one clip. Text is the
// full-utterance transcript; Segments, when present, are ordered by
// their start time.
type Record struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Entry pairs a clip filename with its record, preserving order across
// call boundaries.
type Entry struct {
	Key    string
	Record Record
}

// backupSuffix marks session snapshot files, which Load must ignore.
const backupSuffix = "_backup.json"

// Catalog is the in-memory view of one catalog file plus the delta the
// current session has applied to it.
type Catalog struct {
	dir      string
	path     string
	keys     []string
	records  map[string]Record
	diskHash [sha256.Size]byte
}

// Load locates and parses the catalog JSON in folder: the single .json
// file that is neither a session backup nor the discard archive. Zero
// candidates fail with ErrNoCatalog, several with ErrAmbiguousCatalog
// (the caller must disambiguate; guessing could edit the wrong dataset).
// Unparsable JSON is fatal: silent recovery could destroy data.
func Load(folder string) (*Catalog, error) {
	path, err := findCatalogFile(folder)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path found under the user-supplied folder
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog: %w", err)
	}

	keys, records, err := decodeOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s is corrupt: %w", filepath.Base(path), err)
	}

	return &Catalog{
		dir:      folder,
		path:     path,
		keys:     keys,
		records:  records,
		diskHash: sha256.Sum256(data),
	}, nil
}

// findCatalogFile returns the unique candidate catalog path in folder.
func findCatalogFile(folder string) (string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", fmt.Errorf("cannot read folder %s: %w", folder, err)
	}

	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasSuffix(name, backupSuffix) || name == DiscardFileName {
			continue
		}
		candidates = append(candidates, name)
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%s: %w", folder, ErrNoCatalog)
	case 1:
		return filepath.Join(folder, candidates[0]), nil
	default:
		return "", fmt.Errorf("%s has %d catalog files (%s): %w",
			folder, len(candidates), strings.Join(candidates, ", "), ErrAmbiguousCatalog)
	}
}

// Dir returns the folder the catalog was loaded from.
func (c *Catalog) Dir() string { return c.dir }

// Path returns the catalog file path.
func (c *Catalog) Path() string { return c.path }

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.keys) }

// Keys returns the clip filenames in insertion order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Get returns the index-th entry in insertion order.
func (c *Catalog) Get(index int) (string, Record, error) {
	if index < 0 || index >= len(c.keys) {
		return "", Record{}, fmt.Errorf("index %d of %d records: %w", index, len(c.keys), ErrIndexOutOfRange)
	}
	key := c.keys[index]
	return key, c.records[key], nil
}

// Lookup returns the record for key, if present.
func (c *Catalog) Lookup(key string) (Record, bool) {
	rec, ok := c.records[key]
	return rec, ok
}

// Index returns the insertion-order position of key.
func (c *Catalog) Index(key string) (int, bool) {
	for i, k := range c.keys {
		if k == key {
			return i, true
		}
	}
	return 0, false
}

// UpdateText sets the full-utterance transcript for key in memory.
func (c *Catalog) UpdateText(key, text string) error {
	rec, ok := c.records[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	rec.Text = text
	c.records[key] = rec
	return nil
}

// UpdateSegments replaces the fragment segments for key in memory.
func (c *Catalog) UpdateSegments(key string, segments []Segment) error {
	rec, ok := c.records[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	rec.Segments = segments
	c.records[key] = rec
	return nil
}

// Remove pops the record for key from memory and returns it.
func (c *Catalog) Remove(key string) (Record, error) {
	rec, ok := c.records[key]
	if !ok {
		return Record{}, fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	delete(c.records, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	return rec, nil
}

// Backup snapshots the on-disk catalog to "<name>_backup.json" next to
// it. A no-op when the backup already exists: an earlier snapshot is
// never overwritten. Call once per curation session before mutating.
func (c *Catalog) Backup() (string, error) {
	base := strings.TrimSuffix(filepath.Base(c.path), ".json")
	backupPath := filepath.Join(filepath.Dir(c.path), base+backupSuffix)

	if _, err := os.Stat(backupPath); err == nil {
		return backupPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("cannot check backup: %w", err)
	}

	data, err := os.ReadFile(c.path) // #nosec G304 -- path discovered by Load
	if err != nil {
		return "", fmt.Errorf("cannot read catalog for backup: %w", err)
	}
	if err := os.WriteFile(backupPath, data, 0644); err != nil { // #nosec G306 -- dataset file
		return "", fmt.Errorf("cannot write backup: %w", err)
	}
	return backupPath, nil
}

// Flush writes the in-memory catalog back to disk, replacing the file
// atomically (temp file + rename in the same directory). Before
// writing it re-reads the file and compares its hash against the
// content seen at load or last flush; a mismatch fails with
// ErrCatalogModified instead of silently clobbering another writer.
// Single-writer sessions are the supported mode; the check only turns
// a silent lost update into an explicit error.
func (c *Catalog) Flush() error {
	current, err := os.ReadFile(c.path) // #nosec G304 -- path discovered by Load
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot re-read catalog: %w", err)
	}
	if err == nil && sha256.Sum256(current) != c.diskHash {
		return fmt.Errorf("%s: %w", filepath.Base(c.path), ErrCatalogModified)
	}

	data, err := encodeOrdered(c.keys, c.records)
	if err != nil {
		return fmt.Errorf("cannot encode catalog: %w", err)
	}
	if err := writeFileAtomic(c.path, data); err != nil {
		return err
	}
	c.diskHash = sha256.Sum256(data)
	return nil
}

// WriteFile writes a fresh catalog at path from entries, in order.
// Transcription runs use it to materialize their results; the layout is
// the same one Load expects back.
func WriteFile(path string, entries []Entry) error {
	keys := make([]string, 0, len(entries))
	records := make(map[string]Record, len(entries))
	for _, e := range entries {
		if _, dup := records[e.Key]; dup {
			return fmt.Errorf("duplicate key %q", e.Key)
		}
		keys = append(keys, e.Key)
		records[e.Key] = e.Record
	}
	data, err := encodeOrdered(keys, records)
	if err != nil {
		return fmt.Errorf("cannot encode catalog: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path with data via a temp file and rename,
// so the catalog on disk is never left partially written.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".catalog-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := func() error {
		defer func() { _ = tmp.Close() }()
		if _, err := tmp.Write(data); err != nil {
			return fmt.Errorf("cannot write catalog: %w", err)
		}
		if err := tmp.Chmod(fs.FileMode(0644)); err != nil { // #nosec G302 -- dataset file
			return fmt.Errorf("cannot set catalog permissions: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return writeErr
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cannot replace catalog: %w", err)
	}
	return nil
}
