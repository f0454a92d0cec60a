package catalog

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DiscardDirName is the folder under the dataset that collects
	// deleted entries and their audio files.
	DiscardDirName = "Discarded"

	// DiscardFileName is the merge-append archive of deleted records.
	DiscardFileName = "discarded_entries.json"
)

// AppendDiscarded merges entries into the discard archive under folder,
// creating Discarded/ and the archive file on first use. Existing
// archive content is kept; a re-deleted key has its record replaced in
// place rather than duplicated. The archive is written atomically like
// the catalog itself.
func AppendDiscarded(folder string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	discardDir := filepath.Join(folder, DiscardDirName)
	if err := os.MkdirAll(discardDir, 0755); err != nil { // #nosec G301 -- dataset folder
		return fmt.Errorf("cannot create discard folder: %w", err)
	}

	archivePath := filepath.Join(discardDir, DiscardFileName)
	var keys []string
	records := make(map[string]Record)

	data, err := os.ReadFile(archivePath) // #nosec G304 -- fixed name under the dataset folder
	switch {
	case err == nil:
		keys, records, err = decodeOrdered(data)
		if err != nil {
			return fmt.Errorf("discard archive is corrupt: %w", err)
		}
	case os.IsNotExist(err):
		// First deletion in this dataset.
	default:
		return fmt.Errorf("cannot read discard archive: %w", err)
	}

	for _, e := range entries {
		if _, ok := records[e.Key]; !ok {
			keys = append(keys, e.Key)
		}
		records[e.Key] = e.Record
	}

	out, err := encodeOrdered(keys, records)
	if err != nil {
		return fmt.Errorf("cannot encode discard archive: %w", err)
	}
	return writeFileAtomic(archivePath, out)
}
