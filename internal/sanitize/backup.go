package sanitize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-voiceset/internal/catalog"
)

// timestampLayout names dataset backups down to the second, so
// repeated snapshots in one day never collide.
const timestampLayout = "20060102_150405"

// BackupDataset copies the catalog JSON in folder to a timestamped
// sibling file and returns the copy's path. Unlike the per-session
// snapshot a curation pass takes, every call produces a new file.
func BackupDataset(folder string, now func() time.Time) (string, error) {
	if now == nil {
		now = time.Now
	}

	cat, err := catalog.Load(folder)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(cat.Path()) // #nosec G304 -- path discovered by catalog.Load
	if err != nil {
		return "", fmt.Errorf("cannot read catalog: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(cat.Path()), ".json")
	dst := filepath.Join(folder, fmt.Sprintf("%s_%s_backup.json", base, now().Format(timestampLayout)))
	if err := os.WriteFile(dst, data, 0644); err != nil { // #nosec G306 -- dataset file
		return "", fmt.Errorf("cannot write backup: %w", err)
	}
	return dst, nil
}
