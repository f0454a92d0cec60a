package sanitize

import (
	"fmt"
	"os"
	"path/filepath"
)

// Reindex renumbers every clip directly under folder to
// "{prefix}_{%06d}{ext}" in name order, starting at 1. Renaming goes
// through temporary names first, so a target name that already belongs
// to another clip in the folder cannot be clobbered mid-pass. Returns
// the number of clips renamed.
func Reindex(folder, prefix string) (int, error) {
	if prefix == "" {
		return 0, fmt.Errorf("prefix is required")
	}

	clips, err := listAudioFiles(folder)
	if err != nil {
		return 0, err
	}

	// Phase one: park every clip under a temporary name.
	tmpNames := make([]string, len(clips))
	for i, name := range clips {
		tmp := fmt.Sprintf(".reindex-%06d%s", i+1, filepath.Ext(name))
		if err := os.Rename(filepath.Join(folder, name), filepath.Join(folder, tmp)); err != nil {
			return 0, fmt.Errorf("cannot stage %s: %w", name, err)
		}
		tmpNames[i] = tmp
	}

	// Phase two: give each parked clip its final sequence name.
	for i, tmp := range tmpNames {
		final := fmt.Sprintf("%s_%06d%s", prefix, i+1, filepath.Ext(tmp))
		if err := os.Rename(filepath.Join(folder, tmp), filepath.Join(folder, final)); err != nil {
			return 0, fmt.Errorf("cannot rename to %s: %w", final, err)
		}
	}
	return len(clips), nil
}
