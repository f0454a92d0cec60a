package segment

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxFragmentRunes bounds the transcript fragment embedded in a filename.
// Applied before sanitizing.
const maxFragmentRunes = 150

// exportFormats is the whitelist of output containers. A source in any
// other container is exported as defaultExportFormat instead.
var exportFormats = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"flac": true,
	"ogg":  true,
}

// defaultExportFormat is the fallback container for sources outside the
// whitelist.
const defaultExportFormat = "wav"

// ResolveExportFormat picks the export container for a source file:
// the source's own container when whitelisted, otherwise wav.
func ResolveExportFormat(srcPath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(srcPath), "."))
	if exportFormats[ext] {
		return ext
	}
	return defaultExportFormat
}

// stripMarks removes Unicode combining marks, turning "café" into "cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeFragment turns a transcript fragment into a filename-safe
// suffix: truncate to 150 runes, strip diacritics, map every
// non-alphanumeric rune to '_', collapse runs of '_', trim the edges.
// Returns "" when nothing survives.
func SanitizeFragment(text string) string {
	r := []rune(text)
	if len(r) > maxFragmentRunes {
		r = r[:maxFragmentRunes]
	}

	flat, _, err := transform.String(stripMarks, string(r))
	if err != nil {
		flat = string(r)
	}

	var b strings.Builder
	lastUnderscore := false
	for _, c := range flat {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}

// clipName builds "{prefix}_{counter:06d}[_{fragment}].{format}".
func clipName(prefix string, counter int, fragment, format string) string {
	if fragment != "" {
		return fmt.Sprintf("%s_%06d_%s.%s", prefix, counter, fragment, format)
	}
	return fmt.Sprintf("%s_%06d.%s", prefix, counter, format)
}
