// Package curate drives an interactive review pass over a transcript
// catalog: paging through records, fixing transcripts, and pruning bad
// clips into the discard archive. Every operation leaves the session on
// a well-formed current record (or an explicit empty view), so a
// front-end can always render state without special cases.
package curate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-voiceset/internal/catalog"
)

const (
	// audioDirName is the folder under the dataset that holds the
	// clips the catalog keys refer to.
	audioDirName = "audios"

	// discardedAudioDirName receives clips whose records were deleted.
	discardedAudioDirName = "Discarded_Audios"

	// maxRefDigits bounds the numeric references delete-range accepts,
	// matching the zero-padded counters in clip filenames.
	maxRefDigits = 6
)

// WarnFunc receives non-fatal issues, such as a clip that cannot be
// moved into the discard folder.
type WarnFunc func(format string, args ...any)

// View is a read-only snapshot of the current record. Available is
// false when the catalog is empty and there is nothing to show.
type View struct {
	Available bool
	Index     int
	Total     int
	Key       string
	AudioPath string
	Text      string
	Segments  []catalog.Segment
}

// PageLabel renders the position for display, one-based.
func (v View) PageLabel() string {
	if !v.Available {
		return "no records"
	}
	return fmt.Sprintf("record %d of %d", v.Index+1, v.Total)
}

// Session is one curation pass over a loaded catalog. It is not safe
// for concurrent use; a session belongs to a single reviewer.
type Session struct {
	cat        *catalog.Catalog
	current    int
	warn       WarnFunc
	backedUp   bool
	moveFileFn func(src, dst string) error
}

// SessionOption configures NewSession.
type SessionOption func(*Session)

// WithWarnFunc routes warnings somewhere other than stderr.
func WithWarnFunc(warn WarnFunc) SessionOption {
	return func(s *Session) {
		if warn != nil {
			s.warn = warn
		}
	}
}

// withMoveFile overrides the audio move for tests.
func withMoveFile(fn func(src, dst string) error) SessionOption {
	return func(s *Session) { s.moveFileFn = fn }
}

// NewSession starts a curation pass positioned on the first record.
func NewSession(cat *catalog.Catalog, opts ...SessionOption) *Session {
	s := &Session{
		cat: cat,
		warn: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
		moveFileFn: os.Rename,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the snapshot of the record the session points at.
func (s *Session) Current() View { return s.view() }

// GoTo moves to index, clamped into the catalog bounds.
func (s *Session) GoTo(index int) View {
	s.current = index
	return s.view()
}

// Step moves by delta records, clamped at both ends; stepping past the
// last record stays on the last record.
func (s *Session) Step(delta int) View {
	s.current += delta
	return s.view()
}

// Save replaces the current record's transcript and segments, then
// writes the catalog to disk. The position does not change.
func (s *Session) Save(text string, segments []catalog.Segment) (View, error) {
	v := s.view()
	if !v.Available {
		return v, fmt.Errorf("nothing to save: %w", catalog.ErrIndexOutOfRange)
	}
	if err := s.ensureBackup(); err != nil {
		return v, err
	}
	if err := s.cat.UpdateText(v.Key, text); err != nil {
		return v, err
	}
	if err := s.cat.UpdateSegments(v.Key, segments); err != nil {
		return v, err
	}
	if err := s.cat.Flush(); err != nil {
		return v, err
	}
	return s.view(), nil
}

// DeleteOne removes the current record: it is archived into the
// discard file, its clip is moved to the discarded-audio folder, and
// the session steps back one record. A catalog with a single record
// refuses, so curation can never empty the dataset one key at a time.
func (s *Session) DeleteOne() (View, error) {
	v := s.view()
	if !v.Available {
		return v, fmt.Errorf("nothing to delete: %w", catalog.ErrIndexOutOfRange)
	}
	if s.cat.Len() == 1 {
		return v, fmt.Errorf("%s: %w", v.Key, ErrLastRecord)
	}
	if err := s.deleteBatch([]string{v.Key}); err != nil {
		return s.view(), err
	}
	s.current = v.Index - 1
	return s.view(), nil
}

// DeleteRange removes every record whose position lies between the
// records matching startRef and endRef, inclusive. References are the
// numeric counters embedded in clip filenames ("17" matches the key
// containing "000017"); the range must cover at least two records.
// All removed records are archived as one batch.
func (s *Session) DeleteRange(startRef, endRef string) (View, error) {
	startIdx, err := s.resolveRef(startRef, ErrStartKeyNotFound)
	if err != nil {
		return s.view(), err
	}
	endIdx, err := s.resolveRef(endRef, ErrEndKeyNotFound)
	if err != nil {
		return s.view(), err
	}
	if startIdx >= endIdx {
		return s.view(), fmt.Errorf("%s..%s resolves to positions %d..%d: %w",
			startRef, endRef, startIdx, endIdx, ErrInvalidRange)
	}

	keys := s.cat.Keys()[startIdx : endIdx+1]
	if err := s.deleteBatch(keys); err != nil {
		return s.view(), err
	}
	s.current = startIdx - 1
	return s.view(), nil
}

// deleteBatch archives keys, removes them from the catalog, flushes,
// and moves their clips aside. Archival happens before any removal: a
// failed append leaves every record in place, and a crash after it can
// at worst duplicate an archive entry, never lose a record.
func (s *Session) deleteBatch(keys []string) error {
	if err := s.ensureBackup(); err != nil {
		return err
	}

	entries := make([]catalog.Entry, 0, len(keys))
	for _, key := range keys {
		rec, ok := s.cat.Lookup(key)
		if !ok {
			return fmt.Errorf("%s: %w", key, catalog.ErrKeyNotFound)
		}
		entries = append(entries, catalog.Entry{Key: key, Record: rec})
	}
	if err := catalog.AppendDiscarded(s.cat.Dir(), entries); err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := s.cat.Remove(key); err != nil {
			return err
		}
	}
	if err := s.cat.Flush(); err != nil {
		return err
	}
	for _, key := range keys {
		s.discardAudio(key)
	}
	return nil
}

// ensureBackup snapshots the catalog before the first mutation of this
// session. Later mutations reuse the same snapshot.
func (s *Session) ensureBackup() error {
	if s.backedUp {
		return nil
	}
	if _, err := s.cat.Backup(); err != nil {
		return err
	}
	s.backedUp = true
	return nil
}

// discardAudio moves the clip for key into the discarded-audio folder.
// Best effort: a missing or unmovable clip is warned about, the
// deletion itself already succeeded.
func (s *Session) discardAudio(key string) {
	src := filepath.Join(s.cat.Dir(), audioDirName, key)
	if _, err := os.Stat(src); err != nil {
		s.warn("no audio file to discard for %s: %v", key, err)
		return
	}
	dstDir := filepath.Join(s.cat.Dir(), audioDirName, discardedAudioDirName)
	if err := os.MkdirAll(dstDir, 0755); err != nil { // #nosec G301 -- dataset folder
		s.warn("cannot create %s: %v", dstDir, err)
		return
	}
	if err := s.moveFileFn(src, filepath.Join(dstDir, key)); err != nil {
		s.warn("cannot move audio for %s: %v", key, err)
	}
}

// resolveRef turns a numeric reference into the position of the unique
// catalog key containing its zero-padded form.
func (s *Session) resolveRef(ref string, notFound error) (int, error) {
	padded, err := padRef(ref)
	if err != nil {
		return 0, err
	}

	var matches []int
	for i, key := range s.cat.Keys() {
		if strings.Contains(key, padded) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%q: %w", ref, notFound)
	case 1:
		return matches[0], nil
	default:
		return 0, fmt.Errorf("%q matches %d records: %w", ref, len(matches), ErrAmbiguousRef)
	}
}

// padRef validates a numeric reference and zero-pads it to the counter
// width used in clip filenames.
func padRef(ref string) (string, error) {
	if ref == "" || len(ref) > maxRefDigits {
		return "", fmt.Errorf("%q: %w", ref, ErrInvalidRange)
	}
	for _, r := range ref {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%q: %w", ref, ErrInvalidRange)
		}
	}
	return strings.Repeat("0", maxRefDigits-len(ref)) + ref, nil
}

// view clamps the position and builds the snapshot for it.
func (s *Session) view() View {
	total := s.cat.Len()
	if total == 0 {
		return View{Total: 0}
	}
	if s.current < 0 {
		s.current = 0
	}
	if s.current >= total {
		s.current = total - 1
	}
	key, rec, err := s.cat.Get(s.current)
	if err != nil {
		return View{Total: total}
	}
	return View{
		Available: true,
		Index:     s.current,
		Total:     total,
		Key:       key,
		AudioPath: filepath.Join(s.cat.Dir(), audioDirName, key),
		Text:      rec.Text,
		Segments:  rec.Segments,
	}
}
