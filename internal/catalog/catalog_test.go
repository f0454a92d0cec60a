package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCatalog drops a catalog file with keys deliberately out of
// alphabetical order, so ordering bugs cannot hide behind sorting.
func writeCatalog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleCatalog = `{
    "clip_000002.wav": {
        "text": "second",
        "segments": null
    },
    "clip_000001.wav": {
        "text": "first",
        "segments": [
            {
                "text": "fir",
                "start": 0,
                "end": 1.5
            }
        ]
    },
    "clip_000003.wav": {
        "text": "third",
        "segments": null
    }
}
`

func TestLoad_PreservesFileOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCatalog(t, dir, "whisper.json", sampleCatalog)

	cat, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, []string{"clip_000002.wav", "clip_000001.wav", "clip_000003.wav"}, cat.Keys())

	key, rec, err := cat.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "clip_000001.wav", key)
	assert.Equal(t, "first", rec.Text)
	require.Len(t, rec.Segments, 1)
	assert.Equal(t, 1.5, rec.Segments[0].End)
}

func TestLoad_IgnoresBackupAndArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCatalog(t, dir, "whisper.json", sampleCatalog)
	writeCatalog(t, dir, "whisper_backup.json", sampleCatalog)
	writeCatalog(t, dir, DiscardFileName, "{}\n")

	cat, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "whisper.json"), cat.Path())
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	t.Run("empty folder", func(t *testing.T) {
		t.Parallel()
		_, err := Load(t.TempDir())
		assert.ErrorIs(t, err, ErrNoCatalog)
	})

	t.Run("two candidates", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeCatalog(t, dir, "whisper.json", "{}")
		writeCatalog(t, dir, "other.json", "{}")
		_, err := Load(dir)
		assert.ErrorIs(t, err, ErrAmbiguousCatalog)
	})

	t.Run("corrupt JSON", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeCatalog(t, dir, "whisper.json", `{"clip": `)
		_, err := Load(dir)
		assert.ErrorContains(t, err, "corrupt")
	})

	t.Run("duplicate key", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeCatalog(t, dir, "whisper.json",
			`{"a.wav": {"text": "x", "segments": null}, "a.wav": {"text": "y", "segments": null}}`)
		_, err := Load(dir)
		assert.ErrorContains(t, err, "duplicate key")
	})
}

func TestCatalog_Accessors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCatalog(t, dir, "whisper.json", sampleCatalog)
	cat, err := Load(dir)
	require.NoError(t, err)

	_, _, err = cat.Get(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, _, err = cat.Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	i, ok := cat.Index("clip_000003.wav")
	require.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = cat.Index("missing.wav")
	assert.False(t, ok)

	rec, ok := cat.Lookup("clip_000002.wav")
	require.True(t, ok)
	assert.Equal(t, "second", rec.Text)
}

func TestCatalog_Mutations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCatalog(t, dir, "whisper.json", sampleCatalog)
	cat, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, cat.UpdateText("clip_000001.wav", "corrected"))
	rec, _ := cat.Lookup("clip_000001.wav")
	assert.Equal(t, "corrected", rec.Text)
	assert.Len(t, rec.Segments, 1, "updating text keeps segments")

	require.NoError(t, cat.UpdateSegments("clip_000001.wav", nil))
	rec, _ = cat.Lookup("clip_000001.wav")
	assert.Nil(t, rec.Segments)

	assert.ErrorIs(t, cat.UpdateText("missing.wav", "x"), ErrKeyNotFound)

	removed, err := cat.Remove("clip_000001.wav")
	require.NoError(t, err)
	assert.Equal(t, "corrected", removed.Text)
	assert.Equal(t, []string{"clip_000002.wav", "clip_000003.wav"}, cat.Keys())

	_, err = cat.Remove("clip_000001.wav")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestCatalog_BackupOnceNeverOverwritten(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCatalog(t, dir, "whisper.json", sampleCatalog)
	cat, err := Load(dir)
	require.NoError(t, err)

	backupPath, err := cat.Backup()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "whisper_backup.json"), backupPath)

	original, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog, string(original))

	// Mutate and flush, then back up again: the snapshot must still
	// hold the pre-session content.
	require.NoError(t, cat.UpdateText("clip_000001.wav", "changed"))
	require.NoError(t, cat.Flush())
	again, err := cat.Backup()
	require.NoError(t, err)
	assert.Equal(t, backupPath, again)

	after, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, string(original), string(after))
}

func TestCatalog_FlushRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCatalog(t, dir, "whisper.json", sampleCatalog)
	cat, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, cat.UpdateText("clip_000003.wav", "third, fixed"))
	_, err = cat.Remove("clip_000002.wav")
	require.NoError(t, err)
	require.NoError(t, cat.Flush())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"clip_000001.wav", "clip_000003.wav"}, reloaded.Keys())
	rec, _ := reloaded.Lookup("clip_000003.wav")
	assert.Equal(t, "third, fixed", rec.Text)
}

func TestCatalog_FlushDetectsExternalModification(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeCatalog(t, dir, "whisper.json", sampleCatalog)
	cat, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, cat.UpdateText("clip_000001.wav", "mine"))
	require.NoError(t, os.WriteFile(path, []byte(`{"other.wav": {"text": "theirs", "segments": null}}`), 0644))

	err = cat.Flush()
	assert.ErrorIs(t, err, ErrCatalogModified)

	// The external edit must survive a refused flush.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theirs")
}

func TestCatalog_SecondFlushSucceeds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCatalog(t, dir, "whisper.json", sampleCatalog)
	cat, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, cat.UpdateText("clip_000001.wav", "one"))
	require.NoError(t, cat.Flush())
	require.NoError(t, cat.UpdateText("clip_000001.wav", "two"))
	require.NoError(t, cat.Flush())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	rec, _ := reloaded.Lookup("clip_000001.wav")
	assert.Equal(t, "two", rec.Text)
}

func TestWriteFile_LoadsBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	entries := []Entry{
		{Key: "b.wav", Record: Record{Text: "bee"}},
		{Key: "a.wav", Record: Record{Text: "ay", Segments: []Segment{{Text: "a", Start: 0, End: 0.5}}}},
	}
	require.NoError(t, WriteFile(filepath.Join(dir, "whisper.json"), entries))

	cat, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.wav", "a.wav"}, cat.Keys())

	err = WriteFile(filepath.Join(dir, "whisper.json"), []Entry{
		{Key: "a.wav"}, {Key: "a.wav"},
	})
	assert.ErrorContains(t, err, "duplicate key")
}

func TestAppendDiscarded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, DiscardDirName, DiscardFileName)

	require.NoError(t, AppendDiscarded(dir, []Entry{
		{Key: "clip_000005.wav", Record: Record{Text: "five"}},
	}))
	require.FileExists(t, archivePath)

	// A later batch merges in, keeping earlier entries.
	require.NoError(t, AppendDiscarded(dir, []Entry{
		{Key: "clip_000002.wav", Record: Record{Text: "two"}},
		{Key: "clip_000005.wav", Record: Record{Text: "five again"}},
	}))

	keys, records, err := func() ([]string, map[string]Record, error) {
		data, err := os.ReadFile(archivePath)
		require.NoError(t, err)
		return decodeOrdered(data)
	}()
	require.NoError(t, err)
	assert.Equal(t, []string{"clip_000005.wav", "clip_000002.wav"}, keys)
	assert.Equal(t, "five again", records["clip_000005.wav"].Text)
	assert.Equal(t, "two", records["clip_000002.wav"].Text)
}

func TestAppendDiscarded_EmptyBatchIsNoop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, AppendDiscarded(dir, nil))
	assert.NoDirExists(t, filepath.Join(dir, DiscardDirName))
}
