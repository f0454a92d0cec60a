package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-voiceset/internal/catalog"
	"github.com/alnah/go-voiceset/internal/sanitize"
)

func TestRunSanitize_FolderNotFound(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(newTestMocks())

	err := runSanitize(testCommand(context.Background()), env,
		"/nonexistent/clips", 0.5, 11.0, false)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestRunSanitize_Success(t *testing.T) {
	t.Parallel()

	folder := t.TempDir()
	mocks := newTestMocks()
	classifier := &mockClassifier{
		ClassifyFunc: func(ctx context.Context, f string) (sanitize.Report, error) {
			return sanitize.Report{Usable: 5, NotUsable: 2}, nil
		},
	}
	mocks.classifierFactory.mockClassifier = classifier
	env, stdout, _ := testEnv(mocks)

	err := runSanitize(testCommand(context.Background()), env, folder, 0.5, 11.0, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if calls := classifier.ClassifyCalls(); len(calls) != 1 || calls[0] != folder {
		t.Errorf("expected one classify call for %s, got %v", folder, calls)
	}
	if !strings.Contains(stdout.String(), "5 usable, 2 not usable") {
		t.Errorf("expected summary on stdout, got %q", stdout.String())
	}
}

func TestRunSanitize_ReportsFailures(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	mocks.classifierFactory.mockClassifier = &mockClassifier{
		ClassifyFunc: func(ctx context.Context, f string) (sanitize.Report, error) {
			return sanitize.Report{Usable: 3, NotUsable: 1, Failed: 2}, nil
		},
	}
	env, stdout, _ := testEnv(mocks)

	err := runSanitize(testCommand(context.Background()), env, t.TempDir(), 0.5, 11.0, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(stdout.String(), "2 left in place") {
		t.Errorf("expected failure count on stdout, got %q", stdout.String())
	}
}

func TestRunSanitize_BackupCatalog(t *testing.T) {
	t.Parallel()

	folder := createTestDataset(t, []catalog.Entry{
		{Key: "clip_000001.wav", Record: catalog.Record{Text: "hello"}},
	})
	env, _, stderr := testEnv(newTestMocks())

	err := runSanitize(testCommand(context.Background()), env, folder, 0.5, 11.0, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Catalog backed up to") {
		t.Errorf("expected backup notice on stderr, got %q", stderr.String())
	}

	// The fixed test clock names the snapshot deterministically.
	snapshot := filepath.Join(folder, "whisper_20260207_143052_backup.json")
	if _, err := os.Stat(snapshot); err != nil {
		t.Errorf("expected snapshot %s: %v", snapshot, err)
	}
}

func TestRunSanitize_BackupWithoutCatalogFails(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(newTestMocks())

	err := runSanitize(testCommand(context.Background()), env, t.TempDir(), 0.5, 11.0, true)
	if !errors.Is(err, catalog.ErrNoCatalog) {
		t.Fatalf("expected ErrNoCatalog, got %v", err)
	}
}

func TestRunReindex_FolderNotFound(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(newTestMocks())

	err := runReindex(env, "/nonexistent/clips", "book")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestRunReindex_Success(t *testing.T) {
	t.Parallel()

	folder := t.TempDir()
	for _, name := range []string{"clip_000004.wav", "clip_000009.wav", "clip_000017.wav"} {
		if err := os.WriteFile(filepath.Join(folder, name), []byte("audio"), 0644); err != nil {
			t.Fatalf("failed to create clip: %v", err)
		}
	}
	env, stdout, _ := testEnv(newTestMocks())

	err := runReindex(env, folder, "book")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(stdout.String(), "3 clip(s) renamed") {
		t.Errorf("expected rename count on stdout, got %q", stdout.String())
	}

	for _, name := range []string{"book_000001.wav", "book_000002.wav", "book_000003.wav"} {
		if _, err := os.Stat(filepath.Join(folder, name)); err != nil {
			t.Errorf("expected renamed clip %s: %v", name, err)
		}
	}
}
