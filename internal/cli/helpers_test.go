package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voiceset/internal/catalog"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	ffmpegResolver    *mockFFmpegResolver
	configLoader      *mockConfigLoader
	detectorFactory   *mockDetectorFactory
	splitterFactory   *mockSplitterFactory
	transcriber       *mockTranscriberFactory
	converterFactory  *mockConverterFactory
	classifierFactory *mockClassifierFactory
}

func newTestMocks() *testMocks {
	return &testMocks{
		ffmpegResolver:    &mockFFmpegResolver{},
		configLoader:      &mockConfigLoader{},
		detectorFactory:   &mockDetectorFactory{},
		splitterFactory:   &mockSplitterFactory{},
		transcriber:       &mockTranscriberFactory{},
		converterFactory:  &mockConverterFactory{},
		classifierFactory: &mockClassifierFactory{},
	}
}

// testEnv creates a fully mocked Env wired to in-memory buffers.
// Returns the Env, the mocks for assertions, and the stdout/stderr buffers.
func testEnv(mocks *testMocks) (*Env, *syncBuffer, *syncBuffer) {
	stdout := &syncBuffer{}
	stderr := &syncBuffer{}
	env := &Env{
		Stdout:             stdout,
		Stderr:             stderr,
		Stdin:              strings.NewReader(""),
		Getenv:             defaultTestEnv,
		Now:                fixedTime(time.Date(2026, 2, 7, 14, 30, 52, 0, time.UTC)),
		FFmpegResolver:     mocks.ffmpegResolver,
		ConfigLoader:       mocks.configLoader,
		DetectorFactory:    mocks.detectorFactory,
		SplitterFactory:    mocks.splitterFactory,
		TranscriberFactory: mocks.transcriber,
		ConverterFactory:   mocks.converterFactory,
		ClassifierFactory:  mocks.classifierFactory,
	}
	return env, stdout, stderr
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv returns a fake OpenAI API key.
func defaultTestEnv(key string) string {
	if key == EnvOpenAIAPIKey {
		return "test-openai-key"
	}
	return ""
}

// testCommand returns a bare cobra command carrying ctx, for the run
// functions that take one only to read its context.
func testCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	return cmd
}

// createTestAudioFile creates a temporary audio file for testing.
// Returns the file path. The file is automatically cleaned up after the test.
func createTestAudioFile(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)

	// Write minimal content to make the file non-empty
	if err := os.WriteFile(path, []byte("fake audio content"), 0644); err != nil {
		t.Fatalf("failed to create test audio file: %v", err)
	}
	return path
}

// createTestDataset builds a dataset folder with a catalog and matching
// clip files under audios/. Returns the folder path.
func createTestDataset(t *testing.T, entries []catalog.Entry) string {
	t.Helper()
	folder := t.TempDir()

	if err := catalog.WriteFile(filepath.Join(folder, "whisper.json"), entries); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	audioDir := filepath.Join(folder, "audios")
	if err := os.MkdirAll(audioDir, 0755); err != nil {
		t.Fatalf("failed to create audio dir: %v", err)
	}
	for _, e := range entries {
		if err := os.WriteFile(filepath.Join(audioDir, e.Key), []byte("fake audio"), 0644); err != nil {
			t.Fatalf("failed to create clip %s: %v", e.Key, err)
		}
	}
	return folder
}
