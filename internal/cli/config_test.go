package cli

import (
	"strings"
	"testing"

	"github.com/alnah/go-voiceset/internal/config"
)

func TestRunConfigSet_UnknownKey(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(newTestMocks())

	err := runConfigSet(env, "random-key", "value")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("error = %q, want unknown-key message", err.Error())
	}
}

func TestRunConfigSet_Model(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	env, _, stderr := testEnv(newTestMocks())

	if err := runConfigSet(env, config.KeyModel, "whisper-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Set model = whisper-1") {
		t.Errorf("expected confirmation on stderr, got %q", stderr.String())
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() unexpected error: %v", err)
	}
	if cfg.Model != "whisper-1" {
		t.Errorf("config.Load().Model = %q, want whisper-1", cfg.Model)
	}
}

func TestRunConfigSet_OutputDirCreatesAndExpands(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	outputDir := t.TempDir()
	env, _, _ := testEnv(newTestMocks())

	if err := runConfigSet(env, config.KeyOutputDir, outputDir); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() unexpected error: %v", err)
	}
	if cfg.OutputDir != outputDir {
		t.Errorf("config.Load().OutputDir = %q, want %q", cfg.OutputDir, outputDir)
	}
}

func TestRunConfigGet_UnknownKey(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(newTestMocks())

	if err := runConfigGet(env, "nope"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestRunConfigGet_EnvFallback(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	env, stdout, _ := testEnv(newTestMocks())
	env.Getenv = staticEnv(map[string]string{config.EnvModel: "whisper-large"})

	if err := runConfigGet(env, config.KeyModel); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "whisper-large" {
		t.Errorf("expected env fallback value, got %q", got)
	}
}

func TestRunConfigGet_FileWinsOverEnv(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := config.Save(config.KeyModel, "whisper-1"); err != nil {
		t.Fatalf("config.Save() unexpected error: %v", err)
	}

	env, stdout, _ := testEnv(newTestMocks())
	env.Getenv = staticEnv(map[string]string{config.EnvModel: "whisper-large"})

	if err := runConfigGet(env, config.KeyModel); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "whisper-1" {
		t.Errorf("expected file value to win, got %q", got)
	}
}

func TestRunConfigList_Empty(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	env, stdout, _ := testEnv(newTestMocks())
	env.Getenv = staticEnv(nil)

	if err := runConfigList(env); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "No configuration set.") {
		t.Errorf("expected empty notice, got %q", out)
	}
	if !strings.Contains(out, config.KeyOutputDir) || !strings.Contains(out, config.KeyModel) {
		t.Errorf("expected available keys listed, got %q", out)
	}
}

func TestRunConfigList_MergesEnv(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := config.Save(config.KeyModel, "whisper-1"); err != nil {
		t.Fatalf("config.Save() unexpected error: %v", err)
	}

	env, stdout, _ := testEnv(newTestMocks())
	env.Getenv = staticEnv(map[string]string{config.EnvOutputDir: "/datasets"})

	if err := runConfigList(env); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "model=whisper-1") {
		t.Errorf("expected file value, got %q", out)
	}
	if !strings.Contains(out, "output-dir=/datasets (from env)") {
		t.Errorf("expected env value marked as such, got %q", out)
	}
}
