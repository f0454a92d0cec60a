// Package convert re-encodes a folder of audio clips into a single
// target format through ffmpeg.
package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-voiceset/internal/ffmpeg"
)

// targetFormats lists the containers conversion can produce.
var targetFormats = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"flac": true,
	"ogg":  true,
}

// ErrBadFormat indicates an unsupported target format.
var ErrBadFormat = fmt.Errorf("unsupported target format")

// WarnFunc receives per-clip failures that do not stop the batch.
type WarnFunc func(format string, args ...any)

// commandRunner executes external commands and returns their combined output.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

type osCommandRunner struct{}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are built by the converter, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Converter re-encodes clips with a resolved ffmpeg binary.
type Converter struct {
	ffmpegPath string
	cmd        commandRunner
	warn       WarnFunc
}

// Option configures a Converter.
type Option func(*Converter)

// WithWarnFunc routes warnings somewhere other than stderr.
func WithWarnFunc(warn WarnFunc) Option {
	return func(c *Converter) {
		if warn != nil {
			c.warn = warn
		}
	}
}

// withCommandRunner overrides command execution for tests.
func withCommandRunner(cmd commandRunner) Option {
	return func(c *Converter) { c.cmd = cmd }
}

// NewConverter builds a Converter around an ffmpeg binary path.
func NewConverter(ffmpegPath string, opts ...Option) (*Converter, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	c := &Converter{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
		warn: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Folder converts every audio clip directly under in to format,
// writing results under out with the same base names. Clips already in
// the target format are copied through ffmpeg as well, which
// normalizes containers from sloppy encoders. Per-clip failures are
// warned and skipped. Returns the number of clips converted.
func (c *Converter) Folder(ctx context.Context, in, out, format string) (int, error) {
	format = strings.ToLower(format)
	if !targetFormats[format] {
		return 0, fmt.Errorf("%q: %w", format, ErrBadFormat)
	}

	entries, err := os.ReadDir(in)
	if err != nil {
		return 0, fmt.Errorf("cannot read folder %s: %w", in, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if targetFormats[strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Name())), ".")] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if err := os.MkdirAll(out, 0755); err != nil { // #nosec G301 -- dataset folder
		return 0, fmt.Errorf("cannot create output folder: %w", err)
	}

	converted := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return converted, err
		}

		src := filepath.Join(in, name)
		base := strings.TrimSuffix(name, filepath.Ext(name))
		dst := filepath.Join(out, base+"."+format)

		args := []string{"-y", "-i", src, dst}
		if output, err := c.cmd.CombinedOutput(ctx, c.ffmpegPath, args); err != nil {
			c.warn("cannot convert %s: %v: %s", name, err, strings.TrimSpace(string(output)))
			continue
		}
		converted++
	}
	return converted, nil
}
