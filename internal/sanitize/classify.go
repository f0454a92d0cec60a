// Package sanitize tidies a clip folder before and after curation:
// bucketing clips by duration, renumbering them into a clean sequence,
// and snapshotting the catalog.
package sanitize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// UsableDirName receives clips whose duration fits the dataset.
	UsableDirName = "Usable_Audios"

	// NotUsableDirName receives clips that are too short or too long.
	NotUsableDirName = "Not_Usable_Audios"

	// DefaultMinSeconds is the shortest clip worth keeping. Below it a
	// clip rarely holds a full word.
	DefaultMinSeconds = 0.5

	// DefaultMaxSeconds matches the splitter's leaf bound.
	DefaultMaxSeconds = 11.0
)

// audioExtensions lists the clip formats the folder operations touch.
var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
}

// DurationProber reports an audio file's duration in seconds.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// WarnFunc receives non-fatal per-file issues.
type WarnFunc func(format string, args ...any)

// Report summarizes one classification pass.
type Report struct {
	Usable    int
	NotUsable int
	Failed    int
}

// Classifier buckets clips by duration.
type Classifier struct {
	prober     DurationProber
	minSeconds float64
	maxSeconds float64
	warn       WarnFunc
	moveFileFn func(src, dst string) error
}

// ClassifierOption configures NewClassifier.
type ClassifierOption func(*Classifier)

// WithBounds overrides the usable duration window.
func WithBounds(minSeconds, maxSeconds float64) ClassifierOption {
	return func(c *Classifier) {
		c.minSeconds = minSeconds
		c.maxSeconds = maxSeconds
	}
}

// WithWarnFunc routes warnings somewhere other than stderr.
func WithWarnFunc(warn WarnFunc) ClassifierOption {
	return func(c *Classifier) {
		if warn != nil {
			c.warn = warn
		}
	}
}

// withMoveFile overrides the file move for tests.
func withMoveFile(fn func(src, dst string) error) ClassifierOption {
	return func(c *Classifier) { c.moveFileFn = fn }
}

// NewClassifier builds a Classifier around a duration prober.
func NewClassifier(prober DurationProber, opts ...ClassifierOption) (*Classifier, error) {
	if prober == nil {
		return nil, fmt.Errorf("duration prober is required")
	}
	c := &Classifier{
		prober:     prober,
		minSeconds: DefaultMinSeconds,
		maxSeconds: DefaultMaxSeconds,
		warn: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
		moveFileFn: os.Rename,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.minSeconds < 0 || c.maxSeconds <= c.minSeconds {
		return nil, fmt.Errorf("bounds %gs..%gs are not a valid window", c.minSeconds, c.maxSeconds)
	}
	return c, nil
}

// Classify probes every clip directly under folder and moves it into
// Usable_Audios or Not_Usable_Audios. A clip that cannot be probed or
// moved is warned about and left in place; one bad file never stops
// the pass.
func (c *Classifier) Classify(ctx context.Context, folder string) (Report, error) {
	clips, err := listAudioFiles(folder)
	if err != nil {
		return Report{}, err
	}

	for _, dir := range []string{UsableDirName, NotUsableDirName} {
		if err := os.MkdirAll(filepath.Join(folder, dir), 0755); err != nil { // #nosec G301 -- dataset folder
			return Report{}, fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}

	var report Report
	for _, name := range clips {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		src := filepath.Join(folder, name)
		seconds, err := c.prober.ProbeDuration(ctx, src)
		if err != nil {
			c.warn("cannot probe %s: %v", name, err)
			report.Failed++
			continue
		}

		bucket := NotUsableDirName
		if seconds >= c.minSeconds && seconds <= c.maxSeconds {
			bucket = UsableDirName
		}
		if err := c.moveFileFn(src, filepath.Join(folder, bucket, name)); err != nil {
			c.warn("cannot move %s to %s: %v", name, bucket, err)
			report.Failed++
			continue
		}
		if bucket == UsableDirName {
			report.Usable++
		} else {
			report.NotUsable++
		}
	}
	return report, nil
}

// listAudioFiles returns the audio filenames directly under folder,
// sorted by name.
func listAudioFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %w", folder, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if audioExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
