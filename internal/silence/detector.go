// Package silence wraps FFmpeg's silencedetect filter behind a small
// adapter that the segmentation engine can call with per-slice thresholds.
package silence

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-voiceset/internal/ffmpeg"
	"github.com/alnah/go-voiceset/internal/interval"
)

// DefaultNoiseDB is the loudness threshold below which audio counts as
// silence. -23dB matches typical voice recordings with room tone.
const DefaultNoiseDB = -23.0

// Detector finds silence intervals in an audio file.
type Detector interface {
	// Detect returns the time-ordered silence intervals of at least
	// minSilence seconds in the file at path. Returns ErrNoSilence when
	// the detector ran but reported zero markers; an empty result is
	// never returned without an error.
	Detect(ctx context.Context, path string, minSilence float64) ([]interval.Interval, error)
}

// Compile-time interface check.
var _ Detector = (*FFmpegDetector)(nil)

// FFmpegDetector runs ffmpeg's silencedetect filter and parses its
// stderr report. One ffmpeg invocation per Detect call.
type FFmpegDetector struct {
	ffmpegPath string
	noiseDB    float64
	executor   *ffmpeg.Executor
}

// DetectorOption configures an FFmpegDetector.
type DetectorOption func(*FFmpegDetector)

// WithNoiseDB sets the loudness threshold in dB.
// Lower values (more negative) require quieter audio to count as silence.
func WithNoiseDB(db float64) DetectorOption {
	return func(d *FFmpegDetector) { d.noiseDB = db }
}

// WithExecutor sets the ffmpeg executor (for testing).
func WithExecutor(e *ffmpeg.Executor) DetectorOption {
	return func(d *FFmpegDetector) { d.executor = e }
}

// NewFFmpegDetector creates a detector using the ffmpeg binary at ffmpegPath.
func NewFFmpegDetector(ffmpegPath string, opts ...DetectorOption) (*FFmpegDetector, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	d := &FFmpegDetector{
		ffmpegPath: ffmpegPath,
		noiseDB:    DefaultNoiseDB,
		executor:   ffmpeg.NewExecutor(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Detect runs silencedetect on the file and parses the report.
func (d *FFmpegDetector) Detect(ctx context.Context, path string, minSilence float64) ([]interval.Interval, error) {
	args := []string{
		"-i", path,
		"-af", fmt.Sprintf("silencedetect=n=%ddB:d=%s",
			int(d.noiseDB),
			strconv.FormatFloat(minSilence, 'f', -1, 64)),
		"-f", "null",
		"-",
	}

	output, err := d.executor.RunOutput(ctx, d.ffmpegPath, args)
	if err != nil && output == "" {
		return nil, fmt.Errorf("silencedetect on %s: %w", path, err)
	}

	intervals, sawMarker := parseReport(output)
	if !sawMarker {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSilence)
	}
	return intervals, nil
}

// ProbeDuration returns the duration of an audio file in seconds,
// parsed from ffmpeg's probe output. A file ffmpeg cannot read is a
// decode failure, fatal for that track.
func (d *FFmpegDetector) ProbeDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-i", path,
		"-f", "null", "-",
	}
	output, err := d.executor.RunOutput(ctx, d.ffmpegPath, args)
	if err != nil && output == "" {
		return 0, fmt.Errorf("%s: %v: %w", path, err, ffmpeg.ErrDecodeFailed)
	}

	dur, err := ParseDuration(output)
	if err != nil {
		return 0, fmt.Errorf("%s: %v: %w", path, err, ffmpeg.ErrDecodeFailed)
	}
	return dur, nil
}

// Regex patterns for the silencedetect report - tolerant of format variations.
var (
	startRe    = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	endRe      = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	timeRe     = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// parseReport extracts silence intervals from silencedetect output.
// FFmpeg emits lines like:
//
//	[silencedetect @ 0x...] silence_start: 42.123
//	[silencedetect @ 0x...] silence_end: 43.456 | silence_duration: 1.333
//
// Starts and ends are paired by their label, not by raw position, so a
// truncated report (a start with no matching end at the track's tail)
// yields only the complete pairs. sawMarker reports whether any marker
// line appeared at all, letting callers distinguish "ran but found
// nothing" from parse trouble.
func parseReport(output string) (intervals []interval.Interval, sawMarker bool) {
	var currentStart float64
	hasStart := false

	for _, line := range strings.Split(output, "\n") {
		if matches := startRe.FindStringSubmatch(line); matches != nil {
			sawMarker = true
			if seconds, err := strconv.ParseFloat(matches[1], 64); err == nil {
				currentStart = seconds
				hasStart = true
			}
		}
		if matches := endRe.FindStringSubmatch(line); matches != nil {
			sawMarker = true
			if !hasStart {
				// An end with no preceding start: malformed report,
				// drop the marker instead of mis-pairing.
				continue
			}
			if seconds, err := strconv.ParseFloat(matches[1], 64); err == nil {
				intervals = append(intervals, interval.Interval{
					Start: currentStart,
					End:   seconds,
				})
				hasStart = false
			}
		}
	}

	return intervals, sawMarker
}

// ParseDuration extracts a duration in seconds from FFmpeg stderr.
// Looks for "Duration: HH:MM:SS.ms", falling back to the last
// "time=HH:MM:SS.ms" progress line.
func ParseDuration(output string) (float64, error) {
	if matches := durationRe.FindStringSubmatch(output); matches != nil {
		return timeComponents(matches[1], matches[2], matches[3], matches[4]), nil
	}

	allMatches := timeRe.FindAllStringSubmatch(output, -1)
	if len(allMatches) > 0 {
		matches := allMatches[len(allMatches)-1]
		return timeComponents(matches[1], matches[2], matches[3], matches[4]), nil
	}

	return 0, fmt.Errorf("could not parse duration from ffmpeg output")
}

// timeComponents converts HH:MM:SS.frac strings to seconds.
func timeComponents(hours, minutes, seconds, fractional string) float64 {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	frac, _ := strconv.ParseFloat("0."+fractional, 64)
	return float64(h*3600+m*60+s) + frac
}
