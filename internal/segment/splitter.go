// Package segment turns one long audio track into short, silence-bounded
// clips. Oversized slices are re-split recursively at silence midpoints,
// re-detecting with progressively smaller thresholds; slices that resist
// splitting are exported whole rather than dropped.
package segment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-voiceset/internal/ffmpeg"
	"github.com/alnah/go-voiceset/internal/interval"
	"github.com/alnah/go-voiceset/internal/silence"
)

// Splitting parameters.
const (
	// maxLeafSeconds is the "short enough" bound for an exported clip.
	// 11 seconds matches the downstream voice-model input constraint.
	maxLeafSeconds = 11.0

	// retryFactor shrinks the silence-duration threshold on each
	// re-detection of an oversized slice. 0.625 was chosen empirically
	// to surface finer pauses without over-splitting.
	retryFactor = 0.625

	// maxDetectRetries bounds the threshold reductions per slice.
	maxDetectRetries = 2

	// maxDepth caps the recursion as a safety net against degenerate
	// detector output; a slice at this depth is exported as-is.
	maxDepth = 16

	// minChildSeconds discards midpoints that would produce a
	// near-empty child slice, which could otherwise recurse forever.
	minChildSeconds = 0.01
)

// Transcriber labels a clip with its spoken text. Used only for the
// filename suffix; failures degrade to an unlabeled export.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Detector locates silences and probes track duration. Satisfied by
// *silence.FFmpegDetector.
type Detector interface {
	Detect(ctx context.Context, path string, minSilence float64) ([]interval.Interval, error)
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Compile-time interface check.
var _ Detector = (*silence.FFmpegDetector)(nil)

// Clip is one exported leaf segment.
type Clip struct {
	Path     string  // Absolute path of the exported file.
	Index    int     // Sequence number used in the filename, 1-based.
	Start    float64 // Start offset in the source track, seconds.
	End      float64 // End offset in the source track, seconds.
	Fragment string  // Sanitized transcript fragment, "" if unlabeled.
	Degraded bool    // Exported unsplit after exhausting re-detection.
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	return c.End - c.Start
}

func (c Clip) String() string {
	return fmt.Sprintf("clip %06d: %.3f-%.3f", c.Index, c.Start, c.End)
}

// Config holds per-run splitting parameters.
type Config struct {
	// Prefix names the output clips, e.g. "book_ch01".
	Prefix string

	// OutputDir receives the exported clips. Created if missing.
	OutputDir string

	// ExportFormat is the output container. Empty means "derive from
	// the source via ResolveExportFormat".
	ExportFormat string

	// TimeThreshold is the configured minimum silence duration in
	// seconds. Re-detections on oversized slices use reductions of it.
	TimeThreshold float64
}

// WarnFunc receives non-fatal diagnostics. Nil suppresses them.
type WarnFunc func(msg string)

// defaultWarnFunc writes warnings to stderr.
func defaultWarnFunc(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// Splitter slices audio tracks at silence midpoints.
type Splitter struct {
	ffmpegPath  string
	detector    Detector
	cfg         Config
	transcriber Transcriber
	warn        WarnFunc

	// Injectable dependencies (defaults to OS implementations).
	cmd     commandRunner
	tempDir tempDirCreator
	files   fileRemover
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithTranscriber enables transcript fragments in clip filenames.
func WithTranscriber(t Transcriber) Option {
	return func(s *Splitter) { s.transcriber = t }
}

// WithWarnFunc sets a callback for warning messages.
// By default, warnings are written to stderr. Set to nil to suppress.
func WithWarnFunc(fn WarnFunc) Option {
	return func(s *Splitter) { s.warn = fn }
}

// WithCommandRunner sets the command runner (for testing).
func WithCommandRunner(r commandRunner) Option {
	return func(s *Splitter) { s.cmd = r }
}

// WithTempDirCreator sets the temp directory creator (for testing).
func WithTempDirCreator(t tempDirCreator) Option {
	return func(s *Splitter) { s.tempDir = t }
}

// WithFileRemover sets the file remover (for testing).
func WithFileRemover(f fileRemover) Option {
	return func(s *Splitter) { s.files = f }
}

// NewSplitter creates a Splitter for one or more tracks.
func NewSplitter(ffmpegPath string, detector Detector, cfg Config, opts ...Option) (*Splitter, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	if detector == nil {
		return nil, fmt.Errorf("detector cannot be nil")
	}
	if cfg.TimeThreshold <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, cfg.TimeThreshold)
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}

	s := &Splitter{
		ffmpegPath: ffmpegPath,
		detector:   detector,
		cfg:        cfg,
		warn:       defaultWarnFunc,
		cmd:        osCommandRunner{},
		tempDir:    osTempDirCreator{},
		files:      osFileRemover{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Split slices trackPath into clips under cfg.OutputDir.
// Returned clips are ordered chronologically with strictly increasing,
// contiguous sequence numbers starting at 1. A track that cannot be
// decoded fails as a whole; per-clip transcription failures degrade to
// unlabeled exports.
func (s *Splitter) Split(ctx context.Context, trackPath string) ([]Clip, error) {
	total, err := s.detector.ProbeDuration(ctx, trackPath)
	if err != nil {
		return nil, err
	}

	format := s.cfg.ExportFormat
	if format == "" {
		format = ResolveExportFormat(trackPath)
	}
	prefix := s.cfg.Prefix
	if prefix == "" {
		base := filepath.Base(trackPath)
		prefix = base[:len(base)-len(filepath.Ext(base))]
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0750); err != nil { // #nosec G301 -- user output dir
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}

	tempDir, err := s.tempDir.MkdirTemp("", "voiceset-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = s.files.RemoveAll(tempDir) }()

	run := &splitRun{
		Splitter: s,
		track:    trackPath,
		tempDir:  tempDir,
		format:   format,
		prefix:   prefix,
	}

	clips, _, err := run.splitRange(ctx, 0, total, s.cfg.TimeThreshold, 1, 0)
	return clips, err
}

// splitRun carries per-track state so the Splitter itself stays reusable.
type splitRun struct {
	*Splitter
	track   string
	tempDir string
	format  string
	prefix  string
}

// splitRange processes the job [start, end) at the given threshold.
// counter is the next sequence number; the updated value is threaded
// back through the return so the whole run shares one monotonically
// increasing sequence without ambient state.
func (r *splitRun) splitRange(ctx context.Context, start, end, threshold float64, counter, depth int) ([]Clip, int, error) {
	duration := end - start

	slicePath := filepath.Join(r.tempDir, fmt.Sprintf("slice_%011.3f_%011.3f.%s", start, end, r.format))
	if err := r.extract(ctx, slicePath, start, end); err != nil {
		return nil, counter, err
	}

	// Leaf: short enough to export directly.
	if duration <= maxLeafSeconds {
		clip, err := r.exportLeaf(ctx, slicePath, start, end, counter, false)
		if err != nil {
			return nil, counter, err
		}
		return []Clip{clip}, counter + 1, nil
	}

	// Oversized: look for finer silences at reduced thresholds.
	var mids []float64
	childThreshold := threshold * retryFactor
	if depth < maxDepth {
		mids, childThreshold = r.redetect(ctx, slicePath, threshold)
	}

	boundaries := childBoundaries(start, end, mids)
	if len(boundaries) < 3 {
		// No usable split point after both retries: degraded leaf.
		r.warnf("no silence found in %.1fs slice at %.3f, exporting unsplit (degraded leaf)",
			duration, start)
		clip, err := r.exportLeaf(ctx, slicePath, start, end, counter, true)
		if err != nil {
			return nil, counter, err
		}
		return []Clip{clip}, counter + 1, nil
	}

	// Recurse left to right so sequence numbers follow track order.
	var clips []Clip
	for i := 0; i < len(boundaries)-1; i++ {
		childClips, next, err := r.splitRange(ctx, boundaries[i], boundaries[i+1], childThreshold, counter, depth+1)
		if err != nil {
			return nil, counter, err
		}
		clips = append(clips, childClips...)
		counter = next
	}
	return clips, counter, nil
}

// redetect runs silence detection on a materialized slice, reducing the
// threshold by retryFactor per attempt, up to maxDetectRetries attempts.
// Returns the midpoints of the first successful detection, in slice
// coordinates, together with the threshold that found them so children
// keep shrinking from there; mids is nil when every attempt came back
// empty.
func (r *splitRun) redetect(ctx context.Context, slicePath string, threshold float64) (mids []float64, used float64) {
	t := threshold
	for attempt := 0; attempt < maxDetectRetries; attempt++ {
		t *= retryFactor
		intervals, err := r.detector.Detect(ctx, slicePath, t)
		if err != nil {
			if !errors.Is(err, silence.ErrNoSilence) {
				// Detection trouble is not worth losing audio over;
				// treat like silence-free and let the caller degrade.
				r.warnf("silence detection failed on %s: %v", filepath.Base(slicePath), err)
				return nil, t
			}
			continue
		}
		if mids := interval.Midpoints(intervals, interval.WarnFunc(r.warn)); len(mids) > 0 {
			return mids, t
		}
	}
	return nil, t
}

// childBoundaries maps slice-relative midpoints back to track
// coordinates and assembles [start, m1, ..., mk, end], dropping any
// point that would create a child shorter than minChildSeconds.
func childBoundaries(start, end float64, mids []float64) []float64 {
	boundaries := make([]float64, 0, len(mids)+2)
	boundaries = append(boundaries, start)
	for _, m := range mids {
		abs := start + m
		if abs-boundaries[len(boundaries)-1] < minChildSeconds {
			continue
		}
		if abs > end-minChildSeconds {
			break
		}
		boundaries = append(boundaries, abs)
	}
	return append(boundaries, end)
}

// exportLeaf writes the final clip file and returns its record.
// When a transcriber is configured, the materialized slice is labeled
// first; a transcription failure is warned about and the clip is
// exported without a suffix.
func (r *splitRun) exportLeaf(ctx context.Context, slicePath string, start, end float64, counter int, degraded bool) (Clip, error) {
	var fragment string
	if r.transcriber != nil {
		text, err := r.transcriber.Transcribe(ctx, slicePath)
		if err != nil {
			r.warnf("transcription failed for clip %06d, exporting unlabeled: %v", counter, err)
		} else {
			fragment = SanitizeFragment(text)
		}
	}

	finalPath := filepath.Join(r.cfg.OutputDir, clipName(r.prefix, counter, fragment, r.format))
	if err := r.extract(ctx, finalPath, start, end); err != nil {
		return Clip{}, err
	}

	return Clip{
		Path:     finalPath,
		Index:    counter,
		Start:    start,
		End:      end,
		Fragment: fragment,
		Degraded: degraded,
	}, nil
}

// extract cuts [start, end) from the source track into destPath.
func (r *splitRun) extract(ctx context.Context, destPath string, start, end float64) error {
	args := []string{
		"-y",
		"-i", r.track,
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		destPath,
	}
	output, err := r.cmd.CombinedOutput(ctx, r.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: %s [%.3f-%.3f]: %v\nOutput: %s",
			ErrSliceFailed, filepath.Base(destPath), start, end, err, string(output))
	}
	return nil
}

func (r *splitRun) warnf(format string, args ...any) {
	if r.warn != nil {
		r.warn(fmt.Sprintf(format, args...))
	}
}

// formatSeconds formats an offset for FFmpeg -ss/-to arguments.
func formatSeconds(sec float64) string {
	h := int(sec) / 3600
	m := (int(sec) % 3600) / 60
	s := sec - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
