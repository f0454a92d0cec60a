package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voiceset/internal/format"
	"github.com/alnah/go-voiceset/internal/segment"
	"github.com/alnah/go-voiceset/internal/silence"
	"github.com/alnah/go-voiceset/internal/transcribe"
)

// DefaultTimeThreshold is the minimum silence duration, in seconds,
// considered a cut point on the first detection pass.
const DefaultTimeThreshold = 0.3

// supportedFormats lists the audio containers the pipeline accepts.
var supportedFormats = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// SplitCmd creates the split command.
// The env parameter provides injectable dependencies for testing.
func SplitCmd(env *Env) *cobra.Command {
	var (
		output       string
		prefix       string
		threshold    float64
		noiseDB      float64
		exportFormat string
		doTranscribe bool
		model        string
		language     string
	)

	cmd := &cobra.Command{
		Use:   "split <audio-file>...",
		Short: "Split recordings into short clips at silence gaps",
		Long: `Split long recordings into utterance-length clips cut at silence midpoints.

Each track is sliced recursively: a slice longer than the clip bound is
re-examined with progressively finer silence thresholds until it fits, or is
exported as-is when no further silence exists. With --transcribe, each clip's
filename carries a sanitized fragment of its spoken text.

Supported formats: flac, m4a, mp3, ogg, wav`,
		Example: `  voiceset split book.wav -o clips/ --prefix book_ch01
  voiceset split session.mp3 --threshold 0.5
  voiceset split chapter1.wav chapter2.wav -o clips/
  voiceset split book.wav --transcribe -l pt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, env, args, output, prefix, threshold, noiseDB, exportFormat, doTranscribe, model, language)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory for clips (default: <input>_clips)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Clip filename prefix (default: input basename; single input only)")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", DefaultTimeThreshold, "Minimum silence duration in seconds")
	cmd.Flags().Float64Var(&noiseDB, "noise-db", silence.DefaultNoiseDB, "Loudness ceiling for silence in dB")
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Export format: wav, mp3, flac, ogg (default: source format)")
	cmd.Flags().BoolVar(&doTranscribe, "transcribe", false, "Label clip filenames with transcript fragments")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Transcription model (default: whisper-1)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Audio language (ISO 639-1 code, e.g. en, fr, pt)")

	return cmd
}

// runSplit executes the segmentation pipeline over every input track.
// Validation order: files exist -> formats -> threshold -> prefix -> API key.
func runSplit(cmd *cobra.Command, env *Env, inputs []string, output, prefix string, threshold, noiseDB float64, exportFormat string, doTranscribe bool, model, language string) error {
	ctx := cmd.Context()

	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, input)
			}
			return fmt.Errorf("cannot access input file: %w", err)
		}
		ext := strings.ToLower(filepath.Ext(input))
		if !supportedFormats[ext] {
			return fmt.Errorf("unsupported format %q (supported: %s): %w",
				ext, supportedFormatsList(), ErrUnsupportedFormat)
		}
	}

	if threshold <= 0 {
		return fmt.Errorf("%g: %w", threshold, ErrInvalidThreshold)
	}
	if prefix != "" && len(inputs) > 1 {
		return fmt.Errorf("--prefix applies to a single input; got %d files", len(inputs))
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	var labeler segment.Transcriber
	if doTranscribe {
		apiKey := env.Getenv(EnvOpenAIAPIKey)
		if apiKey == "" {
			return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
		}
		if model == "" {
			model = cfg.Model
		}
		labeler = &transcribe.FragmentLabeler{
			Transcriber: env.TranscriberFactory.NewTranscriber(apiKey, model),
			Opts:        transcribe.Options{Language: language},
		}
	}

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)

	detector, err := env.DetectorFactory.NewDetector(ffmpegPath, noiseDB)
	if err != nil {
		return err
	}

	var failed []string
	for _, input := range inputs {
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

		trackPrefix := prefix
		if trackPrefix == "" {
			trackPrefix = stem
		}
		outputDir := output
		if outputDir == "" {
			outputDir = stem + "_clips"
			if cfg.OutputDir != "" {
				outputDir = filepath.Join(cfg.OutputDir, outputDir)
			}
		}

		segCfg := segment.Config{
			Prefix:        trackPrefix,
			OutputDir:     outputDir,
			ExportFormat:  exportFormat,
			TimeThreshold: threshold,
		}
		var opts []segment.Option
		if labeler != nil {
			opts = append(opts, segment.WithTranscriber(labeler))
		}
		opts = append(opts, segment.WithWarnFunc(func(msg string) {
			fmt.Fprintf(env.Stderr, "Warning: %s\n", msg)
		}))

		splitter, err := env.SplitterFactory.NewSplitter(ffmpegPath, detector, segCfg, opts...)
		if err != nil {
			return err
		}

		fmt.Fprintf(env.Stderr, "Splitting %s...\n", input)
		clips, err := splitter.Split(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(env.Stderr, "Error: %s: %v\n", input, err)
			failed = append(failed, input)
			continue
		}

		var total, degraded int
		var seconds float64
		for _, c := range clips {
			total++
			seconds += c.Duration()
			if c.Degraded {
				degraded++
			}
		}
		fmt.Fprintf(env.Stdout, "%s: %d clips (%s) -> %s\n",
			filepath.Base(input), total, format.Duration(time.Duration(seconds*float64(time.Second))), outputDir)
		if degraded > 0 {
			fmt.Fprintf(env.Stderr, "Warning: %d clip(s) exported oversized, no usable silence found\n", degraded)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to split %d of %d track(s): %s",
			len(failed), len(inputs), strings.Join(failed, ", "))
	}
	return nil
}
