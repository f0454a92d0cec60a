package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voiceset/internal/format"
	"github.com/alnah/go-voiceset/internal/silence"
)

// AnalyzeCmd creates the analyze command.
// The env parameter provides injectable dependencies for testing.
func AnalyzeCmd(env *Env) *cobra.Command {
	var (
		threshold float64
		noiseDB   float64
	)

	cmd := &cobra.Command{
		Use:   "analyze <audio-file>...",
		Short: "Report the silence profile of recordings",
		Long: `Probe each recording and report its duration and silence statistics at the
given threshold. Useful for picking a split threshold before committing to a
full segmentation run.`,
		Example: `  voiceset analyze book.wav
  voiceset analyze book.wav --threshold 0.5 --noise-db -30`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, env, args, threshold, noiseDB)
		},
	}

	cmd.Flags().Float64VarP(&threshold, "threshold", "t", DefaultTimeThreshold, "Minimum silence duration in seconds")
	cmd.Flags().Float64Var(&noiseDB, "noise-db", silence.DefaultNoiseDB, "Loudness ceiling for silence in dB")

	return cmd
}

// runAnalyze probes every input and prints one report per track.
func runAnalyze(cmd *cobra.Command, env *Env, inputs []string, threshold, noiseDB float64) error {
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

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)

	detector, err := env.DetectorFactory.NewDetector(ffmpegPath, noiseDB)
	if err != nil {
		return err
	}

	for _, input := range inputs {
		seconds, err := detector.ProbeDuration(ctx, input)
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		fmt.Fprintf(env.Stdout, "%s: %s\n", filepath.Base(input),
			format.Duration(time.Duration(seconds*float64(time.Second))))

		intervals, err := detector.Detect(ctx, input, threshold)
		if errors.Is(err, silence.ErrNoSilence) {
			fmt.Fprintf(env.Stdout, "  no silence of %gs or longer at %g dB\n", threshold, noiseDB)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}

		report := silence.Stats(intervals)
		fmt.Fprintf(env.Stdout, "  %d silence(s): shortest %s, longest %s, mean %s\n",
			report.Count,
			format.Seconds(report.Shortest),
			format.Seconds(report.Longest),
			format.Seconds(report.Mean))
	}
	return nil
}
