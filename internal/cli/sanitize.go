package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voiceset/internal/sanitize"
	"github.com/alnah/go-voiceset/internal/silence"
)

// SanitizeCmd creates the sanitize command.
// The env parameter provides injectable dependencies for testing.
func SanitizeCmd(env *Env) *cobra.Command {
	var (
		minSeconds    float64
		maxSeconds    float64
		backupCatalog bool
	)

	cmd := &cobra.Command{
		Use:   "sanitize <clip-folder>",
		Short: "Bucket clips by duration into usable and not-usable folders",
		Long: `Probe every clip's duration and sort it into Usable_Audios/ or
Not_Usable_Audios/. Clips that cannot be probed or moved stay put with a
warning.

With --backup-catalog, a timestamped snapshot of the folder's catalog JSON is
written before anything moves.`,
		Example: `  voiceset sanitize clips/
  voiceset sanitize clips/ --min 1 --max 8
  voiceset sanitize dataset/ --backup-catalog`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSanitize(cmd, env, args[0], minSeconds, maxSeconds, backupCatalog)
		},
	}

	cmd.Flags().Float64Var(&minSeconds, "min", sanitize.DefaultMinSeconds, "Minimum usable clip duration in seconds")
	cmd.Flags().Float64Var(&maxSeconds, "max", sanitize.DefaultMaxSeconds, "Maximum usable clip duration in seconds")
	cmd.Flags().BoolVar(&backupCatalog, "backup-catalog", false, "Snapshot the folder's catalog JSON first")

	return cmd
}

// runSanitize executes the classification pass.
func runSanitize(cmd *cobra.Command, env *Env, folder string, minSeconds, maxSeconds float64, backupCatalog bool) error {
	ctx := cmd.Context()

	if _, err := os.Stat(folder); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, folder)
		}
		return fmt.Errorf("cannot access folder: %w", err)
	}

	if backupCatalog {
		dst, err := sanitize.BackupDataset(folder, env.Now)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Catalog backed up to %s\n", dst)
	}

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)

	detector, err := env.DetectorFactory.NewDetector(ffmpegPath, silence.DefaultNoiseDB)
	if err != nil {
		return err
	}

	classifier, err := env.ClassifierFactory.NewClassifier(detector,
		sanitize.WithBounds(minSeconds, maxSeconds),
		sanitize.WithWarnFunc(func(f string, args ...any) {
			fmt.Fprintf(env.Stderr, "Warning: "+f+"\n", args...)
		}),
	)
	if err != nil {
		return err
	}

	report, err := classifier.Classify(ctx, folder)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "%d usable, %d not usable", report.Usable, report.NotUsable)
	if report.Failed > 0 {
		fmt.Fprintf(env.Stdout, ", %d left in place", report.Failed)
	}
	fmt.Fprintln(env.Stdout)
	return nil
}

// ReindexCmd creates the reindex command.
func ReindexCmd(env *Env) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "reindex <clip-folder>",
		Short: "Renumber clips into a clean zero-padded sequence",
		Long: `Rename every clip in a folder to {prefix}_{000001}.{ext} in name order.

Useful after curation has punched holes in the sequence. Renaming is staged
through temporary names, so overlapping old and new names cannot clobber each
other.`,
		Example: `  voiceset reindex clips/ --prefix book_ch01`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindex(env, args[0], prefix)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Clip filename prefix (required)")
	_ = cmd.MarkFlagRequired("prefix")

	return cmd
}

// runReindex executes the renumbering.
func runReindex(env *Env, folder, prefix string) error {
	if _, err := os.Stat(folder); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, folder)
		}
		return fmt.Errorf("cannot access folder: %w", err)
	}

	n, err := sanitize.Reindex(folder, prefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "%d clip(s) renamed\n", n)
	return nil
}
