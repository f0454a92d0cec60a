package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voiceset/internal/convert"
)

// ConvertCmd creates the convert command.
// The env parameter provides injectable dependencies for testing.
func ConvertCmd(env *Env) *cobra.Command {
	var targetFormat string

	cmd := &cobra.Command{
		Use:   "convert <in-folder> <out-folder>",
		Short: "Re-encode a folder of clips into one format",
		Long: `Convert every audio clip under a folder to a single target format via
ffmpeg, keeping base names. A clip that fails to convert is skipped with a
warning.`,
		Example: `  voiceset convert raw/ clips/ -f wav
  voiceset convert clips/ mp3s/ -f mp3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, env, args[0], args[1], targetFormat)
		},
	}

	cmd.Flags().StringVarP(&targetFormat, "format", "f", "wav", "Target format: wav, mp3, flac, ogg")

	return cmd
}

// runConvert executes the folder conversion.
func runConvert(cmd *cobra.Command, env *Env, in, out, targetFormat string) error {
	ctx := cmd.Context()

	if _, err := os.Stat(in); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, in)
		}
		return fmt.Errorf("cannot access folder: %w", err)
	}

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)

	converter, err := env.ConverterFactory.NewConverter(ffmpegPath,
		convert.WithWarnFunc(func(f string, args ...any) {
			fmt.Fprintf(env.Stderr, "Warning: "+f+"\n", args...)
		}))
	if err != nil {
		return err
	}

	n, err := converter.Folder(ctx, in, out, targetFormat)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "%d clip(s) converted -> %s\n", n, out)
	return nil
}
