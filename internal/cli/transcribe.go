package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voiceset/internal/transcribe"
)

// clampParallel constrains parallel request count to [1, MaxRecommendedParallel].
func clampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > transcribe.MaxRecommendedParallel {
		return transcribe.MaxRecommendedParallel
	}
	return n
}

// TranscribeCmd creates the transcribe command.
// The env parameter provides injectable dependencies for testing.
func TranscribeCmd(env *Env) *cobra.Command {
	var (
		output   string
		parallel int
		model    string
		language string
		prompt   string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <clip-folder>",
		Short: "Transcribe a folder of clips into a catalog",
		Long: `Transcribe every audio clip in a folder and write the master catalog.

Clips are transcribed in parallel and assembled into one JSON catalog keyed by
clip filename, in filename order. A clip that keeps failing is skipped with a
warning rather than aborting the batch.

Supported formats: flac, mp3, ogg, wav`,
		Example: `  voiceset transcribe clips/
  voiceset transcribe clips/ -o dataset/whisper.json
  voiceset transcribe clips/ -p 4 -l pt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, env, args[0], output, parallel, model, language, prompt)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Catalog file path (default: whisper.json inside the folder)")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", transcribe.MaxRecommendedParallel, "Max concurrent API requests (1-10)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Transcription model (default: whisper-1)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Audio language (ISO 639-1 code, e.g. en, fr, pt)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Context prompt to bias transcription vocabulary")

	return cmd
}

// runTranscribe executes the batch transcription.
// Validation order: folder exists -> API key -> parallel bounds.
func runTranscribe(cmd *cobra.Command, env *Env, folder, output string, parallel int, model, language, prompt string) error {
	ctx := cmd.Context()

	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, folder)
		}
		return fmt.Errorf("cannot access folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a folder", folder)
	}

	apiKey := env.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if model == "" {
		model = cfg.Model
	}

	parallel = clampParallel(parallel)
	transcriber := env.TranscriberFactory.NewTranscriber(apiKey, model)
	opts := transcribe.Options{Language: language, Prompt: prompt}

	fmt.Fprintln(env.Stderr, "Transcribing...")
	res, err := transcribe.Folder(ctx, transcriber, folder, output, opts, parallel,
		func(f string, args ...any) {
			fmt.Fprintf(env.Stderr, "Warning: "+f+"\n", args...)
		})
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "%d clip(s) transcribed", res.Transcribed)
	if res.Skipped > 0 {
		fmt.Fprintf(env.Stdout, ", %d skipped", res.Skipped)
	}
	fmt.Fprintf(env.Stdout, " -> %s\n", res.CatalogPath)
	return nil
}
