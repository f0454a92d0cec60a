package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voiceset/internal/catalog"
	"github.com/alnah/go-voiceset/internal/curate"
)

// CurateCmd creates the curate command.
// The env parameter provides injectable dependencies for testing.
func CurateCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curate <dataset-folder>",
		Short: "Review and fix a transcript catalog interactively",
		Long: `Page through a transcript catalog, fixing transcripts and pruning bad clips.

The folder must hold exactly one catalog JSON file. Before the first change a
one-time backup of the catalog is written next to it. Deleted records move to
the Discarded/ archive and their clips to audios/Discarded_Audios/; nothing is
destroyed outright.

Commands inside the session:
  next, prev          move one record
  goto <n>            jump to record n
  text <transcript>   stage a corrected transcript for the current record
  save                write staged text through to disk
  delete              archive the current record
  delrange <a> <b>    archive records a through b (numeric clip references)
  quit                leave the session`,
		Example: `  voiceset curate dataset/
  voiceset curate ~/datasets/book_ch01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurate(cmd, env, args[0])
		},
	}
	return cmd
}

// runCurate loads the catalog and drives the review loop. Curation
// errors become status lines and a safe state, never an abort; only
// I/O-level failures end the session early.
func runCurate(cmd *cobra.Command, env *Env, folder string) error {
	if _, err := os.Stat(folder); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, folder)
		}
		return fmt.Errorf("cannot access folder: %w", err)
	}

	cat, err := catalog.Load(folder)
	if err != nil {
		return err
	}

	session := curate.NewSession(cat, curate.WithWarnFunc(func(f string, args ...any) {
		fmt.Fprintf(env.Stderr, "Warning: "+f+"\n", args...)
	}))

	fmt.Fprintf(env.Stdout, "Loaded %s (%d records). Type a command, or quit to leave.\n",
		cat.Path(), cat.Len())
	printView(env, session.Current())

	var staged *string
	scanner := bufio.NewScanner(env.Stdin)
	for {
		fmt.Fprint(env.Stdout, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "quit", "q", "exit":
			return scanner.Err()

		case "next", "n":
			staged = nil
			printView(env, session.Step(1))

		case "prev", "p":
			staged = nil
			printView(env, session.Step(-1))

		case "goto", "g":
			n, err := strconv.Atoi(rest)
			if err != nil {
				fmt.Fprintf(env.Stdout, "goto needs a record number, got %q\n", rest)
				continue
			}
			staged = nil
			printView(env, session.GoTo(n-1))

		case "text", "t":
			if rest == "" {
				fmt.Fprintln(env.Stdout, "text needs the corrected transcript")
				continue
			}
			staged = &rest
			fmt.Fprintln(env.Stdout, "Staged. Type save to write it to disk.")

		case "save", "s":
			v := session.Current()
			text := v.Text
			if staged != nil {
				text = *staged
			}
			v, err := session.Save(text, v.Segments)
			if err != nil {
				fmt.Fprintf(env.Stdout, "Error: %v\n", err)
				continue
			}
			staged = nil
			fmt.Fprintf(env.Stdout, "Saved %s.\n", v.Key)

		case "delete", "d":
			v, err := session.DeleteOne()
			if err != nil {
				fmt.Fprintf(env.Stdout, "Error: %v\n", err)
				continue
			}
			staged = nil
			fmt.Fprintln(env.Stdout, "Deleted and archived.")
			printView(env, v)

		case "delrange":
			startRef, endRef, ok := strings.Cut(rest, " ")
			if !ok {
				fmt.Fprintln(env.Stdout, "delrange needs two numeric references, e.g. delrange 4 17")
				continue
			}
			v, err := session.DeleteRange(strings.TrimSpace(startRef), strings.TrimSpace(endRef))
			if err != nil {
				fmt.Fprintf(env.Stdout, "Error: %v\n", err)
				continue
			}
			staged = nil
			fmt.Fprintln(env.Stdout, "Deleted and archived.")
			printView(env, v)

		case "help", "h", "?":
			fmt.Fprintln(env.Stdout, "Commands: next prev goto <n> text <transcript> save delete delrange <a> <b> quit")

		default:
			fmt.Fprintf(env.Stdout, "Unknown command %q. Type help for the list.\n", verb)
		}
	}
	return scanner.Err()
}

// printView renders the current record for the reviewer.
func printView(env *Env, v curate.View) {
	if !v.Available {
		fmt.Fprintln(env.Stdout, "The catalog is empty.")
		return
	}
	fmt.Fprintf(env.Stdout, "[%s] %s\n", v.PageLabel(), v.Key)
	fmt.Fprintf(env.Stdout, "  audio: %s\n", v.AudioPath)
	fmt.Fprintf(env.Stdout, "  text:  %s\n", v.Text)
	for _, s := range v.Segments {
		fmt.Fprintf(env.Stdout, "    %7.2f-%7.2f  %s\n", s.Start, s.End, s.Text)
	}
}
