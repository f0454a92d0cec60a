package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-voiceset/internal/apierr"
	"github.com/alnah/go-voiceset/internal/catalog"
)

// CatalogFileName is the master catalog a folder run writes.
const CatalogFileName = "whisper.json"

// audioExtensions lists the clip formats a folder run picks up.
var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
}

// WarnFunc receives per-clip failures that do not stop the batch.
type WarnFunc func(format string, args ...any)

// FolderResult summarizes one batch run.
type FolderResult struct {
	CatalogPath string
	Transcribed int
	Skipped     int
}

// Folder transcribes every audio clip directly under folder, up to
// maxParallel at a time, and writes the resulting catalog to
// catalogPath (default: whisper.json inside folder). Catalog keys
// follow filename order regardless of which clip finished first. A
// clip that keeps failing is skipped with a warning; auth and quota
// errors abort the batch, since every remaining clip would fail the
// same way.
func Folder(
	ctx context.Context,
	t Transcriber,
	folder string,
	catalogPath string,
	opts Options,
	maxParallel int,
	warn WarnFunc,
) (FolderResult, error) {
	if warn == nil {
		warn = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		}
	}
	if catalogPath == "" {
		catalogPath = filepath.Join(folder, CatalogFileName)
	}
	if maxParallel < 1 {
		maxParallel = 1
	}

	names, err := listAudioFiles(folder)
	if err != nil {
		return FolderResult{}, err
	}
	if len(names) == 0 {
		return FolderResult{}, fmt.Errorf("%s: %w", folder, ErrNoAudioFiles)
	}

	results := make([]*Result, len(names))
	sem := make(chan struct{}, maxParallel)
	var warnMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			res, err := t.Transcribe(gctx, filepath.Join(folder, name), opts)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if errors.Is(err, apierr.ErrAuthFailed) || errors.Is(err, apierr.ErrQuotaExceeded) {
					return fmt.Errorf("%s: %w", name, err)
				}
				warnMu.Lock()
				warn("skipping %s: %v", name, err)
				warnMu.Unlock()
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FolderResult{}, err
	}

	var entries []catalog.Entry
	var skipped int
	for i, name := range names {
		if results[i] == nil {
			skipped++
			continue
		}
		entries = append(entries, catalog.Entry{
			Key: name,
			Record: catalog.Record{
				Text:     results[i].Text,
				Segments: results[i].Segments,
			},
		})
	}
	if len(entries) == 0 {
		return FolderResult{}, fmt.Errorf("every clip in %s failed: %w", folder, ErrNoAudioFiles)
	}

	if err := catalog.WriteFile(catalogPath, entries); err != nil {
		return FolderResult{}, err
	}
	return FolderResult{
		CatalogPath: catalogPath,
		Transcribed: len(entries),
		Skipped:     skipped,
	}, nil
}

// listAudioFiles returns the audio filenames directly under folder,
// sorted by name.
func listAudioFiles(folder string) ([]string, error) {
	dirEntries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %w", folder, err)
	}
	var names []string
	for _, e := range dirEntries {
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
