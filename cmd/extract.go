package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lulu/internal/config"
	"lulu/internal/download"
	"lulu/internal/embed"
	"lulu/internal/extract"
	"lulu/internal/history"
	"lulu/internal/httputil"
	"lulu/internal/media"
	"lulu/internal/player"
	"lulu/internal/ui"
)

// extractRun is the default command: lulu URL...
func extractRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	ex, cleanup, err := newExtractor()
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := extractOptions()
	if err != nil {
		return err
	}

	var failed int
	for _, u := range args {
		if err := runOne(ex, u, opts); err != nil {
			logger.Error("extraction failed", "url", u, "err", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d URLs failed", failed, len(args))
	}
	return nil
}

func runOne(ex extract.Extractor, rawURL string, opts extract.Options) error {
	if err := httputil.ValidateURL(rawURL); err != nil {
		return err
	}

	debugf("extracting %s (info only: %t, merge: %t)", rawURL, opts.InfoOnly, opts.Merge)

	if flagPlaylist {
		return ex.ExtractPlaylist(rawURL, opts)
	}
	return ex.Extract(rawURL, opts)
}

func extractOptions() (extract.Options, error) {
	dir, err := cfg.ExpandOutputDir()
	if err != nil {
		return extract.Options{}, fmt.Errorf("resolving output directory: %w", err)
	}
	return extract.Options{
		OutputDir: dir,
		Merge:     cfg.Merge,
		InfoOnly:  flagInfo,
	}, nil
}

// newExtractor wires the universal extractor to its collaborators. The
// returned cleanup func is always safe to call.
func newExtractor() (extract.Extractor, func(), error) {
	cleanup := func() {}

	client := httputil.New(httputil.Options{
		Timeout:     cfg.Timeout(),
		UserAgent:   cfg.UserAgent,
		MaxBodySize: cfg.MaxPageBytes(),
	})

	var printer extract.Printer = ui.NewTextPrinter(os.Stdout)
	if flagJSON {
		printer = ui.NewJSONPrinter(os.Stdout)
	}

	var dl extract.Downloader
	if cfg.Player != "" {
		p, err := player.New(cfg.Player, client.Headers().Get("User-Agent"))
		if err != nil {
			return nil, cleanup, err
		}
		if !p.Available() {
			return nil, cleanup, fmt.Errorf("player %q not found in PATH", p.Name())
		}
		dl = player.NewDispatcher(p, logger)
	} else {
		d := download.New(client, cfg.FFmpeg, logger)
		if cfg.History {
			if store := openHistory(); store != nil {
				d.OnComplete(recordTo(store))
				cleanup = func() { store.Close() }
			}
		}
		dl = d
	}

	embedder := embed.New(client, dl, printer, logger)
	return extract.NewUniversal(client, dl, printer, embedder, logger), cleanup, nil
}

// openHistory opens the history database. History is best effort: a broken
// database never blocks a download.
func openHistory() *history.Store {
	path, err := config.HistoryPath()
	if err != nil {
		logger.Warn("history disabled", "err", err)
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("history disabled", "err", err)
		return nil
	}
	return store
}

func recordTo(store *history.Store) func(media.Download) {
	return func(d media.Download) {
		if err := store.Record(d); err != nil {
			logger.Warn("could not record download", "path", d.Path, "err", err)
		}
	}
}
