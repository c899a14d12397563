// Package download retrieves the files the extractors choose: plain HTTP
// downloads with optional part merging, and segmented streams through
// ffmpeg. ffmpeg always runs via exec.Command with explicit argument
// slices, and output paths are validated against directory traversal.
package download

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"lulu/internal/httputil"
	"lulu/internal/media"
	"lulu/internal/ui"
)

// Downloader implements the extractors' download contract.
type Downloader struct {
	client   *httputil.Client
	ffmpeg   string
	log      *log.Logger
	progress io.Writer
	onDone   []func(media.Download)
}

// New creates a Downloader. ffmpeg is the command used for streams and
// merging; logger may be nil.
func New(client *httputil.Client, ffmpeg string, logger *log.Logger) *Downloader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &Downloader{
		client:   client,
		ffmpeg:   ffmpeg,
		log:      logger,
		progress: os.Stderr,
	}
}

// OnComplete registers fn to run after every finished download.
func (d *Downloader) OnComplete(fn func(media.Download)) {
	d.onDone = append(d.onDone, fn)
}

func (d *Downloader) complete(dl media.Download) {
	for _, fn := range d.onDone {
		fn(dl)
	}
}

// DownloadURLs fetches urls into outputDir/title.ext. Several URLs are
// parts of one file: they are saved as title[NN].ext and, when merge is
// set, joined with ffmpeg.
func (d *Downloader) DownloadURLs(urls []string, title, ext string, size int64, outputDir string, merge bool) error {
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to download")
	}

	absDir, err := prepareDir(outputDir)
	if err != nil {
		return err
	}

	outputPath, err := httputil.SafeDownloadPath(absDir, filename(title, ext))
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	if len(urls) == 1 {
		n, err := d.fetch(urls[0], outputPath, size)
		if err != nil {
			return err
		}
		d.complete(media.Download{URL: urls[0], Title: title, Ext: ext, Size: n, Path: outputPath})
		return nil
	}

	parts := make([]string, 0, len(urls))
	var total int64
	for i, u := range urls {
		partPath, err := httputil.SafeDownloadPath(absDir, filename(fmt.Sprintf("%s[%02d]", title, i), ext))
		if err != nil {
			return fmt.Errorf("invalid part path: %w", err)
		}
		n, err := d.fetch(u, partPath, 0)
		if err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
		total += n
		parts = append(parts, partPath)
	}

	if !merge {
		d.log.Info("parts kept unmerged", "count", len(parts), "dir", absDir)
		return nil
	}

	merged, err := d.mergeParts(parts, outputPath)
	if err != nil {
		return err
	}
	if !merged {
		// outputPath was never written; there is no single file to report
		return nil
	}
	d.complete(media.Download{URL: urls[0], Title: title, Ext: ext, Size: total, Path: outputPath})
	return nil
}

// fetch streams one URL into path through a .part file. An existing file
// of the expected size is kept as is.
func (d *Downloader) fetch(rawURL, path string, size int64) (int64, error) {
	known := size > 0 && size != media.InfiniteSize
	if fi, err := os.Stat(path); err == nil && known && fi.Size() == size {
		d.log.Info("skipping existing file", "path", path)
		return size, nil
	}

	resp, err := d.client.Open(rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if !known && resp.ContentLength > 0 {
		size = resp.ContentLength
	}

	tmpPath := path + ".part"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}

	bar := ui.NewProgress(d.progress, filepath.Base(path), size)
	n, err := io.Copy(io.MultiWriter(f, bar), resp.Body)
	bar.Finish()

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming download: %w", err)
	}

	d.log.Debug("downloaded", "url", rawURL, "path", path, "bytes", n)
	return n, nil
}

func prepareDir(outputDir string) (string, error) {
	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return absDir, nil
}

// filename builds a sanitized "title.ext".
func filename(title, ext string) string {
	name := httputil.SanitizeFilename(title)
	if ext == "" {
		return name
	}
	return name + "." + ext
}
