// Package extract discovers downloadable media behind arbitrary URLs and
// hands it to the download collaborators.
package extract

import (
	"errors"
	"net/http"

	"lulu/internal/media"
)

var (
	// ErrProbeFailed is returned when the initial content-type probe fails.
	ErrProbeFailed = errors.New("content-type probe failed")

	// ErrPlaylistNotSupported is returned by extractors without playlist mode.
	ErrPlaylistNotSupported = errors.New("playlist extraction not supported")
)

// Options control a single extraction run.
type Options struct {
	OutputDir string
	Merge     bool
	InfoOnly  bool
}

// Extractor downloads the media found behind a URL.
type Extractor interface {
	// Extract finds media behind url and downloads it unless opts.InfoOnly.
	Extract(url string, opts Options) error

	// ExtractPlaylist does the same for every item of a playlist page.
	ExtractPlaylist(url string, opts Options) error
}

// Fetcher is the HTTP side of an extraction.
type Fetcher interface {
	// Head issues a HEAD (or GET) request and returns the response headers.
	Head(url string, headers http.Header, method string) (http.Header, error)

	// Headers returns the browser-like headers used for probes.
	Headers() http.Header

	// Content returns the decoded response body.
	Content(url string) (string, error)

	// URLInfo probes a URL for its mime type, extension and size.
	URLInfo(url string) (media.Info, error)
}

// Downloader retrieves files once the extractor has chosen them.
type Downloader interface {
	// DownloadURLs fetches urls into one title.ext file, merging parts when asked.
	DownloadURLs(urls []string, title, ext string, size int64, outputDir string, merge bool) error

	// DownloadStream fetches a segmented stream (HLS) through ffmpeg.
	DownloadStream(url, title, ext, outputDir string) error
}

// Printer shows the user what is about to be downloaded.
type Printer interface {
	PrintInfo(site, title, kind string, size int64)
}

// EmbedResult reports whether the embedded-player fallback took the URL.
type EmbedResult int

const (
	// EmbedNotApplicable means the page holds nothing the embed strategy handles.
	EmbedNotApplicable EmbedResult = iota
	// EmbedHandled means media was found and dispatched; nothing else to do.
	EmbedHandled
)

func (r EmbedResult) String() string {
	switch r {
	case EmbedHandled:
		return "handled"
	case EmbedNotApplicable:
		return "not applicable"
	default:
		return "unknown"
	}
}

// Embedder is the embedded-player extraction strategy tried before scanning.
type Embedder interface {
	Extract(url string, opts Options) (EmbedResult, error)
}
