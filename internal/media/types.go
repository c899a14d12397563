// Package media defines shared types for the lulu application.
package media

import (
	"math"
	"strings"
)

// InfiniteSize marks a resource whose length the server did not report.
// It only affects how sizes are displayed.
const InfiniteSize int64 = math.MaxInt64

// ContentKind is the category of a probed URL.
type ContentKind int

const (
	KindDirectFile ContentKind = iota
	KindHTML
)

func (k ContentKind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindDirectFile:
		return "file"
	default:
		return "unknown"
	}
}

// KindOf folds a Content-Type header value into a ContentKind.
func KindOf(contentType string) ContentKind {
	if strings.HasPrefix(contentType, "text/html") {
		return KindHTML
	}
	return KindDirectFile
}

// Candidate is a discovered URL considered for download.
type Candidate struct {
	URL   string
	Title string
}

// Info describes a remote resource as reported by a lightweight probe.
type Info struct {
	Mime string // e.g., "video/mp4"
	Ext  string // e.g., "mp4"
	Size int64  // Content-Length in bytes, 0 when unknown
}

// Download is a completed file retrieval.
type Download struct {
	URL   string
	Title string
	Ext   string
	Size  int64
	Path  string // Local file path
}
