package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"lulu/internal/httputil"
	"lulu/internal/media"
)

// typeNames are display names for the extensions lulu knows about.
var typeNames = map[string]string{
	"3gp":  "3GPP",
	"asf":  "Advanced Systems Format",
	"flv":  "Flash video",
	"gif":  "GIF image",
	"jpg":  "JPEG image",
	"jpeg": "JPEG image",
	"m3u8": "M3U8 playlist",
	"mkv":  "Matroska video",
	"mov":  "QuickTime video",
	"mp3":  "MP3",
	"mp4":  "MPEG-4 video",
	"mpd":  "MPEG-DASH manifest",
	"ogg":  "Ogg audio",
	"pdf":  "PDF",
	"png":  "Portable Network Graphics",
	"ts":   "MPEG-TS video",
	"wav":  "Waveform Audio File Format",
	"webm": "WebM video",
	"webp": "WebP image",
}

// TypeName describes a mime type or a bare extension for display,
// e.g., "video/mp4" -> "MPEG-4 video (video/mp4)".
func TypeName(kind string) string {
	if kind == "" {
		return "Unknown type"
	}

	ext := strings.ToLower(kind)
	if strings.Contains(kind, "/") {
		ext = httputil.ExtByMime(kind)
	}

	name, ok := typeNames[ext]
	if !ok {
		return fmt.Sprintf("Unknown type (%s)", kind)
	}
	return fmt.Sprintf("%s (%s)", name, kind)
}

// FormatSize renders a byte count; unknown sizes render as "Unknown".
func FormatSize(size int64) string {
	if size <= 0 || size == media.InfiniteSize {
		return "Unknown"
	}
	return fmt.Sprintf("%s (%d Bytes)", humanize.IBytes(uint64(size)), size)
}

var labelStyle = lipgloss.NewStyle().Bold(true).Width(11)

// TextPrinter writes the human-readable info block shown before each download.
type TextPrinter struct {
	w io.Writer
}

// NewTextPrinter creates a TextPrinter writing to w.
func NewTextPrinter(w io.Writer) *TextPrinter {
	return &TextPrinter{w: w}
}

// PrintInfo writes one info block.
func (p *TextPrinter) PrintInfo(site, title, kind string, size int64) {
	fmt.Fprintf(p.w, "%s%s\n", labelStyle.Render("Site:"), site)
	fmt.Fprintf(p.w, "%s%s\n", labelStyle.Render("Title:"), title)
	fmt.Fprintf(p.w, "%s%s\n", labelStyle.Render("Type:"), TypeName(kind))
	fmt.Fprintf(p.w, "%s%s\n\n", labelStyle.Render("Size:"), FormatSize(size))
}

// JSONPrinter writes one JSON object per info line.
type JSONPrinter struct {
	enc *json.Encoder
}

// NewJSONPrinter creates a JSONPrinter writing to w.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{enc: json.NewEncoder(w)}
}

type infoRecord struct {
	Site  string `json:"site"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Size  *int64 `json:"size"` // null when unknown
}

// PrintInfo writes one JSON record.
func (p *JSONPrinter) PrintInfo(site, title, kind string, size int64) {
	rec := infoRecord{Site: site, Title: title, Type: kind}
	if size > 0 && size != media.InfiniteSize {
		rec.Size = &size
	}
	// An unwritable stdout leaves nothing useful to report to.
	_ = p.enc.Encode(rec)
}
