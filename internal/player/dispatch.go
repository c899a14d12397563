package player

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Dispatcher hands the extractors' downloads to a player. It satisfies the
// same contract as download.Downloader, so an extractor streams to the
// player without knowing it.
type Dispatcher struct {
	player Player
	log    *log.Logger
}

// NewDispatcher wraps p. logger may be nil.
func NewDispatcher(p Player, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Dispatcher{player: p, log: logger}
}

// DownloadURLs plays urls as one title. Output location, size and merge
// setting only matter for files and are ignored.
func (d *Dispatcher) DownloadURLs(urls []string, title, ext string, size int64, outputDir string, merge bool) error {
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to play")
	}
	d.log.Debug("launching player", "player", d.player.Name(), "title", title, "urls", len(urls))
	if err := d.player.Play(urls, title); err != nil {
		return fmt.Errorf("playing %s: %w", title, err)
	}
	return nil
}

// DownloadStream plays a segmented stream; players read HLS natively.
func (d *Dispatcher) DownloadStream(url, title, ext, outputDir string) error {
	return d.DownloadURLs([]string{url}, title, ext, 0, outputDir, false)
}
