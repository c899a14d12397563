// Package embed implements the embedded-player fallback: it looks at a
// page's DOM for media the page plays itself (<video>, <audio>, Open Graph
// video tags) and downloads that directly. Pages the extractor's own scan
// can handle are left to it, so HLS priority and filename titles hold.
package embed

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"lulu/internal/extract"
	"lulu/internal/httputil"
	"lulu/internal/media"
)

// streamExt is the container HLS sources are remuxed into.
const streamExt = "mp4"

// players are hosts whose iframes need a site-specific extractor.
var players = map[string]string{
	"youtube.com":          "YouTube",
	"youtube-nocookie.com": "YouTube",
	"youtu.be":             "YouTube",
	"vimeo.com":            "Vimeo",
	"dailymotion.com":      "Dailymotion",
	"bilibili.com":         "Bilibili",
	"twitch.tv":            "Twitch",
	"facebook.com":         "Facebook",
}

// Embedder scans pages for embedded players.
type Embedder struct {
	fetcher    extract.Fetcher
	downloader extract.Downloader
	printer    extract.Printer
	log        *log.Logger
}

// New creates an Embedder. logger may be nil.
func New(f extract.Fetcher, d extract.Downloader, p extract.Printer, logger *log.Logger) *Embedder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Embedder{fetcher: f, downloader: d, printer: p, log: logger}
}

var _ extract.Embedder = (*Embedder)(nil)

// Extract downloads the media embedded in the page at rawURL. It reports
// EmbedNotApplicable when the page scan finds media on its own, or when the
// page embeds nothing it can download itself.
func (e *Embedder) Extract(rawURL string, opts extract.Options) (extract.EmbedResult, error) {
	body, err := e.fetcher.Content(rawURL)
	if err != nil {
		return extract.EmbedNotApplicable, fmt.Errorf("fetching page: %w", err)
	}

	if extract.Scannable(body) {
		e.log.Debug("page has scannable media, leaving it to the scan", "url", rawURL)
		return extract.EmbedNotApplicable, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return extract.EmbedNotApplicable, fmt.Errorf("parsing page: %w", err)
	}

	sources := mediaSources(doc, rawURL)
	if len(sources) == 0 {
		for _, p := range playerFrames(doc, rawURL) {
			e.log.Info("page embeds a third-party player", "player", p.name, "url", p.url)
		}
		return extract.EmbedNotApplicable, nil
	}

	site := extract.SiteLabel(rawURL)
	title := pageTitle(doc)
	if title == "" {
		title = site
	}

	handled := 0
	for _, src := range sources {
		info, err := e.fetcher.URLInfo(src)
		if err != nil {
			e.log.Debug("skipping embedded source", "url", src, "err", err)
			continue
		}
		if media.KindOf(info.Mime) == media.KindHTML {
			e.log.Debug("embedded source is a page", "url", src)
			continue
		}

		name := extract.NumberedTitle(title, handled)
		handled++

		if err := e.dispatch(src, site, name, info, opts); err != nil {
			return extract.EmbedHandled, err
		}
	}

	if handled == 0 {
		return extract.EmbedNotApplicable, nil
	}
	return extract.EmbedHandled, nil
}

func (e *Embedder) dispatch(src, site, title string, info media.Info, opts extract.Options) error {
	size := info.Size
	if size == 0 {
		size = media.InfiniteSize
	}

	if isPlaylist(src, info) {
		e.printer.PrintInfo(site, title, info.Mime, size)
		if opts.InfoOnly {
			return nil
		}
		if err := e.downloader.DownloadStream(src, title, streamExt, opts.OutputDir); err != nil {
			return fmt.Errorf("downloading stream %s: %w", src, err)
		}
		return nil
	}

	e.printer.PrintInfo(site, title, info.Ext, size)
	if opts.InfoOnly {
		return nil
	}
	if err := e.downloader.DownloadURLs([]string{src}, title, info.Ext, size, opts.OutputDir, opts.Merge); err != nil {
		return fmt.Errorf("downloading %s: %w", src, err)
	}
	return nil
}

func isPlaylist(src string, info media.Info) bool {
	if info.Ext == "m3u8" {
		return true
	}
	if strings.Contains(strings.ToLower(info.Mime), "mpegurl") {
		return true
	}
	u, err := url.Parse(src)
	return err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".m3u8")
}

// mediaSources collects the direct media URLs of a page in document order,
// resolved against pageURL and without duplicates.
func mediaSources(doc *goquery.Document, pageURL string) []string {
	var refs []string

	doc.Find("video[src], audio[src], video source[src], audio source[src]").Each(func(_ int, s *goquery.Selection) {
		refs = append(refs, s.AttrOr("src", ""))
	})

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		prop := strings.ToLower(s.AttrOr("property", s.AttrOr("name", "")))
		switch prop {
		case "og:video", "og:video:url", "og:video:secure_url", "og:audio", "og:audio:url":
			refs = append(refs, s.AttrOr("content", ""))
		}
	})

	seen := make(map[string]bool)
	var sources []string
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" || strings.HasPrefix(ref, "blob:") || strings.HasPrefix(ref, "data:") {
			continue
		}
		abs, err := httputil.ResolveURL(pageURL, ref)
		if err != nil || httputil.ValidateURL(abs) != nil {
			continue
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		sources = append(sources, abs)
	}
	return sources
}

type frame struct {
	name string
	url  string
}

// playerFrames lists iframes pointing at known third-party players.
func playerFrames(doc *goquery.Document, pageURL string) []frame {
	var frames []frame
	doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		abs, err := httputil.ResolveURL(pageURL, s.AttrOr("src", ""))
		if err != nil {
			return
		}
		u, err := url.Parse(abs)
		if err != nil {
			return
		}
		if name, ok := playerName(u.Hostname()); ok {
			frames = append(frames, frame{name: name, url: abs})
		}
	})
	return frames
}

func playerName(host string) (string, bool) {
	host = strings.ToLower(host)
	for domain, name := range players {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return name, true
		}
	}
	return "", false
}

// pageTitle prefers og:title over <title>.
func pageTitle(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
