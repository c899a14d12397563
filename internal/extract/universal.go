package extract

import (
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"lulu/internal/media"
)

// hlsOutputExt is the container HLS streams are remuxed into.
const hlsOutputExt = "mp4"

// Universal is the fallback extractor used when no site-specific extractor
// matches a URL. It guesses whether the URL is a page or a file and scans
// pages for media URLs.
type Universal struct {
	fetcher    Fetcher
	downloader Downloader
	printer    Printer
	embed      Embedder // optional
	log        *log.Logger
}

// NewUniversal creates a Universal extractor. embed and logger may be nil.
func NewUniversal(f Fetcher, d Downloader, p Printer, embed Embedder, logger *log.Logger) *Universal {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Universal{
		fetcher:    f,
		downloader: d,
		printer:    p,
		embed:      embed,
		log:        logger,
	}
}

var _ Extractor = (*Universal)(nil)

// Extract finds the media behind rawURL and downloads it unless opts.InfoOnly.
func (u *Universal) Extract(rawURL string, opts Options) error {
	kind, err := u.probe(rawURL)
	if err != nil {
		return err
	}
	u.log.Debug("probed", "url", rawURL, "kind", kind)

	if kind == media.KindHTML && u.tryEmbed(rawURL, opts) {
		return nil
	}

	site := SiteLabel(rawURL)

	if kind == media.KindHTML {
		return u.extractPage(rawURL, site, opts)
	}
	return u.extractFile(rawURL, site, opts)
}

// ExtractPlaylist always fails: a generic page has no notion of a playlist.
func (u *Universal) ExtractPlaylist(rawURL string, opts Options) error {
	return fmt.Errorf("universal: %w", ErrPlaylistNotSupported)
}

// probe reads the Content-Type with a HEAD request. Servers that reject
// HEAD, or answer it without a Content-Type, are asked again with GET.
// A GET without a Content-Type leaves the URL treated as a file.
func (u *Universal) probe(rawURL string) (media.ContentKind, error) {
	headers := u.fetcher.Headers()

	h, err := u.fetcher.Head(rawURL, headers, http.MethodHead)
	if err == nil && h.Get("Content-Type") != "" {
		return media.KindOf(h.Get("Content-Type")), nil
	}
	if err != nil {
		u.log.Debug("HEAD failed, retrying with GET", "url", rawURL, "err", err)
	} else {
		u.log.Debug("HEAD has no Content-Type, retrying with GET", "url", rawURL)
	}

	h, err = u.fetcher.Head(rawURL, headers, http.MethodGet)
	if err != nil {
		return media.KindDirectFile, fmt.Errorf("%w: %s: %w", ErrProbeFailed, rawURL, err)
	}
	if h.Get("Content-Type") == "" {
		u.log.Debug("no Content-Type, treating as a file", "url", rawURL)
	}

	return media.KindOf(h.Get("Content-Type")), nil
}

// tryEmbed runs the embedded-player strategy. A failing strategy is not
// fatal; extraction falls through to scanning.
func (u *Universal) tryEmbed(rawURL string, opts Options) bool {
	if u.embed == nil {
		return false
	}

	result, err := u.embed.Extract(rawURL, opts)
	if err != nil {
		u.log.Warn("embedded player extraction failed, scanning page", "url", rawURL, "err", err)
		return false
	}

	u.log.Debug("embedded player extraction", "url", rawURL, "result", result)
	return result == EmbedHandled
}

func (u *Universal) extractPage(rawURL, site string, opts Options) error {
	page, err := u.fetcher.Content(rawURL)
	if err != nil {
		return fmt.Errorf("fetching page: %w", err)
	}

	title := pageTitle(page)

	// HLS playlists win over everything else on the page
	if hls := dedupe(scanHLS(page)); len(hls) > 0 {
		return u.downloadHLS(hls, site, title, opts)
	}

	urls := scanMedia(page)
	urls = append(urls, scanImageLinks(page)...)
	urls = append(urls, u.resolveDASH(scanDASH(page))...)

	candidates := buildCandidates(dedupe(urls))
	u.log.Debug("scanned page", "url", rawURL, "candidates", len(candidates))

	for _, c := range candidates {
		if err := u.downloadCandidate(c, site, opts); err != nil {
			return err
		}
	}

	return nil
}

func (u *Universal) downloadHLS(playlists []string, site, pageName string, opts Options) error {
	for i, pl := range playlists {
		title := NumberedTitle(pageName, i)

		info, err := u.fetcher.URLInfo(pl)
		if err != nil {
			return fmt.Errorf("probing playlist %s: %w", pl, err)
		}

		u.printer.PrintInfo(site, title, info.Mime, info.Size)
		if opts.InfoOnly {
			continue
		}

		if err := u.downloader.DownloadStream(pl, title, hlsOutputExt, opts.OutputDir); err != nil {
			return fmt.Errorf("downloading stream %s: %w", pl, err)
		}
	}
	return nil
}

// resolveDASH turns each manifest into the media URL named by its
// <BaseURL>, relative to the manifest's directory. Manifests that cannot be
// fetched or carry no BaseURL are skipped.
func (u *Universal) resolveDASH(manifests []string) []string {
	var urls []string
	for _, mpd := range manifests {
		body, err := u.fetcher.Content(mpd)
		if err != nil {
			u.log.Warn("skipping DASH manifest", "url", mpd, "err", err)
			continue
		}

		base := manifestBaseURL(body)
		if base == "" {
			u.log.Warn("skipping DASH manifest without BaseURL", "url", mpd)
			continue
		}

		urls = append(urls, manifestDir(mpd)+base)
	}
	return urls
}

// downloadCandidate probes and downloads one scanned URL. A candidate whose
// probe fails is not viable and is skipped.
func (u *Universal) downloadCandidate(c media.Candidate, site string, opts Options) error {
	info, err := u.fetcher.URLInfo(c.URL)
	if err != nil {
		u.log.Debug("skipping candidate", "url", c.URL, "err", err)
		return nil
	}

	size := info.Size
	if size == 0 {
		size = media.InfiniteSize
	}

	u.printer.PrintInfo(site, c.Title, info.Ext, size)
	if opts.InfoOnly {
		return nil
	}

	if err := u.downloader.DownloadURLs([]string{c.URL}, c.Title, info.Ext, size, opts.OutputDir, opts.Merge); err != nil {
		return fmt.Errorf("downloading %s: %w", c.URL, err)
	}
	return nil
}

// extractFile treats rawURL itself as the media file.
func (u *Universal) extractFile(rawURL, site string, opts Options) error {
	title, ext, ok := splitExt(filename(rawURL))

	info, err := u.fetcher.URLInfo(rawURL)
	if err != nil {
		return fmt.Errorf("probing %s: %w", rawURL, err)
	}
	if !ok {
		ext = info.Ext
	}

	u.printer.PrintInfo(site, title, ext, info.Size)
	if opts.InfoOnly {
		return nil
	}

	if err := u.downloader.DownloadURLs([]string{rawURL}, title, ext, info.Size, opts.OutputDir, opts.Merge); err != nil {
		return fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	return nil
}
