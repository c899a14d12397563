package download

import (
	"fmt"
	"io"

	"github.com/grafov/m3u8"

	"lulu/internal/httputil"
)

const maxPlaylistSize = 5 * 1024 * 1024

// preflight checks that rawURL really is an HLS playlist before ffmpeg is
// spawned on it, and returns the URL ffmpeg should read.
func (d *Downloader) preflight(rawURL string) (string, error) {
	resp, err := d.client.Open(rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetching playlist: %w", err)
	}
	defer resp.Body.Close()

	playlist, listType, err := m3u8.DecodeFrom(io.LimitReader(resp.Body, maxPlaylistSize), false)
	if err != nil {
		return "", fmt.Errorf("not an HLS playlist: %w", err)
	}

	switch listType {
	case m3u8.MASTER:
		master := playlist.(*m3u8.MasterPlaylist)
		v := bestVariant(master)
		if v == nil {
			return "", fmt.Errorf("master playlist has no variants")
		}
		// ffmpeg needs the master to pick up alternative renditions
		if len(v.Alternatives) > 0 {
			return rawURL, nil
		}
		variantURL, err := httputil.ResolveURL(resp.Request.URL.String(), v.URI)
		if err != nil {
			return "", fmt.Errorf("resolving variant: %w", err)
		}
		d.log.Debug("selected HLS variant", "bandwidth", v.Bandwidth, "resolution", v.Resolution, "of", len(master.Variants))
		return variantURL, nil

	case m3u8.MEDIA:
		mp := playlist.(*m3u8.MediaPlaylist)
		d.log.Debug("HLS media playlist", "segments", mp.Count())
		return rawURL, nil
	}

	return "", fmt.Errorf("unknown playlist type")
}

// bestVariant returns the highest-bandwidth variant with a URI.
func bestVariant(master *m3u8.MasterPlaylist) *m3u8.Variant {
	var best *m3u8.Variant
	for _, v := range master.Variants {
		if v == nil || v.URI == "" {
			continue
		}
		if best == nil || v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	return best
}
