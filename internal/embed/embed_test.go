package embed

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lulu/internal/extract"
	"lulu/internal/media"
)

const pageURL = "https://www.example.com/watch/7"

type fakeFetcher struct {
	page    string
	pageErr error
	infos   map[string]media.Info
}

func (f *fakeFetcher) Head(string, http.Header, string) (http.Header, error) {
	return http.Header{"Content-Type": {"text/html"}}, nil
}

func (f *fakeFetcher) Headers() http.Header { return http.Header{} }

func (f *fakeFetcher) Content(string) (string, error) { return f.page, f.pageErr }

func (f *fakeFetcher) URLInfo(u string) (media.Info, error) {
	info, ok := f.infos[u]
	if !ok {
		return media.Info{}, errors.New("404 Not Found")
	}
	return info, nil
}

type download struct {
	url, title, ext string
	stream          bool
}

type fakeDownloader struct {
	got []download
	err error
}

func (d *fakeDownloader) DownloadURLs(urls []string, title, ext string, size int64, dir string, merge bool) error {
	d.got = append(d.got, download{url: urls[0], title: title, ext: ext})
	return d.err
}

func (d *fakeDownloader) DownloadStream(u, title, ext, dir string) error {
	d.got = append(d.got, download{url: u, title: title, ext: ext, stream: true})
	return d.err
}

type fakePrinter struct{ titles []string }

func (p *fakePrinter) PrintInfo(site, title, kind string, size int64) {
	p.titles = append(p.titles, title)
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err, "reading fixture %s", name)
	return string(data)
}

func loadTestDoc(t *testing.T, name string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fixture(t, name)))
	require.NoError(t, err)
	return doc
}

var opts = extract.Options{OutputDir: "/tmp/out", Merge: true}

func TestMediaSources(t *testing.T) {
	got := mediaSources(loadTestDoc(t, "video_page.html"), pageURL)
	assert.Equal(t, []string{
		"https://www.example.com/media/harbour.mp4",
		"https://www.example.com/media/harbour.webm",
		"https://cdn.example.com/media/ambience.mp3",
		"https://cdn.example.com/media/harbour.mp4",
	}, got)
}

func TestPlayerFrames(t *testing.T) {
	got := playerFrames(loadTestDoc(t, "iframe_page.html"), pageURL)
	require.Len(t, got, 2)
	assert.Equal(t, "YouTube", got[0].name)
	assert.Equal(t, "Vimeo", got[1].name)
	assert.Equal(t, "https://player.vimeo.com/video/42", got[1].url)
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Harbour Timelapse", pageTitle(loadTestDoc(t, "video_page.html")))
	assert.Equal(t, "Embedded Talk", pageTitle(loadTestDoc(t, "iframe_page.html")))
}

func TestExtractDownloadsEmbeddedMedia(t *testing.T) {
	f := &fakeFetcher{
		page: fixture(t, "video_page.html"),
		infos: map[string]media.Info{
			"https://www.example.com/media/harbour.mp4":  {Mime: "video/mp4", Ext: "mp4", Size: 100},
			"https://cdn.example.com/media/ambience.mp3": {Mime: "audio/mpeg", Ext: "mp3"},
			"https://cdn.example.com/media/harbour.mp4":  {Mime: "video/mp4", Ext: "mp4", Size: 100},
		},
	}
	d := &fakeDownloader{}
	p := &fakePrinter{}

	result, err := New(f, d, p, nil).Extract(pageURL, opts)
	require.NoError(t, err)
	assert.Equal(t, extract.EmbedHandled, result)

	require.Len(t, d.got, 3)
	assert.Equal(t, download{url: "https://www.example.com/media/harbour.mp4", title: "Harbour Timelapse", ext: "mp4"}, d.got[0])
	assert.Equal(t, "Harbour Timelapse (2)", d.got[1].title)
	assert.Equal(t, "mp3", d.got[1].ext)
	assert.Equal(t, "Harbour Timelapse (3)", d.got[2].title)
	assert.Len(t, p.titles, 3)
}

func TestExtractInfoOnly(t *testing.T) {
	f := &fakeFetcher{
		page:  fixture(t, "video_page.html"),
		infos: map[string]media.Info{"https://cdn.example.com/media/ambience.mp3": {Mime: "audio/mpeg", Ext: "mp3"}},
	}
	d := &fakeDownloader{}
	p := &fakePrinter{}

	result, err := New(f, d, p, nil).Extract(pageURL, extract.Options{InfoOnly: true})
	require.NoError(t, err)
	assert.Equal(t, extract.EmbedHandled, result)
	assert.Empty(t, d.got)
	assert.Equal(t, []string{"Harbour Timelapse"}, p.titles)
}

func TestExtractStreamsPlaylists(t *testing.T) {
	f := &fakeFetcher{
		page: fixture(t, "hls_page.html"),
		infos: map[string]media.Info{
			"https://www.example.com/channel/index.m3u8": {Mime: "application/vnd.apple.mpegurl", Ext: "m3u8"},
		},
	}
	d := &fakeDownloader{}

	result, err := New(f, d, &fakePrinter{}, nil).Extract(pageURL, opts)
	require.NoError(t, err)
	assert.Equal(t, extract.EmbedHandled, result)
	require.Len(t, d.got, 1)
	assert.Equal(t, download{url: "https://www.example.com/channel/index.m3u8", title: "Live Channel", ext: "mp4", stream: true}, d.got[0])
}

func TestExtractNotApplicable(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"third-party players only", fixture(t, "iframe_page.html")},
		{"plain page", "<html><head><title>Blog</title></head><body><p>text</p></body></html>"},
		{"every source fails", fixture(t, "hls_page.html")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDownloader{}
			result, err := New(&fakeFetcher{page: tt.page}, d, &fakePrinter{}, nil).Extract(pageURL, opts)
			require.NoError(t, err)
			assert.Equal(t, extract.EmbedNotApplicable, result)
			assert.Empty(t, d.got)
		})
	}
}

func TestExtractSkipsSourcesServingPages(t *testing.T) {
	f := &fakeFetcher{
		page: fixture(t, "hls_page.html"),
		infos: map[string]media.Info{
			"https://www.example.com/channel/index.m3u8": {Mime: "text/html", Ext: "html"},
		},
	}
	result, err := New(f, &fakeDownloader{}, &fakePrinter{}, nil).Extract(pageURL, opts)
	require.NoError(t, err)
	assert.Equal(t, extract.EmbedNotApplicable, result)
}

func TestExtractErrors(t *testing.T) {
	_, err := New(&fakeFetcher{pageErr: errors.New("connection reset")}, &fakeDownloader{}, &fakePrinter{}, nil).Extract(pageURL, opts)
	assert.ErrorContains(t, err, "fetching page")

	f := &fakeFetcher{
		page:  fixture(t, "video_page.html"),
		infos: map[string]media.Info{"https://cdn.example.com/media/ambience.mp3": {Mime: "audio/mpeg", Ext: "mp3"}},
	}
	_, err = New(f, &fakeDownloader{err: errors.New("disk full")}, &fakePrinter{}, nil).Extract(pageURL, opts)
	assert.ErrorContains(t, err, "disk full")
}

func TestPlayerName(t *testing.T) {
	tests := []struct {
		host string
		want string
		ok   bool
	}{
		{"www.youtube.com", "YouTube", true},
		{"youtu.be", "YouTube", true},
		{"player.bilibili.com", "Bilibili", true},
		{"notyoutube.com", "", false},
		{"example.com", "", false},
	}
	for _, tt := range tests {
		got, ok := playerName(tt.host)
		assert.Equal(t, tt.ok, ok, tt.host)
		assert.Equal(t, tt.want, got, tt.host)
	}
}

func TestExtractLeavesScannablePagesToScan(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"hls in script", `<video src="/v/clip.mp4"></video><script>play("https://cdn.example.com/live/index.m3u8")</script>`},
		{"absolute video source", `<video src="https://cdn.example.com/v/trailer_clip.mp4"></video>`},
		{"escaped json source", `<video src="/v/clip.mp4"></video><script>{"src":"https:\/\/cdn.example.com\/v\/clip.webm"}</script>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{
				page: tt.page,
				infos: map[string]media.Info{
					"https://www.example.com/v/clip.mp4":          {Mime: "video/mp4", Ext: "mp4"},
					"https://cdn.example.com/v/trailer_clip.mp4": {Mime: "video/mp4", Ext: "mp4"},
				},
			}
			d := &fakeDownloader{}

			result, err := New(f, d, &fakePrinter{}, nil).Extract(pageURL, opts)
			require.NoError(t, err)
			assert.Equal(t, extract.EmbedNotApplicable, result)
			assert.Empty(t, d.got)
		})
	}
}

func TestUniversalKeepsHLSPriorityWithEmbedder(t *testing.T) {
	page := `<html><head><title>Trailer Night</title></head><body>
<video src="https://cdn.example.com/v/trailer_clip.mp4"></video>
<script>var live = "https://cdn.example.com/live/index.m3u8";</script>
</body></html>`
	f := &fakeFetcher{
		page: page,
		infos: map[string]media.Info{
			"https://cdn.example.com/v/trailer_clip.mp4": {Mime: "video/mp4", Ext: "mp4", Size: 10},
			"https://cdn.example.com/live/index.m3u8":    {Mime: "application/vnd.apple.mpegurl", Ext: "m3u8"},
		},
	}
	d := &fakeDownloader{}
	p := &fakePrinter{}

	u := extract.NewUniversal(f, d, p, New(f, d, p, nil), nil)
	require.NoError(t, u.Extract(pageURL, opts))

	require.Len(t, d.got, 1)
	assert.Equal(t, download{url: "https://cdn.example.com/live/index.m3u8", title: "Trailer Night", ext: "mp4", stream: true}, d.got[0])
}

func TestUniversalUsesEmbedderForRelativeSources(t *testing.T) {
	f := &fakeFetcher{
		page: fixture(t, "hls_page.html"),
		infos: map[string]media.Info{
			"https://www.example.com/channel/index.m3u8": {Mime: "application/vnd.apple.mpegurl", Ext: "m3u8"},
		},
	}
	d := &fakeDownloader{}
	p := &fakePrinter{}

	u := extract.NewUniversal(f, d, p, New(f, d, p, nil), nil)
	require.NoError(t, u.Extract(pageURL, opts))

	require.Len(t, d.got, 1)
	assert.True(t, d.got[0].stream)
	assert.Equal(t, "https://www.example.com/channel/index.m3u8", d.got[0].url)
}
