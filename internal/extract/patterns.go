package extract

import (
	"html"
	"regexp"
	"strings"

	"lulu/internal/httputil"
)

// mediaPattern is the distinguishing part of a media URL, matched between
// the scheme prefix and the URL tail.
type mediaPattern struct {
	name string
	expr string
}

// mediaPatterns lists the most common media file shapes on the web, in
// scan order. The jpeg entries catch the sized renditions image hosts
// serve (name-1280.jpg, name_1280x720.jpg, ...).
var mediaPatterns = []mediaPattern{
	{"flv", `\.flv`},
	{"mp3", `\.mp3`},
	{"mp4", `\.mp4`},
	{"webm", `\.webm`},
	{"jpeg-w1000", `[-_]1\d\d\d\.jpe?g`},
	{"jpeg-w600", `[-_][6-9]\d\d\.jpe?g`},
	{"jpeg-1000x600", `[-_]1\d\d\dx[6-9]\d\d\.jpe?g`},
	{"jpeg-600x1000", `[-_][6-9]\d\dx1\d\d\d\.jpe?g`},
	{"jpeg-600x600", `[-_][6-9]\d\dx[6-9]\d\d\.jpe?g`},
	{"blogger", `s1600/[\w%]+\.jpe?g`},
	{"img-host", `img[6-9]\d\d/[\w%]+\.jpe?g`},
}

// Patterns returns the names of the media patterns in scan order.
func Patterns() []string {
	names := make([]string, len(mediaPatterns))
	for i, p := range mediaPatterns {
		names[i] = p.name
	}
	return names
}

// scanner finds one encoding of a URL shape and decodes its matches.
type scanner struct {
	re     *regexp.Regexp
	decode func(string) string
}

func (s scanner) scan(page string) []string {
	matches := s.re.FindAllString(page, -1)
	if s.decode == nil {
		return matches
	}
	for i, m := range matches {
		matches[i] = s.decode(m)
	}
	return matches
}

var escapedSlash = regexp.MustCompile(`\\{1,2}/`)

// Each media pattern is looked for in three encodings: as a plain URL, as
// a percent-encoded query value, and inside an escaped JS/JSON string.
func literalScanner(expr string) scanner {
	return scanner{
		re: regexp.MustCompile(`https?://[^;"'\\]+` + expr + `[^;"'\\]*`),
	}
}

func percentScanner(expr string) scanner {
	return scanner{
		re:     regexp.MustCompile(`https?%3[Aa]%2[Ff]%2[Ff][^;&]+` + expr + `[^;&]*`),
		decode: httputil.Unquote,
	}
}

func backslashScanner(expr string) scanner {
	return scanner{
		re: regexp.MustCompile(`https?:(?:\\{1,2}/){2}[^;"']+` + expr + `[^;"']*`),
		decode: func(s string) string {
			return escapedSlash.ReplaceAllString(s, "/")
		},
	}
}

// mediaScanners holds the compiled scanners, grouped per media pattern.
var mediaScanners = compileScanners(mediaPatterns)

func compileScanners(patterns []mediaPattern) [][]scanner {
	out := make([][]scanner, len(patterns))
	for i, p := range patterns {
		out[i] = []scanner{
			literalScanner(p.expr),
			percentScanner(p.expr),
			backslashScanner(p.expr),
		}
	}
	return out
}

var (
	titleRe = regexp.MustCompile(`<title>([^<]*)`)
	hlsRe   = regexp.MustCompile(`https?://[^;"'\\]+\.m3u8?[^;"'\\]*`)
	mpdRe   = regexp.MustCompile(`src="(https?://[^"]+\.mpd)"`)

	baseURLRe = regexp.MustCompile(`<BaseURL>(.*)</BaseURL>`)

	imageLinkRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)href="(https?://[^"]+\.jpe?g)"`),
		regexp.MustCompile(`(?i)href="(https?://[^"]+\.png)"`),
		regexp.MustCompile(`(?i)href="(https?://[^"]+\.gif)"`),
	}
)

// pageTitle returns the unescaped content of the first <title>, or "".
func pageTitle(page string) string {
	m := titleRe.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return html.UnescapeString(m[1])
}

// scanHLS returns the HLS playlist URLs found in page.
func scanHLS(page string) []string {
	return hlsRe.FindAllString(page, -1)
}

// scanMedia runs every media pattern over page in table order.
func scanMedia(page string) []string {
	var urls []string
	for _, group := range mediaScanners {
		for _, s := range group {
			urls = append(urls, s.scan(page)...)
		}
	}
	return urls
}

// scanImageLinks returns absolute hrefs pointing at jpeg, png or gif files.
func scanImageLinks(page string) []string {
	var urls []string
	for _, re := range imageLinkRes {
		urls = append(urls, submatches(re, page)...)
	}
	return urls
}

// scanDASH returns the MPEG-DASH manifests referenced by src attributes.
func scanDASH(page string) []string {
	return submatches(mpdRe, page)
}

// Scannable reports whether the page scan finds anything in page: an HLS
// playlist, a media URL in any encoding, an image link or a DASH manifest.
func Scannable(page string) bool {
	return len(scanHLS(page)) > 0 ||
		len(scanMedia(page)) > 0 ||
		len(scanImageLinks(page)) > 0 ||
		len(scanDASH(page)) > 0
}

// manifestBaseURL returns the <BaseURL> content of an MPD, or "".
func manifestBaseURL(manifest string) string {
	m := baseURLRe.FindStringSubmatch(manifest)
	if m == nil {
		return ""
	}
	return m[1]
}

// manifestDir returns mpdURL up to and including its last '/'.
func manifestDir(mpdURL string) string {
	return mpdURL[:strings.LastIndex(mpdURL, "/")+1]
}

func submatches(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}
