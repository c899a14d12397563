package extract

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"lulu/internal/httputil"
	"lulu/internal/media"
)

// Filenames whose stem falls outside these bounds are not trusted as titles.
const (
	minTitleLen = 5
	maxTitleLen = 80
)

// SiteLabel derives the display domain of a URL: the host with a single
// leading label dropped when it has more than two.
// e.g., "https://www.example.com/v" -> "example.com"
func SiteLabel(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	if len(parts) < 3 {
		return ""
	}
	labels := strings.Split(parts[2], ".")
	if len(labels) > 2 {
		labels = labels[1:]
	}
	return strings.Join(labels, ".")
}

// filename returns the unquoted last path segment of a URL.
func filename(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return httputil.Unquote(rawURL[strings.LastIndex(rawURL, "/")+1:])
}

// splitExt splits name at its last '.'. ok is false when there is none.
func splitExt(name string) (stem, ext string, ok bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name, "", false
	}
	return name[:i], name[i+1:], true
}

// candidateTitle derives a title from the URL's filename, falling back to
// the placeholder counter next. It returns the counter for the next call.
func candidateTitle(rawURL string, next int) (string, int) {
	stem, _, ok := splitExt(filename(rawURL))
	if !ok {
		stem = ""
	}
	if n := utf8.RuneCountInString(stem); n >= minTitleLen && n <= maxTitleLen {
		return stem, next
	}
	return strconv.Itoa(next), next + 1
}

// buildCandidates titles each URL. Placeholder numbering starts at 1.
func buildCandidates(urls []string) []media.Candidate {
	candidates := make([]media.Candidate, 0, len(urls))
	next := 1
	for _, u := range urls {
		var title string
		title, next = candidateTitle(u, next)
		candidates = append(candidates, media.Candidate{URL: u, Title: title})
	}
	return candidates
}

// dedupe drops repeated URLs, keeping first-seen order.
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// NumberedTitle names the i-th of several downloads sharing one title:
// the first keeps it, later ones get " (2)", " (3)", ...
func NumberedTitle(title string, i int) string {
	if i == 0 {
		return title
	}
	return title + " (" + strconv.Itoa(i+1) + ")"
}
