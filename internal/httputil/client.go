// Package httputil provides a hardened HTTP client, lightweight media probes
// and input sanitization utilities.
package httputil

import (
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"lulu/internal/media"
)

// DefaultUserAgent is sent unless the configuration overrides it.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"

const defaultMaxBody = 10 * 1024 * 1024 // 10MB

// NewClient creates a hardened HTTP client with secure defaults.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 5,
		},
	}
}

// FakeHeaders returns the browser-like header set sent with every request.
func FakeHeaders(userAgent string) http.Header {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Charset", "UTF-8,*;q=0.5")
	h.Set("Accept-Language", "en-US,en;q=0.8")
	return h
}

// Options configures a Client.
type Options struct {
	Timeout     time.Duration
	UserAgent   string
	MaxBodySize int64 // Page body limit in bytes
}

// Client issues the header probes, page fetches and media probes used by
// the extractors.
type Client struct {
	http    *http.Client
	headers http.Header
	maxBody int64
}

// New creates a Client.
func New(opts Options) *Client {
	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &Client{
		http:    NewClient(opts.Timeout),
		headers: FakeHeaders(opts.UserAgent),
		maxBody: maxBody,
	}
}

// NewWithHTTPClient wraps an existing *http.Client, e.g. one from httptest.
func NewWithHTTPClient(hc *http.Client, opts Options) *Client {
	c := New(opts)
	c.http = hc
	return c
}

// Headers returns a copy of the headers the client sends by default.
func (c *Client) Headers() http.Header {
	return c.headers.Clone()
}

func (c *Client) do(method, rawURL string, headers http.Header) (*http.Response, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if headers == nil {
		headers = c.headers
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	return resp, nil
}

// Head issues a header-only request with the given method (HEAD or GET)
// and returns the response headers. The body is never read.
func (c *Client) Head(rawURL string, headers http.Header, method string) (http.Header, error) {
	if method == "" {
		method = http.MethodHead
	}
	resp, err := c.do(method, rawURL, headers)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return resp.Header, nil
}

// Content fetches a page and returns its body decoded to UTF-8.
// The declared or sniffed charset is honored.
func (c *Client) Content(rawURL string) (string, error) {
	resp, err := c.do(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(io.LimitReader(resp.Body, c.maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decoding charset: %w", err)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	return string(body), nil
}

// Open issues a GET and hands the live response to the caller, who must
// close the body. Extra headers are merged over the defaults.
func (c *Client) Open(rawURL string, extra http.Header) (*http.Response, error) {
	headers := c.Headers()
	for k, v := range extra {
		headers[k] = v
	}
	return c.do(http.MethodGet, rawURL, headers)
}

// URLInfo probes a URL for its mime type, file extension and size.
func (c *Client) URLInfo(rawURL string) (media.Info, error) {
	resp, err := c.do(http.MethodGet, rawURL, nil)
	if err != nil {
		return media.Info{}, err
	}
	resp.Body.Close()

	info := media.Info{}
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		info.Mime = mt
	}

	info.Ext = ExtByMime(info.Mime)
	if info.Ext == "" {
		info.Ext = extFromDisposition(resp.Header.Get("Content-Disposition"))
	}
	if info.Ext == "" {
		info.Ext = strings.TrimPrefix(path.Ext(resp.Request.URL.Path), ".")
	}

	if resp.ContentLength > 0 {
		info.Size = resp.ContentLength
	}

	return info, nil
}

// mimeExt maps the media types commonly served for downloadable media
// onto file extensions.
var mimeExt = map[string]string{
	"video/3gpp":                    "3gp",
	"video/f4v":                     "flv",
	"video/mp4":                     "mp4",
	"video/mp2t":                    "ts",
	"video/quicktime":               "mov",
	"video/webm":                    "webm",
	"video/x-flv":                   "flv",
	"video/x-ms-asf":                "asf",
	"video/x-matroska":              "mkv",
	"audio/mp4":                     "mp4",
	"audio/mpeg":                    "mp3",
	"audio/ogg":                     "ogg",
	"audio/wav":                     "wav",
	"audio/wave":                    "wav",
	"audio/x-wav":                   "wav",
	"audio/webm":                    "webm",
	"image/jpeg":                    "jpg",
	"image/png":                     "png",
	"image/gif":                     "gif",
	"image/webp":                    "webp",
	"application/pdf":               "pdf",
	"application/vnd.apple.mpegurl": "m3u8",
	"application/x-mpegurl":         "m3u8",
	"application/dash+xml":          "mpd",
}

// ExtByMime returns the file extension for a media type, or "".
func ExtByMime(mimeType string) string {
	return mimeExt[strings.ToLower(mimeType)]
}

func extFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(path.Ext(params["filename"]), ".")
}
