// Package fetch downloads and decodes canvas background images.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 32 << 20
)

// Fetcher resolves a URL to a decoded image.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) (image.Image, error)
}

// FetchError reports a failure to obtain the bytes behind a URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ImageDecodeError reports bytes that are not a decodable image.
type ImageDecodeError struct {
	URL string
	Err error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("decode image %s: %v", e.URL, e.Err)
}

func (e *ImageDecodeError) Unwrap() error {
	return e.Err
}

// HTTPFetcher fetches http, https and file URLs. HTML pages are resolved to
// their primary image once.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

type Option func(*HTTPFetcher)

func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "fetch")
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, u *url.URL) (image.Image, error) {
	if u == nil {
		return nil, &FetchError{Err: fmt.Errorf("nil url")}
	}

	data, contentType, err := f.read(ctx, u)
	if err != nil {
		return nil, err
	}

	if isHTML(contentType, data) {
		page, err := ImageURLFromHTML(bytes.NewReader(data), u)
		if err != nil {
			return nil, &ImageDecodeError{URL: u.String(), Err: err}
		}
		f.logger.Debug("resolved page to image", "page", u.String(), "image", page.String())
		u = page
		if data, _, err = f.read(ctx, u); err != nil {
			return nil, err
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{URL: u.String(), Err: err}
	}
	return img, nil
}

func (f *HTTPFetcher) read(ctx context.Context, u *url.URL) ([]byte, string, error) {
	switch u.Scheme {
	case "file":
		data, err := f.readFile(u.Path)
		if err != nil {
			return nil, "", &FetchError{URL: u.String(), Err: err}
		}
		return data, "", nil
	case "http", "https":
	default:
		return nil, "", &FetchError{URL: u.String(), Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", &FetchError{URL: u.String(), Err: err}
	}
	req.Header.Set("Accept", "image/*, text/html;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &FetchError{URL: u.String(), Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := f.limit(resp.Body)
	if err != nil {
		return nil, "", &FetchError{URL: u.String(), Err: err}
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (f *HTTPFetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return f.limit(file)
}

func (f *HTTPFetcher) limit(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}
	return data, nil
}

func isHTML(contentType string, data []byte) bool {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
