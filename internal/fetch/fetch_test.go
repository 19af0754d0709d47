package fetch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := pngBytes(t, 4, 3)
	mux := http.NewServeMux()
	mux.HandleFunc("/bg.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(img)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><meta property="og:image" content="/bg.png"></head><body><img src="/other.png"></body></html>`))
	})
	mux.HandleFunc("/gallery", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>hi</p><img src="bg.png"></body></html>`))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>nothing</body></html>`))
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("definitely not an image"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcher_FetchesImage(t *testing.T) {
	srv := newServer(t)
	f := NewHTTPFetcher()

	img, err := f.Fetch(context.Background(), mustParse(t, srv.URL+"/bg.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestHTTPFetcher_ResolvesHTMLPages(t *testing.T) {
	srv := newServer(t)
	f := NewHTTPFetcher()

	for _, path := range []string{"/page", "/gallery"} {
		img, err := f.Fetch(context.Background(), mustParse(t, srv.URL+path))
		require.NoError(t, err, path)
		assert.Equal(t, 4, img.Bounds().Dx(), path)
	}
}

func TestHTTPFetcher_Errors(t *testing.T) {
	srv := newServer(t)
	f := NewHTTPFetcher()
	ctx := context.Background()

	_, err := f.Fetch(ctx, mustParse(t, srv.URL+"/missing.png"))
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr), "got %v", err)

	_, err = f.Fetch(ctx, mustParse(t, srv.URL+"/garbage"))
	var decodeErr *ImageDecodeError
	require.True(t, errors.As(err, &decodeErr), "got %v", err)

	_, err = f.Fetch(ctx, mustParse(t, srv.URL+"/empty"))
	require.True(t, errors.As(err, &decodeErr), "got %v", err)
	require.ErrorIs(t, err, ErrNoImage)

	_, err = f.Fetch(ctx, mustParse(t, "ftp://example.com/a.png"))
	require.True(t, errors.As(err, &fetchErr), "got %v", err)

	_, err = f.Fetch(ctx, nil)
	require.True(t, errors.As(err, &fetchErr), "got %v", err)
}

func TestHTTPFetcher_MaxBytes(t *testing.T) {
	srv := newServer(t)
	f := NewHTTPFetcher(WithMaxBytes(10))

	_, err := f.Fetch(context.Background(), mustParse(t, srv.URL+"/bg.png"))
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr), "got %v", err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestHTTPFetcher_CanceledContext(t *testing.T) {
	srv := newServer(t)
	f := NewHTTPFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, mustParse(t, srv.URL+"/bg.png"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestHTTPFetcher_FileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 2, 5), 0600))

	f := NewHTTPFetcher()
	img, err := f.Fetch(context.Background(), &url.URL{Scheme: "file", Path: path})
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dy())
}

func TestImageURLFromHTML(t *testing.T) {
	base := mustParse(t, "https://example.com/articles/cat.html")
	tests := []struct {
		name string
		page string
		want string
	}{
		{"og image", `<meta property="og:image" content="https://cdn.example.com/cat.jpg">`, "https://cdn.example.com/cat.jpg"},
		{"og via name", `<meta name="og:image" content="/cat.jpg">`, "https://example.com/cat.jpg"},
		{"first img", `<body><img><img src="pics/a.png"><img src="b.png"></body>`, "https://example.com/articles/pics/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageURLFromHTML(strings.NewReader(tt.page), base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
