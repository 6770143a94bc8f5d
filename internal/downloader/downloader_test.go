package downloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brogergvhs/yymh/internal/providers"
)

type countingProgress struct {
	total atomic.Int64
	done  atomic.Int64
	bytes atomic.Int64
}

func (p *countingProgress) SetTotal(n int) { p.total.Store(int64(n)) }
func (p *countingProgress) Update(done int, bytes int64) {
	p.done.Store(int64(done))
	p.bytes.Store(bytes)
}

func TestDownload_SendsPerImageReferer(t *testing.T) {
	var badReferer atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != "https://www.yymanhua.com" {
			badReferer.Add(1)
			http.Error(w, "hotlink", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegdata"))
	}))
	defer srv.Close()

	images := []providers.Image{
		{Index: 1, URL: srv.URL + "/1.jpg?cid=42&key=a", Referer: "https://www.yymanhua.com"},
		{Index: 2, URL: srv.URL + "/2.png?cid=42&key=b", Referer: "https://www.yymanhua.com"},
	}

	dir := t.TempDir()
	ph := &countingProgress{}

	d := New(srv.Client(), Options{Workers: 2})
	files, n, err := d.Download(context.Background(), images, dir, ph)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if badReferer.Load() != 0 {
		t.Fatalf("requests without the expected referer")
	}

	want := []string{filepath.Join(dir, "page_001.jpg"), filepath.Join(dir, "page_002.png")}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("files = %v, want %v", files, want)
	}
	if n != int64(2*len("jpegdata")) {
		t.Fatalf("bytes = %d", n)
	}
	if ph.total.Load() != 2 || ph.done.Load() != 2 {
		t.Fatalf("progress total=%d done=%d", ph.total.Load(), ph.done.Load())
	}

	b, err := os.ReadFile(want[0])
	if err != nil || string(b) != "jpegdata" {
		t.Fatalf("file content = %q, %v", b, err)
	}
}

func TestDownload_RejectsNonImage(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>blocked</html>"))
	}))
	defer srv.Close()

	d := New(srv.Client(), Options{Workers: 1, Attempts: 2, Backoff: time.Millisecond})
	_, _, err := d.Download(context.Background(), []providers.Image{{Index: 1, URL: srv.URL + "/1.jpg"}}, t.TempDir(), nil)
	if !errors.Is(err, ErrBrokenImages) {
		t.Fatalf("expected ErrBrokenImages, got %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits.Load())
	}
}

func TestDownload_SkipBroken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/2.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	images := []providers.Image{{Index: 1, URL: srv.URL + "/1.webp"}, {Index: 2, URL: srv.URL + "/2.jpg"}}

	d := New(srv.Client(), Options{Workers: 2, SkipBroken: true, Attempts: 1})
	files, _, err := d.Download(context.Background(), images, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected one file, got %v", files)
	}
}

func TestDownload_AllowExt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write([]byte("gif"))
	}))
	defer srv.Close()

	d := New(srv.Client(), Options{AllowExt: []string{"jpg", ".PNG"}})
	files, _, err := d.Download(context.Background(), []providers.Image{{URL: srv.URL + "/a.gif"}}, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("gif should have been skipped: %v", files)
	}
	if !d.allowed(".png") {
		t.Fatalf("allow list should be case-insensitive")
	}
}

func TestImageExt(t *testing.T) {
	cases := map[string]string{
		"https://img.example/12/5_6789.jpg?cid=42&key=a.b": ".jpg",
		"https://img.example/a.WEBP":                       ".webp",
		"https://img.example/noext?x=1.png":                ".jpg",
	}
	for in, want := range cases {
		if got := imageExt(in); got != want {
			t.Errorf("imageExt(%q) = %q, want %q", in, got, want)
		}
	}
}

// truncatedImage promises 100 bytes and sends 10, so the client read fails.
func truncatedImage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", "100")
	_, _ = w.Write([]byte("0123456789"))
}

func TestDownload_RemovesTruncatedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		truncatedImage(w)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := New(srv.Client(), Options{SkipBroken: true, Attempts: 1})
	files, n, err := d.Download(context.Background(), []providers.Image{{URL: srv.URL + "/1.jpg"}}, dir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
	if n != 0 {
		t.Fatalf("bytes = %d, want 0", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "page_001.jpg")); !os.IsNotExist(err) {
		t.Fatalf("truncated page left on disk: %v", err)
	}
}

func TestDownload_RetryCountsBytesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			truncatedImage(w)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegdata"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	ph := &countingProgress{}

	d := New(srv.Client(), Options{Attempts: 2, Backoff: time.Millisecond})
	files, n, err := d.Download(context.Background(), []providers.Image{{URL: srv.URL + "/1.jpg"}}, dir, ph)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("hits = %d, want 2", hits.Load())
	}
	if len(files) != 1 {
		t.Fatalf("files = %v", files)
	}
	if n != int64(len("jpegdata")) || ph.bytes.Load() != n {
		t.Fatalf("bytes = %d, progress = %d, want %d", n, ph.bytes.Load(), len("jpegdata"))
	}

	b, err := os.ReadFile(files[0])
	if err != nil || string(b) != "jpegdata" {
		t.Fatalf("file content = %q, %v", b, err)
	}
}

func TestPageName(t *testing.T) {
	tests := []struct {
		n, total int
		want     string
	}{
		{1, 5, "page_001.jpg"},
		{999, 999, "page_999.jpg"},
		{1, 1000, "page_0001.jpg"},
		{1000, 1000, "page_1000.jpg"},
		{7, 12345, "page_00007.jpg"},
	}

	for _, tt := range tests {
		if got := pageName(tt.n, tt.total, ".jpg"); got != tt.want {
			t.Fatalf("pageName(%d, %d) = %q, want %q", tt.n, tt.total, got, tt.want)
		}
	}
}
