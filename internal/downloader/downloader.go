package downloader

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brogergvhs/yymh/internal/providers"
	"github.com/brogergvhs/yymh/internal/util"
)

var ErrBrokenImages = errors.New("some images failed to download")

// Progress receives per-chapter counters while images are written.
type Progress interface {
	SetTotal(total int)
	Update(done int, bytes int64)
}

type nopProgress struct{}

func (nopProgress) SetTotal(int)      {}
func (nopProgress) Update(int, int64) {}

type Logger interface {
	Debugf(format string, args ...any)
}

type Options struct {
	Workers    int
	SkipBroken bool
	AllowExt   []string
	Attempts   int
	Backoff    time.Duration
	Log        Logger
}

type Downloader struct {
	client     *http.Client
	workers    int
	skipBroken bool
	allowExt   []string
	attempts   int
	backoff    time.Duration
	log        Logger
}

func New(c *http.Client, opts Options) *Downloader {
	d := &Downloader{
		client:     c,
		workers:    max(1, opts.Workers),
		skipBroken: opts.SkipBroken,
		attempts:   opts.Attempts,
		backoff:    opts.Backoff,
		log:        opts.Log,
	}
	for _, e := range opts.AllowExt {
		d.allowExt = append(d.allowExt, "."+strings.TrimPrefix(strings.ToLower(e), "."))
	}

	if d.attempts < 1 {
		d.attempts = 3
	}
	if d.backoff <= 0 {
		d.backoff = time.Second
	}
	return d
}

type chapterState struct {
	mu    sync.Mutex
	done  int
	bytes int64
	ph    Progress
}

func (cs *chapterState) add(images int, bytes int64) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.done += images
	cs.bytes += bytes
	cs.ph.Update(cs.done, cs.bytes)
}

// Download fetches images into folder as page_NNN.ext. Every request carries
// the image's own Referer. The returned file list is sorted by page.
func (d *Downloader) Download(
	ctx context.Context,
	images []providers.Image,
	folder string,
	ph Progress,
) ([]string, int64, error) {

	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, 0, err
	}
	if ph == nil {
		ph = nopProgress{}
	}

	total := len(images)
	workers := min(d.workers, max(1, total))

	cs := &chapterState{ph: ph}
	ph.SetTotal(total)

	var mu sync.Mutex
	files := make([]string, 0, total)
	var errs []error

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			img := images[i]

			ext := imageExt(img.URL)
			if !d.allowed(ext) {
				d.debugf("Skipping page %d (%s)\n", i+1, ext)
				cs.add(1, 0)
				continue
			}

			out := filepath.Join(folder, pageName(i+1, total, ext))

			if err := d.downloadWithRetry(ctx, img, out, &pageBytes{cs: cs}); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("image %d: %w", i+1, err))
				mu.Unlock()
				cs.add(1, 0)
				continue
			}

			mu.Lock()
			files = append(files, out)
			mu.Unlock()
			cs.add(1, 0)
		}
	}

	wg.Add(workers)
	for range workers {
		go worker()
	}

	for i := range images {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			slices.Sort(files)
			return files, cs.bytes, ctx.Err()
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()
	slices.Sort(files)

	if len(errs) > 0 {
		for _, err := range errs {
			d.debugf("%v\n", err)
		}
		if !d.skipBroken {
			return files, cs.bytes, fmt.Errorf("%w: %d/%d (use --skip-broken to continue)", ErrBrokenImages, len(errs), total)
		}
	}

	return files, cs.bytes, nil
}

// pageName zero-pads n to the width of total so names sort in page order.
func pageName(n, total int, ext string) string {
	width := max(3, len(strconv.Itoa(total)))
	return fmt.Sprintf("page_%0*d%s", width, n, ext)
}

// pageBytes feeds one page's byte count into the chapter total. A failed
// attempt is rolled back so the next one counts from zero.
type pageBytes struct {
	cs   *chapterState
	last int64
}

func (p *pageBytes) report(done int64) {
	delta := done - p.last
	if delta <= 0 {
		return
	}
	p.last = done
	p.cs.add(0, delta)
}

func (p *pageBytes) reset() {
	if p.last > 0 {
		p.cs.add(0, -p.last)
	}
	p.last = 0
}

func (d *Downloader) allowed(ext string) bool {
	if len(d.allowExt) == 0 {
		return ext != ".gif"
	}
	return slices.Contains(d.allowExt, ext)
}

func (d *Downloader) debugf(format string, args ...any) {
	if d.log != nil {
		d.log.Debugf(format, args...)
	}
}

// imageExt takes the extension from the URL path, ignoring the query.
func imageExt(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}

	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return ".jpg"
	}
	return ext
}

func (d *Downloader) downloadWithRetry(
	ctx context.Context,
	img providers.Image,
	output string,
	pb *pageBytes,
) error {
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		err = d.download(ctx, img, output, pb.report)
		if err == nil {
			return nil
		}

		// never leave a truncated page behind
		_ = os.Remove(output)
		pb.reset()

		if attempt == d.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * d.backoff):
		}
	}

	return err
}

func (d *Downloader) download(
	ctx context.Context,
	img providers.Image,
	output string,
	progress func(done int64),
) (err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.URL, nil)
	if err != nil {
		return err
	}

	if img.Referer != "" {
		req.Header.Set("Referer", img.Referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}

	body, err := util.Body(resp)
	if err != nil {
		_ = resp.Body.Close()
		return err
	}
	defer func() {
		if cerr := body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return &util.HTTPStatusError{URL: img.URL, StatusCode: resp.StatusCode}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	written, err := copyWithProgress(f, body, progress)
	if err != nil {
		return err
	}

	if progress != nil && resp.ContentLength > 0 && written < resp.ContentLength {
		progress(resp.ContentLength)
	}

	return nil
}
