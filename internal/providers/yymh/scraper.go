package yymh

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/yymh/internal/providers"
	"github.com/brogergvhs/yymh/internal/util"
	"golang.org/x/sync/errgroup"
)

type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

type Options struct {
	BaseURL  string
	Lang     int
	Workers  int
	Interval time.Duration
	Log      Logger
}

type Scraper struct {
	client   *http.Client
	site     Site
	log      Logger
	throttle *util.Throttle
	workers  int
}

var (
	_ providers.Scraper = (*Scraper)(nil)
	_ providers.Catalog = (*Scraper)(nil)
)

func NewScraper(c *http.Client, opts Options) *Scraper {
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}

	return &Scraper{
		client:   c,
		site:     NewSite(opts.BaseURL, opts.Lang),
		log:      log,
		throttle: util.NewThrottle(opts.Interval),
		workers:  max(1, opts.Workers),
	}
}

func (s *Scraper) Site() Site {
	return s.site
}

// fetch GETs target and returns the decoded body and the final URL after
// redirects.
func (s *Scraper) fetch(ctx context.Context, target string, header http.Header) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	for k, v := range header {
		req.Header[k] = v
	}

	if err := s.throttle.Wait(ctx, req.URL.Host); err != nil {
		return nil, "", err
	}

	resp, err := util.DoWithRetry(s.client, req, 3, 500*time.Millisecond)
	if err != nil {
		return nil, "", err
	}

	location := target
	if resp.Request != nil && resp.Request.URL != nil {
		location = resp.Request.URL.String()
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, location, &util.HTTPStatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := util.ReadBody(resp)
	if err != nil {
		return nil, location, fmt.Errorf("read %s: %w", target, err)
	}

	return body, location, nil
}

func (s *Scraper) fetchDOM(ctx context.Context, target string) (*goquery.Document, string, error) {
	body, location, err := s.fetch(ctx, target, nil)
	if err != nil {
		return nil, location, err
	}

	cd, err := NewChapterDocument(bytes.NewReader(body), location)
	if err != nil {
		return nil, location, err
	}

	return cd.Doc, location, nil
}

func (s *Scraper) Popular(ctx context.Context, page int) ([]providers.Manga, bool, error) {
	doc, _, err := s.fetchDOM(ctx, s.site.PopularURL(page))
	if err != nil {
		return nil, false, err
	}

	list, next := s.site.ParseMangaList(doc)
	return list, next, nil
}

func (s *Scraper) Latest(ctx context.Context, page int) ([]providers.Manga, bool, error) {
	doc, _, err := s.fetchDOM(ctx, s.site.LatestURL(page))
	if err != nil {
		return nil, false, err
	}

	list, next := s.site.ParseMangaList(doc)
	return list, next, nil
}

func (s *Scraper) Search(ctx context.Context, query string, page int) ([]providers.Manga, bool, error) {
	doc, _, err := s.fetchDOM(ctx, s.site.SearchURL(query, page))
	if err != nil {
		return nil, false, err
	}

	list, next := s.site.ParseSearch(doc)
	return list, next, nil
}

func (s *Scraper) Details(ctx context.Context, mangaURL string) (providers.Details, error) {
	target := s.site.Absolute(mangaURL)
	doc, _, err := s.fetchDOM(ctx, target)
	if err != nil {
		return providers.Details{}, err
	}

	return s.site.ParseDetails(doc, target)
}

func (s *Scraper) GetChapters(ctx context.Context, mangaURL string) ([]providers.Chapter, error) {
	doc, _, err := s.fetchDOM(ctx, s.site.Absolute(mangaURL))
	if err != nil {
		return nil, err
	}

	return s.site.ParseChapters(doc)
}

// GetPages fetches a chapter page and resolves its page descriptors.
func (s *Scraper) GetPages(ctx context.Context, chapterURL string) ([]Page, error) {
	body, location, err := s.fetch(ctx, s.site.Absolute(chapterURL), nil)
	if err != nil {
		return nil, err
	}

	doc, err := NewChapterDocument(bytes.NewReader(body), location)
	if err != nil {
		return nil, fmt.Errorf("chapter %s: %w", chapterURL, err)
	}

	pages, err := ResolveChapterPages(doc)
	if err != nil {
		return nil, fmt.Errorf("chapter %s: %w", chapterURL, err)
	}

	s.log.Debugf("Resolved %d pages for %s\n", len(pages), location)
	return pages, nil
}

// ResolveImage turns a page descriptor into a downloadable image.
func (s *Scraper) ResolveImage(ctx context.Context, p Page) (providers.Image, error) {
	fr := s.site.BuildImageFetchRequest(p)
	if p.Kind == PageDirect {
		return providers.Image{Index: p.Index, URL: fr.URL, Referer: fr.Header.Get("Referer")}, nil
	}

	body, _, err := s.fetch(ctx, fr.URL, fr.Header)
	if err != nil {
		return providers.Image{}, fmt.Errorf("page %d: %w", p.Index, err)
	}

	imageURL, err := ResolveDeferredImageURL(string(body))
	if err != nil {
		return providers.Image{}, fmt.Errorf("page %d: %w", p.Index, err)
	}

	img := s.site.ImageRequest(imageURL)
	s.log.Debugf("Page %d -> %s\n", p.Index, img.URL)

	return providers.Image{Index: p.Index, URL: img.URL, Referer: img.Header.Get("Referer")}, nil
}

// GetImages resolves every page of a chapter, fetching deferred pages in
// parallel. The result keeps page order.
func (s *Scraper) GetImages(ctx context.Context, chapterURL string) ([]providers.Image, error) {
	pages, err := s.GetPages(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	out := make([]providers.Image, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, p := range pages {
		g.Go(func() error {
			img, err := s.ResolveImage(gctx, p)
			if err != nil {
				return err
			}
			out[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
