package yymh

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	selParamScript = "script"
	selImages      = "div#barChapter > img.load-src"
	selPaywall     = "div.view-pay-form p.subtitle"
)

// ChapterDocument is a parsed chapter page and the URL it was served from.
type ChapterDocument struct {
	Doc      *goquery.Document
	Location string
}

// NewChapterDocument parses a fetched page. A body that cannot be parsed is
// treated like a challenge page.
func NewChapterDocument(r io.Reader, location string) (ChapterDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ChapterDocument{}, fmt.Errorf("%w: %v", ErrInteractionRequired, err)
	}
	if u, perr := url.Parse(location); perr == nil && location != "" {
		doc.Url = u
	}

	return ChapterDocument{Doc: doc, Location: location}, nil
}

type Mode int

const (
	ModeDirect Mode = iota + 1
	ModeSigned
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeSigned:
		return "signed"
	default:
		return "unknown"
	}
}

type PageKind int

const (
	PageDirect PageKind = iota
	PageDeferred
)

// Page is one viewable page. Direct pages carry the image URL and are
// numbered from 0; deferred pages carry the chapterimage.ashx URL and are
// numbered from 1, as the site does.
type Page struct {
	Kind     PageKind
	Index    int
	ImageURL string
	FetchURL string
}

// plan is the outcome of inspecting a chapter page, decided once.
type plan struct {
	mode   Mode
	script Script
	images *goquery.Selection
}

func decideMode(doc ChapterDocument) (plan, error) {
	if doc.Doc == nil {
		return plan{}, ErrInteractionRequired
	}

	script, ok := findParamScript(doc.Doc)
	if !ok {
		return plan{}, fmt.Errorf("%w: script containing %s", ErrMarkerNotFound, markerScript)
	}

	if !script.Has(markerSigned) {
		if pay := doc.Doc.Find(selPaywall).First(); pay.Length() > 0 {
			return plan{}, &PaymentRequiredError{Message: strings.TrimSpace(pay.Text())}
		}
	}

	if images := doc.Doc.Find(selImages); images.Length() > 0 {
		return plan{mode: ModeDirect, script: script, images: images}, nil
	}

	return plan{mode: ModeSigned, script: script}, nil
}

func findParamScript(doc *goquery.Document) (Script, bool) {
	var (
		found Script
		ok    bool
	)

	doc.Find(selParamScript).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := s.Text()
		if strings.Contains(t, markerScript) {
			found, ok = Script(t), true
			return false
		}
		return true
	})

	return found, ok
}

// ResolveChapterPages returns the page descriptors of a chapter in order.
func ResolveChapterPages(doc ChapterDocument) ([]Page, error) {
	p, err := decideMode(doc)
	if err != nil {
		return nil, err
	}

	switch p.mode {
	case ModeDirect:
		return directPages(p.images), nil
	case ModeSigned:
		return signedPages(doc.Location, p.script)
	default:
		return nil, fmt.Errorf("unhandled mode %v", p.mode)
	}
}

func directPages(images *goquery.Selection) []Page {
	out := make([]Page, 0, images.Length())
	images.Each(func(i int, img *goquery.Selection) {
		src, _ := img.Attr("data-src")
		out = append(out, Page{Kind: PageDirect, Index: i, ImageURL: src})
	})

	return out
}

func signedPages(location string, src VarSource) ([]Page, error) {
	params, err := ReadScriptParams(src)
	if err != nil {
		return nil, err
	}

	count, err := params.PageCount()
	if err != nil {
		return nil, err
	}

	out := make([]Page, 0, count)
	for n := 1; n <= count; n++ {
		u, err := BuildSignedURL(location, params, n)
		if err != nil {
			return nil, err
		}
		out = append(out, Page{Kind: PageDeferred, Index: n, FetchURL: u})
	}

	return out, nil
}
