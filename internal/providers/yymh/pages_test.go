package yymh

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

const signedScript = `var YYMANHUA_CID=42;var YYMANHUA_MID=7;var YYMANHUA_VIEWSIGN_DT="dt";` +
	`var YYMANHUA_VIEWSIGN="sig";var YYMANHUA_IMAGE_COUNT=5;`

func chapterDoc(t *testing.T, body, location string) ChapterDocument {
	t.Helper()

	doc, err := NewChapterDocument(strings.NewReader("<html><head></head><body>"+body+"</body></html>"), location)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestResolveChapterPages_Direct(t *testing.T) {
	doc := chapterDoc(t, `
<script>var YYMANHUA_CID=42;var YYMANHUA_MID=7;var YYMANHUA_VIEWSIGN_DT="dt";</script>
<div id="barChapter">
  <img class="load-src" data-src="a.jpg">
  <img class="load-src" data-src="b.jpg">
  <img class="load-src" data-src="c.jpg">
</div>`, "https://www.yymanhua.com/m42/")

	pages, err := ResolveChapterPages(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a.jpg", "b.jpg", "c.jpg"}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages, got %d: %+v", len(want), len(pages), pages)
	}
	for i, p := range pages {
		if p.Kind != PageDirect {
			t.Fatalf("page %d: expected direct page, got %+v", i, p)
		}
		if p.Index != i || p.ImageURL != want[i] {
			t.Fatalf("page %d: got index=%d url=%q, want %d %q", i, p.Index, p.ImageURL, i, want[i])
		}
		if p.FetchURL != "" {
			t.Fatalf("page %d: direct page must not carry a fetch URL: %q", i, p.FetchURL)
		}
	}
}

func TestResolveChapterPages_DirectWinsOverSignedScript(t *testing.T) {
	doc := chapterDoc(t, `
<script>`+signedScript+`</script>
<div id="barChapter"><img class="load-src" data-src="https://cdn.example/1.jpg"></div>`,
		"https://www.yymanhua.com/m42/")

	p, err := decideMode(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.mode != ModeDirect {
		t.Fatalf("expected direct mode, got %v", p.mode)
	}
}

func TestResolveChapterPages_Signed(t *testing.T) {
	doc := chapterDoc(t, "<script>var other=1;</script><script>"+signedScript+"</script>",
		"https://www.yymanhua.com/m42/")

	pages, err := ResolveChapterPages(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 5 {
		t.Fatalf("expected 5 pages, got %d", len(pages))
	}

	for i, p := range pages {
		n := i + 1
		if p.Kind != PageDeferred || p.Index != n {
			t.Fatalf("page %d: got %+v", i, p)
		}

		u, err := url.Parse(p.FetchURL)
		if err != nil {
			t.Fatalf("page %d: bad URL %q: %v", n, p.FetchURL, err)
		}
		if u.Path != "/m42/chapterimage.ashx" {
			t.Fatalf("page %d: path = %q", n, u.Path)
		}

		q := u.Query()
		expect := map[string]string{
			"cid":   "42",
			"page":  strconv.Itoa(n),
			"key":   "",
			"_cid":  "42",
			"_mid":  "7",
			"_dt":   "dt",
			"_sign": "sig",
		}
		for k, v := range expect {
			if !q.Has(k) {
				t.Fatalf("page %d: missing query key %q in %s", n, k, p.FetchURL)
			}
			if got := q.Get(k); got != v {
				t.Fatalf("page %d: %s=%q, want %q", n, k, got, v)
			}
		}
		if len(q) != len(expect) {
			t.Fatalf("page %d: unexpected extra keys in %s", n, p.FetchURL)
		}
	}
}

func TestResolveChapterPages_PaymentRequired(t *testing.T) {
	doc := chapterDoc(t, `
<script>var YYMANHUA_CID=42;var YYMANHUA_MID=7;</script>
<div class="view-pay-form"><p class="subtitle">请购买后观看</p></div>`,
		"https://www.yymanhua.com/m42/")

	_, err := ResolveChapterPages(doc)
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}

	var pay *PaymentRequiredError
	if !errors.As(err, &pay) {
		t.Fatalf("expected *PaymentRequiredError, got %T", err)
	}
	if pay.Message != "请购买后观看" {
		t.Fatalf("message = %q", pay.Message)
	}
}

func TestResolveChapterPages_PaywallIgnoredWhenSigned(t *testing.T) {
	doc := chapterDoc(t, `
<script>`+signedScript+`</script>
<div class="view-pay-form"><p class="subtitle">请购买后观看</p></div>`,
		"https://www.yymanhua.com/m42/")

	pages, err := ResolveChapterPages(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 5 {
		t.Fatalf("expected 5 pages, got %d", len(pages))
	}
}

func TestResolveChapterPages_InvalidPageCount(t *testing.T) {
	for _, count := range []string{"0", "abc", "-3", "", "10001", "100000000000000"} {
		t.Run(count, func(t *testing.T) {
			script := strings.Replace(signedScript, "YYMANHUA_IMAGE_COUNT=5", "YYMANHUA_IMAGE_COUNT="+count, 1)
			doc := chapterDoc(t, "<script>"+script+"</script>", "https://www.yymanhua.com/m42/")

			_, err := ResolveChapterPages(doc)
			if !errors.Is(err, ErrInvalidPageCount) {
				t.Fatalf("expected ErrInvalidPageCount, got %v", err)
			}
		})
	}
}

func TestResolveChapterPages_MarkerNotFound(t *testing.T) {
	cases := map[string]string{
		"no parameter script": `<script>var foo=1;</script>`,
		"no signed marker":    `<script>var YYMANHUA_CID=42;var YYMANHUA_MID=7;</script>`,
		"missing signature":   `<script>var YYMANHUA_CID=42;var YYMANHUA_MID=7;var YYMANHUA_VIEWSIGN_DT="dt";var YYMANHUA_IMAGE_COUNT=2;</script>`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveChapterPages(chapterDoc(t, body, "https://www.yymanhua.com/m42/"))
			if !errors.Is(err, ErrMarkerNotFound) {
				t.Fatalf("expected ErrMarkerNotFound, got %v", err)
			}
		})
	}
}

func TestResolveChapterPages_NilDocument(t *testing.T) {
	_, err := ResolveChapterPages(ChapterDocument{})
	if !errors.Is(err, ErrInteractionRequired) {
		t.Fatalf("expected ErrInteractionRequired, got %v", err)
	}
}

func TestResolveChapterPages_SignedWithoutLocation(t *testing.T) {
	_, err := ResolveChapterPages(chapterDoc(t, "<script>"+signedScript+"</script>", ""))
	if err == nil {
		t.Fatalf("expected error for a document without location")
	}
}

func TestBuildImageFetchRequest(t *testing.T) {
	site := NewSite("https://www.yymanhua.com/", 0)

	direct := site.BuildImageFetchRequest(Page{Kind: PageDirect, Index: 0, ImageURL: "https://cdn.example/1.jpg"})
	if direct.URL != "https://cdn.example/1.jpg" {
		t.Fatalf("direct URL = %q", direct.URL)
	}
	if got := direct.Header.Get("Referer"); got != "https://www.yymanhua.com" {
		t.Fatalf("direct referer = %q", got)
	}

	fetch := "https://www.yymanhua.com/m42/chapterimage.ashx?cid=42&page=1"
	deferred := site.BuildImageFetchRequest(Page{Kind: PageDeferred, Index: 1, FetchURL: fetch})
	if deferred.URL != fetch {
		t.Fatalf("deferred URL = %q", deferred.URL)
	}
	if got := deferred.Header.Get("Referer"); got != "https://www.yymanhua.com/m42/" {
		t.Fatalf("deferred referer = %q", got)
	}

	img := site.ImageRequest("https://img.example/1.jpg?key=x")
	if got := img.Header.Get("Referer"); got != "https://www.yymanhua.com" {
		t.Fatalf("image referer = %q", got)
	}
}
