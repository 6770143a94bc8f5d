package yymh

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/yymh/internal/providers"
)

var (
	reCSSURL      = regexp.MustCompile(`url\(\s*["']?([^"')]+)["']?\s*\)`)
	reChapterNum  = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	reChapterPath = regexp.MustCompile(`/(m\d+)/?`)
)

// ParseMangaList reads the popular and latest listings.
func (s Site) ParseMangaList(doc *goquery.Document) ([]providers.Manga, bool) {
	var out []providers.Manga

	doc.Find("ul.mh-list > li > div.mh-item").Each(func(_ int, el *goquery.Selection) {
		a := el.Find("h2.title > a").First()
		if a.Length() == 0 {
			return
		}

		href, _ := a.Attr("href")
		cover, _ := el.Find("img.mh-cover").First().Attr("src")
		out = append(out, providers.Manga{
			URL:   s.Absolute(href),
			Title: cleanText(a.Text()),
			Cover: cover,
		})
	})

	return out, hasNextPage(doc)
}

// ParseSearch reads search results, including the banner shown for an
// exact title match.
func (s Site) ParseSearch(doc *goquery.Document) ([]providers.Manga, bool) {
	var out []providers.Manga

	doc.Find("ul.mh-list > li, div.banner_detail_form").Each(func(_ int, el *goquery.Selection) {
		a := el.Find(".title > a").First()
		if a.Length() == 0 {
			return
		}

		href, _ := a.Attr("href")
		out = append(out, providers.Manga{
			URL:   s.Absolute(href),
			Title: cleanText(a.Text()),
			Cover: searchCover(el),
		})
	})

	return out, hasNextPage(doc)
}

func searchCover(el *goquery.Selection) string {
	if img := el.Find("img").First(); img.Length() > 0 {
		src, _ := img.Attr("src")
		return src
	}

	style, _ := el.Find("p.mh-cover").First().Attr("style")
	if m := reCSSURL.FindStringSubmatch(style); m != nil {
		return strings.TrimSpace(m[1])
	}

	return ""
}

func hasNextPage(doc *goquery.Document) bool {
	next := false
	doc.Find("div.page-pagination a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.Contains(a.Text(), ">") {
			next = true
			return false
		}
		return true
	})

	return next
}

// ParseDetails reads the detail-info block of a manga page.
func (s Site) ParseDetails(doc *goquery.Document, mangaURL string) (providers.Details, error) {
	info := doc.Find("div.detail-info").First()
	if info.Length() == 0 {
		return providers.Details{}, ErrInteractionRequired
	}

	title := ownText(info.Find("p.detail-info-title").First())
	cover, _ := info.Find("img.detail-info-cover").First().Attr("src")
	author := ownText(info.Find("p.detail-info-tip > span > a").First())

	var genres []string
	info.Find("p.detail-info-tip span > span.item").Each(func(_ int, g *goquery.Selection) {
		if t := cleanText(g.Text()); t != "" {
			genres = append(genres, t)
		}
	})

	content := info.Find("p.detail-info-content").First()
	desc := ownText(content) + ownText(content.Find("span").First())

	return providers.Details{
		Manga: providers.Manga{
			URL:   mangaURL,
			Title: title,
			Cover: cover,
		},
		Author:      author,
		Artist:      author,
		Genres:      genres,
		Description: desc,
		Status:      parseStatus(cleanText(info.Find("p.detail-info-tip > span > span").First().Text())),
	}, nil
}

func parseStatus(s string) providers.Status {
	switch s {
	case "連載中", "连载中":
		return providers.StatusOngoing
	case "已完結", "已完结":
		return providers.StatusCompleted
	default:
		return providers.StatusUnknown
	}
}

// ParseChapters reads the chapter list in page order. Some titles only show
// the list after a confirmation click; those pages have no list container.
func (s Site) ParseChapters(doc *goquery.Document) ([]providers.Chapter, error) {
	list := doc.Find("div#chapterlistload")
	if list.Length() == 0 {
		return nil, ErrInteractionRequired
	}

	var out []providers.Chapter
	list.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}

		name := a.Text()
		if p := a.Find("p.title").First(); p.Length() > 0 {
			name = p.Text()
		}
		name = cleanText(name)

		locked := a.Find("span.detail-lock, span.view-lock").Length() > 0
		title := name
		if locked {
			title = providers.LockMark + name
		}

		out = append(out, providers.Chapter{
			URL:    s.Absolute(href),
			Title:  title,
			Label:  chapterLabel(href, name),
			Locked: locked,
		})
	})

	return out, nil
}

func chapterLabel(href, name string) string {
	if m := reChapterNum.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := reChapterPath.FindStringSubmatch(href); m != nil {
		return m[1]
	}

	return strings.Trim(href, "/")
}

func ownText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})

	return cleanText(b.String())
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
