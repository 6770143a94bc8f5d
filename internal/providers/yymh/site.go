package yymh

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL = "https://www.yymanhua.com"
	DefaultLang    = 1
)

// Site builds every URL and request of the source. It holds no state
// beyond its configuration and is safe to share.
type Site struct {
	BaseURL string
	Lang    int
}

func NewSite(baseURL string, lang int) Site {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if lang <= 0 {
		lang = DefaultLang
	}

	return Site{BaseURL: baseURL, Lang: lang}
}

func (s Site) PopularURL(page int) string {
	if page < 2 {
		return s.BaseURL + "/manga-list/"
	}
	return fmt.Sprintf("%s/manga-list-p%d/", s.BaseURL, page)
}

func (s Site) LatestURL(page int) string {
	if page < 2 {
		return s.BaseURL + "/manga-list-0-0-2/"
	}
	return fmt.Sprintf("%s/manga-list-0-0-2-p%d/", s.BaseURL, page)
}

func (s Site) SearchURL(query string, page int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("%s/search?title=%s&language=%d&page=%d",
		s.BaseURL, url.QueryEscape(query), s.Lang, page)
}

// Absolute resolves a site-relative href.
func (s Site) Absolute(href string) string {
	return resolveURL(s.BaseURL+"/", href)
}

type FetchRequest struct {
	URL    string
	Header http.Header
}

// BuildImageFetchRequest returns what to GET for a page. Direct pages are
// fetched as images with the site origin as referer; deferred pages fetch
// the packed script with the chapter directory as referer.
func (s Site) BuildImageFetchRequest(p Page) FetchRequest {
	h := http.Header{}

	if p.Kind == PageDeferred {
		h.Set("Referer", signedReferer(p.FetchURL))
		return FetchRequest{URL: p.FetchURL, Header: h}
	}

	h.Set("Referer", s.BaseURL)
	return FetchRequest{URL: p.ImageURL, Header: h}
}

// ImageRequest is the request for an image URL recovered from a deferred
// page. The server checks for the site origin, not the script URL.
func (s Site) ImageRequest(imageURL string) FetchRequest {
	h := http.Header{}
	h.Set("Referer", s.BaseURL)

	return FetchRequest{URL: imageURL, Header: h}
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return baseURL
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
