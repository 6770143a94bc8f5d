package yymh

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const signedEndpoint = "chapterimage.ashx"

// BuildSignedURL appends chapterimage.ashx to the chapter location and adds
// the query the server expects. cid and mid are sent twice under different
// names and key is always empty; the server rejects anything less.
func BuildSignedURL(base string, p ScriptParams, page int) (string, error) {
	if strings.TrimSpace(base) == "" {
		return "", errors.New("chapter document has no location")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse chapter location %q: %w", base, err)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + signedEndpoint
	u.RawPath = ""
	u.Fragment = ""

	pairs := [][2]string{
		{"cid", p.ChapterID},
		{"page", strconv.Itoa(page)},
		{"key", ""},
		{"_cid", p.ChapterID},
		{"_mid", p.MemberID},
		{"_dt", p.SignDT},
		{"_sign", p.Sign},
	}

	var q strings.Builder
	q.WriteString(u.RawQuery)
	for _, kv := range pairs {
		if q.Len() > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(kv[0]))
		q.WriteByte('=')
		q.WriteString(url.QueryEscape(kv[1]))
	}
	u.RawQuery = q.String()

	return u.String(), nil
}

// signedReferer cuts a fetch URL back to the directory serving the script.
func signedReferer(fetchURL string) string {
	if i := strings.Index(fetchURL, signedEndpoint); i >= 0 {
		return fetchURL[:i]
	}
	return fetchURL
}
