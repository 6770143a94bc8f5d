package yymh

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// present in the parameter script of every chapter page
	markerScript = "YYMANHUA_MID"
	// present only when the chapter can be read through chapterimage.ashx
	markerSigned = "YYMANHUA_VIEWSIGN_DT"

	varChapterID  = "YYMANHUA_CID"
	varMemberID   = "YYMANHUA_MID"
	varSign       = "YYMANHUA_VIEWSIGN"
	varSignDT     = "YYMANHUA_VIEWSIGN_DT"
	varImageCount = "YYMANHUA_IMAGE_COUNT"
)

// VarSource is the only view the resolver has of the inline script.
// Markup drift on the site is absorbed by swapping the implementation.
type VarSource interface {
	Has(token string) bool
	Var(name string, quoted bool) (string, error)
}

// Script is the text of one inline <script> element.
type Script string

func (s Script) Has(token string) bool {
	return strings.Contains(string(s), token)
}

func (s Script) Var(name string, quoted bool) (string, error) {
	return ExtractVar(string(s), name, quoted)
}

// ExtractVar returns the value assigned by the first `var NAME=` in script.
// Quoted values run to the closing quote, bare ones to the next ';'.
func ExtractVar(script, name string, quoted bool) (string, error) {
	marker := "var " + name + "="
	term := ";"
	if quoted {
		marker += `"`
		term = `"`
	}

	i := strings.Index(script, marker)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", ErrMarkerNotFound, name)
	}

	rest := script[i+len(marker):]
	if j := strings.Index(rest, term); j >= 0 {
		rest = rest[:j]
	}

	if quoted {
		return rest, nil
	}
	return strings.TrimSpace(rest), nil
}

type ScriptParams struct {
	ChapterID  string
	MemberID   string
	Sign       string
	SignDT     string
	ImageCount string
}

// ReadScriptParams reads the signing parameters. Without the signed-mode
// marker the values are not trusted and nothing is returned.
func ReadScriptParams(src VarSource) (ScriptParams, error) {
	if !src.Has(markerSigned) {
		return ScriptParams{}, fmt.Errorf("%w: %s", ErrMarkerNotFound, markerSigned)
	}

	var (
		p   ScriptParams
		err error
	)

	fields := []struct {
		dst    *string
		name   string
		quoted bool
	}{
		{&p.ChapterID, varChapterID, false},
		{&p.MemberID, varMemberID, false},
		{&p.SignDT, varSignDT, true},
		{&p.Sign, varSign, true},
		{&p.ImageCount, varImageCount, false},
	}

	for _, f := range fields {
		if *f.dst, err = src.Var(f.name, f.quoted); err != nil {
			return ScriptParams{}, err
		}
	}

	return p, nil
}

// maxPageCount bounds the signed page list built from an untrusted count.
const maxPageCount = 10000

// PageCount parses the image count, which must be an integer in
// [1, maxPageCount].
func (p ScriptParams) PageCount() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(p.ImageCount))
	if err != nil || n <= 0 || n > maxPageCount {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPageCount, p.ImageCount)
	}

	return n, nil
}
