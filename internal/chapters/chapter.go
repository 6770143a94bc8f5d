package chapters

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/brogergvhs/yymh/internal/providers"
)

var reUnderscore = regexp.MustCompile(`_+`)

type Chapter struct {
	providers.Chapter
}

func Wrap(list []providers.Chapter) []Chapter {
	out := make([]Chapter, len(list))
	for i, c := range list {
		out[i] = Chapter{Chapter: c}
	}
	return out
}

// sanitize keeps letters (CJK included), digits and single underscores.
func sanitize(s string) string {
	s = strings.ToLower(s)

	s = strings.Map(func(r rune) rune {
		switch r {
		case '•', '-', '—', '–', '/', '\\', '.', ' ', '　':
			return '_'
		case '(', ')', '（', '）':
			return -1
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, s)

	s = reUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func (c Chapter) baseName() string {
	lbl := sanitize(c.Label)
	title := sanitize(strings.TrimPrefix(c.Title, providers.LockMark))

	switch {
	case lbl == "":
		return title
	case title != "" && title != lbl:
		return lbl + "_" + title
	}
	return lbl
}

func (c Chapter) FolderName() string {
	return c.baseName() + "_tmp"
}

func (c Chapter) OutputCBZ() string {
	return c.baseName() + ".cbz"
}

func (c Chapter) OutputCBZPath(out string) string {
	return filepath.Join(out, c.OutputCBZ())
}
