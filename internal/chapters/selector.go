package chapters

import (
	"strconv"
	"strings"
)

// Selection describes which chapters to keep. Positions are 1-based over the
// list as the site orders it.
type Selection struct {
	Chapter    string
	Range      string
	List       string
	SkipLocked bool
}

// Filter applies the first non-empty criterion of Chapter, Range or List.
// Chapter matches a label first and falls back to a position.
func Filter(all []Chapter, sel Selection) []Chapter {
	var out []Chapter

	switch {
	case sel.Chapter != "":
		out = FilterByLabel(all, sel.Chapter)
		if len(out) == 0 {
			if idx, err := atoi(sel.Chapter); err == nil && idx > 0 && idx <= len(all) {
				out = []Chapter{all[idx-1]}
			}
		}
	case sel.Range != "":
		out = FilterRange(all, sel.Range)
	case sel.List != "":
		out = FilterList(all, sel.List)
	default:
		out = all
	}

	if sel.SkipLocked {
		out = unlocked(out)
	}
	return out
}

func FilterByLabel(all []Chapter, label string) []Chapter {
	label = strings.TrimSpace(label)

	var out []Chapter
	for _, ch := range all {
		if ch.Label == label {
			out = append(out, ch)
		}
	}
	return out
}

// FilterRange keeps positions start..end inclusive. An open end ("5-")
// runs to the last chapter.
func FilterRange(all []Chapter, rng string) []Chapter {
	from, to, ok := strings.Cut(rng, "-")
	if !ok {
		return nil
	}

	start, err := atoi(from)
	if err != nil {
		return nil
	}

	end := len(all)
	if strings.TrimSpace(to) != "" {
		if end, err = atoi(to); err != nil {
			return nil
		}
	}

	if start <= 0 || start > end || end > len(all) {
		return nil
	}
	return all[start-1 : end]
}

func FilterList(all []Chapter, list string) []Chapter {
	var out []Chapter
	for n := range strings.SplitSeq(list, ",") {
		idx, err := atoi(n)
		if err != nil || idx <= 0 || idx > len(all) {
			continue
		}
		out = append(out, all[idx-1])
	}
	return out
}

func unlocked(all []Chapter) []Chapter {
	out := make([]Chapter, 0, len(all))
	for _, ch := range all {
		if !ch.Locked {
			out = append(out, ch)
		}
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
