package yymh

import (
	"fmt"
	"strings"

	"github.com/brogergvhs/yymh/internal/jsunpack"
)

const (
	markerPix    = `var pix="`
	markerPValue = `var pvalue=["`
	markerQuery  = `pix+pvalue[i]+"`
)

// EvalImageFormula rebuilds pix + pvalue[0] + query from an unpacked
// chapterimage.ashx script.
func EvalImageFormula(script string) (string, error) {
	pix, err := between(script, markerPix, `"`)
	if err != nil {
		return "", err
	}

	pvalue, err := between(script, markerPValue, `"`)
	if err != nil {
		return "", err
	}

	query, err := between(script, markerQuery, `"`)
	if err != nil {
		return "", err
	}

	return pix + pvalue + query, nil
}

// ResolveDeferredImageURL decodes a chapterimage.ashx response body.
func ResolveDeferredImageURL(raw string) (string, error) {
	script, err := jsunpack.Unpack(raw)
	if err != nil {
		return "", err
	}

	return EvalImageFormula(script)
}

func between(s, start, end string) (string, error) {
	i := strings.Index(s, start)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", ErrMarkerNotFound, start)
	}

	rest := s[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return rest, nil
	}

	return rest[:j], nil
}
