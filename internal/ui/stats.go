package ui

import (
	"io"
	"strconv"
	"sync/atomic"

	"github.com/brogergvhs/yymh/internal/util"
)

// Stats aggregates counters across concurrently downloaded chapters.
type Stats struct {
	Chapters atomic.Int64
	Images   atomic.Int64
	Bytes    atomic.Int64
	Failed   atomic.Int64
	Locked   atomic.Int64
}

// Summary prints the totals as a two column table.
func (s *Stats) Summary(w io.Writer) error {
	rows := [][]string{
		{"chapters", strconv.FormatInt(s.Chapters.Load(), 10)},
		{"images", strconv.FormatInt(s.Images.Load(), 10)},
		{"downloaded", util.Human(s.Bytes.Load())},
		{"failed", strconv.FormatInt(s.Failed.Load(), 10)},
		{"paywalled", strconv.FormatInt(s.Locked.Load(), 10)},
	}
	return Table(w, []string{"", "total"}, rows)
}
