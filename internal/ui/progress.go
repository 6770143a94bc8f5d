package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/yymh/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress owns the terminal area holding one bar per chapter.
type Progress struct {
	p *mpb.Progress
}

func NewProgress(w io.Writer) *Progress {
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(w),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &Progress{p: p}
}

// Wait blocks until every bar is complete.
func (pm *Progress) Wait() {
	pm.p.Wait()
}

func (pm *Progress) Chapter(name string) *ChapterBar {
	b := &ChapterBar{name: name, start: time.Now()}

	b.bar = pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(name+"  "),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d pages", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + util.Human(b.bytes.Load())
			}),
			decor.Any(b.status),
		),
	)

	return b
}

// ChapterBar tracks pages and bytes of a single chapter download.
type ChapterBar struct {
	name string
	bar  *mpb.Bar

	total atomic.Int64
	bytes atomic.Int64

	start   time.Time
	elapsed atomic.Int64
	final   atomic.Bool
	failed  atomic.Bool
}

func (b *ChapterBar) status(_ decor.Statistics) string {
	sec := int64(time.Since(b.start).Seconds())
	if b.final.Load() {
		sec = b.elapsed.Load()
	}
	if b.failed.Load() {
		return fmt.Sprintf(" | %ds | failed", sec)
	}
	return fmt.Sprintf(" | %ds", sec)
}

func (b *ChapterBar) SetTotal(total int) {
	if b.final.Load() {
		return
	}

	b.total.Store(int64(total))
	b.bar.SetTotal(int64(total), false)
}

func (b *ChapterBar) Update(done int, bytes int64) {
	if b.final.Load() {
		return
	}

	b.bytes.Store(bytes)
	b.bar.SetCurrent(int64(done))
}

func (b *ChapterBar) Done() {
	if b.final.Swap(true) {
		return
	}

	b.elapsed.Store(int64(time.Since(b.start).Seconds()))
	total := b.total.Load()
	b.bar.SetCurrent(total)
	b.bar.SetTotal(total, true)
}

// Fail completes the bar and flags the chapter as failed.
func (b *ChapterBar) Fail() {
	b.failed.Store(true)
	if b.final.Swap(true) {
		return
	}

	b.elapsed.Store(int64(time.Since(b.start).Seconds()))
	b.bar.Abort(false)
}
