package chapters

import (
	"testing"

	"github.com/brogergvhs/yymh/internal/providers"
)

func fixture() []Chapter {
	return Wrap([]providers.Chapter{
		{URL: "/m5/", Title: providers.LockMark + "第5话", Label: "5", Locked: true},
		{URL: "/m4/", Title: "第4话", Label: "4"},
		{URL: "/m3/", Title: "第3话 重逢", Label: "3"},
		{URL: "/m2/", Title: "第2话", Label: "2"},
		{URL: "/m1/", Title: "序章", Label: "m1"},
	})
}

func labels(list []Chapter) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Label
	}
	return out
}

func TestFilter(t *testing.T) {
	cases := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"all", Selection{}, []string{"5", "4", "3", "2", "m1"}},
		{"by label", Selection{Chapter: "3"}, []string{"3"}},
		{"label wins over position", Selection{Chapter: "2"}, []string{"2"}},
		{"position fallback", Selection{Chapter: "1"}, []string{"5"}},
		{"unknown", Selection{Chapter: "99"}, nil},
		{"range", Selection{Range: "2-4"}, []string{"4", "3", "2"}},
		{"open range", Selection{Range: "4-"}, []string{"2", "m1"}},
		{"bad range", Selection{Range: "4-2"}, nil},
		{"range past end", Selection{Range: "1-9"}, nil},
		{"list", Selection{List: "1, 3,x,9"}, []string{"5", "3"}},
		{"skip locked", Selection{Range: "1-2", SkipLocked: true}, []string{"4"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := labels(Filter(fixture(), c.sel))
			if len(got) != len(c.want) {
				t.Fatalf("got %v, want %v", got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("got %v, want %v", got, c.want)
				}
			}
		})
	}
}

func TestChapterNames(t *testing.T) {
	cases := []struct {
		ch   providers.Chapter
		want string
	}{
		{providers.Chapter{Label: "3", Title: "第3话 重逢"}, "3_第3话_重逢"},
		{providers.Chapter{Label: "5", Title: providers.LockMark + "第5话"}, "5_第5话"},
		{providers.Chapter{Label: "12.5", Title: "12.5"}, "12_5"},
		{providers.Chapter{Label: "", Title: "Extra (Part 1)"}, "extra_part_1"},
	}

	for _, c := range cases {
		ch := Chapter{Chapter: c.ch}
		if got := ch.OutputCBZ(); got != c.want+".cbz" {
			t.Errorf("OutputCBZ(%+v) = %q, want %q", c.ch, got, c.want+".cbz")
		}
		if got := ch.FolderName(); got != c.want+"_tmp" {
			t.Errorf("FolderName(%+v) = %q", c.ch, got)
		}
	}
}
