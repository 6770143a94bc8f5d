package providers

import "context"

type Status int

const (
	StatusUnknown Status = iota
	StatusOngoing
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "ongoing"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type Manga struct {
	URL   string
	Title string
	Cover string
}

type Details struct {
	Manga
	Author      string
	Artist      string
	Genres      []string
	Description string
	Status      Status
}

// LockMark prefixes the title of a chapter that sits behind the paywall.
const LockMark = "\U0001F512"

type Chapter struct {
	URL    string
	Title  string
	Label  string
	Locked bool
}

// Image is a final image location and the Referer the host insists on.
type Image struct {
	Index   int
	URL     string
	Referer string
}

type Scraper interface {
	GetChapters(ctx context.Context, url string) ([]Chapter, error)
	GetImages(ctx context.Context, chapterURL string) ([]Image, error)
}

type Catalog interface {
	Popular(ctx context.Context, page int) ([]Manga, bool, error)
	Latest(ctx context.Context, page int) ([]Manga, bool, error)
	Search(ctx context.Context, query string, page int) ([]Manga, bool, error)
	Details(ctx context.Context, mangaURL string) (Details, error)
}
