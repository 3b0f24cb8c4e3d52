package scraper

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves a page and returns its parsed document plus raw metadata.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, Page, error)
}

// Transport performs a single network attempt with no retry semantics.
type Transport interface {
	RoundTrip(ctx context.Context, url string) (Page, error)
}

// Source is a site-specific adapter: it knows where a novel lives and how to
// read its pages. One implementation per source site.
type Source interface {
	Name() string
	NovelURL(slug string) string
	ParseNovel(doc *goquery.Document, slug string) (NovelMetadata, error)
	ParseChapter(doc *goquery.Document, number int) (ChapterContent, error)
	Rules() Rules
}

// ChapterLocator derives a chapter URL deterministically from slug + number.
type ChapterLocator interface {
	ChapterURL(slug string, number int) string
}

// NextLinker extracts the next-chapter link from the current chapter page.
// Sources that navigate by explicit "next" buttons implement this.
type NextLinker interface {
	NextChapterURL(doc *goquery.Document) (string, bool)
}

// Store is the persistence gateway for novel and chapter records. It is the
// sole writer of durable state; every call is its own atomic unit.
type Store interface {
	UpsertNovel(ctx context.Context, meta NovelMetadata) (int64, error)
	MaxChapterNumber(ctx context.Context, novelID int64) (int, error)
	ChapterExists(ctx context.Context, novelID int64, number int) (bool, error)
	UpsertChapter(ctx context.Context, novelID int64, ch Chapter) error
	RefreshTotalChapters(ctx context.Context, novelID int64) (int, error)
}

// RetryPolicy decides whether a fetch attempt is retried and how long to wait.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// Archive stores raw page snapshots for later inspection.
type Archive interface {
	SavePage(ctx context.Context, slug string, number int, body []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
