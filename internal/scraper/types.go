package scraper

// NovelStatus represents the publication state reported by the source site.
type NovelStatus string

// Novel status values persisted with the novel record.
const (
	StatusOngoing   NovelStatus = "ongoing"
	StatusCompleted NovelStatus = "completed"
	StatusHiatus    NovelStatus = "hiatus"
	StatusUnknown   NovelStatus = "unknown"
)

// NovelMetadata captures everything a source adapter extracts from a novel's
// landing page. Slug is the identity; the rest is best-effort.
type NovelMetadata struct {
	Slug          string
	Title         string
	Author        string
	Description   string
	CoverImage    string
	TotalChapters int
	Status        NovelStatus
}

// ChapterContent is the raw extraction result for a single chapter page,
// before normalization. Title may be empty when the page carries none.
type ChapterContent struct {
	Title string
	Body  string
}

// Chapter is the record handed to the persistence gateway. WordCount is
// always derived from Content, never trusted from the source.
type Chapter struct {
	Number    int
	Title     string
	Content   string
	WordCount int
}

// Page is the result of one fetched page. FinalURL differs from URL when the
// server redirected the request.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
}

// StopReason explains why a crawl run terminated.
type StopReason string

// Stop reasons reported in the run summary.
const (
	StopRangeComplete    StopReason = "range complete"
	StopNoMoreChapters   StopReason = "no more chapters"
	StopFailureThreshold StopReason = "failure threshold"
	StopNovelOnly        StopReason = "novel only"
	StopCanceled         StopReason = "canceled"
)

// Summary is the terminal outcome of a run.
type Summary struct {
	RunID             string
	Slug              string
	NovelID           int64
	ChaptersAttempted int
	ChaptersSaved     int
	ChaptersSkipped   int
	TotalWords        int
	LastChapter       int
	Reason            StopReason
}
