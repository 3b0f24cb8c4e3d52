package scraper

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Config controls a single crawl run.
type Config struct {
	// StartChapter is the first chapter number to attempt. Zero means 1.
	StartChapter int
	// EndChapter is the last chapter number to attempt, inclusive. Zero means
	// crawl until the source runs out.
	EndChapter int
	// SkipExisting skips chapters already persisted for the novel.
	SkipExisting bool
	// NovelOnly stops after the metadata phase without touching chapters.
	NovelOnly bool
	// MaxConsecutiveFailures aborts the run when this many chapters fail in a
	// row. Zero means the default of 5.
	MaxConsecutiveFailures int
	// ProgressEvery logs a progress line every N saved chapters. Zero means
	// the default of 10.
	ProgressEvery int
}

const (
	defaultMaxConsecutiveFailures = 5
	defaultProgressEvery          = 10
)

// Engine walks a novel's chapters through fetch, parse, normalize and persist.
// Chapter numbers are assigned by the engine's cursor, never read from pages.
type Engine struct {
	cfg     Config
	source  Source
	fetcher Fetcher
	store   Store
	archive Archive
	ids     IDGenerator
	logger  *zap.Logger

	// Capability views of source, nil when unsupported.
	locator ChapterLocator
	next    NextLinker
}

// NewEngine wires an engine from its collaborators. archive may be nil.
func NewEngine(cfg Config, source Source, fetcher Fetcher, store Store, archive Archive, ids IDGenerator, logger *zap.Logger) (*Engine, error) {
	if source == nil {
		return nil, errors.New("source is required")
	}
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	if ids == nil {
		return nil, errors.New("id generator is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.StartChapter <= 0 {
		cfg.StartChapter = 1
	}
	if cfg.EndChapter != 0 && cfg.EndChapter < cfg.StartChapter {
		return nil, fmt.Errorf("end chapter %d precedes start chapter %d", cfg.EndChapter, cfg.StartChapter)
	}
	if cfg.MaxConsecutiveFailures <= 0 {
		cfg.MaxConsecutiveFailures = defaultMaxConsecutiveFailures
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = defaultProgressEvery
	}
	e := &Engine{
		cfg:     cfg,
		source:  source,
		fetcher: fetcher,
		store:   store,
		archive: archive,
		ids:     ids,
		logger:  logger,
	}
	e.locator, _ = source.(ChapterLocator)
	e.next, _ = source.(NextLinker)
	if e.locator == nil && e.next == nil {
		return nil, fmt.Errorf("source %s can locate no chapters", source.Name())
	}
	return e, nil
}

// Run executes one full crawl for slug. A failure in the novel metadata phase
// is fatal; individual chapter failures are tolerated up to the consecutive
// failure threshold. The returned summary is valid whenever err is nil.
func (e *Engine) Run(ctx context.Context, slug string) (Summary, error) {
	runID, err := e.ids.NewID()
	if err != nil {
		return Summary{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := e.logger.With(
		zap.String("run_id", runID),
		zap.String("source", e.source.Name()),
		zap.String("slug", slug),
	)

	summary := Summary{RunID: runID, Slug: slug}

	novelID, err := e.syncNovel(ctx, logger, slug)
	if err != nil {
		return Summary{}, err
	}
	summary.NovelID = novelID

	if e.cfg.NovelOnly {
		summary.Reason = StopNovelOnly
		e.logSummary(logger, summary)
		return summary, nil
	}

	e.crawlChapters(ctx, logger, slug, novelID, &summary)

	total, err := e.store.RefreshTotalChapters(ctx, novelID)
	if err != nil {
		logger.Warn("failed to refresh total chapter count", zap.Error(err))
	} else {
		logger.Info("total chapter count refreshed", zap.Int("total_chapters", total))
	}

	e.logSummary(logger, summary)
	return summary, nil
}

// syncNovel fetches the novel landing page and upserts its metadata record.
func (e *Engine) syncNovel(ctx context.Context, logger *zap.Logger, slug string) (int64, error) {
	url := e.source.NovelURL(slug)
	logger.Info("fetching novel metadata", zap.String("url", url))

	doc, page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fetch novel page: %w", err)
	}

	meta, err := e.source.ParseNovel(doc, slug)
	if err != nil {
		return 0, fmt.Errorf("parse novel page %s: %w", page.URL, err)
	}
	meta.Slug = slug

	novelID, err := e.store.UpsertNovel(ctx, meta)
	if err != nil {
		return 0, fmt.Errorf("upsert novel %s: %w", slug, err)
	}
	logger.Info("novel record ready",
		zap.Int64("novel_id", novelID),
		zap.String("title", meta.Title),
		zap.String("status", string(meta.Status)),
	)
	return novelID, nil
}

// crawlChapters drives the chapter cursor from StartChapter until the range is
// exhausted, the source runs out, or the failure breaker trips. It mutates
// summary in place so a partial run is still reported.
func (e *Engine) crawlChapters(ctx context.Context, logger *zap.Logger, slug string, novelID int64, summary *Summary) {
	if e.cfg.SkipExisting {
		if max, err := e.store.MaxChapterNumber(ctx, novelID); err != nil {
			logger.Warn("failed to read max persisted chapter", zap.Error(err))
		} else if max >= e.cfg.StartChapter {
			// Resume hint only. The per-chapter existence check below stays
			// authoritative so holes below max are still filled.
			logger.Info("novel has persisted chapters in range", zap.Int("max_chapter", max))
		}
	}

	consecutiveFailures := 0
	// nextURL carries the link lifted from the previous chapter page. When
	// empty the locator builds the URL from the cursor.
	nextURL := ""

	for number := e.cfg.StartChapter; ; number++ {
		if e.cfg.EndChapter != 0 && number > e.cfg.EndChapter {
			summary.Reason = StopRangeComplete
			return
		}
		if err := ctx.Err(); err != nil {
			summary.Reason = StopCanceled
			return
		}

		if e.cfg.SkipExisting {
			exists, err := e.store.ChapterExists(ctx, novelID, number)
			if err != nil {
				logger.Warn("existence check failed", zap.Int("chapter", number), zap.Error(err))
			} else if exists {
				summary.ChaptersSkipped++
				summary.LastChapter = number
				// A skipped chapter cannot hand us its next link.
				nextURL = ""
				continue
			}
		}

		url := nextURL
		if url == "" {
			if e.locator == nil {
				logger.Warn("no next link and no URL pattern, stopping",
					zap.Int("chapter", number))
				summary.Reason = StopNoMoreChapters
				return
			}
			url = e.locator.ChapterURL(slug, number)
		}
		nextURL = ""

		summary.ChaptersAttempted++
		words, next, err := e.processChapter(ctx, logger, slug, novelID, number, url)
		switch {
		case err == nil:
			summary.ChaptersSaved++
			summary.TotalWords += words
			summary.LastChapter = number
			consecutiveFailures = 0
			nextURL = next
			TotalChaptersSaved.Inc()
			TotalWordsSaved.Add(float64(words))
			if summary.ChaptersSaved%e.cfg.ProgressEvery == 0 {
				logger.Info("crawl progress",
					zap.Int("chapters_saved", summary.ChaptersSaved),
					zap.Int("last_chapter", number),
					zap.Int("total_words", summary.TotalWords),
				)
			}
		case IsNotFound(err):
			logger.Info("chapter not found, assuming end of novel",
				zap.Int("chapter", number), zap.String("url", url))
			summary.Reason = StopNoMoreChapters
			return
		case errors.Is(err, ErrAlreadyExists):
			// Raced another writer. Treat like a skip and move on.
			logger.Debug("chapter already persisted", zap.Int("chapter", number))
			summary.ChaptersSkipped++
			summary.LastChapter = number
			consecutiveFailures = 0
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			summary.Reason = StopCanceled
			return
		default:
			consecutiveFailures++
			TotalChapterFailures.Inc()
			e.logChapterFailure(logger, number, url, err)
			if consecutiveFailures >= e.cfg.MaxConsecutiveFailures {
				logger.Error("too many consecutive chapter failures, aborting run",
					zap.Int("consecutive_failures", consecutiveFailures),
					zap.Int("chapter", number),
				)
				summary.Reason = StopFailureThreshold
				return
			}
		}
	}
}

// processChapter runs the full pipeline for one chapter and returns its word
// count plus the next-chapter URL lifted from the page, when the source
// exposes one.
func (e *Engine) processChapter(ctx context.Context, logger *zap.Logger, slug string, novelID int64, number int, url string) (int, string, error) {
	doc, page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, "", err
	}

	if e.archive != nil {
		if path, err := e.archive.SavePage(ctx, slug, number, page.Body); err != nil {
			logger.Warn("failed to archive page", zap.Int("chapter", number), zap.Error(err))
		} else {
			logger.Debug("page archived", zap.String("path", path))
		}
	}

	content, err := e.source.ParseChapter(doc, number)
	if err != nil {
		return 0, "", err
	}

	body, words, err := Normalize(content.Body, e.source.Rules())
	if err != nil {
		return 0, "", &ParseError{URL: page.URL, What: "chapter body", Err: err}
	}

	title := content.Title
	if title == "" {
		title = fmt.Sprintf("Chapter %d", number)
	}

	if err := e.store.UpsertChapter(ctx, novelID, Chapter{
		Number:    number,
		Title:     title,
		Content:   body,
		WordCount: words,
	}); err != nil {
		return 0, "", err
	}
	logger.Debug("chapter saved",
		zap.Int("chapter", number),
		zap.String("title", title),
		zap.Int("words", words),
	)

	next := ""
	if e.next != nil {
		if link, ok := e.next.NextChapterURL(doc); ok {
			next = ResolveURL(page.FinalURL, link)
		}
	}
	return words, next, nil
}

// logChapterFailure logs one failed chapter with fields specific to where in
// the pipeline it broke.
func (e *Engine) logChapterFailure(logger *zap.Logger, number int, url string, err error) {
	fields := []zap.Field{zap.Int("chapter", number), zap.String("url", url), zap.Error(err)}
	var fe *FetchError
	var pe *ParseError
	var se *StorageError
	switch {
	case errors.As(err, &fe):
		fields = append(fields, zap.Int("status_code", fe.StatusCode), zap.Int("attempts", fe.Attempts))
		logger.Warn("chapter fetch failed", fields...)
	case errors.As(err, &pe):
		fields = append(fields, zap.String("element", pe.What))
		logger.Warn("chapter parse failed", fields...)
	case errors.As(err, &se):
		fields = append(fields, zap.String("op", se.Op))
		logger.Warn("chapter save failed", fields...)
	default:
		logger.Warn("chapter failed", fields...)
	}
}

func (e *Engine) logSummary(logger *zap.Logger, s Summary) {
	logger.Info("crawl finished",
		zap.String("reason", string(s.Reason)),
		zap.Int("chapters_attempted", s.ChaptersAttempted),
		zap.Int("chapters_saved", s.ChaptersSaved),
		zap.Int("chapters_skipped", s.ChaptersSkipped),
		zap.Int("total_words", s.TotalWords),
		zap.Int("last_chapter", s.LastChapter),
	)
}
