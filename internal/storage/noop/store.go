// Package noop provides an in-memory Store for dry runs. Nothing survives the
// process; chapters written during the run are still visible to later
// existence checks so skip logic behaves the same as against Postgres.
package noop

import (
	"context"
	"sync"

	"github.com/RKPYI/novel-scraper/internal/scraper"
)

// Store keeps novels and chapters in memory.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	novels   map[string]int64
	chapters map[int64]map[int]scraper.Chapter
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:   1,
		novels:   make(map[string]int64),
		chapters: make(map[int64]map[int]scraper.Chapter),
	}
}

func (s *Store) UpsertNovel(ctx context.Context, meta scraper.NovelMetadata) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.novels[meta.Slug]; ok {
		return id, nil
	}
	id := s.nextID
	s.nextID++
	s.novels[meta.Slug] = id
	s.chapters[id] = make(map[int]scraper.Chapter)
	return id, nil
}

func (s *Store) MaxChapterNumber(ctx context.Context, novelID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for n := range s.chapters[novelID] {
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (s *Store) ChapterExists(ctx context.Context, novelID int64, number int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chapters[novelID][number]
	return ok, nil
}

func (s *Store) UpsertChapter(ctx context.Context, novelID int64, ch scraper.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chapters[novelID] == nil {
		s.chapters[novelID] = make(map[int]scraper.Chapter)
	}
	s.chapters[novelID][ch.Number] = ch
	return nil
}

func (s *Store) RefreshTotalChapters(ctx context.Context, novelID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chapters[novelID]), nil
}

// Close exists for symmetry with the Postgres store.
func (s *Store) Close() {}
