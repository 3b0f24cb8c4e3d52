// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RKPYI/novel-scraper/internal/scraper"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type querier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Ping(context.Context) error
	Close()
}

// Store persists novels and chapters in Postgres. It expects the schema:
//
//	CREATE TABLE novels (
//		id BIGSERIAL PRIMARY KEY,
//		slug TEXT NOT NULL UNIQUE,
//		title TEXT NOT NULL,
//		author TEXT,
//		description TEXT,
//		cover_image TEXT,
//		total_chapters INT NOT NULL DEFAULT 0,
//		status TEXT NOT NULL DEFAULT 'ongoing',
//		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE chapters (
//		id BIGSERIAL PRIMARY KEY,
//		novel_id BIGINT NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
//		chapter_number INT NOT NULL,
//		title TEXT NOT NULL,
//		content TEXT NOT NULL,
//		word_count INT NOT NULL DEFAULT 0,
//		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//		UNIQUE (novel_id, chapter_number)
//	);
type Store struct {
	pool querier
}

// NewStore connects a pool and verifies it with a ping.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewStoreWithPool(pool querier) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// UpsertNovel inserts the novel keyed by slug, or refreshes its metadata when
// the slug is already present, and returns the row id either way.
func (s *Store) UpsertNovel(ctx context.Context, meta scraper.NovelMetadata) (int64, error) {
	const query = `
INSERT INTO novels (slug, title, author, description, cover_image, total_chapters, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (slug) DO UPDATE SET
	title = EXCLUDED.title,
	author = EXCLUDED.author,
	description = EXCLUDED.description,
	cover_image = EXCLUDED.cover_image,
	total_chapters = EXCLUDED.total_chapters,
	status = EXCLUDED.status,
	updated_at = NOW()
RETURNING id`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		meta.Slug,
		meta.Title,
		meta.Author,
		meta.Description,
		meta.CoverImage,
		meta.TotalChapters,
		string(meta.Status),
	).Scan(&id)
	if err != nil {
		return 0, wrap("upsert novel", err)
	}
	return id, nil
}

// MaxChapterNumber returns the highest persisted chapter number, zero when
// the novel has no chapters yet.
func (s *Store) MaxChapterNumber(ctx context.Context, novelID int64) (int, error) {
	const query = `SELECT COALESCE(MAX(chapter_number), 0) FROM chapters WHERE novel_id = $1`

	var max int
	if err := s.pool.QueryRow(ctx, query, novelID).Scan(&max); err != nil {
		return 0, wrap("max chapter number", err)
	}
	return max, nil
}

// ChapterExists reports whether the chapter number is already persisted.
func (s *Store) ChapterExists(ctx context.Context, novelID int64, number int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM chapters WHERE novel_id = $1 AND chapter_number = $2)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, novelID, number).Scan(&exists); err != nil {
		return false, wrap("chapter exists", err)
	}
	return exists, nil
}

// UpsertChapter inserts or refreshes one chapter row.
func (s *Store) UpsertChapter(ctx context.Context, novelID int64, ch scraper.Chapter) error {
	const query = `
INSERT INTO chapters (novel_id, chapter_number, title, content, word_count)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (novel_id, chapter_number) DO UPDATE SET
	title = EXCLUDED.title,
	content = EXCLUDED.content,
	word_count = EXCLUDED.word_count,
	updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, novelID, ch.Number, ch.Title, ch.Content, ch.WordCount); err != nil {
		return wrap("upsert chapter", err)
	}
	return nil
}

// RefreshTotalChapters recounts the novel's chapters and stores the result.
func (s *Store) RefreshTotalChapters(ctx context.Context, novelID int64) (int, error) {
	const query = `
UPDATE novels SET
	total_chapters = (SELECT COUNT(*) FROM chapters WHERE novel_id = $1),
	updated_at = NOW()
WHERE id = $1
RETURNING total_chapters`

	var total int
	if err := s.pool.QueryRow(ctx, query, novelID).Scan(&total); err != nil {
		return 0, wrap("refresh total chapters", err)
	}
	return total, nil
}

// wrap maps Postgres errors onto the shared error taxonomy. Unique violations
// become ErrAlreadyExists so the engine can treat them as races, not failures.
func wrap(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		err = fmt.Errorf("%w: %s", scraper.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return &scraper.StorageError{Op: op, Err: err}
}
