package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/RKPYI/novel-scraper/internal/scraper"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)
	return store, mock
}

func TestNewStoreWithPool_RequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewStoreWithPool(nil)
	require.Error(t, err)
}

func TestUpsertNovelReturnsID(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	meta := scraper.NovelMetadata{
		Slug:          "reverend-insanity",
		Title:         "Reverend Insanity",
		Author:        "Gu Zhen Ren",
		Description:   "A villainous cultivator rewinds time.",
		CoverImage:    "https://example.test/covers/ri.jpg",
		TotalChapters: 2334,
		Status:        scraper.StatusCompleted,
	}

	mock.ExpectQuery("INSERT INTO novels").
		WithArgs(
			meta.Slug,
			meta.Title,
			meta.Author,
			meta.Description,
			meta.CoverImage,
			meta.TotalChapters,
			"completed",
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := store.UpsertNovel(context.Background(), meta)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMaxChapterNumber(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(117))

	max, err := store.MaxChapterNumber(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, 117, max)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChapterExists(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42), 5).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.ChapterExists(context.Background(), 42, 5)
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertChapter(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	ch := scraper.Chapter{Number: 5, Title: "Chapter 5", Content: "the text", WordCount: 2}

	mock.ExpectExec("INSERT INTO chapters").
		WithArgs(int64(42), ch.Number, ch.Title, ch.Content, ch.WordCount).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.UpsertChapter(context.Background(), 42, ch)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertChapterMapsUniqueViolation(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO chapters").
		WithArgs(int64(42), 5, "Chapter 5", "the text", 2).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "chapters_novel_id_chapter_number_key"})

	err := store.UpsertChapter(context.Background(), 42, scraper.Chapter{
		Number: 5, Title: "Chapter 5", Content: "the text", WordCount: 2,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, scraper.ErrAlreadyExists)

	var se *scraper.StorageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "upsert chapter", se.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTotalChapters(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("UPDATE novels SET").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"total_chapters"}).AddRow(118))

	total, err := store.RefreshTotalChapters(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, 118, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	boom := errors.New("connection lost")
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(1), 1).
		WillReturnError(boom)

	_, err := store.ChapterExists(context.Background(), 1, 1)
	var se *scraper.StorageError
	require.ErrorAs(t, err, &se)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
