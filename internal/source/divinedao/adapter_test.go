package divinedao

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/RKPYI/novel-scraper/internal/scraper"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestAdapter_URLs(t *testing.T) {
	t.Parallel()

	a := New()
	require.Equal(t, "https://www.divinedaolibrary.com/story/martial-peak", a.NovelURL("martial-peak"))
	require.Equal(t,
		"https://www.divinedaolibrary.com/story/martial-peak/martial-peak-chapter-8",
		a.ChapterURL("martial-peak", 8))
}

func TestAdapter_ParseNovel(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><body>
		<h1 class="story__identity-title">Nine Evolutions of the True Spirit</h1>
		<img alt="Cover of Nine Evolutions of the True Spirit" src="/covers/nine.jpg">
		<div class="story__status">Ongoing</div>
		<section>
			<h3>Author: 莫默 (MOMO)</h3>
			<h3>Description</h3>
			<p>A cultivation tale of nine rebirths.</p>
		</section>
		<ol>
			<li><a href="/story/nine/nine-chapter-1">Chapter 1</a></li>
			<li><a href="/story/nine/nine-chapter-2">Chapter 2</a></li>
			<li><a href="/story/nine/nine-chapter-3">Chapter 3</a></li>
		</ol>
	</body></html>`)

	meta, err := New().ParseNovel(doc, "nine-evolutions-of-the-true-spirit")
	require.NoError(t, err)
	require.Equal(t, "Nine Evolutions of the True Spirit", meta.Title)
	require.Equal(t, "莫默 (MOMO)", meta.Author)
	require.Equal(t, "A cultivation tale of nine rebirths.", meta.Description)
	require.Equal(t, "https://www.divinedaolibrary.com/covers/nine.jpg", meta.CoverImage)
	require.Equal(t, 3, meta.TotalChapters)
	require.Equal(t, scraper.StatusOngoing, meta.Status)
}

func TestAdapter_ParseNovel_CompletedStatus(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><body>
		<h1 class="story__identity-title">Some Finished Story</h1>
		<span class="status">Completed</span>
	</body></html>`)

	meta, err := New().ParseNovel(doc, "some-finished-story")
	require.NoError(t, err)
	require.Equal(t, scraper.StatusCompleted, meta.Status)
}

func TestAdapter_ParseChapter(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><body>
		<h1 class="chapter__title">Chapter 8 - The Trial</h1>
		<div class="chapter-formatting">
			<p>The trial grounds fell silent.</p>
			<p>He stepped forward.</p>
		</div>
	</body></html>`)

	content, err := New().ParseChapter(doc, 8)
	require.NoError(t, err)
	require.Equal(t, "Chapter 8 - The Trial", content.Title)
	require.Contains(t, content.Body, "The trial grounds fell silent.")
	require.Contains(t, content.Body, "He stepped forward.")
}

func TestAdapter_ParseChapter_MissingContainer(t *testing.T) {
	t.Parallel()

	_, err := New().ParseChapter(parse(t, `<html><body><h1>Not a chapter</h1></body></html>`), 1)
	var pe *scraper.ParseError
	require.ErrorAs(t, err, &pe)
	require.Contains(t, err.Error(), "chapter-formatting")
}

func TestAdapter_NextChapterURL(t *testing.T) {
	t.Parallel()

	a := New()

	doc := parse(t, `<html><body>
		<a class="button _secondary _navigation _prev" href="/story/nine/nine-chapter-7">Previous</a>
		<a class="button _secondary _navigation _next" href="/story/nine/nine-chapter-9">Next</a>
	</body></html>`)
	url, ok := a.NextChapterURL(doc)
	require.True(t, ok)
	require.Equal(t, "https://www.divinedaolibrary.com/story/nine/nine-chapter-9", url)

	_, ok = a.NextChapterURL(parse(t, `<html><body></body></html>`))
	require.False(t, ok)
}
