// Package divinedao adapts divinedaolibrary.com pages. Chapters live under
// /story/{slug}/{slug}-chapter-{n} and the theme marks navigation and
// content blocks with stable class names.
package divinedao

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RKPYI/novel-scraper/internal/scraper"
)

const baseURL = "https://www.divinedaolibrary.com"

// Adapter implements the divinedaolibrary.com source.
type Adapter struct{}

// New returns a divinedaolibrary.com adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return "divinedao" }

func (a *Adapter) NovelURL(slug string) string {
	return baseURL + "/story/" + slug
}

func (a *Adapter) ChapterURL(slug string, number int) string {
	return fmt.Sprintf("%s/story/%s/%s-chapter-%d", baseURL, slug, slug, number)
}

// ParseNovel extracts novel metadata from the story page.
func (a *Adapter) ParseNovel(doc *goquery.Document, slug string) (scraper.NovelMetadata, error) {
	meta := scraper.NovelMetadata{Slug: slug, Status: scraper.StatusOngoing}

	meta.Title = strings.TrimSpace(doc.Find("h1.story__identity-title").First().Text())
	if meta.Title == "" {
		return meta, &scraper.ParseError{What: "novel title", Err: errors.New("no story title element")}
	}

	// The author line reads "Author: <name>".
	doc.Find("h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if !strings.Contains(text, "Author:") {
			return true
		}
		if _, after, ok := strings.Cut(text, ":"); ok {
			meta.Author = strings.TrimSpace(after)
		} else {
			meta.Author = text
		}
		return false
	})

	// Description is the paragraph following the "Description" heading.
	doc.Find("h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) != "Description" {
			return true
		}
		if p := s.NextAllFiltered("p").First(); p.Length() > 0 {
			meta.Description = strings.TrimSpace(p.Text())
		}
		return false
	})

	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		alt, _ := s.Attr("alt")
		if !strings.Contains(alt, "Cover of") {
			return true
		}
		if src, ok := s.Attr("src"); ok && src != "" {
			meta.CoverImage = scraper.ResolveURL(baseURL+"/", src)
		}
		return false
	})

	meta.TotalChapters = doc.Find(`a[href*="chapter-"]`).Length()

	status := strings.ToLower(doc.Find("span.status, div.story__status").First().Text())
	if strings.Contains(status, "completed") || strings.Contains(status, "finished") {
		meta.Status = scraper.StatusCompleted
	} else if strings.Contains(status, "hiatus") || strings.Contains(status, "paused") {
		meta.Status = scraper.StatusHiatus
	}
	return meta, nil
}

// ParseChapter extracts a chapter from its fixed content container.
func (a *Adapter) ParseChapter(doc *goquery.Document, number int) (scraper.ChapterContent, error) {
	body := doc.Find("div.chapter-formatting").First()
	if body.Length() == 0 {
		return scraper.ChapterContent{}, &scraper.ParseError{
			What: "chapter content",
			Err:  errors.New("no chapter-formatting container"),
		}
	}
	return scraper.ChapterContent{
		Title: strings.TrimSpace(doc.Find("h1.chapter__title").First().Text()),
		Body:  scraper.ElementText(body),
	}, nil
}

// NextChapterURL finds the forward navigation button.
func (a *Adapter) NextChapterURL(doc *goquery.Document) (string, bool) {
	href, ok := doc.Find("a.button._secondary._navigation._next").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", false
	}
	return scraper.ResolveURL(baseURL+"/", href), true
}

func (a *Adapter) Rules() scraper.Rules {
	return scraper.Rules{}
}
