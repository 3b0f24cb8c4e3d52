// Package wuxiaworld adapts wuxiaworld.site pages. Chapters live under
// /novel/{slug}/chapter-{n}/ and the site answers missing chapter numbers
// with a redirect to the novel homepage instead of a 404.
package wuxiaworld

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RKPYI/novel-scraper/internal/scraper"
)

const baseURL = "https://wuxiaworld.site"

// Adapter implements the wuxiaworld.site source.
type Adapter struct{}

// New returns a wuxiaworld.site adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return "wuxiaworld" }

func (a *Adapter) NovelURL(slug string) string {
	return baseURL + "/novel/" + slug + "/"
}

func (a *Adapter) ChapterURL(slug string, number int) string {
	return fmt.Sprintf("%s/novel/%s/chapter-%d/", baseURL, slug, number)
}

var chapterPrefix = regexp.MustCompile(`(?i)^Chapter\s*\d+\s*[-:]?\s*`)

// Markdown-style headers some translators leave in the body text.
var markdownHeader = regexp.MustCompile(`(?i)^###\s*(chapter\s*\d+.*|prologue.*|epilogue.*)$`)

// ParseNovel extracts novel metadata from the landing page.
func (a *Adapter) ParseNovel(doc *goquery.Document, slug string) (scraper.NovelMetadata, error) {
	meta := scraper.NovelMetadata{Slug: slug, Status: scraper.StatusOngoing}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		return meta, &scraper.ParseError{What: "novel title", Err: errors.New("no h1 or title element")}
	}
	// The page title often carries the site name after a dash.
	if idx := strings.Index(title, " - "); idx > 0 {
		title = strings.TrimSpace(title[:idx])
	}
	meta.Title = title

	for _, sel := range []string{".author-content a", "span.author", "div.author", ".novel-author", ".author-name"} {
		if author := strings.TrimSpace(doc.Find(sel).First().Text()); author != "" {
			meta.Author = author
			break
		}
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(desc) != "" {
		meta.Description = strings.TrimSpace(desc)
	} else {
		for _, sel := range []string{"div.summary__content", "div.summary", "div.description", ".entry-content p"} {
			if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
				meta.Description = text
				break
			}
		}
	}

	for _, sel := range []string{"div.summary_image img", "img.cover", "div.cover img", ".wp-post-image", `img[alt*="cover"]`} {
		if src, ok := doc.Find(sel).First().Attr("src"); ok && src != "" {
			meta.CoverImage = scraper.ResolveURL(baseURL+"/", src)
			break
		}
	}

	meta.TotalChapters = doc.Find(`a[href*="chapter-"]`).Length()
	meta.Status = siteStatus(doc)
	return meta, nil
}

func siteStatus(doc *goquery.Document) scraper.NovelStatus {
	for _, sel := range []string{".status", ".novel-status", "span.completed", "span.ongoing"} {
		text := strings.ToLower(strings.TrimSpace(doc.Find(sel).First().Text()))
		if text == "" {
			continue
		}
		switch {
		case strings.Contains(text, "completed"), strings.Contains(text, "finished"):
			return scraper.StatusCompleted
		case strings.Contains(text, "hiatus"), strings.Contains(text, "paused"):
			return scraper.StatusHiatus
		case strings.Contains(text, "ongoing"):
			return scraper.StatusOngoing
		}
	}
	return scraper.StatusOngoing
}

// ParseChapter extracts a chapter. A page that looks like the novel homepage
// means the site silently redirected a nonexistent chapter number.
func (a *Adapter) ParseChapter(doc *goquery.Document, number int) (scraper.ChapterContent, error) {
	if looksLikeHomepage(doc) {
		return scraper.ChapterContent{}, &scraper.ParseError{
			What: "chapter page",
			Err:  errors.New("redirected to novel homepage"),
		}
	}

	var content scraper.ChapterContent
	for _, sel := range []string{"h1.entry-title", "h1.chapter-title", "h1", ".post-title h1"} {
		if title := strings.TrimSpace(doc.Find(sel).First().Text()); title != "" {
			content.Title = strings.TrimSpace(chapterPrefix.ReplaceAllString(title, ""))
			break
		}
	}

	var body *goquery.Selection
	for _, sel := range []string{".reading-content", ".entry-content", ".post-content", ".chapter-content", "#content", ".post-body"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			body = s
			break
		}
	}
	if body == nil {
		return scraper.ChapterContent{}, &scraper.ParseError{
			What: "chapter content",
			Err:  errors.New("no content container"),
		}
	}

	text, promoted := promoteHeaders(scraper.ElementText(body))
	if content.Title == "" && promoted != "" {
		content.Title = promoted
	}
	content.Body = text
	return content, nil
}

// promoteHeaders lifts the first markdown-style "### Chapter N" header out of
// the body and returns it as a title candidate.
func promoteHeaders(text string) (string, string) {
	if !strings.Contains(text, "###") {
		return text, ""
	}
	var out []string
	title := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := markdownHeader.FindStringSubmatch(trimmed); m != nil {
			header := strings.TrimSpace(m[1])
			if title == "" {
				title = header
			}
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), title
}

// looksLikeHomepage checks for the landing-page furniture a chapter page
// never has. Three or more indicators is a confident match.
func looksLikeHomepage(doc *goquery.Document) bool {
	if doc.Find("div.summary").Length() > 0 || doc.Find("div.novel-info").Length() > 0 {
		return true
	}
	text := strings.ToLower(doc.Text())
	indicators := []string{"summary", "author(s)", "genre(s)", "alternative", "rating", "novel-status"}
	found := 0
	for _, ind := range indicators {
		if strings.Contains(text, ind) {
			found++
		}
	}
	return found >= 3
}

// NextChapterURL finds the forward navigation link.
func (a *Adapter) NextChapterURL(doc *goquery.Document) (string, bool) {
	link := ""
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if !strings.Contains(text, "next") {
			return true
		}
		href, ok := s.Attr("href")
		if !ok || !strings.Contains(href, "chapter-") {
			return true
		}
		link = href
		return false
	})
	if link == "" {
		return "", false
	}
	return scraper.ResolveURL(baseURL+"/", link), true
}

func (a *Adapter) Rules() scraper.Rules {
	return scraper.Rules{}
}
