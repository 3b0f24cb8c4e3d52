// Package novelbin adapts novelbin.com pages. Chapters live under
// /b/{slug}/chapter-{n} and pages carry heavy ad and translator-note
// boilerplate that has to be stripped from the body text.
package novelbin

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RKPYI/novel-scraper/internal/scraper"
)

const baseURL = "https://novelbin.com"

// Adapter implements the novelbin.com source.
type Adapter struct{}

// New returns a novelbin.com adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return "novelbin" }

func (a *Adapter) NovelURL(slug string) string {
	return baseURL + "/b/" + slug
}

func (a *Adapter) ChapterURL(slug string, number int) string {
	return fmt.Sprintf("%s/b/%s/chapter-%d", baseURL, slug, number)
}

var (
	siteSuffix     = regexp.MustCompile(`(?i)\s*-\s*Novel\s*Bin.*$`)
	chapterHeading = regexp.MustCompile(`(?i)chapter\s*\d+`)
	navSplit       = regexp.MustCompile(`(?i)(Prev Chapter|Next Chapter)`)

	stripPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)A/N.*?thank you.*?\^\^`),
		regexp.MustCompile(`(?im)^.*REMOVE ADS.*$`),
		regexp.MustCompile(`(?im)^Report chapter.*$`),
		regexp.MustCompile(`(?is)Enhance your reading experience.*\z`),
		regexp.MustCompile(`(?is)Read Novel Online Full.*\z`),
	}
)

// ParseNovel extracts novel metadata from the book page.
func (a *Adapter) ParseNovel(doc *goquery.Document, slug string) (scraper.NovelMetadata, error) {
	meta := scraper.NovelMetadata{Slug: slug, Status: scraper.StatusOngoing}

	for _, sel := range []string{"h1", ".novel-title", "title"} {
		title := strings.TrimSpace(doc.Find(sel).First().Text())
		title = strings.TrimSpace(siteSuffix.ReplaceAllString(title, ""))
		if len(title) > 3 {
			meta.Title = title
			break
		}
	}
	if meta.Title == "" {
		return meta, &scraper.ParseError{What: "novel title", Err: errors.New("no usable title element")}
	}

	for _, sel := range []string{`a[href*="/a/"]`, ".author a", ".novel-author a"} {
		if author := strings.TrimSpace(doc.Find(sel).First().Text()); author != "" {
			meta.Author = author
			break
		}
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(desc) != "" {
		meta.Description = strings.TrimSpace(siteSuffix.ReplaceAllString(desc, ""))
	} else if text := strings.TrimSpace(doc.Find(".desc-text").First().Text()); text != "" {
		meta.Description = text
	}

	for _, sel := range []string{".book img", "img.lazy", `meta[property="og:image"]`} {
		s := doc.Find(sel).First()
		src, ok := s.Attr("src")
		if !ok {
			src, ok = s.Attr("content")
		}
		if ok && src != "" {
			meta.CoverImage = scraper.ResolveURL(baseURL+"/", src)
			break
		}
	}

	// The latest-chapter link is the best total count the book page offers.
	if m := chapterHeading.FindString(doc.Find(".l-chapter a, .latest-chapter").First().Text()); m != "" {
		fmt.Sscanf(strings.ToLower(m), "chapter %d", &meta.TotalChapters)
	}
	if meta.TotalChapters == 0 {
		meta.TotalChapters = doc.Find(`a[href*="/chapter-"]`).Length()
	}

	switch {
	case doc.Find(`a[href*="/sort/completed"]`).Length() > 0:
		meta.Status = scraper.StatusCompleted
	default:
		text := strings.ToLower(doc.Find(".status, .novel-status").First().Text())
		if strings.Contains(text, "completed") || strings.Contains(text, "finished") {
			meta.Status = scraper.StatusCompleted
		} else if strings.Contains(text, "hiatus") || strings.Contains(text, "paused") {
			meta.Status = scraper.StatusHiatus
		}
	}
	return meta, nil
}

// ParseChapter extracts a chapter. The dedicated content container is
// preferred; without one the body text between the navigation buttons is the
// fallback.
func (a *Adapter) ParseChapter(doc *goquery.Document, number int) (scraper.ChapterContent, error) {
	var content scraper.ChapterContent

	for _, sel := range []string{"h2", "h1", ".chapter-title", ".entry-title"} {
		title := strings.TrimSpace(doc.Find(sel).First().Text())
		if title == "" {
			continue
		}
		if chapterHeading.MatchString(title) || len(title) < 100 {
			content.Title = title
			break
		}
	}

	for _, sel := range []string{"#chr-content", ".chr-c", ".chapter-content"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			content.Body = scraper.ElementText(s)
			break
		}
	}
	if content.Body == "" {
		content.Body = betweenNavigation(doc)
	}
	if strings.TrimSpace(content.Body) == "" {
		return scraper.ChapterContent{}, &scraper.ParseError{
			What: "chapter content",
			Err:  errors.New("no content container"),
		}
	}
	return content, nil
}

// betweenNavigation takes the longest text run between the Prev/Next buttons,
// which is where the chapter body sits when no container class is present.
func betweenNavigation(doc *goquery.Document) string {
	parts := navSplit.Split(scraper.ElementText(doc.Selection), -1)
	longest := ""
	for _, part := range parts {
		if len(part) > len(longest) {
			longest = part
		}
	}
	if len(strings.TrimSpace(longest)) < 100 {
		return ""
	}
	return longest
}

// NextChapterURL finds the forward navigation link.
func (a *Adapter) NextChapterURL(doc *goquery.Document) (string, bool) {
	if href, ok := doc.Find("a#next_chap").Attr("href"); ok && href != "" {
		return scraper.ResolveURL(baseURL+"/", href), true
	}
	link := ""
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(s.Text()), "next") {
			return true
		}
		href, ok := s.Attr("href")
		if !ok || !strings.Contains(href, "/chapter-") {
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
	return scraper.Rules{
		StripLines:    []string{"remove ads", "report chapter", "novel bin"},
		StripPatterns: stripPatterns,
	}
}
