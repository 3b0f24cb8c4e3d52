package scraper

import (
	"net/url"
	"strings"
)

// ResolveURL turns an href extracted from a page into an absolute URL against
// the site base. Already-absolute and protocol-relative hrefs pass through
// with minimal fixing; anything unparsable comes back empty.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(u).String()
}
