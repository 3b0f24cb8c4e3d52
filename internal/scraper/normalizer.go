package scraper

import (
	"regexp"
	"strings"
)

// Rules describe the site-specific furniture a source adapter wants stripped
// from raw chapter bodies before persistence.
type Rules struct {
	// StripLines drops any line containing one of these phrases
	// (case-insensitive substring match).
	StripLines []string
	// StripPatterns are removed from the full text before the line pass.
	StripPatterns []*regexp.Regexp
}

// navLine matches leftover navigation button text like "[ Next ]" or
// "Prev Chapter" captured by a parser.
var navLine = regexp.MustCompile(`(?i)^\[?\s*(next|previous|prev)(\s+chapter)?\s*\]?$`)

// Boilerplate every source shares, regardless of adapter rules.
var commonStripLines = []string{
	"table of contents",
	"next chapter",
	"previous chapter",
	"click here",
	"read more",
	"subscribe",
	"donate",
}

// Normalize strips boilerplate from a raw chapter body and returns the clean
// text plus its word count. Word count is the number of whitespace-delimited
// tokens in the clean text, recomputed every save. An empty result yields
// ErrEmptyContent.
func Normalize(raw string, rules Rules) (string, int, error) {
	text := raw
	for _, re := range rules.StripPatterns {
		text = re.ReplaceAllString(text, "")
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			// Collapse blank runs to a single separator.
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}
		if navLine.MatchString(line) {
			continue
		}
		if containsAny(line, commonStripLines) || containsAny(line, rules.StripLines) {
			continue
		}
		out = append(out, line)
	}

	clean := strings.TrimSpace(strings.Join(out, "\n"))
	if clean == "" {
		return "", 0, ErrEmptyContent
	}
	return clean, len(strings.Fields(clean)), nil
}

func containsAny(line string, phrases []string) bool {
	lower := strings.ToLower(line)
	for _, p := range phrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
