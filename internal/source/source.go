// Package source maps source names to their site adapters.
package source

import (
	"fmt"
	"strings"

	"github.com/RKPYI/novel-scraper/internal/scraper"
	"github.com/RKPYI/novel-scraper/internal/source/divinedao"
	"github.com/RKPYI/novel-scraper/internal/source/novelbin"
	"github.com/RKPYI/novel-scraper/internal/source/wuxiaworld"
)

// New returns the adapter registered under name. Site domains work as
// aliases for their short names.
func New(name string) (scraper.Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wuxiaworld", "wuxiaworld.site":
		return wuxiaworld.New(), nil
	case "novelbin", "novelbin.com":
		return novelbin.New(), nil
	case "divinedao", "divinedaolibrary", "divinedaolibrary.com":
		return divinedao.New(), nil
	default:
		return nil, fmt.Errorf("unknown source %q (available: %s)", name, strings.Join(Names(), ", "))
	}
}

// Names lists the registered source names.
func Names() []string {
	return []string{"divinedao", "novelbin", "wuxiaworld"}
}
