package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
)

var invalidPathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FSArchive saves raw chapter page snapshots to disk, one HTML file per
// chapter under a per-novel directory.
type FSArchive struct {
	root   string
	logger *zap.Logger
}

// NewFSArchive returns an archive rooted at dir.
func NewFSArchive(root string, logger *zap.Logger) (*FSArchive, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir %s: %w", root, err)
	}
	return &FSArchive{
		root:   root,
		logger: logger,
	}, nil
}

// SavePage writes the raw page body and returns the target path.
func (a *FSArchive) SavePage(ctx context.Context, slug string, number int, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty page body")
	}
	dir := filepath.Join(a.root, invalidPathChars.ReplaceAllString(slug, "_"))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create novel dir %s: %w", dir, err)
	}
	target := filepath.Join(dir, fmt.Sprintf("chapter-%d.html", number))
	if err := os.WriteFile(target, body, 0o600); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", target, err)
	}
	return target, nil
}
