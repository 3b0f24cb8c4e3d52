package scraper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFSArchive_SavePage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	archive, err := NewFSArchive(root, zap.NewNop())
	require.NoError(t, err)

	body := []byte("<html><body>chapter text</body></html>")
	path, err := archive.SavePage(context.Background(), "reverend-insanity", 42, body)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "reverend-insanity", "chapter-42.html"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, body, got)
}

func TestFSArchive_SavePage_SanitizesSlug(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	archive, err := NewFSArchive(root, zap.NewNop())
	require.NoError(t, err)

	path, err := archive.SavePage(context.Background(), "../weird slug/", 1, []byte("<html></html>"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, ".._weird_slug_", "chapter-1.html"), path)
}

func TestFSArchive_SavePage_RejectsEmptyBody(t *testing.T) {
	t.Parallel()

	archive, err := NewFSArchive(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	_, err = archive.SavePage(context.Background(), "slug", 1, nil)
	require.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	base := "https://example.test/novel/some-slug/chapter-3/"
	tests := []struct {
		name string
		href string
		want string
	}{
		{"absolute", "https://other.test/ch-4/", "https://other.test/ch-4/"},
		{"protocol relative", "//example.test/ch-4/", "https://example.test/ch-4/"},
		{"root relative", "/novel/some-slug/chapter-4/", "https://example.test/novel/some-slug/chapter-4/"},
		{"relative", "../chapter-4/", "https://example.test/novel/some-slug/chapter-4/"},
		{"padded", "  /next/  ", "https://example.test/next/"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ResolveURL(base, tc.href))
		})
	}
}
