package docindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGenerateFiltersAndExtractsSections(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "guides", "intro.md"), "# Getting Started\n\nThis is the **first** paragraph of the guide.\n\n## Setup\n\nMore text.\n\n## Usage\n\nEven more.\n")
	writeFile(t, filepath.Join(root, "internal", "secrets.md"), "# Internal Only\n\nShould be excluded.\n")
	writeFile(t, filepath.Join(root, "guides", "deprecated.md"), "# Old Page\n\nDeprecated content.\n")

	idx, err := Generate(root, FilterConfig{
		IncludeGlobs:  []string{"guides/**"},
		ExcludeGlobs:  []string{},
		ExcludeTitles: []string{"Old Page"},
	})
	require.NoError(t, err)
	require.Len(t, idx.Pages, 1)

	page := idx.Pages[0]
	assert.Equal(t, "Getting Started", page.Title)
	assert.Equal(t, []string{"Getting Started", "Setup", "Usage"}, page.Sections)
	assert.Equal(t, "This is the first paragraph of the guide.", page.Summary)
	assert.Equal(t, "guides/intro.md", page.Path)
}

func TestGenerateDerivesCategoriesFromTopDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "api-reference", "auth.md"), "# Auth\n\nHow auth works.\n")

	idx, err := Generate(root, FilterConfig{})
	require.NoError(t, err)
	require.Contains(t, idx.Categories, "Api Reference")
	assert.Equal(t, []string{"api-reference/auth.md"}, idx.Categories["Api Reference"])
}

func TestTruncateSummaryAddsEllipsis(t *testing.T) {
	assert.Equal(t, "hello...", truncateSummary("hello world", 5))
	assert.Equal(t, "hello", truncateSummary("hello", 10))
}

func TestConfigHashIsDeterministic(t *testing.T) {
	cfg := FilterConfig{IncludeGlobs: []string{"a/**"}, MaxPages: 10}
	h1, err := ConfigHash(cfg)
	require.NoError(t, err)
	h2, err := ConfigHash(cfg)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestContentHashIsOrderIndependent(t *testing.T) {
	digests := map[string][]byte{
		"a.md": []byte("alpha"),
		"b.md": []byte("beta"),
	}
	h1 := ContentHash(digests)
	h2 := ContentHash(digests)
	assert.Equal(t, h1, h2)
}
