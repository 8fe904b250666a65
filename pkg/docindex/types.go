// Package docindex implements the Doc-Index Generator (C4): it scans a
// documentation tree into a filtered, compact catalog of pages and
// sections. The pipeline caches one index per tenant in DocIndexCache and
// rebuilds it when the doc tree's ContentHash changes; the commit hash
// and the filter configuration are not part of that cache key.
package docindex

import "time"

// FilterConfig controls which pages are included and how much of each is
// summarized into the index.
type FilterConfig struct {
	IncludeGlobs            []string `json:"include_globs" yaml:"include_globs"`
	ExcludeGlobs            []string `json:"exclude_globs" yaml:"exclude_globs"`
	ExcludeTitles           []string `json:"exclude_titles" yaml:"exclude_titles"`
	MaxPages                int      `json:"max_pages" yaml:"max_pages"`
	MaxSectionsPerPage      int      `json:"max_sections_per_page" yaml:"max_sections_per_page"`
	MaxSummaryLength        int      `json:"max_summary_length" yaml:"max_summary_length"`
	CompactIncludeSummaries bool     `json:"include_summaries" yaml:"include_summaries"`
	CompactIncludeSections  bool     `json:"include_sections" yaml:"include_sections"`
	MaxSectionsInCompact    int      `json:"max_sections_in_compact" yaml:"max_sections_in_compact"`
}

// Page is one documentation file's extracted catalog entry.
type Page struct {
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Sections    []string  `json:"sections"`
	Summary     string    `json:"summary"`
	LastUpdated time.Time `json:"last_updated"`
}

// Index is the Doc-Index Generator's structured output.
type Index struct {
	Pages       []Page              `json:"pages"`
	Categories  map[string][]string `json:"categories"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// CompactText renders the index as a flat block of text suitable for
// embedding directly in an LLM prompt.
func (idx Index) CompactText(cfg FilterConfig) string {
	return renderCompactText(idx, cfg)
}
