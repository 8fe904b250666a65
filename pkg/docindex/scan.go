package docindex

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar"
)

var headingPattern = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)

// Generate walks root and produces a filtered Index. No third-party
// Markdown AST library appears anywhere in the example pack, so the
// heading/summary extraction below is a small hand-rolled scanner over
// bufio.Scanner rather than a parser dependency.
func Generate(root string, cfg FilterConfig) (Index, error) {
	var pages []Page

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if !matchesGlobs(rel, cfg) {
			return nil
		}

		page, scanErr := scanPage(path, rel, info.ModTime(), cfg)
		if scanErr != nil {
			return fmt.Errorf("docindex: failed to scan %s: %w", rel, scanErr)
		}

		if isBlockedTitle(page.Title, cfg.ExcludeTitles) {
			return nil
		}

		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return Index{}, err
	}

	if cfg.MaxPages > 0 && len(pages) > cfg.MaxPages {
		pages = pages[:cfg.MaxPages]
	}

	return Index{
		Pages:      pages,
		Categories: deriveCategories(pages),
	}, nil
}

// matchesGlobs applies include/exclude glob filtering: a page must match at
// least one include glob (or there are none) and must not match any
// exclude glob.
func matchesGlobs(rel string, cfg FilterConfig) bool {
	if len(cfg.ExcludeGlobs) > 0 {
		for _, g := range cfg.ExcludeGlobs {
			if ok, _ := doublestar.Match(g, rel); ok {
				return false
			}
		}
	}
	if len(cfg.IncludeGlobs) == 0 {
		return true
	}
	for _, g := range cfg.IncludeGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

func isBlockedTitle(title string, blocklist []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, b := range blocklist {
		if normalized == strings.ToLower(strings.TrimSpace(b)) {
			return true
		}
	}
	return false
}

// scanPage extracts a title, headings, and a first-paragraph summary from a
// markdown file in a single pass.
func scanPage(path, rel string, modTime time.Time, cfg FilterConfig) (Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return Page{}, err
	}
	defer f.Close()

	page := Page{Path: rel, Title: rel, LastUpdated: modTime}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var summaryLines []string
	inParagraph := false
	summaryDone := false

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
			heading := strings.TrimSpace(m[2])
			if page.Title == rel && len(m[1]) == 1 {
				page.Title = heading
			}
			if len(page.Sections) == 0 || cfg.MaxSectionsPerPage <= 0 || len(page.Sections) < cfg.MaxSectionsPerPage {
				page.Sections = append(page.Sections, heading)
			}
			if inParagraph {
				summaryDone = true
			}
			continue
		}

		if summaryDone {
			continue
		}

		if trimmed == "" {
			if inParagraph {
				summaryDone = true
			}
			continue
		}

		inParagraph = true
		summaryLines = append(summaryLines, stripMarkdownMarkers(trimmed))
	}
	if err := scanner.Err(); err != nil {
		return Page{}, err
	}

	page.Summary = truncateSummary(strings.Join(summaryLines, " "), cfg.MaxSummaryLength)
	return page, nil
}

var markdownMarkerPattern = regexp.MustCompile(`[*_` + "`" + `~]`)

func stripMarkdownMarkers(s string) string {
	return markdownMarkerPattern.ReplaceAllString(s, "")
}

func truncateSummary(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}

// deriveCategories groups pages by the title-cased top-level directory
// segment of their path.
func deriveCategories(pages []Page) map[string][]string {
	categories := make(map[string][]string)
	for _, p := range pages {
		segment := p.Path
		if idx := strings.Index(p.Path, "/"); idx >= 0 {
			segment = p.Path[:idx]
		} else {
			segment = "root"
		}
		category := titleCase(segment)
		categories[category] = append(categories[category], p.Path)
	}
	return categories
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
