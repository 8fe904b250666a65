package docindex

import "strings"

// renderCompactText flattens an Index into prompt-ready text, honoring the
// compact_format knobs that trim it for token budget.
func renderCompactText(idx Index, cfg FilterConfig) string {
	var sb strings.Builder
	for _, p := range idx.Pages {
		sb.WriteString("# ")
		sb.WriteString(p.Title)
		sb.WriteString(" (")
		sb.WriteString(p.Path)
		sb.WriteString(")\n")

		if cfg.CompactIncludeSummaries && p.Summary != "" {
			sb.WriteString(p.Summary)
			sb.WriteString("\n")
		}

		if cfg.CompactIncludeSections {
			sections := p.Sections
			if cfg.MaxSectionsInCompact > 0 && len(sections) > cfg.MaxSectionsInCompact {
				sections = sections[:cfg.MaxSectionsInCompact]
			}
			for _, s := range sections {
				sb.WriteString("- ")
				sb.WriteString(s)
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
