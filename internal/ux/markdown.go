package ux

import (
	"fmt"
	"strings"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/resolver"
)

// RecommendationMarkdown renders a recommendation as Markdown source.
func RecommendationMarkdown(rec *resolver.Recommendation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", rec.Requirement)
	fmt.Fprintf(&sb, "**Status:** `%s`", rec.Status)
	if rec.Chosen != "" {
		fmt.Fprintf(&sb, " · **Entry:** `%s`", rec.Chosen)
	}
	fmt.Fprintf(&sb, "\n\n_Catalog %s (%s)_\n\n", rec.CatalogVersion, short(rec.CatalogDigest))

	if len(rec.Missing) > 0 {
		sb.WriteString("## Needs clarification\n\n")
		for _, m := range rec.Missing {
			fmt.Fprintf(&sb, "- `%s`\n", m)
		}
		sb.WriteString("\n")
	}

	if rec.Output != nil {
		sb.WriteString("## Files\n\n")
		for _, a := range rec.Output.Artifacts {
			writeArtifactMarkdown(&sb, a)
		}
		if rec.Output.Rationale != "" {
			fmt.Fprintf(&sb, "## Why\n\n%s\n\n", rec.Output.Rationale)
		}
		if len(rec.Output.AntiPatterns) > 0 {
			sb.WriteString("## Avoids\n\n")
			for _, ap := range rec.Output.AntiPatterns {
				fmt.Fprintf(&sb, "- %s: %s\n", ap.Pattern, ap.Reason)
			}
			sb.WriteString("\n")
		}
	}

	if len(rec.Issues) > 0 {
		sb.WriteString("## Issues\n\n")
		for _, is := range rec.Issues {
			fmt.Fprintf(&sb, "- %s\n", is.String())
		}
		sb.WriteString("\n")
	}

	if len(rec.Matched) > 0 {
		sb.WriteString("## Candidates\n\n| entry | score | specificity | precedence |\n|---|---|---|---|\n")
		for _, c := range rec.Matched {
			id := c.ID
			if id == rec.Chosen {
				id = "**" + id + "**"
			}
			fmt.Fprintf(&sb, "| %s | %.2f | %d | %d |\n", id, c.Score, c.Specificity, c.Precedence)
		}
		sb.WriteString("\n")
	}
	for _, c := range rec.Conflicts {
		fmt.Fprintf(&sb, "> %s\n", conflictLine(c))
	}
	return sb.String()
}

func writeArtifactMarkdown(sb *strings.Builder, a catalog.Artifact) {
	fmt.Fprintf(sb, "### `%s` (%s)\n\n", a.Path, a.Kind)
	for _, d := range a.Directives {
		fmt.Fprintf(sb, "- starts with `%q`\n", d)
	}
	for _, d := range a.Forbidden {
		fmt.Fprintf(sb, "- never `%q`\n", d)
	}
	for _, imp := range a.Imports {
		fmt.Fprintf(sb, "- `%s`\n", imp.String())
	}
	for _, m := range a.Must {
		fmt.Fprintf(sb, "- must: %s\n", m)
	}
	sb.WriteString("\n")
	if a.Code != "" {
		fmt.Fprintf(sb, "```tsx\n%s\n```\n\n", strings.TrimRight(a.Code, "\n"))
	}
}

// EntriesMarkdown renders a catalog listing as a table.
func EntriesMarkdown(cat *catalog.Catalog) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Catalog %s\n\n| id | precedence | summary |\n|---|---|---|\n", cat.Version())
	for _, e := range cat.Entries() {
		fmt.Fprintf(&sb, "| `%s` | %d | %s |\n", e.ID, e.Precedence, e.Summary)
	}
	return sb.String()
}

// EntryMarkdown renders one entry in full.
func EntryMarkdown(e catalog.PatternEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", e.ID)
	if e.Summary != "" {
		fmt.Fprintf(&sb, "%s\n\n", e.Summary)
	}
	fmt.Fprintf(&sb, "Precedence: %d\n\n## Triggers\n\n", e.Precedence)
	for _, t := range e.Triggers {
		fmt.Fprintf(&sb, "- `%s`\n", t.String())
	}
	sb.WriteString("\n## Artifacts\n\n")
	for _, a := range e.Action.Artifacts {
		writeArtifactMarkdown(&sb, a)
	}
	if routed := e.Action.WithRoute; routed != nil {
		sb.WriteString("## With an explicit path\n\n")
		for _, a := range routed.Artifacts {
			writeArtifactMarkdown(&sb, a)
		}
	}
	if len(e.AntiPatterns) > 0 {
		sb.WriteString("## Anti-patterns\n\n")
		for _, ap := range e.AntiPatterns {
			fmt.Fprintf(&sb, "- %s: %s\n", ap.Describe(), ap.Reason)
		}
	}
	return sb.String()
}
