package ux

import (
	"fmt"
	"strings"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/resolver"
	"nextadvisor/internal/store"
)

func statusStyle(s Styles, st resolver.Status) string {
	switch st {
	case resolver.StatusOK:
		return s.OK.Render(string(st))
	case resolver.StatusNoMatch:
		return s.Error.Render(string(st))
	}
	return s.Warning.Render(string(st))
}

// RecommendationText renders a recommendation for a terminal.
func RecommendationText(s Styles, rec *resolver.Recommendation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", s.Title.Render("Requirement:"), rec.Requirement)
	fmt.Fprintf(&sb, "%s %s", s.Label.Render("Status:"), statusStyle(s, rec.Status))
	if rec.Chosen != "" {
		fmt.Fprintf(&sb, "  %s %s", s.Label.Render("Entry:"), rec.Chosen)
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "%s\n", s.Muted.Render(fmt.Sprintf("catalog %s (%s)", rec.CatalogVersion, short(rec.CatalogDigest))))

	if len(rec.Missing) > 0 {
		fmt.Fprintf(&sb, "\n%s %s\n", s.Warning.Render("Needs:"), strings.Join(rec.Missing, ", "))
	}

	if rec.Output != nil {
		sb.WriteString("\n")
		for _, a := range rec.Output.Artifacts {
			writeArtifactText(&sb, s, a)
		}
		if rec.Output.Rationale != "" {
			fmt.Fprintf(&sb, "%s %s\n", s.Label.Render("Why:"), rec.Output.Rationale)
		}
		if len(rec.Output.AntiPatterns) > 0 {
			fmt.Fprintf(&sb, "%s\n", s.Label.Render("Avoids:"))
			for _, ap := range rec.Output.AntiPatterns {
				fmt.Fprintf(&sb, "  - %s: %s\n", ap.Pattern, ap.Reason)
			}
		}
	}

	if len(rec.Issues) > 0 {
		fmt.Fprintf(&sb, "%s\n", s.Error.Render("Issues:"))
		for _, is := range rec.Issues {
			fmt.Fprintf(&sb, "  - %s\n", is.String())
		}
	}

	if len(rec.Matched) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", s.Label.Render("Candidates:"))
		for _, c := range rec.Matched {
			marker := " "
			if c.ID == rec.Chosen {
				marker = "*"
			}
			fmt.Fprintf(&sb, " %s %-28s score=%.2f specificity=%d prec=%d\n", marker, c.ID, c.Score, c.Specificity, c.Precedence)
		}
	}
	for _, c := range rec.Conflicts {
		fmt.Fprintf(&sb, "%s\n", s.Muted.Render(conflictLine(c)))
	}
	return sb.String()
}

func writeArtifactText(sb *strings.Builder, s Styles, a catalog.Artifact) {
	fmt.Fprintf(sb, "%s  %s", s.Path.Render(a.Path), s.Muted.Render(string(a.Kind)))
	for _, d := range a.Directives {
		fmt.Fprintf(sb, "  %s", s.Info.Render(fmt.Sprintf("%q", d)))
	}
	sb.WriteByte('\n')
	for _, d := range a.Forbidden {
		fmt.Fprintf(sb, "  never %q\n", d)
	}
	for _, imp := range a.Imports {
		fmt.Fprintf(sb, "  %s\n", imp.String())
	}
	for _, m := range a.Must {
		fmt.Fprintf(sb, "  must: %s\n", m)
	}
	if a.Code != "" {
		sb.WriteString(s.Code.Render(strings.TrimRight(a.Code, "\n")))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
}

func conflictLine(c resolver.Conflict) string {
	if c.Kind == resolver.ConflictWaived {
		return fmt.Sprintf("%s kept over %s: %s waived by %q", c.Winner, c.Loser, c.AntiPattern, c.Waiver)
	}
	return fmt.Sprintf("%s overrides %s: %s matched %s", c.Winner, c.Loser, c.AntiPattern, c.Artifact)
}

// EntriesText renders a catalog listing.
func EntriesText(s Styles, cat *catalog.Catalog) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s  %s\n\n", s.Title.Render("Catalog"), cat.Version(), s.Muted.Render(short(cat.Digest())))
	for _, e := range cat.Entries() {
		fmt.Fprintf(&sb, "%-28s %4d  %s\n", e.ID, e.Precedence, e.Summary)
	}
	return sb.String()
}

// EntryText renders one entry in full.
func EntryText(s Styles, e catalog.PatternEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n", s.Title.Render(e.ID), s.Muted.Render(fmt.Sprintf("precedence %d", e.Precedence)))
	if e.Summary != "" {
		fmt.Fprintf(&sb, "%s\n", e.Summary)
	}
	fmt.Fprintf(&sb, "\n%s\n", s.Label.Render("Triggers:"))
	for _, t := range e.Triggers {
		fmt.Fprintf(&sb, "  %s\n", t.String())
	}
	fmt.Fprintf(&sb, "\n%s\n", s.Label.Render("Artifacts:"))
	for _, a := range e.Action.Artifacts {
		writeArtifactText(&sb, s, a)
	}
	if routed := e.Action.WithRoute; routed != nil {
		fmt.Fprintf(&sb, "%s\n", s.Label.Render("With an explicit path:"))
		for _, a := range routed.Artifacts {
			writeArtifactText(&sb, s, a)
		}
	}
	if len(e.AntiPatterns) > 0 {
		fmt.Fprintf(&sb, "%s\n", s.Label.Render("Anti-patterns:"))
		for _, ap := range e.AntiPatterns {
			fmt.Fprintf(&sb, "  - %s: %s\n", ap.Describe(), ap.Reason)
		}
	}
	return sb.String()
}

// VersionsText renders archived catalog versions.
func VersionsText(s Styles, versions []store.CatalogVersion) string {
	if len(versions) == 0 {
		return s.Muted.Render("no archived catalogs") + "\n"
	}
	var sb strings.Builder
	for _, v := range versions {
		fmt.Fprintf(&sb, "%s  %-16s %3d entries  %s\n",
			short(v.Digest), v.Version, v.Entries, v.SavedAt.Format("2006-01-02 15:04:05"))
	}
	return sb.String()
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
