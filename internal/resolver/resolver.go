// Package resolver picks one recommendation from the matcher's candidates and
// renders it.
//
// Conflict resolution is an explicit loop over a total order: starting from
// the top-ranked candidate, any other candidate with strictly higher
// precedence whose (unwaived) anti-pattern flags the current output takes
// over. Precedence strictly increases on every switch, so the loop ends.
//
// Resolve is a pure function of the requirement and the catalog.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/logging"
	"nextadvisor/internal/matcher"
	"nextadvisor/internal/requirement"
)

// Resolver turns requirements into recommendations.
type Resolver struct {
	matcher *matcher.Matcher
}

// New creates a resolver. A nil matcher uses the default options.
func New(m *matcher.Matcher) *Resolver {
	if m == nil {
		m = matcher.New(matcher.DefaultOptions())
	}
	return &Resolver{matcher: m}
}

// ResolveText parses text and resolves it.
func (r *Resolver) ResolveText(text string, cat *catalog.Catalog) (*Recommendation, error) {
	return r.Resolve(requirement.Parse(text), cat)
}

// Resolve matches, resolves conflicts and renders.
//
// The Recommendation is always returned. The error is non-nil only for
// *IncompleteTemplateError (status needs_clarification) or an internal
// rendering failure. No match is status no_match with a nil error.
func (r *Resolver) Resolve(req *requirement.Requirement, cat *catalog.Catalog) (*Recommendation, error) {
	if cat == nil {
		return nil, fmt.Errorf("resolve: nil catalog")
	}
	timer := logging.StartTimer(logging.CategoryResolver, "Resolve")
	defer timer.Stop()

	rec := &Recommendation{
		Requirement:    req.Text,
		Signals:        req.Signals,
		CatalogVersion: cat.Version(),
		CatalogDigest:  cat.Digest(),
		Matched:        []Candidate{},
	}

	matches := r.matcher.Match(req, cat)
	for _, m := range matches {
		rec.Matched = append(rec.Matched, Candidate{
			ID:          m.ID(),
			Score:       m.Score,
			Specificity: m.Specificity,
			Precedence:  m.Entry.Precedence,
			Explicit:    m.Explicit,
			Routed:      m.Tier == matcher.TierRouted,
			Hits:        m.Hits,
		})
	}
	if len(matches) == 0 {
		rec.Status = StatusNoMatch
		logging.ResolverDebug("no match for %q", req.Text)
		return rec, nil
	}

	chosen, conflicts := resolveConflicts(req, matches)
	rec.Chosen = chosen.ID()
	rec.Conflicts = conflicts

	values := req.Values()
	missing, err := missingPlaceholders(chosen.Entry.Action, values)
	if err != nil {
		return rec, fmt.Errorf("resolve %s: %w", chosen.ID(), err)
	}
	if len(missing) > 0 {
		rec.Status = StatusNeedsClarification
		rec.Missing = missing
		logging.ResolverDebug("%s needs clarification: %v", chosen.ID(), missing)
		return rec, &IncompleteTemplateError{EntryID: chosen.ID(), Missing: missing}
	}

	artifacts, rationale, err := renderAction(chosen.ID(), chosen.Entry.Action, values)
	if err != nil {
		return rec, fmt.Errorf("resolve %s: %w", chosen.ID(), err)
	}

	rec.Output = &Output{
		Artifacts:    artifacts,
		Rationale:    composeRationale(rationale, conflicts),
		AntiPatterns: avoided(chosen.Entry),
	}
	rec.Issues = checkRendered(chosen.Entry, artifacts)
	if len(rec.Issues) > 0 {
		rec.Status = StatusIncomplete
		logging.Get(logging.CategoryResolver).Warn("%s rendered with %d issue(s)", chosen.ID(), len(rec.Issues))
	} else {
		rec.Status = StatusOK
	}
	logging.ResolverDebug("chose %s (%d candidate(s), %d conflict step(s))", chosen.ID(), len(matches), len(conflicts))
	return rec, nil
}

// resolveConflicts runs the precedence loop and returns the winner plus every
// conflict step taken (overrides and waivers).
func resolveConflicts(req *requirement.Requirement, matches []matcher.Match) (matcher.Match, []Conflict) {
	values := req.Values()
	current := 0
	var conflicts []Conflict

	for {
		out := renderLenient(matches[current].Entry, values)
		next := -1

		for _, i := range byPrecedence(matches, current) {
			challenger := matches[i]
			for _, ap := range challenger.Entry.AntiPatterns {
				v, ok := ap.Check(out)
				if !ok {
					continue
				}
				c := Conflict{
					Winner:      challenger.ID(),
					Loser:       matches[current].ID(),
					AntiPattern: ap.Describe(),
					Artifact:    v.Artifact,
					Reason:      ap.Reason,
				}
				if w := waiver(req, ap); w != "" {
					c.Kind = ConflictWaived
					c.Winner, c.Loser = matches[current].ID(), challenger.ID()
					c.Waiver = w
					conflicts = append(conflicts, c)
					continue
				}
				c.Kind = ConflictOverride
				conflicts = append(conflicts, c)
				next = i
				break
			}
			if next >= 0 {
				break
			}
		}

		if next < 0 {
			return matches[current], conflicts
		}
		logging.ResolverDebug("%s overrides %s", matches[next].ID(), matches[current].ID())
		current = next
	}
}

// byPrecedence lists candidates with strictly higher precedence than
// matches[current], highest first, rank order within equal precedence.
func byPrecedence(matches []matcher.Match, current int) []int {
	floor := matches[current].Entry.Precedence
	var idx []int
	for i, m := range matches {
		if i != current && m.Entry.Precedence > floor {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return matches[idx[a]].Entry.Precedence > matches[idx[b]].Entry.Precedence
	})
	return idx
}

func waiver(req *requirement.Requirement, ap catalog.AntiPattern) string {
	for _, w := range ap.WaivedBy {
		if req.ContainsPhrase(w) {
			return w
		}
	}
	return ""
}

// checkRendered re-applies the consistency rules to rendered artifacts and
// checks the entry's own anti-patterns against them.
func checkRendered(e catalog.PatternEntry, artifacts []catalog.Artifact) []catalog.Issue {
	issues := catalog.CheckConsistency(artifacts)
	for _, ap := range e.AntiPatterns {
		if v, ok := ap.Check(artifacts); ok {
			issues = append(issues, catalog.Issue{
				Rule:     catalog.RuleOwnAntiPattern,
				Artifact: v.Artifact,
				Message:  fmt.Sprintf("output matches %s: %s", ap.Describe(), ap.Reason),
			})
		}
	}
	return issues
}

func avoided(e catalog.PatternEntry) []AvoidedAntiPattern {
	var out []AvoidedAntiPattern
	for _, ap := range e.AntiPatterns {
		out = append(out, AvoidedAntiPattern{Entry: e.ID, Pattern: ap.Describe(), Reason: ap.Reason})
	}
	return out
}

func composeRationale(base string, conflicts []Conflict) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(base))
	for _, c := range conflicts {
		if c.Kind != ConflictOverride {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "Chosen over %s because %s.", c.Loser, strings.TrimSuffix(c.Reason, "."))
	}
	return sb.String()
}
