package resolver

import (
	"errors"
	"fmt"
	"strings"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/matcher"
	"nextadvisor/internal/requirement"
)

// Status is the outcome of a resolution.
type Status string

const (
	StatusOK                 Status = "ok"
	StatusNoMatch            Status = "no_match"
	StatusNeedsClarification Status = "needs_clarification"
	StatusIncomplete         Status = "incomplete"
)

// ErrNoMatch is surfaced by callers (the CLI) when a Recommendation has
// status no_match. Resolve itself returns a nil error in that case.
var ErrNoMatch = errors.New("no catalog entry matched the requirement")

// IncompleteTemplateError reports placeholders the requirement did not fill.
type IncompleteTemplateError struct {
	EntryID string
	Missing []string
}

func (e *IncompleteTemplateError) Error() string {
	return fmt.Sprintf("entry %s needs values for: %s", e.EntryID, strings.Join(e.Missing, ", "))
}

// ConflictKind tags a conflict resolution step.
type ConflictKind string

const (
	// ConflictOverride: a higher-precedence entry's anti-pattern flagged the
	// current choice, so that entry won.
	ConflictOverride ConflictKind = "override"
	// ConflictWaived: the anti-pattern would have fired but the requirement
	// carries one of its waiver phrases.
	ConflictWaived ConflictKind = "waived"
)

// Conflict records one precedence decision.
type Conflict struct {
	Kind        ConflictKind `json:"kind"`
	Winner      string       `json:"winner"`
	Loser       string       `json:"loser"`
	AntiPattern string       `json:"anti_pattern"`
	Artifact    string       `json:"artifact"`
	Reason      string       `json:"reason"`
	Waiver      string       `json:"waiver,omitempty"`
}

// Candidate is a matched entry as reported in a Recommendation.
type Candidate struct {
	ID          string        `json:"id"`
	Score       float64       `json:"score"`
	Specificity int           `json:"specificity"`
	Precedence  int           `json:"precedence"`
	Explicit    bool          `json:"explicit,omitempty"`
	Routed      bool          `json:"routed,omitempty"` // rendered with the entry's with_route action
	Hits        []matcher.Hit `json:"hits"`
}

// AvoidedAntiPattern names an anti-pattern the output steers clear of.
type AvoidedAntiPattern struct {
	Entry   string `json:"entry"`
	Pattern string `json:"pattern"`
	Reason  string `json:"reason"`
}

// Output is the rendered action of the chosen entry.
type Output struct {
	Artifacts    []catalog.Artifact   `json:"artifacts"`
	Rationale    string               `json:"rationale"`
	AntiPatterns []AvoidedAntiPattern `json:"anti_patterns,omitempty"`
}

// Recommendation is the engine's answer for one requirement. It carries no
// timestamps so identical input and catalog encode to identical JSON.
type Recommendation struct {
	Requirement    string              `json:"requirement"`
	Signals        requirement.Signals `json:"signals"`
	Status         Status              `json:"status"`
	CatalogVersion string              `json:"catalog_version"`
	CatalogDigest  string              `json:"catalog_digest"`
	Matched        []Candidate         `json:"matched"`
	Chosen         string              `json:"chosen,omitempty"`
	Conflicts      []Conflict          `json:"conflicts,omitempty"`
	Output         *Output             `json:"output,omitempty"`
	Missing        []string            `json:"missing,omitempty"`
	Issues         []catalog.Issue     `json:"issues,omitempty"`
}

// Paths returns the rendered artifact paths, or nil without output.
func (r *Recommendation) Paths() []string {
	if r.Output == nil {
		return nil
	}
	out := make([]string, len(r.Output.Artifacts))
	for i, a := range r.Output.Artifacts {
		out[i] = a.Path
	}
	return out
}
