package catalog

import (
	"fmt"
	"strings"
)

// Problem is one validation failure inside a catalog definition.
type Problem struct {
	EntryID string // empty for catalog-level problems
	Field   string
	Message string
}

func (p Problem) String() string {
	switch {
	case p.EntryID != "" && p.Field != "":
		return fmt.Sprintf("%s: %s: %s", p.EntryID, p.Field, p.Message)
	case p.EntryID != "":
		return fmt.Sprintf("%s: %s", p.EntryID, p.Message)
	case p.Field != "":
		return fmt.Sprintf("%s: %s", p.Field, p.Message)
	default:
		return p.Message
	}
}

// CatalogLoadError reports a malformed catalog. It carries every problem found,
// not just the first one, so authors can fix a file in a single pass.
type CatalogLoadError struct {
	Source   string
	Problems []Problem
	Err      error // underlying read/parse error, if any
}

func (e *CatalogLoadError) Error() string {
	var sb strings.Builder
	sb.WriteString("catalog load failed")
	if e.Source != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Source)
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if len(e.Problems) > 0 {
		fmt.Fprintf(&sb, ": %d problem(s)", len(e.Problems))
		for _, p := range e.Problems {
			sb.WriteString("\n  - ")
			sb.WriteString(p.String())
		}
	}
	return sb.String()
}

func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}

// HasProblem reports whether any problem message contains substr.
func (e *CatalogLoadError) HasProblem(substr string) bool {
	for _, p := range e.Problems {
		if strings.Contains(p.String(), substr) {
			return true
		}
	}
	return false
}

// NotFoundError is returned by Get for an unknown entry id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pattern entry not found: %s", e.ID)
}
