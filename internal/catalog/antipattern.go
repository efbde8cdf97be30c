package catalog

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// AntiPattern describes an output the owning entry declares wrong.
// Exactly one of Path, Directive or Import is set.
type AntiPattern struct {
	// Path is a doublestar glob over rendered artifact paths.
	// Brackets are literal only when escaped: app/*/\[*\]/page.tsx
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Directive must not appear on any (kind-filtered) artifact.
	Directive Directive `yaml:"directive,omitempty" json:"directive,omitempty"`

	// Import matches an import source ("next/router") or an imported name.
	Import string `yaml:"import,omitempty" json:"import,omitempty"`

	// Kind restricts Directive and Import checks to artifacts of one kind.
	Kind ArtifactKind `yaml:"kind,omitempty" json:"kind,omitempty"`

	Reason string `yaml:"reason" json:"reason"`

	// WaivedBy phrases disable the anti-pattern when present in the requirement.
	WaivedBy []string `yaml:"waived_by,omitempty" json:"waived_by,omitempty"`
}

// Describe returns a short human form of the matcher.
func (ap AntiPattern) Describe() string {
	switch {
	case ap.Path != "":
		return "path " + ap.Path
	case ap.Directive != "":
		if ap.Kind != "" {
			return fmt.Sprintf("%q in %s", ap.Directive, ap.Kind)
		}
		return fmt.Sprintf("%q", ap.Directive)
	case ap.Import != "":
		return "import " + ap.Import
	}
	return "anti-pattern"
}

func (ap AntiPattern) matcherCount() int {
	n := 0
	for _, s := range []string{ap.Path, ap.Directive, ap.Import} {
		if s != "" {
			n++
		}
	}
	return n
}

// Violation is one artifact flagged by an anti-pattern.
type Violation struct {
	AntiPattern AntiPattern
	Artifact    string // rendered path of the offending artifact
}

// Check returns the first artifact that the anti-pattern flags.
// The glob was validated at load time; a match error counts as no match.
func (ap AntiPattern) Check(artifacts []Artifact) (Violation, bool) {
	for _, a := range artifacts {
		if ap.flags(a) {
			return Violation{AntiPattern: ap, Artifact: a.Path}, true
		}
	}
	return Violation{}, false
}

func (ap AntiPattern) flags(a Artifact) bool {
	if ap.Path != "" {
		ok, err := doublestar.Match(ap.Path, a.Path)
		return err == nil && ok
	}
	if ap.Kind != "" && a.Kind != ap.Kind {
		return false
	}
	if ap.Directive != "" {
		return a.HasDirective(ap.Directive)
	}
	if ap.Import != "" {
		return a.ImportsFrom(ap.Import) || a.ImportsName(ap.Import)
	}
	return false
}
