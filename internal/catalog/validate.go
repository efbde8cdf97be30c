package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validate checks entries for structural problems and action consistency.
// It returns every problem found; an empty result means the set is loadable.
func Validate(entries []PatternEntry) []Problem {
	var problems []Problem
	if len(entries) == 0 {
		return []Problem{{Message: "catalog has no entries"}}
	}

	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("entries[%d]", i)
			problems = append(problems, Problem{EntryID: id, Field: "id", Message: "missing id"})
		} else if !idPattern.MatchString(id) {
			problems = append(problems, Problem{EntryID: id, Field: "id", Message: "id must be lower-case kebab-case"})
		}
		if e.ID != "" {
			if seen[e.ID] {
				problems = append(problems, Problem{EntryID: id, Field: "id", Message: "duplicate id"})
			}
			seen[e.ID] = true
		}

		problems = append(problems, validateEntry(id, e)...)
	}
	return problems
}

func validateEntry(id string, e PatternEntry) []Problem {
	var problems []Problem
	add := func(field, format string, args ...interface{}) {
		problems = append(problems, Problem{EntryID: id, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(e.Triggers) == 0 {
		add("triggers", "at least one trigger is required")
	}
	for i, t := range e.Triggers {
		field := fmt.Sprintf("triggers[%d]", i)
		switch {
		case t.Phrase != "" && t.Regex != "":
			add(field, "set phrase or regex, not both")
		case t.Regex != "":
			if _, err := regexp.Compile(t.Regex); err != nil {
				add(field, "invalid regex: %v", err)
			}
		case strings.TrimSpace(t.Phrase) == "":
			add(field, "empty trigger")
		}
		if t.Weight < 0 {
			add(field, "weight must not be negative")
		}
	}

	problems = append(problems, validateAction(id, "action", e.Action, e.Action.ExplicitPath)...)
	if routed := e.Action.WithRoute; routed != nil {
		if e.Action.ExplicitPath {
			add("action.with_route", "with_route cannot be combined with explicit_path")
		}
		if routed.ExplicitPath || routed.WithRoute != nil {
			add("action.with_route", "with_route action must not set explicit_path or with_route")
		}
		problems = append(problems, validateAction(id, "action.with_route", *routed, true)...)
		if !usesRoute(*routed) {
			add("action.with_route", "with_route action must reference {{.route}} or {{.href}}")
		}
	}

	for i, ap := range e.AntiPatterns {
		field := fmt.Sprintf("anti_patterns[%d]", i)
		if ap.matcherCount() != 1 {
			add(field, "exactly one of path, directive or import must be set")
		}
		if ap.Path != "" && !doublestar.ValidatePattern(ap.Path) {
			add(field, "invalid glob %q", ap.Path)
		}
		if ap.Directive != "" && !validDirective(ap.Directive) {
			add(field, "unknown directive %q", ap.Directive)
		}
		if ap.Kind != "" && !validKind(ap.Kind) {
			add(field, "unknown kind %q", ap.Kind)
		}
		if strings.TrimSpace(ap.Reason) == "" {
			add(field, "reason is required")
		}
	}
	return problems
}

// validateAction checks one action. routed says whether route placeholders
// are filled when it renders.
func validateAction(id, prefix string, a Action, routed bool) []Problem {
	var problems []Problem
	add := func(field, format string, args ...interface{}) {
		problems = append(problems, Problem{EntryID: id, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(a.Artifacts) == 0 {
		add(prefix+".artifacts", "at least one artifact is required")
	}
	for i, art := range a.Artifacts {
		field := fmt.Sprintf("%s.artifacts[%d]", prefix, i)
		if strings.TrimSpace(art.Path) == "" {
			add(field+".path", "path is required")
		}
		if !validKind(art.Kind) {
			add(field+".kind", "unknown kind %q", art.Kind)
		}
		for _, d := range art.Directives {
			if !validDirective(d) {
				add(field+".directives", "unknown directive %q", d)
			}
		}
		for _, d := range art.Forbidden {
			if !validDirective(d) {
				add(field+".forbidden", "unknown directive %q", d)
			}
		}
		for j, imp := range art.Imports {
			if imp.From == "" || len(imp.Names) == 0 {
				add(fmt.Sprintf("%s.imports[%d]", field, j), "import needs names and from")
			}
		}
	}

	known := make(map[string]bool)
	for _, p := range KnownPlaceholders() {
		known[p] = true
	}
	routeOnly := make(map[string]bool)
	for _, p := range RoutePlaceholders() {
		routeOnly[p] = true
	}
	for _, lt := range TemplateSources(a) {
		names, err := Placeholders(lt.Source)
		if err != nil {
			add(prefix+"."+lt.Label, "invalid template: %v", err)
			continue
		}
		for _, n := range names {
			switch {
			case !known[n]:
				add(prefix+"."+lt.Label, "unknown placeholder %q", n)
			case routeOnly[n] && !routed:
				add(prefix+"."+lt.Label, "placeholder %q needs explicit_path or a with_route action", n)
			}
		}
	}

	for _, issue := range CheckConsistency(a.Artifacts) {
		add(prefix, "inconsistent action: %s", issue.String())
	}
	return problems
}

func usesRoute(a Action) bool {
	names, err := ActionPlaceholders(a)
	if err != nil {
		return false
	}
	for _, n := range names {
		for _, r := range RoutePlaceholders() {
			if n == r {
				return true
			}
		}
	}
	return false
}

func validDirective(d Directive) bool {
	for _, v := range ValidDirectives {
		if v == d {
			return true
		}
	}
	return false
}

func validKind(k ArtifactKind) bool {
	for _, v := range AllKinds() {
		if v == k {
			return true
		}
	}
	return false
}
