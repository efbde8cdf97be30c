// Package catalog holds the static, versioned set of pattern entries that
// describe how App Router code should be shaped for a given requirement.
//
// A Catalog is built once (from YAML/JSON/JSONC files, the embedded default
// corpus, or the store), validated, and then only read. A new version replaces
// the old snapshot wholesale; nothing mutates a published Catalog.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Directive is a module-level directive string such as "use client".
type Directive = string

const (
	DirectiveUseClient Directive = "use client"
	DirectiveUseServer Directive = "use server"
)

// ValidDirectives lists the directives an artifact may require or forbid.
var ValidDirectives = []Directive{DirectiveUseClient, DirectiveUseServer}

// ArtifactKind classifies a file produced by a recommendation.
type ArtifactKind string

const (
	KindPage      ArtifactKind = "page"
	KindLayout    ArtifactKind = "layout"
	KindComponent ArtifactKind = "component"
	KindAction    ArtifactKind = "action"
	KindRoute     ArtifactKind = "route"
	KindLoading   ArtifactKind = "loading"
	KindNotFound  ArtifactKind = "not-found"
)

// AllKinds returns all defined artifact kinds.
func AllKinds() []ArtifactKind {
	return []ArtifactKind{KindPage, KindLayout, KindComponent, KindAction, KindRoute, KindLoading, KindNotFound}
}

// Placeholder names a template may reference as {{.name}}.
const (
	PlaceholderResource       = "resource"  // singular, lower case ("product")
	PlaceholderResourceTitle  = "Resource"  // singular, capitalised ("Product")
	PlaceholderResourcePlural = "resources" // plural, lower case ("products")
	PlaceholderParam          = "param"     // dynamic segment name ("id")
	PlaceholderRoute          = "route"     // explicit URL path without trailing slash ("/products/[id]", "" for the root)
	PlaceholderHref           = "href"      // explicit URL path as a link target ("/products/[id]", "/" for the root)
	PlaceholderCookie         = "cookie"    // cookie name ("theme")
	PlaceholderCookieTitle    = "Cookie"    // capitalised cookie name ("Theme")
)

// RoutePlaceholders are only filled when the requirement names a path, so
// only explicit_path and with_route actions may use them.
func RoutePlaceholders() []string {
	return []string{PlaceholderRoute, PlaceholderHref}
}

// KnownPlaceholders returns every placeholder a template may use.
func KnownPlaceholders() []string {
	return []string{
		PlaceholderResource,
		PlaceholderResourceTitle,
		PlaceholderResourcePlural,
		PlaceholderParam,
		PlaceholderRoute,
		PlaceholderHref,
		PlaceholderCookie,
		PlaceholderCookieTitle,
	}
}

// PatternEntry is one documented recommendation.
type PatternEntry struct {
	// Unique identifier (e.g., "pathname-id-fetch")
	ID string `yaml:"id" json:"id"`

	// One-line description shown in listings
	Summary string `yaml:"summary,omitempty" json:"summary,omitempty"`

	// Triggers indicate applicability. Never empty.
	Triggers []Trigger `yaml:"triggers" json:"triggers"`

	// Action is the recommended output structure.
	Action Action `yaml:"action" json:"action"`

	// AntiPatterns are outputs this entry declares wrong.
	AntiPatterns []AntiPattern `yaml:"anti_patterns,omitempty" json:"anti_patterns,omitempty"`

	// Precedence breaks conflicts; higher wins.
	Precedence int `yaml:"precedence" json:"precedence"`
}

// Trigger is either a phrase or a regular expression.
// A phrase matches the normalized requirement text on word boundaries;
// a regex runs against the raw text.
type Trigger struct {
	Phrase string  `yaml:"phrase,omitempty" json:"phrase,omitempty"`
	Regex  string  `yaml:"regex,omitempty" json:"regex,omitempty"`
	Weight float64 `yaml:"weight,omitempty" json:"weight,omitempty"`

	re *regexp.Regexp
}

// UnmarshalYAML accepts either a bare string (a phrase) or a mapping.
func (t *Trigger) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Phrase = value.Value
		return nil
	}
	type plain Trigger
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = Trigger(p)
	return nil
}

// UnmarshalJSON mirrors UnmarshalYAML for JSON and JSONC catalogs.
func (t *Trigger) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &t.Phrase)
	}
	type plain Trigger
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*t = Trigger(p)
	return nil
}

// IsRegex reports whether the trigger is a regular expression.
func (t Trigger) IsRegex() bool {
	return t.Regex != ""
}

// Pattern returns the compiled regex, or nil for phrase triggers.
// Only set on entries owned by a Catalog.
func (t Trigger) Pattern() *regexp.Regexp {
	return t.re
}

// Text returns the phrase or the regex source.
func (t Trigger) Text() string {
	if t.IsRegex() {
		return t.Regex
	}
	return t.Phrase
}

// String implements fmt.Stringer.
func (t Trigger) String() string {
	if t.IsRegex() {
		return "/" + t.Regex + "/"
	}
	return fmt.Sprintf("%q", t.Phrase)
}

// Action is the structured recommendation: one or more artifacts.
type Action struct {
	// ExplicitPath marks actions that materialise an explicit URL path from
	// the requirement. Such entries only fire when a path is present.
	ExplicitPath bool `yaml:"explicit_path,omitempty" json:"explicit_path,omitempty"`

	Artifacts []Artifact `yaml:"artifacts" json:"artifacts"`

	// Rationale is a template explaining the choice.
	Rationale string `yaml:"rationale,omitempty" json:"rationale,omitempty"`

	// WithRoute replaces this action when the requirement names a path, so
	// the entry keeps its own file shape but places it where it was asked.
	WithRoute *Action `yaml:"with_route,omitempty" json:"with_route,omitempty"`
}

// RouteAware reports whether the action can honor an explicit path.
func (a Action) RouteAware() bool {
	return a.ExplicitPath || a.WithRoute != nil
}

// Artifact is one file the calling agent should create.
// Path, Code, Must and Imports may contain {{.placeholder}} templates.
type Artifact struct {
	Path       string       `yaml:"path" json:"path"`
	Kind       ArtifactKind `yaml:"kind" json:"kind"`
	Directives []Directive  `yaml:"directives,omitempty" json:"directives,omitempty"`
	Forbidden  []Directive  `yaml:"forbidden,omitempty" json:"forbidden,omitempty"`
	Imports    []Import     `yaml:"imports,omitempty" json:"imports,omitempty"`
	Must       []string     `yaml:"must,omitempty" json:"must,omitempty"`
	Code       string       `yaml:"code,omitempty" json:"code,omitempty"`
}

// HasDirective reports whether the artifact requires d.
func (a Artifact) HasDirective(d Directive) bool {
	for _, x := range a.Directives {
		if x == d {
			return true
		}
	}
	return false
}

// IsClient reports whether the artifact is a client module.
func (a Artifact) IsClient() bool {
	return a.HasDirective(DirectiveUseClient)
}

// ImportsName reports whether the artifact imports name from any source.
func (a Artifact) ImportsName(name string) bool {
	for _, imp := range a.Imports {
		for _, n := range imp.Names {
			if n == name {
				return true
			}
		}
	}
	return false
}

// ImportsFrom reports whether the artifact imports anything from source.
func (a Artifact) ImportsFrom(source string) bool {
	for _, imp := range a.Imports {
		if imp.From == source {
			return true
		}
	}
	return false
}

// Import is a named import from a module.
type Import struct {
	Names []string `yaml:"names" json:"names"`
	From  string   `yaml:"from" json:"from"`
}

// String renders the import as a TypeScript statement.
func (i Import) String() string {
	return fmt.Sprintf("import { %s } from '%s'", strings.Join(i.Names, ", "), i.From)
}
