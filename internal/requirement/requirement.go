// Package requirement turns a free-text feature request into the signals the
// matcher and resolver work from: normalized text, a token set, an explicit
// route path and the placeholder values templates are filled with.
package requirement

import (
	"sort"
	"strings"
)

// Placeholder keys filled from the requirement text.
const (
	KeyResource       = "resource"
	KeyResourceTitle  = "Resource"
	KeyResourcePlural = "resources"
	KeyParam          = "param"
	KeyRoute          = "route"
	KeyHref           = "href"
	KeyCookie         = "cookie"
	KeyCookieTitle    = "Cookie"
)

// Signals are the features extracted from a requirement.
type Signals struct {
	Normalized   string            `json:"normalized"`
	Tokens       []string          `json:"tokens"`
	ExplicitPath string            `json:"explicit_path,omitempty"`
	Values       map[string]string `json:"values,omitempty"`
}

// Requirement is one request. It is created per resolution and never shared
// across goroutines after Parse returns, though it is safe to read concurrently.
type Requirement struct {
	Text    string  `json:"text"`
	Signals Signals `json:"signals"`

	padded          string
	singularPadded  string
	canonicalPadded string
}

// Parse extracts signals from text.
func Parse(text string) *Requirement {
	norm := Normalize(text)
	words := strings.Fields(norm)

	r := &Requirement{
		Text: text,
		Signals: Signals{
			Normalized: norm,
			Tokens:     tokenSet(words),
		},
		padded:          pad(norm),
		singularPadded:  pad(singularText(words)),
		canonicalPadded: pad(canonicalText(words)),
	}
	r.Signals.ExplicitPath = ExplicitPath(text)
	r.Signals.Values = extractValues(text, r.Signals.ExplicitPath)
	return r
}

// HasExplicitPath reports whether the text names a URL path literally.
func (r *Requirement) HasExplicitPath() bool {
	return r.Signals.ExplicitPath != ""
}

// Value returns a placeholder value and whether it was extracted.
func (r *Requirement) Value(key string) (string, bool) {
	v, ok := r.Signals.Values[key]
	return v, ok
}

// Values returns a copy of the extracted placeholder values.
func (r *Requirement) Values() map[string]string {
	out := make(map[string]string, len(r.Signals.Values))
	for k, v := range r.Signals.Values {
		out[k] = v
	}
	return out
}

// PhraseMatch classifies how a phrase matched.
type PhraseMatch int

const (
	NoMatch PhraseMatch = iota
	ExactMatch
	SynonymMatch
)

func (m PhraseMatch) String() string {
	switch m {
	case ExactMatch:
		return "exact"
	case SynonymMatch:
		return "synonym"
	}
	return "none"
}

// MatchPhrase matches phrase against the requirement on word boundaries.
// Exact covers literal and singular forms; Synonym means the phrase only
// matched after both sides were mapped to canonical synonym heads.
func (r *Requirement) MatchPhrase(phrase string) PhraseMatch {
	p := Normalize(phrase)
	if p == "" {
		return NoMatch
	}
	words := strings.Fields(p)
	if strings.Contains(r.padded, pad(p)) || strings.Contains(r.singularPadded, pad(singularText(words))) {
		return ExactMatch
	}
	if strings.Contains(r.canonicalPadded, pad(canonicalText(words))) {
		return SynonymMatch
	}
	return NoMatch
}

// ContainsPhrase reports an exact (non-synonym) phrase match.
func (r *Requirement) ContainsPhrase(phrase string) bool {
	return r.MatchPhrase(phrase) == ExactMatch
}

func pad(s string) string {
	return " " + s + " "
}

func tokenSet(words []string) []string {
	var tokens []string
	for _, w := range words {
		tokens = append(tokens, w)
		if s := Singular(w); s != w {
			tokens = append(tokens, s)
		}
	}
	tokens = expandWithSynonyms(dedup(tokens))
	sort.Strings(tokens)
	return tokens
}
