// Package matcher scores catalog entries against a requirement.
//
// Scoring is deterministic: the same requirement and catalog always give the
// same ordered result. Entries are ranked by tier, then score, then
// specificity, then precedence, then id. When the requirement names a path,
// entries with a with_route action come first (rendered with that action),
// then explicit_path fallbacks, then everything else.
package matcher

import (
	"sort"
	"strings"
	"unicode/utf8"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/logging"
	"nextadvisor/internal/requirement"
)

// Options tune scoring. Zero values fall back to the defaults.
type Options struct {
	MinScore      float64 // threshold for a match
	SynonymWeight float64 // multiplier for synonym-only phrase hits
	RegexWeight   float64 // default weight of a regex trigger
}

// DefaultOptions returns the standard scoring options.
func DefaultOptions() Options {
	return Options{MinScore: 1.0, SynonymWeight: 0.5, RegexWeight: 2.0}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinScore <= 0 {
		o.MinScore = d.MinScore
	}
	if o.SynonymWeight <= 0 {
		o.SynonymWeight = d.SynonymWeight
	}
	if o.RegexWeight <= 0 {
		o.RegexWeight = d.RegexWeight
	}
	return o
}

// HitKind says how a trigger fired.
type HitKind string

const (
	HitPhrase  HitKind = "phrase"
	HitSynonym HitKind = "synonym"
	HitRegex   HitKind = "regex"
)

// Hit is one trigger that fired.
type Hit struct {
	Trigger string  `json:"trigger"`
	Kind    HitKind `json:"kind"`
	Weight  float64 `json:"weight"`
	Matched string  `json:"matched,omitempty"`
}

// Tier orders candidates before their scores are compared.
type Tier int

const (
	TierInferred Tier = iota // structure inferred from the wording
	TierFallback             // explicit_path entry placing a generic file at the path
	TierRouted               // entry rendering its with_route action at the path
)

// Match is a scored candidate. For TierRouted, Entry.Action already holds the
// entry's with_route action.
type Match struct {
	Entry       catalog.PatternEntry `json:"-"`
	Score       float64              `json:"score"`
	Specificity int                  `json:"specificity"`
	Tier        Tier                 `json:"tier"`
	Explicit    bool                 `json:"explicit"`
	Hits        []Hit                `json:"hits"`
}

// ID returns the entry id.
func (m Match) ID() string { return m.Entry.ID }

// Matcher scores requirements against catalogs. It holds no state besides
// its options and is safe for concurrent use.
type Matcher struct {
	opts Options
}

// New creates a matcher.
func New(opts Options) *Matcher {
	return &Matcher{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (m *Matcher) Options() Options { return m.opts }

// Match returns every entry scoring at least MinScore, ranked. An empty
// result is not an error.
func (m *Matcher) Match(req *requirement.Requirement, cat *catalog.Catalog) []Match {
	explicit := req.HasExplicitPath()
	var out []Match

	for _, e := range cat.Entries() {
		if e.Action.ExplicitPath && !explicit {
			continue
		}
		cand := m.score(req, e)
		if cand.Score < m.opts.MinScore {
			continue
		}
		if explicit {
			switch {
			case e.Action.ExplicitPath:
				cand.Tier = TierFallback
			case e.Action.WithRoute != nil:
				cand.Tier = TierRouted
				cand.Entry.Action = *e.Action.WithRoute
			}
		}
		cand.Explicit = cand.Tier != TierInferred
		out = append(out, cand)
	}

	Rank(out)
	for i, c := range out {
		logging.MatcherDebug("rank %d: %s score=%.2f specificity=%d prec=%d tier=%d", i+1, c.ID(), c.Score, c.Specificity, c.Entry.Precedence, c.Tier)
	}
	return out
}

func (m *Matcher) score(req *requirement.Requirement, e catalog.PatternEntry) Match {
	cand := Match{Entry: e}
	for _, t := range e.Triggers {
		if t.IsRegex() {
			re := t.Pattern()
			if re == nil {
				continue
			}
			loc := re.FindStringIndex(req.Text)
			if loc == nil {
				continue
			}
			w := t.Weight
			if w == 0 {
				w = m.opts.RegexWeight
			}
			matched := req.Text[loc[0]:loc[1]]
			cand.Hits = append(cand.Hits, Hit{Trigger: t.String(), Kind: HitRegex, Weight: w, Matched: strings.TrimSpace(matched)})
			cand.Score += w
			cand.Specificity += utf8.RuneCountInString(strings.TrimSpace(matched))
			continue
		}

		kind := req.MatchPhrase(t.Phrase)
		if kind == requirement.NoMatch {
			continue
		}
		phrase := requirement.Normalize(t.Phrase)
		w := t.Weight
		if w == 0 {
			w = float64(len(strings.Fields(phrase)))
		}
		hk := HitPhrase
		if kind == requirement.SynonymMatch {
			w *= m.opts.SynonymWeight
			hk = HitSynonym
		}
		cand.Hits = append(cand.Hits, Hit{Trigger: t.String(), Kind: hk, Weight: w})
		cand.Score += w
		cand.Specificity += utf8.RuneCountInString(phrase)
	}
	return cand
}

// Rank sorts candidates in place: tier desc, score desc, specificity desc,
// precedence desc, id asc. The last key is unique so the order is total.
func Rank(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		return Less(ms[i], ms[j])
	})
}

// Less reports whether a ranks before b.
func Less(a, b Match) bool {
	if a.Tier != b.Tier {
		return a.Tier > b.Tier
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Specificity != b.Specificity {
		return a.Specificity > b.Specificity
	}
	if a.Entry.Precedence != b.Entry.Precedence {
		return a.Entry.Precedence > b.Entry.Precedence
	}
	return a.Entry.ID < b.Entry.ID
}
