package requirement

import "strings"

// Synonyms maps a canonical App Router term to the words people use for it.
// A word belongs to at most one group; phrase triggers that only match after
// canonicalisation count as synonym matches.
var Synonyms = map[string][]string{
	// Data access
	"fetch": {"get", "load", "retrieve", "grab", "pull"},
	"read":  {"access", "inspect", "check"},
	"show":  {"display", "render", "view", "present"},

	// Mutations
	"create": {"make", "build", "add", "new"},
	"submit": {"send", "post"},
	"update": {"edit", "modify", "change"},
	"set":    {"store", "save", "write", "toggle", "switch"},

	// Routing
	"url":      {"pathname", "uri", "address"},
	"id":       {"identifier", "uuid"},
	"page":     {"screen"},
	"navigate": {"navigation", "redirect", "go"},
	"nested":   {"nest", "nesting"},

	// Boundaries
	"client": {"browser", "frontend"},
	"server": {"backend"},
	"api":    {"endpoint", "webhook"},

	// UI
	"click":    {"press", "tap"},
	"button":   {"btn"},
	"loading":  {"spinner", "skeleton", "placeholder"},
	"metadata": {"seo", "meta"},
	"search":   {"filter", "lookup"},
}

var canonical = buildCanonical()

func buildCanonical() map[string]string {
	m := make(map[string]string)
	for head, syns := range Synonyms {
		m[head] = head
		for _, s := range syns {
			m[s] = head
		}
	}
	return m
}

// Canonical returns the group head for a word, or the word itself.
func Canonical(word string) string {
	if c, ok := canonical[word]; ok {
		return c
	}
	return word
}

// GetSynonyms returns the other words in word's group.
func GetSynonyms(word string) []string {
	head := Canonical(word)
	syns, ok := Synonyms[head]
	if !ok {
		return nil
	}
	out := []string{}
	if head != word {
		out = append(out, head)
	}
	for _, s := range syns {
		if s != word {
			out = append(out, s)
		}
	}
	return out
}

// canonicalText maps every (singular) word to its group head.
func canonicalText(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Canonical(Singular(w))
	}
	return strings.Join(out, " ")
}

// expandWithSynonyms adds the synonyms of each token, preserving order.
func expandWithSynonyms(tokens []string) []string {
	out := append([]string(nil), tokens...)
	for _, t := range tokens {
		out = append(out, GetSynonyms(t)...)
	}
	return dedup(out)
}
