package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
)

// Catalog is an immutable, versioned table of pattern entries keyed by id.
// Entry order is the authored order. Share it by pointer; never modify it.
type Catalog struct {
	version string
	digest  string
	source  string
	entries []PatternEntry
	byID    map[string]int
}

// New validates entries and builds a Catalog. On failure it returns a
// *CatalogLoadError listing every problem.
func New(version, source string, entries []PatternEntry) (*Catalog, error) {
	problems := Validate(entries)
	if len(problems) > 0 {
		return nil, &CatalogLoadError{Source: source, Problems: problems}
	}

	owned := make([]PatternEntry, len(entries))
	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		owned[i] = cloneEntry(e)
		for j := range owned[i].Triggers {
			t := &owned[i].Triggers[j]
			if t.IsRegex() {
				// Validate already compiled it once.
				t.re = regexp.MustCompile(t.Regex)
			}
		}
		byID[e.ID] = i
	}

	digest, err := computeDigest(version, owned)
	if err != nil {
		return nil, &CatalogLoadError{Source: source, Err: err}
	}

	return &Catalog{
		version: version,
		digest:  digest,
		source:  source,
		entries: owned,
		byID:    byID,
	}, nil
}

// Get returns the entry with the given id.
func (c *Catalog) Get(id string) (PatternEntry, error) {
	i, ok := c.byID[id]
	if !ok {
		return PatternEntry{}, &NotFoundError{ID: id}
	}
	return c.entries[i], nil
}

// Entries returns the full ordered set. The slice is a copy; the entries
// share their inner slices with the catalog and must be treated as read-only.
func (c *Catalog) Entries() []PatternEntry {
	out := make([]PatternEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Version returns the declared catalog version.
func (c *Catalog) Version() string { return c.version }

// Digest returns the sha256 of the normalized definition.
func (c *Catalog) Digest() string { return c.digest }

// Source names where the catalog was loaded from.
func (c *Catalog) Source() string { return c.source }

// MarshalJSON writes the catalog in its document form (the same shape the
// loader reads), so a stored catalog round-trips through LoadBytes.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(Document{Version: c.version, Entries: c.entries})
}

// Document is the on-disk shape of a catalog file.
type Document struct {
	Version string         `yaml:"version" json:"version"`
	Entries []PatternEntry `yaml:"entries" json:"entries"`
}

func computeDigest(version string, entries []PatternEntry) (string, error) {
	data, err := json.Marshal(Document{Version: version, Entries: entries})
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog for digest: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func cloneEntry(e PatternEntry) PatternEntry {
	out := e
	out.Triggers = append([]Trigger(nil), e.Triggers...)
	out.AntiPatterns = make([]AntiPattern, len(e.AntiPatterns))
	for i, ap := range e.AntiPatterns {
		ap.WaivedBy = append([]string(nil), ap.WaivedBy...)
		out.AntiPatterns[i] = ap
	}
	out.Action = cloneAction(e.Action)
	return out
}

func cloneAction(a Action) Action {
	out := a
	out.Artifacts = make([]Artifact, len(a.Artifacts))
	for i, art := range a.Artifacts {
		out.Artifacts[i] = cloneArtifact(art)
	}
	if a.WithRoute != nil {
		routed := cloneAction(*a.WithRoute)
		out.WithRoute = &routed
	}
	return out
}

func cloneArtifact(a Artifact) Artifact {
	out := a
	out.Directives = append([]Directive(nil), a.Directives...)
	out.Forbidden = append([]Directive(nil), a.Forbidden...)
	out.Must = append([]string(nil), a.Must...)
	out.Imports = make([]Import, len(a.Imports))
	for i, imp := range a.Imports {
		out.Imports[i] = Import{Names: append([]string(nil), imp.Names...), From: imp.From}
	}
	return out
}
