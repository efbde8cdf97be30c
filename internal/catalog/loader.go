package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muhammadmuzzammil1998/jsonc"
	"gopkg.in/yaml.v3"

	"nextadvisor/internal/logging"
)

// Format is a catalog file encoding.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
)

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".jsonc":
		return FormatJSONC, true
	}
	return "", false
}

// IsCatalogFile reports whether path has a catalog extension.
func IsCatalogFile(path string) bool {
	_, ok := FormatFromPath(path)
	return ok
}

// decodeDocument parses data, runs the schema check, and returns the document.
// Schema problems are returned as a *CatalogLoadError.
func decodeDocument(data []byte, format Format, source string) (Document, error) {
	var doc Document
	var jsonDoc []byte

	switch format {
	case FormatYAML:
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return doc, &CatalogLoadError{Source: source, Err: fmt.Errorf("parse yaml: %w", err)}
		}
		if raw == nil {
			return doc, &CatalogLoadError{Source: source, Problems: []Problem{{Message: "empty catalog document"}}}
		}
		b, err := yamlToJSON(raw)
		if err != nil {
			return doc, &CatalogLoadError{Source: source, Err: err}
		}
		jsonDoc = b
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, &CatalogLoadError{Source: source, Err: fmt.Errorf("decode yaml: %w", err)}
		}
	case FormatJSON, FormatJSONC:
		jsonDoc = jsonc.ToJSON(data)
		if len(bytes.TrimSpace(jsonDoc)) == 0 {
			return doc, &CatalogLoadError{Source: source, Problems: []Problem{{Message: "empty catalog document"}}}
		}
		if err := json.Unmarshal(jsonDoc, &doc); err != nil {
			return doc, &CatalogLoadError{Source: source, Err: fmt.Errorf("parse json: %w", err)}
		}
	default:
		return doc, &CatalogLoadError{Source: source, Err: fmt.Errorf("unsupported catalog format %q", format)}
	}

	problems, err := validateSchema(jsonDoc)
	if err != nil {
		return doc, &CatalogLoadError{Source: source, Err: err}
	}
	if len(problems) > 0 {
		return doc, &CatalogLoadError{Source: source, Problems: problems}
	}
	return doc, nil
}

// LoadBytes decodes and validates a single catalog document.
func LoadBytes(data []byte, format Format, source string) (*Catalog, error) {
	timer := logging.StartTimer(logging.CategoryCatalog, "LoadBytes")
	defer timer.Stop()

	doc, err := decodeDocument(data, format, source)
	if err != nil {
		return nil, err
	}
	c, err := New(doc.Version, source, doc.Entries)
	if err != nil {
		return nil, err
	}
	logging.Catalog("loaded catalog %s version=%q entries=%d digest=%s", source, c.Version(), c.Len(), shortDigest(c.Digest()))
	return c, nil
}

// LoadFile loads a .yaml/.yml/.json/.jsonc catalog file.
func LoadFile(path string) (*Catalog, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, &CatalogLoadError{Source: path, Err: fmt.Errorf("unsupported catalog extension %q", filepath.Ext(path))}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogLoadError{Source: path, Err: fmt.Errorf("read catalog: %w", err)}
	}
	return LoadBytes(data, format, path)
}

// LoadDir loads every catalog file in dir (non-recursive, sorted by name) and
// merges them. Duplicate ids across files are rejected. The merged version is
// the distinct declared versions joined with "+".
func LoadDir(dir string) (*Catalog, error) {
	return loadFS(os.DirFS(dir), ".", dir)
}

// LoadPath dispatches to LoadFile or LoadDir.
func LoadPath(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &CatalogLoadError{Source: path, Err: fmt.Errorf("stat catalog: %w", err)}
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

func loadFS(fsys fs.FS, dir, source string) (*Catalog, error) {
	dirEntries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, &CatalogLoadError{Source: source, Err: fmt.Errorf("read catalog dir: %w", err)}
	}

	var names []string
	for _, de := range dirEntries {
		if de.IsDir() || !IsCatalogFile(de.Name()) {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, &CatalogLoadError{Source: source, Problems: []Problem{{Message: "no catalog files found"}}}
	}

	var (
		entries  []PatternEntry
		versions []string
		owner    = make(map[string]string)
		problems []Problem
	)
	for _, name := range names {
		p := filepath.ToSlash(filepath.Join(dir, name))
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, &CatalogLoadError{Source: source, Err: fmt.Errorf("read %s: %w", name, err)}
		}
		format, _ := FormatFromPath(name)
		doc, err := decodeDocument(data, format, name)
		if err != nil {
			return nil, err
		}
		if doc.Version != "" && !contains(versions, doc.Version) {
			versions = append(versions, doc.Version)
		}
		for _, e := range doc.Entries {
			if prev, dup := owner[e.ID]; dup {
				problems = append(problems, Problem{
					EntryID: e.ID,
					Field:   "id",
					Message: fmt.Sprintf("duplicate id in %s (first defined in %s)", name, prev),
				})
				continue
			}
			owner[e.ID] = name
			entries = append(entries, e)
		}
	}
	if len(problems) > 0 {
		return nil, &CatalogLoadError{Source: source, Problems: problems}
	}

	c, err := New(strings.Join(versions, "+"), source, entries)
	if err != nil {
		return nil, err
	}
	logging.Catalog("loaded catalog dir %s files=%d entries=%d digest=%s", source, len(names), c.Len(), shortDigest(c.Digest()))
	return c, nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
