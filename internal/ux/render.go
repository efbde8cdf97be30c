package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/resolver"
	"nextadvisor/internal/store"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts json, text, markdown (or md).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, text or markdown)", s)
}

// Renderer writes values in one format.
type Renderer struct {
	out      io.Writer
	format   Format
	styles   Styles
	wordWrap int
	// Raw skips glamour and writes Markdown source.
	Raw bool
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, format Format) *Renderer {
	return &Renderer{
		out:      out,
		format:   format,
		styles:   NewStyles(out, DetectTheme()),
		wordWrap: 80,
	}
}

// Format returns the renderer's format.
func (r *Renderer) Format() Format {
	return r.format
}

// Recommendation writes one recommendation.
func (r *Renderer) Recommendation(rec *resolver.Recommendation) error {
	switch r.format {
	case FormatText:
		_, err := io.WriteString(r.out, RecommendationText(r.styles, rec))
		return err
	case FormatMarkdown:
		return r.markdown(RecommendationMarkdown(rec))
	}
	return r.json(rec)
}

// Entries writes a catalog listing.
func (r *Renderer) Entries(cat *catalog.Catalog) error {
	entries := cat.Entries()
	switch r.format {
	case FormatText:
		_, err := io.WriteString(r.out, EntriesText(r.styles, cat))
		return err
	case FormatMarkdown:
		return r.markdown(EntriesMarkdown(cat))
	}
	type row struct {
		ID         string `json:"id"`
		Summary    string `json:"summary,omitempty"`
		Precedence int    `json:"precedence"`
		Triggers   int    `json:"triggers"`
		Artifacts  int    `json:"artifacts"`
	}
	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, row{e.ID, e.Summary, e.Precedence, len(e.Triggers), len(e.Action.Artifacts)})
	}
	return r.json(map[string]any{
		"version": cat.Version(),
		"digest":  cat.Digest(),
		"source":  cat.Source(),
		"entries": rows,
	})
}

// Entry writes one catalog entry in full.
func (r *Renderer) Entry(e catalog.PatternEntry) error {
	switch r.format {
	case FormatText:
		_, err := io.WriteString(r.out, EntryText(r.styles, e))
		return err
	case FormatMarkdown:
		return r.markdown(EntryMarkdown(e))
	}
	return r.json(e)
}

// Versions writes archived catalog versions.
func (r *Renderer) Versions(versions []store.CatalogVersion) error {
	if r.format != FormatJSON {
		_, err := io.WriteString(r.out, VersionsText(r.styles, versions))
		return err
	}
	if versions == nil {
		versions = []store.CatalogVersion{}
	}
	return r.json(versions)
}

// JSON writes any value as indented JSON regardless of format.
func (r *Renderer) JSON(v any) error {
	return r.json(v)
}

func (r *Renderer) json(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = r.out.Write(data)
	return err
}

func (r *Renderer) markdown(src string) error {
	if r.Raw {
		_, err := io.WriteString(r.out, src)
		return err
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStylePath(glamourStyle(r.out, r.styles.Theme)),
		glamour.WithWordWrap(r.wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := tr.Render(src)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(r.out, out)
	return err
}

// glamourStyle picks "notty" unless out is a terminal.
func glamourStyle(out io.Writer, t Theme) string {
	f, ok := out.(*os.File)
	if !ok {
		return "notty"
	}
	if st, err := f.Stat(); err != nil || st.Mode()&os.ModeCharDevice == 0 {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}
