package resolver

import (
	"fmt"
	"sort"
	"strings"

	"nextadvisor/internal/catalog"
)

// unfilled stands in for missing values when output is only rendered to be
// tested against anti-patterns. It keeps path segments non-empty.
const unfilled = "_"

// missingPlaceholders returns the placeholders the action references that
// values does not provide.
func missingPlaceholders(a catalog.Action, values map[string]string) ([]string, error) {
	need, err := catalog.ActionPlaceholders(a)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, n := range need {
		if _, ok := values[n]; !ok {
			missing = append(missing, n)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// renderAction instantiates every template of an action. values must cover
// every referenced placeholder.
func renderAction(entryID string, a catalog.Action, values map[string]string) ([]catalog.Artifact, string, error) {
	exec := func(label, src string) (string, error) {
		if !strings.Contains(src, "{{") {
			return src, nil
		}
		t, err := catalog.ParseTemplate(entryID+":"+label, src)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		if err := t.Execute(&sb, values); err != nil {
			return "", fmt.Errorf("render %s %s: %w", entryID, label, err)
		}
		return sb.String(), nil
	}

	out := make([]catalog.Artifact, len(a.Artifacts))
	for i, art := range a.Artifacts {
		r := catalog.Artifact{
			Kind:       art.Kind,
			Directives: append([]catalog.Directive(nil), art.Directives...),
			Forbidden:  append([]catalog.Directive(nil), art.Forbidden...),
		}
		var err error
		if r.Path, err = exec("path", art.Path); err != nil {
			return nil, "", err
		}
		if r.Code, err = exec("code", art.Code); err != nil {
			return nil, "", err
		}
		for _, m := range art.Must {
			s, err := exec("must", m)
			if err != nil {
				return nil, "", err
			}
			r.Must = append(r.Must, s)
		}
		for _, imp := range art.Imports {
			ri := catalog.Import{}
			for _, n := range imp.Names {
				s, err := exec("import", n)
				if err != nil {
					return nil, "", err
				}
				ri.Names = append(ri.Names, s)
			}
			if ri.From, err = exec("import", imp.From); err != nil {
				return nil, "", err
			}
			r.Imports = append(r.Imports, ri)
		}
		out[i] = r
	}

	rationale, err := exec("rationale", a.Rationale)
	if err != nil {
		return nil, "", err
	}
	return out, rationale, nil
}

// renderLenient renders with missing placeholders set to a stand-in value.
// It never fails for a validated catalog entry.
func renderLenient(e catalog.PatternEntry, values map[string]string) []catalog.Artifact {
	filled := make(map[string]string, len(values))
	for k, v := range values {
		filled[k] = v
	}
	for _, p := range catalog.KnownPlaceholders() {
		if _, ok := filled[p]; !ok {
			filled[p] = unfilled
		}
	}
	arts, _, err := renderAction(e.ID, e.Action, filled)
	if err != nil {
		return e.Action.Artifacts
	}
	return arts
}
