package catalog

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"
)

// ParseTemplate parses a text/template source with missing keys treated as errors.
func ParseTemplate(name, src string) (*template.Template, error) {
	return template.New(name).Option("missingkey=error").Parse(src)
}

// Placeholders returns the sorted set of {{.name}} fields referenced by src.
func Placeholders(src string) ([]string, error) {
	if !strings.Contains(src, "{{") {
		return nil, nil
	}
	t, err := ParseTemplate("placeholders", src)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	if t.Tree != nil {
		walkFields(t.Tree.Root, seen)
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func walkFields(n parse.Node, seen map[string]bool) {
	switch n := n.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			walkFields(c, seen)
		}
	case *parse.ActionNode:
		walkFields(n.Pipe, seen)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			for _, arg := range cmd.Args {
				walkFields(arg, seen)
			}
		}
	case *parse.FieldNode:
		if len(n.Ident) > 0 {
			seen[n.Ident[0]] = true
		}
	case *parse.IfNode:
		walkBranch(&n.BranchNode, seen)
	case *parse.RangeNode:
		walkBranch(&n.BranchNode, seen)
	case *parse.WithNode:
		walkBranch(&n.BranchNode, seen)
	}
}

func walkBranch(b *parse.BranchNode, seen map[string]bool) {
	walkFields(b.Pipe, seen)
	walkFields(b.List, seen)
	walkFields(b.ElseList, seen)
}

// TemplateSources lists every templated string of an action with a label
// naming where it lives. Rendering and validation walk the same list.
func TemplateSources(a Action) []LabeledTemplate {
	var out []LabeledTemplate
	add := func(label, src string) {
		if src != "" {
			out = append(out, LabeledTemplate{Label: label, Source: src})
		}
	}
	for i, art := range a.Artifacts {
		prefix := fmt.Sprintf("artifacts[%d]", i)
		add(prefix+".path", art.Path)
		add(prefix+".code", art.Code)
		for j, m := range art.Must {
			add(fmt.Sprintf("%s.must[%d]", prefix, j), m)
		}
		for j, imp := range art.Imports {
			for k, n := range imp.Names {
				add(fmt.Sprintf("%s.imports[%d].names[%d]", prefix, j, k), n)
			}
			add(fmt.Sprintf("%s.imports[%d].from", prefix, j), imp.From)
		}
	}
	add("rationale", a.Rationale)
	return out
}

// LabeledTemplate is a template source plus its location inside an action.
type LabeledTemplate struct {
	Label  string
	Source string
}

// ActionPlaceholders returns the sorted set of placeholders an action needs.
func ActionPlaceholders(a Action) ([]string, error) {
	seen := make(map[string]bool)
	for _, lt := range TemplateSources(a) {
		names, err := Placeholders(lt.Source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", lt.Label, err)
		}
		for _, n := range names {
			seen[n] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
