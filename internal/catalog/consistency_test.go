package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rules(issues []Issue) []Rule {
	var out []Rule
	for _, i := range issues {
		out = append(out, i.Rule)
	}
	return out
}

func TestCheckConsistency(t *testing.T) {
	suspensePage := Artifact{
		Path:    "app/page.tsx",
		Kind:    KindPage,
		Imports: []Import{{Names: []string{"Suspense"}, From: "react"}},
	}

	tests := []struct {
		name      string
		artifacts []Artifact
		want      []Rule
	}{
		{
			name: "server page is fine",
			artifacts: []Artifact{{
				Path: "app/page.tsx", Kind: KindPage,
				Code: "export default async function Page() { return null }",
			}},
		},
		{
			name: "both directives",
			artifacts: []Artifact{{
				Path: "app/x.ts", Kind: KindAction,
				Directives: []Directive{DirectiveUseClient, DirectiveUseServer},
			}},
			want: []Rule{RuleExclusiveDirectives},
		},
		{
			name: "required and forbidden",
			artifacts: []Artifact{{
				Path: "app/x.ts", Kind: KindAction,
				Directives: []Directive{DirectiveUseServer},
				Forbidden:  []Directive{DirectiveUseServer},
			}},
			want: []Rule{RuleForbiddenDirective},
		},
		{
			name: "hook call without use client",
			artifacts: []Artifact{{
				Path: "app/c.tsx", Kind: KindComponent,
				Code: "const [v, setV] = useState(0)",
			}},
			want: []Rule{RuleClientHookBoundary},
		},
		{
			name: "onClick without use client",
			artifacts: []Artifact{{
				Path: "app/c.tsx", Kind: KindComponent,
				Code: "<button onClick={go}>x</button>",
			}},
			want: []Rule{RuleClientHookBoundary},
		},
		{
			name: "cookies in a client module",
			artifacts: []Artifact{{
				Path: "app/c.tsx", Kind: KindComponent,
				Directives: []Directive{DirectiveUseClient},
				Code:       "const store = await cookies()",
			}},
			want: []Rule{RuleServerOnlyInClient},
		},
		{
			name: "next/headers import in a client module",
			artifacts: []Artifact{{
				Path: "app/c.tsx", Kind: KindComponent,
				Directives: []Directive{DirectiveUseClient},
				Imports:    []Import{{Names: []string{"headers"}, From: "next/headers"}},
			}},
			want: []Rule{RuleServerOnlyInClient},
		},
		{
			name: "legacy router",
			artifacts: []Artifact{{
				Path: "app/c.tsx", Kind: KindComponent,
				Directives: []Directive{DirectiveUseClient},
				Imports:    []Import{{Names: []string{"useRouter"}, From: "next/router"}},
			}},
			want: []Rule{RuleLegacyRouter},
		},
		{
			name: "search params without suspense",
			artifacts: []Artifact{{
				Path: "app/s.tsx", Kind: KindComponent,
				Directives: []Directive{DirectiveUseClient},
				Imports:    []Import{{Names: []string{"useSearchParams"}, From: "next/navigation"}},
			}},
			want: []Rule{RuleSearchParamsSuspend},
		},
		{
			name: "search params without use client or suspense",
			artifacts: []Artifact{{
				Path: "app/s.tsx", Kind: KindComponent,
				Code: "const q = useSearchParams()",
			}},
			want: []Rule{RuleClientHookBoundary, RuleSearchParamsSuspend},
		},
		{
			name: "search params with suspense parent",
			artifacts: []Artifact{
				{
					Path: "app/s.tsx", Kind: KindComponent,
					Directives: []Directive{DirectiveUseClient},
					Imports:    []Import{{Names: []string{"useSearchParams"}, From: "next/navigation"}},
				},
				suspensePage,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules(CheckConsistency(tt.artifacts)))
		})
	}
}

func TestIssueString(t *testing.T) {
	i := Issue{Rule: RuleLegacyRouter, Artifact: "app/x.tsx", Message: "bad"}
	assert.Equal(t, "[legacy-next-router] app/x.tsx: bad", i.String())
	assert.Equal(t, "[legacy-next-router] bad", Issue{Rule: RuleLegacyRouter, Message: "bad"}.String())
}

func TestAntiPatternCheck(t *testing.T) {
	artifacts := []Artifact{
		{Path: "app/products/[id]/page.tsx", Kind: KindPage},
		{
			Path:       "app/components/X.tsx",
			Kind:       KindComponent,
			Directives: []Directive{DirectiveUseClient},
			Imports:    []Import{{Names: []string{"useRouter"}, From: "next/navigation"}},
		},
	}

	tests := []struct {
		name string
		ap   AntiPattern
		hit  string
	}{
		{"nested dynamic glob", AntiPattern{Path: `app/*/\[*\]/page.tsx`}, "app/products/[id]/page.tsx"},
		{"top-level dynamic does not match nested glob", AntiPattern{Path: `app/\[*\]/page.tsx`}, ""},
		{"doublestar", AntiPattern{Path: "app/**/*.tsx"}, "app/products/[id]/page.tsx"},
		{"directive any kind", AntiPattern{Directive: DirectiveUseClient}, "app/components/X.tsx"},
		{"directive restricted to pages", AntiPattern{Directive: DirectiveUseClient, Kind: KindPage}, ""},
		{"import by source", AntiPattern{Import: "next/navigation"}, "app/components/X.tsx"},
		{"import by name", AntiPattern{Import: "useRouter"}, "app/components/X.tsx"},
		{"import absent", AntiPattern{Import: "next/router"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tt.ap.Check(artifacts)
			if tt.hit == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.hit, v.Artifact)
		})
	}
}

func TestAntiPatternDescribe(t *testing.T) {
	assert.Equal(t, "path pages/**", AntiPattern{Path: "pages/**"}.Describe())
	assert.Equal(t, `"use client" in page`, AntiPattern{Directive: DirectiveUseClient, Kind: KindPage}.Describe())
	assert.Equal(t, "import next/router", AntiPattern{Import: "next/router"}.Describe())
}

func TestPlaceholders(t *testing.T) {
	got, err := Placeholders("app/{{.resources}}/[{{.param}}]/{{if .cookie}}{{.Cookie}}{{end}}")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cookie", "cookie", "param", "resources"}, got)

	got, err = Placeholders("no templates")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Placeholders("{{.broken")
	assert.Error(t, err)
}

func TestActionPlaceholders(t *testing.T) {
	a := Action{
		Artifacts: []Artifact{{
			Path:    "app/{{.resources}}/page.tsx",
			Imports: []Import{{Names: []string{"get{{.Resource}}"}, From: "../lib"}},
			Must:    []string{"await {{.param}}"},
		}},
		Rationale: "because {{.resource}}",
	}
	got, err := ActionPlaceholders(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"Resource", "param", "resource", "resources"}, got)
}
