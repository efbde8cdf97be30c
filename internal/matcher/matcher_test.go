package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/requirement"
)

func mustCatalog(t *testing.T, entries ...catalog.PatternEntry) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New("test", "test", entries)
	require.NoError(t, err)
	return c
}

func entry(id string, precedence int, triggers ...catalog.Trigger) catalog.PatternEntry {
	return catalog.PatternEntry{
		ID:         id,
		Triggers:   triggers,
		Precedence: precedence,
		Action: catalog.Action{Artifacts: []catalog.Artifact{{
			Path: "app/" + id + "/page.tsx",
			Kind: catalog.KindPage,
		}}},
	}
}

func phrase(p string) catalog.Trigger { return catalog.Trigger{Phrase: p} }

func ids(ms []Match) []string {
	out := []string{}
	for _, m := range ms {
		out = append(out, m.ID())
	}
	return out
}

func TestMatch_DefaultWeightIsWordCount(t *testing.T) {
	c := mustCatalog(t,
		entry("short", 0, phrase("by id")),
		entry("long", 0, phrase("id from the url")),
	)
	got := New(DefaultOptions()).Match(requirement.Parse("fetch a product by ID from the URL"), c)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"long", "short"}, ids(got))
	assert.Equal(t, 4.0, got[0].Score)
	assert.Equal(t, 2.0, got[1].Score)
	assert.Equal(t, len("id from the url"), got[0].Specificity)
}

func TestMatch_SynonymHalfWeight(t *testing.T) {
	c := mustCatalog(t, entry("a", 0, phrase("get product")))
	got := New(DefaultOptions()).Match(requirement.Parse("retrieve products"), c)

	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Score)
	require.Len(t, got[0].Hits, 1)
	assert.Equal(t, HitSynonym, got[0].Hits[0].Kind)
}

func TestMatch_RegexAndExplicitWeight(t *testing.T) {
	c := mustCatalog(t,
		entry("re", 0, catalog.Trigger{Regex: `(?i)\bsearch\b`}),
		entry("weighted", 0, catalog.Trigger{Phrase: "search", Weight: 5}),
	)
	got := New(DefaultOptions()).Match(requirement.Parse("Search the docs"), c)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"weighted", "re"}, ids(got))
	assert.Equal(t, 2.0, got[1].Score, "regex default weight")
	assert.Equal(t, HitRegex, got[1].Hits[0].Kind)
	assert.Equal(t, "Search", got[1].Hits[0].Matched)
}

func TestMatch_Threshold(t *testing.T) {
	c := mustCatalog(t, entry("a", 0, phrase("get product")))
	opts := DefaultOptions()
	opts.MinScore = 1.5

	got := New(opts).Match(requirement.Parse("retrieve products"), c)
	assert.Empty(t, got, "a synonym-only hit of 1.0 is below 1.5")
}

func TestMatch_NoTriggersFire(t *testing.T) {
	c := mustCatalog(t, entry("a", 0, phrase("server action")))
	got := New(DefaultOptions()).Match(requirement.Parse("bake a cake"), c)
	assert.Empty(t, got)
}

func TestMatch_ExplicitPathEntries(t *testing.T) {
	explicit := entry("explicit", 0, phrase("page"))
	explicit.Action.ExplicitPath = true
	c := mustCatalog(t,
		explicit,
		entry("strong", 0, phrase("page"), phrase("show the settings page")),
	)
	m := New(DefaultOptions())

	got := m.Match(requirement.Parse("show the settings page"), c)
	assert.Equal(t, []string{"strong"}, ids(got), "explicit entries never fire without a path")

	got = m.Match(requirement.Parse("show the settings page at /settings"), c)
	assert.Equal(t, []string{"explicit", "strong"}, ids(got), "explicit tier ranks first regardless of score")
	assert.True(t, got[0].Explicit)
	assert.False(t, got[1].Explicit)
}

func routed(e catalog.PatternEntry, path string) catalog.PatternEntry {
	e.Action.WithRoute = &catalog.Action{Artifacts: []catalog.Artifact{{
		Path: path,
		Kind: catalog.KindRoute,
	}}}
	return e
}

func TestMatch_RoutedTier(t *testing.T) {
	fallback := entry("fallback", 100, phrase("api"), phrase("returns json"))
	fallback.Action.ExplicitPath = true
	c := mustCatalog(t,
		fallback,
		routed(entry("handler", 10, phrase("route handler")), "app{{.route}}/route.ts"),
		entry("inferred", 0, phrase("route handler"), phrase("returns json")),
	)
	m := New(DefaultOptions())

	got := m.Match(requirement.Parse("a route handler that returns json"), c)
	assert.Equal(t, []string{"inferred", "handler"}, ids(got))
	for _, g := range got {
		assert.Equal(t, TierInferred, g.Tier)
	}
	assert.Equal(t, "app/handler/page.tsx", got[1].Entry.Action.Artifacts[0].Path, "base action without a path")

	got = m.Match(requirement.Parse("a route handler at /api/users that returns json"), c)
	assert.Equal(t, []string{"handler", "fallback", "inferred"}, ids(got), "routed beats the fallback despite a lower score")
	assert.Equal(t, []Tier{TierRouted, TierFallback, TierInferred}, []Tier{got[0].Tier, got[1].Tier, got[2].Tier})
	assert.True(t, got[0].Explicit)
	assert.True(t, got[1].Explicit)
	assert.False(t, got[2].Explicit)
	assert.Equal(t, "app{{.route}}/route.ts", got[0].Entry.Action.Artifacts[0].Path, "routed match carries the with_route action")
	assert.Nil(t, got[0].Entry.Action.WithRoute)

	e, err := c.Get("handler")
	require.NoError(t, err)
	assert.Equal(t, "app/handler/page.tsx", e.Action.Artifacts[0].Path, "catalog entry is untouched")
}

func TestRank_TieBreakOrder(t *testing.T) {
	mk := func(id string, score float64, specificity, prec int) Match {
		return Match{Entry: catalog.PatternEntry{ID: id, Precedence: prec}, Score: score, Specificity: specificity}
	}
	ms := []Match{
		mk("z-low-score", 1, 100, 100),
		mk("b-tie", 3, 10, 5),
		mk("a-tie", 3, 10, 5),
		mk("high-prec", 3, 10, 9),
		mk("more-specific", 3, 20, 0),
		mk("best", 4, 1, 0),
	}
	Rank(ms)
	assert.Equal(t, []string{"best", "more-specific", "high-prec", "a-tie", "b-tie", "z-low-score"}, ids(ms))
}

func TestMatch_Deterministic(t *testing.T) {
	c, err := catalog.LoadEmbedded()
	require.NoError(t, err)
	m := New(DefaultOptions())
	req := requirement.Parse("show a product by id")

	first := ids(m.Match(req, c))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ids(m.Match(req, c)))
	}
}

func TestMatch_EmbeddedScenarios(t *testing.T) {
	c, err := catalog.LoadEmbedded()
	require.NoError(t, err)
	m := New(DefaultOptions())

	tests := []struct {
		text string
		top  string
	}{
		{"fetch a product by ID from the URL", "pathname-id-fetch"},
		{"create a route at /products/[id] that shows product info", "explicit-route-path"},
		{"button that sets a theme cookie on click", "theme-cookie-server-action"},
		{"read the search query on the client side", "client-search-params"},
		{"show a product by id", "resource-nested-route"},
		{"add a loading state while loading the dashboard", "streaming-loading-ui"},
		{"custom 404 not found page", "not-found-page"},
		{"an api endpoint that returns a json response of users", "route-handler-api"},
		{"create a route handler at /api/users that returns json", "route-handler-api"},
		{"navigate to /settings on click", "client-navigation-router"},
		{"create a page at app/products/[id]", "explicit-route-path"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := m.Match(requirement.Parse(tt.text), c)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.top, got[0].ID())
		})
	}
}

func TestOptions_Defaults(t *testing.T) {
	m := New(Options{})
	assert.Equal(t, DefaultOptions(), m.Options())
}
