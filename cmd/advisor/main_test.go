package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/resolver"
)

const widgetCatalog = `
version: "w1"
entries:
  - id: widget-page
    summary: Widget listing
    triggers:
      - widget
    action:
      artifacts:
        - path: app/widgets/page.tsx
          kind: page
          forbidden: ["use client"]
`

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs a fresh command tree with an isolated config and database.
func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ADVISOR_DB", filepath.Join(dir, "advisor.db"))
	t.Setenv("ADVISOR_LOG_LEVEL", "error")
	t.Setenv("ADVISOR_CATALOG", "")
	return executeIn(t, dir, stdin, args...)
}

func executeIn(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "advisor.yaml")}, args...))
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func decodeRec(t *testing.T, s string) resolver.Recommendation {
	t.Helper()
	var rec resolver.Recommendation
	require.NoError(t, json.Unmarshal([]byte(s), &rec), s)
	return rec
}

func jsonLines(t *testing.T, s string) []batchLine {
	t.Helper()
	var lines []batchLine
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var l batchLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l), sc.Text())
		lines = append(lines, l)
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestJoinArgs(t *testing.T) {
	assert.Equal(t, "one two three", joinArgs([]string{"one", "two", "three"}))
	assert.Equal(t, "", joinArgs(nil))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, exitNoMatch, exitCode(resolver.ErrNoMatch))
	assert.Equal(t, exitClarification, exitCode(&resolver.IncompleteTemplateError{EntryID: "x", Missing: []string{"resource"}}))
	assert.Equal(t, exitInvalid, exitCode(fmt.Errorf("wrapped: %w", &catalog.CatalogLoadError{Source: "x"})))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestResolve_JSON(t *testing.T) {
	res := execute(t, "", "resolve", "fetch", "a", "product", "by", "ID", "from", "the", "URL")
	require.NoError(t, res.err)

	rec := decodeRec(t, res.stdout)
	assert.Equal(t, resolver.StatusOK, rec.Status)
	assert.Equal(t, "pathname-id-fetch", rec.Chosen)
	require.NotNil(t, rec.Output)
	assert.Equal(t, "app/[id]/page.tsx", rec.Output.Artifacts[0].Path)
}

func TestResolve_ExplicitPathKeepsEntryShape(t *testing.T) {
	res := execute(t, "", "resolve", "create a route handler at /api/users that returns json")
	require.NoError(t, res.err)

	rec := decodeRec(t, res.stdout)
	assert.Equal(t, "route-handler-api", rec.Chosen)
	assert.Equal(t, []string{"app/api/users/route.ts"}, rec.Paths())
}

func TestResolve_Text(t *testing.T) {
	res := execute(t, "", "resolve", "--format", "text", "create a route at /products/[id] that shows product info")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "explicit-route-path")
	assert.Contains(t, res.stdout, "app/products/[id]/page.tsx")
}

func TestResolve_MarkdownRaw(t *testing.T) {
	res := execute(t, "", "resolve", "--format", "md", "--raw", "button that sets a theme cookie on click")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "### `app/actions/theme.ts` (action)")
}

func TestResolve_NoMatch(t *testing.T) {
	res := execute(t, "", "resolve", "bake a chocolate cake")
	require.ErrorIs(t, res.err, resolver.ErrNoMatch)
	assert.Equal(t, exitNoMatch, exitCode(res.err))

	rec := decodeRec(t, res.stdout)
	assert.Equal(t, resolver.StatusNoMatch, rec.Status)
	assert.Nil(t, rec.Output)
}

func TestResolve_NeedsClarification(t *testing.T) {
	res := execute(t, "", "resolve", "fetch data from an api")
	require.Error(t, res.err)
	assert.Equal(t, exitClarification, exitCode(res.err))

	rec := decodeRec(t, res.stdout)
	assert.Equal(t, resolver.StatusNeedsClarification, rec.Status)
	assert.NotEmpty(t, rec.Missing)
}

func TestResolve_BadFormat(t *testing.T) {
	res := execute(t, "", "resolve", "--format", "yaml", "a page")
	assert.Error(t, res.err)
}

func TestResolve_RequiresArgs(t *testing.T) {
	res := execute(t, "", "resolve")
	assert.Error(t, res.err)
}

func TestResolve_CustomCatalog(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "widgets.yaml", widgetCatalog)

	res := execute(t, "", "--catalog", path, "resolve", "show the widget")
	require.NoError(t, res.err)
	rec := decodeRec(t, res.stdout)
	assert.Equal(t, "widget-page", rec.Chosen)
	assert.Equal(t, "w1", rec.CatalogVersion)
}

func TestResolve_InvalidCatalog(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "version: \"x\"\nentries: []\n")

	res := execute(t, "", "--catalog", path, "resolve", "anything")
	require.Error(t, res.err)
	assert.Equal(t, exitInvalid, exitCode(res.err))
}

func TestResolve_RecordAndHistory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADVISOR_DB", filepath.Join(dir, "advisor.db"))
	t.Setenv("ADVISOR_LOG_LEVEL", "error")
	t.Setenv("ADVISOR_CATALOG", "")

	res := executeIn(t, dir, "", "resolve", "--record", "custom 404 not found page")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "recorded ")

	res = executeIn(t, dir, "", "history")
	require.NoError(t, res.err)
	var logged []struct {
		ID             string          `json:"id"`
		Chosen         string          `json:"chosen"`
		Status         string          `json:"status"`
		Recommendation json.RawMessage `json:"recommendation"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &logged))
	require.Len(t, logged, 1)
	assert.Equal(t, "not-found-page", logged[0].Chosen)
	assert.Equal(t, "ok", logged[0].Status)
	assert.Empty(t, logged[0].Recommendation, "summary omits the payload")

	// The catalog that answered is archived alongside.
	res = executeIn(t, dir, "", "catalog", "versions", "--format", "json")
	require.NoError(t, res.err)
	var versions []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &versions))
	assert.Len(t, versions, 1)
}

func TestBatch_Stdin(t *testing.T) {
	input := strings.Join([]string{
		"# scenarios",
		"fetch a product by ID from the URL",
		"",
		"bake a chocolate cake",
		"fetch data from an api",
		"read the search query on the client side",
	}, "\n")

	res := execute(t, input, "batch", "-")
	require.NoError(t, res.err)

	lines := jsonLines(t, res.stdout)
	require.Len(t, lines, 4)
	for i, l := range lines {
		assert.Equal(t, i, l.Index)
		require.NotNil(t, l.Recommendation)
	}
	assert.Equal(t, "pathname-id-fetch", lines[0].Chosen)
	assert.Equal(t, resolver.StatusNoMatch, lines[1].Status)
	assert.Equal(t, resolver.StatusNeedsClarification, lines[2].Status)
	assert.Contains(t, lines[2].Error, "needs values")
	assert.Equal(t, "client-search-params", lines[3].Chosen)
}

func TestBatch_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reqs.txt", "custom 404 not found page\nadd page metadata for seo\n")

	res := execute(t, "", "batch", path)
	require.NoError(t, res.err)
	lines := jsonLines(t, res.stdout)
	require.Len(t, lines, 2)
	assert.Equal(t, "not-found-page", lines[0].Chosen)
	assert.Equal(t, "page-metadata", lines[1].Chosen)
}

func TestBatch_MissingFile(t *testing.T) {
	res := execute(t, "", "batch", filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, res.err)
}

func TestCatalogList(t *testing.T) {
	res := execute(t, "", "catalog", "list", "--format", "json")
	require.NoError(t, res.err)

	var doc struct {
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	var ids []string
	for _, e := range doc.Entries {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, "explicit-route-path")
	assert.Contains(t, ids, "theme-cookie-server-action")

	res = execute(t, "", "catalog", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "client-search-params")
}

func TestCatalogShow(t *testing.T) {
	res := execute(t, "", "catalog", "show", "client-search-params")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "app/components/SearchQuery.tsx")

	res = execute(t, "", "catalog", "show", "no-such-entry")
	var nf *catalog.NotFoundError
	assert.True(t, errors.As(res.err, &nf))
}

func TestCatalogValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", widgetCatalog)
	bad := writeFile(t, dir, "bad.yaml", `
version: "1"
entries:
  - id: Not_Kebab
    triggers: []
    action:
      artifacts: []
`)

	res := execute(t, "", "catalog", "validate", good)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ok: ")
	assert.Contains(t, res.stdout, "entries=1")

	res = execute(t, "", "catalog", "validate", bad)
	require.Error(t, res.err)
	assert.Equal(t, exitInvalid, exitCode(res.err))
}

func TestCatalogImportAndVersions(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADVISOR_DB", filepath.Join(dir, "advisor.db"))
	t.Setenv("ADVISOR_LOG_LEVEL", "error")
	t.Setenv("ADVISOR_CATALOG", "")
	path := writeFile(t, dir, "widgets.yaml", widgetCatalog)

	res := executeIn(t, dir, "", "catalog", "import", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "imported: version=w1")

	res = executeIn(t, dir, "", "catalog", "import", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "already archived")

	res = executeIn(t, dir, "", "catalog", "versions")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "w1")
}

func TestWatch_EmbeddedStdin(t *testing.T) {
	res := execute(t, "fetch a product by ID from the URL\n\nbutton that sets a theme cookie on click\n", "watch")
	require.NoError(t, res.err)

	lines := jsonLines(t, res.stdout)
	require.Len(t, lines, 2)
	assert.Equal(t, 0, lines[0].Index)
	assert.Equal(t, "pathname-id-fetch", lines[0].Chosen)
	assert.Equal(t, 1, lines[1].Index)
	assert.Equal(t, "theme-cookie-server-action", lines[1].Chosen)
}

func TestBatchAndWatch_LongLines(t *testing.T) {
	long := "fetch a product by ID from the URL" + strings.Repeat(" x", 64*1024)
	require.Greater(t, len(long), bufio.MaxScanTokenSize)
	input := long + "\nbutton that sets a theme cookie on click\n"

	for _, sub := range []string{"batch", "watch"} {
		t.Run(sub, func(t *testing.T) {
			args := []string{sub}
			if sub == "batch" {
				args = append(args, "-")
			}
			res := execute(t, input, args...)
			require.NoError(t, res.err)

			lines := jsonLines(t, res.stdout)
			require.Len(t, lines, 2)
			assert.Equal(t, "pathname-id-fetch", lines[0].Chosen)
			assert.Equal(t, "theme-cookie-server-action", lines[1].Chosen)
		})
	}
}

func TestWatch_CatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "widgets.yaml", widgetCatalog)

	res := execute(t, "show the widget\n", "--catalog", path, "watch")
	require.NoError(t, res.err)
	lines := jsonLines(t, res.stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "widget-page", lines[0].Chosen)
}

func TestConfigFileApplied(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADVISOR_DB", filepath.Join(dir, "advisor.db"))
	t.Setenv("ADVISOR_LOG_LEVEL", "error")
	t.Setenv("ADVISOR_CATALOG", "")
	path := writeFile(t, dir, "widgets.yaml", widgetCatalog)
	writeFile(t, dir, "advisor.yaml", fmt.Sprintf("catalog:\n  path: %q\n", path))

	res := executeIn(t, dir, "", "resolve", "show the widget")
	require.NoError(t, res.err)
	assert.Equal(t, "widget-page", decodeRec(t, res.stdout).Chosen)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADVISOR_LOG_LEVEL", "")
	writeFile(t, dir, "advisor.yaml", "matching:\n  min_score: -1\n")

	res := executeIn(t, dir, "", "catalog", "list")
	assert.Error(t, res.err)
}
