package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/resolver"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func embedded(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.LoadEmbedded()
	require.NoError(t, err)
	return c
}

func tinyCatalog(t *testing.T, version string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(version, "test", []catalog.PatternEntry{{
		ID:       "tiny",
		Triggers: []catalog.Trigger{{Phrase: "tiny"}},
		Action: catalog.Action{Artifacts: []catalog.Artifact{{
			Path: "app/page.tsx",
			Kind: catalog.KindPage,
		}}},
	}})
	require.NoError(t, err)
	return c
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "advisor.db")
	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Close())

	// Reopening an existing database keeps the schema.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.ListVersions()
	assert.NoError(t, err)
}

func TestSaveAndLoadCatalog(t *testing.T) {
	s := openMemory(t)
	cat := embedded(t)

	saved, err := s.SaveCatalog(cat)
	require.NoError(t, err)
	assert.True(t, saved)

	back, err := s.LoadCatalog(cat.Digest())
	require.NoError(t, err)
	assert.Equal(t, cat.Digest(), back.Digest())
	assert.Equal(t, cat.Version(), back.Version())
	assert.Equal(t, cat.Len(), back.Len())

	has, err := s.HasCatalog(cat.Digest())
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSaveCatalog_Idempotent(t *testing.T) {
	s := openMemory(t)
	cat := tinyCatalog(t, "1")

	saved, err := s.SaveCatalog(cat)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = s.SaveCatalog(cat)
	require.NoError(t, err)
	assert.False(t, saved)

	versions, err := s.ListVersions()
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestSaveCatalog_Nil(t *testing.T) {
	s := openMemory(t)
	_, err := s.SaveCatalog(nil)
	assert.Error(t, err)
}

func TestListVersions_NewestFirst(t *testing.T) {
	s := openMemory(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return base }

	first, second := tinyCatalog(t, "1"), tinyCatalog(t, "2")
	_, err := s.SaveCatalog(first)
	require.NoError(t, err)
	_, err = s.SaveCatalog(second)
	require.NoError(t, err)

	versions, err := s.ListVersions()
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "2", versions[0].Version)
	assert.Equal(t, second.Digest(), versions[0].Digest)
	assert.Equal(t, "1", versions[1].Version)
	assert.Equal(t, 1, versions[1].Entries)
	assert.Equal(t, "test", versions[1].Source)
	assert.True(t, base.Equal(versions[1].SavedAt))
}

func TestLoadCatalog_Prefix(t *testing.T) {
	s := openMemory(t)
	cat := tinyCatalog(t, "1")
	_, err := s.SaveCatalog(cat)
	require.NoError(t, err)

	back, err := s.LoadCatalog(cat.Digest()[:12])
	require.NoError(t, err)
	assert.Equal(t, cat.Digest(), back.Digest())
	assert.Equal(t, "store:"+cat.Digest(), back.Source())
}

func TestLoadCatalog_Errors(t *testing.T) {
	s := openMemory(t)

	_, err := s.LoadCatalog("")
	assert.Error(t, err)

	_, err = s.LoadCatalog("deadbeef")
	assert.True(t, errors.Is(err, ErrNotFound))

	// An empty prefix is rejected before it could match every row.
	_, err = s.SaveCatalog(tinyCatalog(t, "1"))
	require.NoError(t, err)
	_, err = s.SaveCatalog(tinyCatalog(t, "2"))
	require.NoError(t, err)
	_, err = s.LoadCatalog("   ")
	assert.Error(t, err)
}

func TestRecordAndListResolutions(t *testing.T) {
	s := openMemory(t)
	cat := embedded(t)
	r := resolver.New(nil)

	var ids []string
	for _, text := range []string{
		"fetch a product by ID from the URL",
		"bake a chocolate cake",
		"button that sets a theme cookie on click",
	} {
		rec, err := r.ResolveText(text, cat)
		require.NoError(t, err)
		id, err := s.RecordResolution(rec)
		require.NoError(t, err)
		_, err = uuid.Parse(id)
		require.NoError(t, err, "id is a uuid")
		ids = append(ids, id)
	}

	all, err := s.ListResolutions(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")
	assert.Equal(t, "theme-cookie-server-action", all[0].Chosen)
	assert.Equal(t, resolver.StatusOK, all[0].Status)
	assert.Equal(t, cat.Digest(), all[0].CatalogDigest)
	require.NotNil(t, all[0].Recommendation)
	assert.Equal(t, []string{"app/actions/theme.ts", "app/components/ThemeButton.tsx"}, all[0].Recommendation.Paths())

	assert.Equal(t, resolver.StatusNoMatch, all[1].Status)
	assert.Empty(t, all[1].Chosen)

	limited, err := s.ListResolutions(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetResolution(t *testing.T) {
	s := openMemory(t)
	rec, err := resolver.New(nil).ResolveText("custom 404 not found page", embedded(t))
	require.NoError(t, err)

	id, err := s.RecordResolution(rec)
	require.NoError(t, err)

	got, err := s.GetResolution(id)
	require.NoError(t, err)
	assert.Equal(t, rec.Requirement, got.Requirement)
	assert.Equal(t, "not-found-page", got.Chosen)

	_, err = s.GetResolution(uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecordResolution_Nil(t *testing.T) {
	s := openMemory(t)
	_, err := s.RecordResolution(nil)
	assert.Error(t, err)
}

func TestResolutionTraceableToCatalog(t *testing.T) {
	s := openMemory(t)
	cat := embedded(t)
	_, err := s.SaveCatalog(cat)
	require.NoError(t, err)

	rec, err := resolver.New(nil).ResolveText("show a product by id", cat)
	require.NoError(t, err)
	_, err = s.RecordResolution(rec)
	require.NoError(t, err)

	logged, err := s.ListResolutions(1)
	require.NoError(t, err)
	require.Len(t, logged, 1)

	archived, err := s.LoadCatalog(logged[0].CatalogDigest)
	require.NoError(t, err)

	replay, err := resolver.New(nil).ResolveText(logged[0].Requirement, archived)
	require.NoError(t, err)
	assert.Equal(t, logged[0].Chosen, replay.Chosen)
	assert.Equal(t, logged[0].Recommendation.Paths(), replay.Paths())
}
