package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(t *testing.T, enabled map[string]bool) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	UseLogger(zap.New(core), enabled)
	t.Cleanup(Reset)
	return logs
}

func TestGet_DefaultIsSilent(t *testing.T) {
	Reset()
	// Must not panic or write anywhere.
	Get(CategoryCatalog).Info("hello %s", "world")
	Get(CategoryMatcher).Debug("scored %d", 3)
}

func TestAllCategoriesLog(t *testing.T) {
	logs := observed(t, nil)

	for _, cat := range AllCategories() {
		Get(cat).Info("message for %s", cat)
	}

	entries := logs.All()
	require.Len(t, entries, len(AllCategories()))
	for i, cat := range AllCategories() {
		assert.Equal(t, string(cat), entries[i].LoggerName)
		assert.Equal(t, "message for "+string(cat), entries[i].Message)
	}
}

func TestCategoryToggle(t *testing.T) {
	logs := observed(t, map[string]bool{
		"matcher": false,
		"catalog": true,
	})

	assert.False(t, IsCategoryEnabled(CategoryMatcher))
	assert.True(t, IsCategoryEnabled(CategoryCatalog))
	assert.True(t, IsCategoryEnabled(CategoryResolver), "unlisted categories default to enabled")

	MatcherDebug("dropped")
	CatalogDebug("kept")
	ResolverDebug("also kept")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestLevels(t *testing.T) {
	logs := observed(t, nil)
	l := Get(CategoryStore)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	var levels []zapcore.Level
	for _, e := range logs.All() {
		levels = append(levels, e.Level)
	}
	assert.Equal(t, []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}, levels)
}

func TestWithFields(t *testing.T) {
	logs := observed(t, nil)

	Get(CategoryResolver).With("entry", "pathname-id-fetch").Info("chosen")

	entries := logs.FilterMessage("chosen").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pathname-id-fetch", entries[0].ContextMap()["entry"])
}

func TestInitialize_File(t *testing.T) {
	t.Cleanup(Reset)
	path := filepath.Join(t.TempDir(), "advisor.log")

	require.NoError(t, Initialize(Config{Level: "debug", Format: "json", File: path}))
	Catalog("loaded %d entries", 14)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loaded 14 entries")
	assert.Contains(t, string(data), `"logger":"catalog"`)
}

func TestInitialize_InvalidConfig(t *testing.T) {
	t.Cleanup(Reset)

	err := Initialize(Config{Level: "loud"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid log level"))

	err = Initialize(Config{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestConcurrentGet(t *testing.T) {
	observed(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cat := AllCategories()[i%len(AllCategories())]
			Get(cat).Debug("worker %d", i)
		}(i)
	}
	wg.Wait()

	assert.Same(t, Get(CategoryEngine), Get(CategoryEngine))
}

func TestTimer(t *testing.T) {
	logs := observed(t, nil)

	timer := StartTimer(CategoryEngine, "ResolveAll")
	elapsed := timer.Stop()

	assert.GreaterOrEqual(t, int64(elapsed), int64(0))
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "ResolveAll completed in")
}
