package catalog

import (
	"embed"
	"sync"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

const embeddedSource = "embedded:defaults"

var (
	embeddedOnce sync.Once
	embedded     *Catalog
	embeddedErr  error
)

// LoadEmbedded returns the built-in App Router catalog. It is parsed once
// per process; the returned Catalog is shared.
func LoadEmbedded() (*Catalog, error) {
	embeddedOnce.Do(func() {
		embedded, embeddedErr = loadFS(defaultsFS, "defaults", embeddedSource)
	})
	return embedded, embeddedErr
}

// EmbeddedFiles returns the names and contents of the built-in catalog files.
func EmbeddedFiles() (map[string][]byte, error) {
	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := defaultsFS.ReadFile("defaults/" + e.Name())
		if err != nil {
			return nil, err
		}
		out[e.Name()] = data
	}
	return out, nil
}
