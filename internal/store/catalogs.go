package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/logging"
)

// CatalogVersion describes one archived catalog.
type CatalogVersion struct {
	Digest  string    `json:"digest"`
	Version string    `json:"version"`
	Source  string    `json:"source"`
	Entries int       `json:"entries"`
	SavedAt time.Time `json:"saved_at"`
}

// SaveCatalog archives c. Saving a digest that already exists is a no-op and
// reports false.
func (s *Store) SaveCatalog(c *catalog.Catalog) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("save catalog: nil catalog")
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return false, fmt.Errorf("failed to encode catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO catalogs (digest, version, source, entry_count, document, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Digest(), c.Version(), c.Source(), c.Len(), string(doc), formatTime(s.now()),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save catalog: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to save catalog: %w", err)
	}
	if n == 0 {
		logging.StoreDebug("catalog %s already archived", c.Digest())
		return false, nil
	}
	logging.Store("Archived catalog version=%q digest=%s entries=%d", c.Version(), c.Digest(), c.Len())
	return true, nil
}

// ListVersions returns archived catalogs, newest first.
func (s *Store) ListVersions() ([]CatalogVersion, error) {
	rows, err := s.db.Query(
		`SELECT digest, version, source, entry_count, saved_at FROM catalogs ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}
	defer rows.Close()

	var out []CatalogVersion
	for rows.Next() {
		var v CatalogVersion
		var saved string
		if err := rows.Scan(&v.Digest, &v.Version, &v.Source, &v.Entries, &saved); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		v.SavedAt = parseTime(saved)
		out = append(out, v)
	}
	return out, rows.Err()
}

// LoadCatalog rebuilds an archived catalog. digest may be a unique prefix.
func (s *Store) LoadCatalog(digest string) (*catalog.Catalog, error) {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return nil, fmt.Errorf("load catalog: empty digest")
	}

	rows, err := s.db.Query(
		`SELECT digest, document FROM catalogs WHERE substr(digest, 1, ?) = ? LIMIT 2`,
		len(digest), digest)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var found []string
	var doc string
	for rows.Next() {
		var d, body string
		if err := rows.Scan(&d, &body); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		found = append(found, d)
		doc = body
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("catalog %s: %w", digest, ErrNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("catalog digest prefix %s is ambiguous", digest)
	}

	c, err := catalog.LoadBytes([]byte(doc), catalog.FormatJSON, "store:"+found[0])
	if err != nil {
		return nil, fmt.Errorf("archived catalog %s is invalid: %w", found[0], err)
	}
	if c.Digest() != found[0] {
		return nil, fmt.Errorf("archived catalog %s decoded to digest %s", found[0], c.Digest())
	}
	return c, nil
}

// HasCatalog reports whether digest is archived.
func (s *Store) HasCatalog(digest string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT 1 FROM catalogs WHERE digest = ?`, digest).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query catalog: %w", err)
	}
	return true, nil
}
