package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nextadvisor/internal/resolver"
)

// Resolution is one logged recommendation.
type Resolution struct {
	ID             string                   `json:"id"`
	Requirement    string                   `json:"requirement"`
	Chosen         string                   `json:"chosen,omitempty"`
	Status         resolver.Status          `json:"status"`
	CatalogVersion string                   `json:"catalog_version"`
	CatalogDigest  string                   `json:"catalog_digest"`
	CreatedAt      time.Time                `json:"created_at"`
	Recommendation *resolver.Recommendation `json:"recommendation,omitempty"`
}

// RecordResolution appends rec to the log and returns its id.
func (s *Store) RecordResolution(rec *resolver.Recommendation) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("record resolution: nil recommendation")
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode recommendation: %w", err)
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT INTO resolutions (id, requirement, chosen, status, catalog_version, catalog_digest, recommendation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Requirement, rec.Chosen, string(rec.Status), rec.CatalogVersion, rec.CatalogDigest,
		string(body), formatTime(s.now()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record resolution: %w", err)
	}
	return id, nil
}

const resolutionColumns = `id, requirement, chosen, status, catalog_version, catalog_digest, recommendation, created_at`

// ListResolutions returns up to limit logged resolutions, newest first.
// A limit <= 0 returns all of them.
func (s *Store) ListResolutions(limit int) ([]Resolution, error) {
	q := `SELECT ` + resolutionColumns + ` FROM resolutions ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resolutions: %w", err)
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		r, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetResolution returns one logged resolution by id.
func (s *Store) GetResolution(id string) (Resolution, error) {
	row := s.db.QueryRow(`SELECT `+resolutionColumns+` FROM resolutions WHERE id = ?`, id)
	r, err := scanResolution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Resolution{}, fmt.Errorf("resolution %s: %w", id, ErrNotFound)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResolution(sc scanner) (Resolution, error) {
	var r Resolution
	var status, body, created string
	if err := sc.Scan(&r.ID, &r.Requirement, &r.Chosen, &status, &r.CatalogVersion, &r.CatalogDigest, &body, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("failed to scan resolution row: %w", err)
	}
	r.Status = resolver.Status(status)
	r.CreatedAt = parseTime(created)

	var rec resolver.Recommendation
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return r, fmt.Errorf("resolution %s has corrupt payload: %w", r.ID, err)
	}
	r.Recommendation = &rec
	return r, nil
}
