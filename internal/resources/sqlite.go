package resources

import (
	"database/sql"
	"fmt"

	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"

	"github.com/harborlabs/vis/api"
	"github.com/harborlabs/vis/internal/vis"
)

// DBSource reads packs from one sqlite file. Each row holds a whole pack as
// a JSON document, keyed by its canonical version string. The source holds
// one handle for its lifetime; callers close it when done.
type DBSource struct {
	path string
	db   *sql.DB
}

func NewDBSource(path string) (*DBSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &DBSource{path: path, db: db}, nil
}

// Close releases the underlying handle.
func (s *DBSource) Close() error { return s.db.Close() }

// GmodPack reads the node/relation table for one version.
func (s *DBSource) GmodPack(v vis.Version) (*api.GmodPack, error) {
	var pack api.GmodPack
	if err := s.readRecord("gmod_packs", v, &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// ConversionPack reads the conversion table into one target version.
func (s *DBSource) ConversionPack(target vis.Version) (*api.ConversionPack, error) {
	var pack api.ConversionPack
	if err := s.readRecord("conversion_packs", target, &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// Versions lists the versions with a gmod pack in the file, in table order.
func (s *DBSource) Versions() ([]vis.Version, error) {
	rows, err := s.db.Query("SELECT version FROM gmod_packs")
	if err != nil {
		return nil, fmt.Errorf("query gmod_packs: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var versions []vis.Version
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan version row: %w", err)
		}
		v, err := vis.ParseVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", s.path, err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *DBSource) readRecord(table string, v vis.Version, out any) error {
	var raw string
	query := fmt.Sprintf("SELECT record FROM %s WHERE version = ?", table)
	if err := s.db.QueryRow(query, v.String()).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s for %s: %w", table, v, ErrPackNotFound)
		}
		return fmt.Errorf("query %s for %s: %w", table, v, err)
	}
	if err := oj.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("parse %s record for %s: %w", table, v, err)
	}
	return nil
}

// WriteDB creates (or replaces the contents of) a sqlite pack file from the
// given packs. Used by packaging tooling and tests.
func WriteDB(path string, gmods []*api.GmodPack, conversions []*api.ConversionPack) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS gmod_packs (
			version TEXT PRIMARY KEY,
			record TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS conversion_packs (
			version TEXT PRIMARY KEY,
			record TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create pack tables: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin pack write: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op if committed

	for _, pack := range gmods {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO gmod_packs (version, record) VALUES (?, ?)",
			pack.VisVersion, oj.JSON(pack),
		); err != nil {
			return fmt.Errorf("insert gmod pack %s: %w", pack.VisVersion, err)
		}
	}
	for _, pack := range conversions {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO conversion_packs (version, record) VALUES (?, ?)",
			pack.VisVersion, oj.JSON(pack),
		); err != nil {
			return fmt.Errorf("insert conversion pack %s: %w", pack.VisVersion, err)
		}
	}
	return tx.Commit()
}
