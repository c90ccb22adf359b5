// Package catalog keeps a small SQLite registry of the datasets a
// workspace has loaded, so servers and later sessions can find them again
// without re-reading the source files.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gis-primer/pkg/geom"
	"gis-primer/pkg/vector"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
	name          TEXT PRIMARY KEY,
	path          TEXT NOT NULL,
	driver        TEXT NOT NULL,
	crs           TEXT NOT NULL,
	geometry_type TEXT NOT NULL,
	feature_count INTEGER NOT NULL,
	bounds        TEXT,
	registered_at TIMESTAMP NOT NULL
);
`

// ErrNotFound is returned when a dataset name is not in the catalog.
var ErrNotFound = errors.New("dataset not found")

// Dataset is one catalog entry.
type Dataset struct {
	Name         string       `json:"name"`
	Path         string       `json:"path"`
	Driver       string       `json:"driver"`
	CRS          string       `json:"crs"`
	GeometryType string       `json:"geometry_type"`
	FeatureCount int          `json:"feature_count"`
	Bounds       *geom.Bounds `json:"bounds,omitempty"`
	RegisteredAt time.Time    `json:"registered_at"`
}

// Catalog wraps the SQLite store.
type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) a catalog database at path. ":memory:" works for
// throwaway catalogs.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %v", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %v", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Register inserts or replaces a dataset entry.
func (c *Catalog) Register(ctx context.Context, ds Dataset) error {
	if ds.Name == "" {
		return fmt.Errorf("dataset has no name")
	}
	if ds.RegisteredAt.IsZero() {
		ds.RegisteredAt = time.Now().UTC()
	}

	boundsJSON, err := boundsToNull(ds.Bounds)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO datasets (name, path, driver, crs, geometry_type, feature_count, bounds, registered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			path = excluded.path,
			driver = excluded.driver,
			crs = excluded.crs,
			geometry_type = excluded.geometry_type,
			feature_count = excluded.feature_count,
			bounds = excluded.bounds,
			registered_at = excluded.registered_at`,
		ds.Name, ds.Path, ds.Driver, ds.CRS, ds.GeometryType, ds.FeatureCount, boundsJSON, ds.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to register dataset %s: %v", ds.Name, err)
	}
	return nil
}

// RegisterLayer catalogs a loaded layer under its own name, recording the
// source path it came from.
func (c *Catalog) RegisterLayer(ctx context.Context, layer *vector.Layer, path, driver string) error {
	ds := Dataset{
		Name:         layer.Name(),
		Path:         path,
		Driver:       driver,
		CRS:          layer.GetCRS(),
		GeometryType: string(layer.GetGeometryType()),
		FeatureCount: layer.FeatureCount(),
	}

	if b, err := layer.Bounds(); err == nil {
		ds.Bounds = &b
	}

	return c.Register(ctx, ds)
}

// Get looks up one dataset by name.
func (c *Catalog) Get(ctx context.Context, name string) (Dataset, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT name, path, driver, crs, geometry_type, feature_count, bounds, registered_at
		FROM datasets WHERE name = ?`, name)

	ds, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Dataset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return ds, err
}

// List returns all datasets, newest first.
func (c *Catalog) List(ctx context.Context) ([]Dataset, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT name, path, driver, crs, geometry_type, feature_count, bounds, registered_at
		FROM datasets ORDER BY registered_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %v", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// Stats summarizes the catalog.
type CatalogStats struct {
	Datasets      int            `json:"datasets"`
	TotalFeatures int            `json:"total_features"`
	ByDriver      map[string]int `json:"by_driver"`
}

// Stats reports dataset and feature counts, broken down by driver.
func (c *Catalog) Stats(ctx context.Context) (CatalogStats, error) {
	stats := CatalogStats{ByDriver: make(map[string]int)}

	rows, err := c.db.QueryContext(ctx, `
		SELECT driver, COUNT(*), COALESCE(SUM(feature_count), 0)
		FROM datasets GROUP BY driver`)
	if err != nil {
		return stats, fmt.Errorf("failed to compute catalog stats: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var driver string
		var count, features int
		if err := rows.Scan(&driver, &count, &features); err != nil {
			return stats, err
		}
		stats.ByDriver[driver] = count
		stats.Datasets += count
		stats.TotalFeatures += features
	}
	return stats, rows.Err()
}

// Load reads a cataloged dataset back from its source path. Parquet
// snapshots carry no CRS, so the catalog entry supplies it; everything else
// goes back through the spatial drivers.
func Load(ctx context.Context, ds Dataset) (*vector.Layer, error) {
	if ds.Driver == "parquet" {
		return vector.ReadParquet(ctx, ds.Path, ds.Name, ds.CRS)
	}
	return vector.ReadFile(ctx, ds.Path)
}

// Remove deletes a dataset entry.
func (c *Catalog) Remove(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to remove dataset %s: %v", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDataset(row scannable) (Dataset, error) {
	var ds Dataset
	var boundsJSON sql.NullString

	err := row.Scan(&ds.Name, &ds.Path, &ds.Driver, &ds.CRS, &ds.GeometryType,
		&ds.FeatureCount, &boundsJSON, &ds.RegisteredAt)
	if err != nil {
		return Dataset{}, err
	}

	if boundsJSON.Valid && boundsJSON.String != "" {
		var b geom.Bounds
		if err := json.Unmarshal([]byte(boundsJSON.String), &b); err != nil {
			return Dataset{}, fmt.Errorf("corrupt bounds for %s: %v", ds.Name, err)
		}
		ds.Bounds = &b
	}

	return ds, nil
}

func boundsToNull(b *geom.Bounds) (sql.NullString, error) {
	if b == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
