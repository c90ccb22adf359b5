package vector

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"gis-primer/pkg/geom"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/duckdb/duckdb-go/v2"
)

// ReadFile loads a vector dataset (shapefile, zipped shapefile archive,
// GeoJSON, or anything else the GDAL drivers behind ST_Read understand)
// into a Layer. The source geometry is surfaced as a GeoJSON text column;
// everything else rides along as attribute columns.
//
// The file's own CRS is used when the driver reports one, EPSG:4326
// otherwise.
func ReadFile(ctx context.Context, path string) (*Layer, error) {
	c, err := duckdb.NewConnector("", nil)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	conn, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ar, err := duckdb.NewArrowFromConn(conn)
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	defer db.Close()

	if _, err := db.ExecContext(ctx, "INSTALL spatial; LOAD spatial;"); err != nil {
		return nil, fmt.Errorf("failed to load spatial extension: %w", err)
	}

	src := sourcePath(path)

	query := fmt.Sprintf(
		`select * exclude(geom), ST_AsGeoJSON(geom) as %s from ST_Read('%s')`,
		geom.GeometryColumn, src,
	)

	reader, err := ar.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer reader.Release()

	var recs []arrow.RecordBatch
	for reader.Next() {
		rec := reader.RecordBatch()
		rec.Retain()
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("no features read from %s", path)
	}

	gtype, err := sniffGeometryType(recs)
	if err != nil {
		return nil, err
	}

	layerCRS := readSourceCRS(ctx, db, src)

	return NewLayer(layerName(path), recs, gtype, layerCRS)
}

// readSourceCRS asks the driver metadata for the source's authority code.
// Sources without CRS metadata (plain GeoJSON among them) fall back to
// EPSG:4326.
func readSourceCRS(ctx context.Context, db *sql.DB, src string) string {
	row := db.QueryRowContext(ctx, fmt.Sprintf(
		`select layers[1].geometry_fields[1].crs.auth_name || ':' || layers[1].geometry_fields[1].crs.auth_code
		 from st_read_meta('%s')`, src,
	))

	var code sql.NullString
	if err := row.Scan(&code); err != nil || !code.Valid || code.String == ":" {
		return geom.WGS84
	}
	return code.String
}

// sourcePath maps a plain path to the GDAL virtual filesystem form where
// needed: zipped shapefile archives are read through /vsizip/.
func sourcePath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return "/vsizip/" + path
	}
	return path
}

// layerName derives a layer name from the source file name.
func layerName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
