package vector

import (
	"context"
	"database/sql"
	"fmt"

	"gis-primer/pkg/geom"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/duckdb/duckdb-go/v2"
)

// runSQL exposes the layer's record batches as a DuckDB view named
// "records", runs the query with the spatial extension loaded, and returns
// the result batches. Every SQL-backed layer operation goes through here.
func (l *Layer) runSQL(ctx context.Context, query string) ([]arrow.RecordBatch, error) {
	if len(l.records) == 0 {
		return nil, fmt.Errorf("layer has no records")
	}

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

	rr, err := array.NewRecordReader(l.records[0].Schema(), l.records)
	if err != nil {
		return nil, err
	}
	defer rr.Release()

	release, err := ar.RegisterView(rr, "records")
	if err != nil {
		return nil, fmt.Errorf("failed to register records view: %w", err)
	}
	defer release()

	db := sql.OpenDB(c)
	defer db.Close()

	if _, err := db.ExecContext(ctx, "INSTALL spatial; LOAD spatial;"); err != nil {
		return nil, fmt.Errorf("failed to load spatial extension: %w", err)
	}

	reader, err := ar.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer reader.Release()

	var recs []arrow.RecordBatch
	for reader.Next() {
		rec := reader.RecordBatch()
		rec.Retain()
		recs = append(recs, rec)
	}

	return recs, nil
}

// Filter returns a new Layer containing the features matching a SQL
// predicate over the attribute columns, e.g. "POP_EST > 1000000". Spatial
// functions work too: the geometry column holds GeoJSON text, so predicates
// wrap it with ST_GeomFromGeoJSON.
func (l *Layer) Filter(ctx context.Context, where string) (*Layer, error) {
	recs, err := l.runSQL(ctx, fmt.Sprintf(`select * from records where %s`, where))
	if err != nil {
		return nil, fmt.Errorf("filter failed: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("no features match %q", where)
	}

	return NewLayer(l.name, recs, l.gtype, l.crs)
}

// Select returns a new Layer keeping only the named attribute columns. The
// geometry column is always kept.
func (l *Layer) Select(ctx context.Context, cols ...string) (*Layer, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns given")
	}

	quoted := make([]string, 0, len(cols)+1)
	quoted = append(quoted, fmt.Sprintf("%q", geom.GeometryColumn))
	for _, c := range cols {
		if c == geom.GeometryColumn {
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%q", c))
	}

	query := "select "
	for i, q := range quoted {
		if i > 0 {
			query += ", "
		}
		query += q
	}
	query += " from records"

	recs, err := l.runSQL(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select failed: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("select produced no records")
	}

	return NewLayer(l.name, recs, l.gtype, l.crs)
}
