package spatial

import (
	"context"
	"database/sql"
	"fmt"

	"gis-primer/pkg/geom"
	"gis-primer/pkg/vector"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/duckdb/duckdb-go/v2"
)

// session wires two layers into one DuckDB connection as the views
// "left_view" and "right_view", with the spatial extension loaded, and runs
// a single query against them.
func session(ctx context.Context, left, right *vector.Layer, query string) ([]arrow.RecordBatch, error) {
	if left.GetCRS() != right.GetCRS() {
		return nil, fmt.Errorf("layers have different CRS (%s vs %s); reproject one first",
			left.GetCRS(), right.GetCRS())
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

	leftRecs := left.GetRecords()
	rightRecs := right.GetRecords()
	if len(leftRecs) == 0 || len(rightRecs) == 0 {
		return nil, fmt.Errorf("both layers must have records")
	}

	leftReader, err := array.NewRecordReader(leftRecs[0].Schema(), leftRecs)
	if err != nil {
		return nil, err
	}
	defer leftReader.Release()

	releaseLeft, err := ar.RegisterView(leftReader, "left_view")
	if err != nil {
		return nil, fmt.Errorf("failed to register left view: %w", err)
	}
	defer releaseLeft()

	rightReader, err := array.NewRecordReader(rightRecs[0].Schema(), rightRecs)
	if err != nil {
		return nil, err
	}
	defer rightReader.Release()

	releaseRight, err := ar.RegisterView(rightReader, "right_view")
	if err != nil {
		return nil, fmt.Errorf("failed to register right view: %w", err)
	}
	defer releaseRight()

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

	if len(recs) == 0 {
		return nil, fmt.Errorf("join produced no records")
	}
	return recs, nil
}

// WithinJoin attaches the attributes of the containing polygon to each
// point (ST_Contains). Points falling outside every polygon are dropped.
// Both layers must share a CRS.
func WithinJoin(ctx context.Context, points, polygons *vector.Layer) (*vector.Layer, error) {
	query := fmt.Sprintf(`
	select p.*, r.* exclude(%[1]s)
	from left_view p
	join right_view r
	on ST_Contains(ST_GeomFromGeoJSON(r.%[1]s), ST_GeomFromGeoJSON(p.%[1]s))
	`, geom.GeometryColumn)

	recs, err := session(ctx, points, polygons, query)
	if err != nil {
		return nil, fmt.Errorf("within join failed: %w", err)
	}

	return vector.NewLayer(points.Name(), recs, points.GetGeometryType(), points.GetCRS())
}

// CountWithin counts the points inside each polygon and returns the polygon
// layer with a point_count column. Polygons containing no points count
// zero. This is the aggregation behind a choropleth of point density.
func CountWithin(ctx context.Context, points, polygons *vector.Layer) (*vector.Layer, error) {
	query := fmt.Sprintf(`
	select r.*, count(p.%[1]s)::BIGINT as point_count
	from right_view r
	left join left_view p
	on ST_Contains(ST_GeomFromGeoJSON(r.%[1]s), ST_GeomFromGeoJSON(p.%[1]s))
	group by all
	`, geom.GeometryColumn)

	recs, err := session(ctx, points, polygons, query)
	if err != nil {
		return nil, fmt.Errorf("count within failed: %w", err)
	}

	return vector.NewLayer(polygons.Name(), recs, polygons.GetGeometryType(), polygons.GetCRS())
}

// DistanceToNearest adds a nearest_dist column to the left layer holding
// the distance to the closest feature of the right layer, in CRS units.
// Distances in degrees rarely mean what a beginner expects; reproject to a
// metric CRS first.
func DistanceToNearest(ctx context.Context, layer, targets *vector.Layer) (*vector.Layer, error) {
	query := fmt.Sprintf(`
	select p.*, min(ST_Distance(ST_GeomFromGeoJSON(p.%[1]s), ST_GeomFromGeoJSON(t.%[1]s))) as nearest_dist
	from left_view p
	cross join right_view t
	group by all
	`, geom.GeometryColumn)

	recs, err := session(ctx, layer, targets, query)
	if err != nil {
		return nil, fmt.Errorf("nearest distance failed: %w", err)
	}

	return vector.NewLayer(layer.Name(), recs, layer.GetGeometryType(), layer.GetCRS())
}
