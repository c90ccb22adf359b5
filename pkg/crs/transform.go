package crs

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"text/template"

	"gis-primer/pkg/geom"
	"gis-primer/pkg/vector"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/duckdb/duckdb-go/v2"
)

// Transform reprojects a geometry object to a target CRS. The work is done
// by the DuckDB spatial extension: the object's record batches are exposed
// as a view and the geometry column is rewritten with ST_Transform. The
// engine owns the EPSG database, so an identifier it cannot resolve fails
// here with its error.
func Transform(ctx context.Context, obj geom.Geometry, target string) (*vector.Layer, error) {
	source := Normalize(obj.GetCRS())
	target = Normalize(target)

	if source == "" {
		return nil, fmt.Errorf("source geometry has no CRS")
	}
	if target == "" {
		return nil, fmt.Errorf("no target CRS given")
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

	records := obj.GetRecords()
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to transform")
	}

	rr, err := array.NewRecordReader(records[0].Schema(), records)
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

	query := `
	select
	* exclude({{.GeomCol}}),
	ST_AsGeoJSON(ST_Transform(ST_GeomFromGeoJSON({{.GeomCol}}), '{{.SourceCRS}}', '{{.TargetCRS}}', always_xy := true)) as {{.GeomCol}}
	from records
	`

	data := map[string]string{
		"GeomCol":   geom.GeometryColumn,
		"SourceCRS": source,
		"TargetCRS": target,
	}

	tmpl, err := template.New("transform").Parse(query)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	reader, err := ar.QueryContext(ctx, buf.String())
	if err != nil {
		return nil, fmt.Errorf("reprojection to %s failed: %w", target, err)
	}
	defer reader.Release()

	var recs []arrow.RecordBatch
	for reader.Next() {
		rec := reader.RecordBatch()
		rec.Retain()
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("reprojection to %s produced no records", target)
	}

	name := ""
	if v, ok := obj.GetAttributes()["name"].(string); ok {
		name = v
	}

	return vector.NewLayer(name, recs, obj.GetGeometryType(), target)
}
