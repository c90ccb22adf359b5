package flight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gis-primer/pkg/catalog"
	"gis-primer/pkg/geom"
	"gis-primer/pkg/vector"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const testCitiesJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.4194, 37.7749]}, "properties": {"name": "San Francisco"}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.2712, 37.8044]}, "properties": {"name": "Oakland"}}
	]
}`

func startTestServer(t *testing.T, cat *catalog.Catalog) string {
	t.Helper()

	server := flight.NewServerWithMiddleware(nil, grpc.Creds(insecure.NewCredentials()))
	server.RegisterFlightService(NewGISFlightServer(cat))

	require.NoError(t, server.Init("127.0.0.1:0"))
	addr := server.Addr().String()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("Server panicked: %v\n", r)
			}
		}()
		if err := server.Serve(); err != nil {
			fmt.Printf("Server Serve failed: %v\n", err)
		}
	}()
	t.Cleanup(server.Shutdown)

	time.Sleep(100 * time.Millisecond)
	return addr
}

func TestDoGet(t *testing.T) {
	ctx := context.Background()

	dataDir := t.TempDir()
	geojsonPath := filepath.Join(dataDir, "cities.geojson")
	require.NoError(t, os.WriteFile(geojsonPath, []byte(testCitiesJSON), 0644))

	cat, err := catalog.Open(filepath.Join(dataDir, "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	require.NoError(t, cat.Register(ctx, catalog.Dataset{
		Name: "cities", Path: geojsonPath, Driver: "geojson",
		CRS: "EPSG:4326", GeometryType: "POINT", FeatureCount: 2,
	}))

	addr := startTestServer(t, cat)

	client, err := flight.NewClientWithMiddleware(addr, nil, nil, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer client.Close()

	stream, err := client.DoGet(ctx, &flight.Ticket{Ticket: []byte("cities")})
	require.NoError(t, err)

	reader, err := flight.NewRecordReader(stream)
	require.NoError(t, err)
	defer reader.Release()

	var rows int64
	var schema *arrow.Schema
	for reader.Next() {
		rec := reader.RecordBatch()
		rows += rec.NumRows()
		schema = rec.Schema()
	}
	require.NoError(t, reader.Err())

	assert.Equal(t, int64(2), rows)
	_, found := schema.FieldsByName(geom.GeometryColumn)
	assert.True(t, found)
}

func TestDoGet_UnknownDataset(t *testing.T) {
	ctx := context.Background()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	addr := startTestServer(t, cat)

	client, err := flight.NewClientWithMiddleware(addr, nil, nil, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer client.Close()

	stream, err := client.DoGet(ctx, &flight.Ticket{Ticket: []byte("nope")})
	require.NoError(t, err)

	_, err = stream.Recv()
	require.Error(t, err)
}

func TestDoExchange_Reproject(t *testing.T) {
	ctx := context.Background()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	addr := startTestServer(t, cat)

	client, err := flight.NewClientWithMiddleware(addr, nil, nil, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer client.Close()

	// Prepare data to send
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: geom.GeometryColumn, Type: arrow.BinaryTypes.String},
	}, nil)

	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	builder.Field(0).(*array.StringBuilder).Append("San Francisco")
	builder.Field(1).(*array.StringBuilder).Append(`{"type":"Point","coordinates":[-122.4194,37.7749]}`)

	rec := builder.NewRecordBatch()
	defer rec.Release()

	stream, err := client.DoExchange(ctx)
	require.NoError(t, err)

	// Send operation metadata in first message
	err = stream.Send(&flight.FlightData{
		AppMetadata: []byte(`{"operation": "reproject", "source_crs": "EPSG:4326", "crs": "EPSG:3857"}`),
	})
	require.NoError(t, err)

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(schema))
	require.NoError(t, writer.Write(rec))
	require.NoError(t, writer.Close())
	require.NoError(t, stream.CloseSend())

	reader, err := flight.NewRecordReader(stream)
	require.NoError(t, err)
	defer reader.Release()

	var results []arrow.RecordBatch
	for reader.Next() {
		res := reader.RecordBatch()
		res.Retain()
		results = append(results, res)
	}
	require.NoError(t, reader.Err())
	require.Len(t, results, 1)
	defer func() {
		for _, r := range results {
			r.Release()
		}
	}()

	assert.Equal(t, int64(1), results[0].NumRows())

	layer, err := vector.NewLayerFromRecords("result", results, "EPSG:3857")
	require.NoError(t, err)

	geoms, err := layer.GeometryStrings()
	require.NoError(t, err)
	require.Len(t, geoms, 1)
	// Web Mercator coordinates are in the millions of meters
	assert.True(t, strings.Contains(geoms[0], "-1362"), "geometry not reprojected: %s", geoms[0])
}

func TestDoExchange_Reproject_BadTargetCRS(t *testing.T) {
	ctx := context.Background()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	addr := startTestServer(t, cat)

	client, err := flight.NewClientWithMiddleware(addr, nil, nil, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer client.Close()

	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: geom.GeometryColumn, Type: arrow.BinaryTypes.String},
	}, nil)

	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	builder.Field(0).(*array.StringBuilder).Append("San Francisco")
	builder.Field(1).(*array.StringBuilder).Append(`{"type":"Point","coordinates":[-122.4194,37.7749]}`)

	rec := builder.NewRecordBatch()
	defer rec.Release()

	stream, err := client.DoExchange(ctx)
	require.NoError(t, err)

	// Batches get buffered server-side before the transform rejects
	// the unresolvable EPSG code; the stream must fail cleanly.
	err = stream.Send(&flight.FlightData{
		AppMetadata: []byte(`{"operation": "reproject", "source_crs": "EPSG:4326", "crs": "EPSG:999999"}`),
	})
	require.NoError(t, err)

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(schema))
	require.NoError(t, writer.Write(rec))
	require.NoError(t, writer.Close())
	require.NoError(t, stream.CloseSend())

	for {
		_, err = stream.Recv()
		if err != nil {
			break
		}
	}
	require.Error(t, err)
	// A clean server close reads as io.EOF; the bad CRS must surface
	// as a real stream error instead.
	require.NotErrorIs(t, err, io.EOF)
	assert.NotContains(t, err.Error(), "panic")
}

func TestDoExchange_UnknownOperation(t *testing.T) {
	ctx := context.Background()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	addr := startTestServer(t, cat)

	client, err := flight.NewClientWithMiddleware(addr, nil, nil, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer client.Close()

	stream, err := client.DoExchange(ctx)
	require.NoError(t, err)

	err = stream.Send(&flight.FlightData{AppMetadata: []byte(`{"operation": "teleport"}`)})
	require.NoError(t, err)
	require.NoError(t, stream.CloseSend())

	_, err = stream.Recv()
	require.Error(t, err)
}
