package vector

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/apache/arrow-go/v18/arrow"
)

// WriteParquet snapshots the layer's record batches into a parquet file.
// The geometry column is stored as GeoJSON text, so the snapshot round
// trips through ReadParquet without a spatial engine.
func (l *Layer) WriteParquet(path string) error {
	if len(l.records) == 0 {
		return fmt.Errorf("records are empty")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer f.Close()

	schema := l.records[0].Schema()
	writer, err := pqarrow.NewFileWriter(
		schema,
		f,
		parquet.NewWriterProperties(
			parquet.WithCompression(compress.Codecs.Snappy)),
		pqarrow.DefaultWriterProps(),
	)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %v", err)
	}
	defer writer.Close()

	for _, rec := range l.records {
		if err := writer.WriteBuffered(rec); err != nil {
			return fmt.Errorf("failed to write record batch: %v", err)
		}
	}

	return nil
}

// ReadParquet loads a layer snapshot written by WriteParquet. Parquet does
// not carry CRS metadata, so the caller supplies the CRS recorded alongside
// the snapshot (the catalog keeps it).
func ReadParquet(ctx context.Context, path, name, crs string) (*Layer, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file %s: %v", path, err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{
		BatchSize: 10000,
	}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader for %s: %v", path, err)
	}

	recordReader, err := reader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get record reader for %s: %v", path, err)
	}
	defer recordReader.Release()

	var recs []arrow.RecordBatch
	for recordReader.Next() {
		rec := recordReader.RecordBatch()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := recordReader.Err(); err != nil {
		return nil, fmt.Errorf("error reading records from %s: %v", path, err)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("no records in %s", path)
	}

	gtype, err := sniffGeometryType(recs)
	if err != nil {
		return nil, err
	}

	return NewLayer(name, recs, gtype, crs)
}
