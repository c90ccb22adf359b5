package flight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gis-primer/pkg/vector"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParquetSpool buffers record batches on disk when a Flight stream is too
// large to hold in memory. Each Add writes one parquet file; Load reads the
// whole spool back as a single layer.
type ParquetSpool struct {
	tempDir   string
	files     []string
	schema    *arrow.Schema
	fileIndex int
}

func NewParquetSpool() (*ParquetSpool, error) {
	tempDir, err := os.MkdirTemp("", "gis_flight_spool_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary directory: %v", err)
	}

	return &ParquetSpool{tempDir: tempDir}, nil
}

// HasBatches reports whether anything has been spooled.
func (s *ParquetSpool) HasBatches() bool {
	return len(s.files) > 0
}

// Add writes a group of record batches to a new parquet file in the spool.
func (s *ParquetSpool) Add(records []arrow.RecordBatch) error {
	if len(records) == 0 {
		return nil
	}
	if s.schema == nil {
		s.schema = records[0].Schema()
	}

	s.fileIndex++
	path := filepath.Join(s.tempDir, fmt.Sprintf("spool_%d.parquet", s.fileIndex))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create spool file: %v", err)
	}
	defer f.Close()

	writer, err := pqarrow.NewFileWriter(
		s.schema,
		f,
		parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy)),
		pqarrow.DefaultWriterProps(),
	)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %v", err)
	}
	defer writer.Close()

	for _, rec := range records {
		if err := writer.WriteBuffered(rec); err != nil {
			return fmt.Errorf("failed to write record batch: %v", err)
		}
	}

	s.files = append(s.files, path)
	return nil
}

// Load reads every spooled file back and wraps the batches as one layer.
func (s *ParquetSpool) Load(ctx context.Context, name, crs string) (*vector.Layer, error) {
	if len(s.files) == 0 {
		return nil, fmt.Errorf("spool is empty")
	}

	var recs []arrow.RecordBatch
	for _, path := range s.files {
		batch, err := readSpoolFile(ctx, path)
		if err != nil {
			for _, r := range recs {
				r.Release()
			}
			return nil, err
		}
		recs = append(recs, batch...)
	}

	return vector.NewLayerFromRecords(name, recs, crs)
}

func readSpoolFile(ctx context.Context, path string) ([]arrow.RecordBatch, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open spool file %s: %v", path, err)
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
		for _, r := range recs {
			r.Release()
		}
		return nil, fmt.Errorf("error reading records from %s: %v", path, err)
	}

	return recs, nil
}

// Cleanup removes the temporary directory and all files
func (s *ParquetSpool) Cleanup() error {
	if s.tempDir != "" {
		return os.RemoveAll(s.tempDir)
	}
	return nil
}
