package flight

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"gis-primer/pkg/catalog"
	"gis-primer/pkg/crs"
	"gis-primer/pkg/vector"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
)

// GISFlightServer serves cataloged datasets over Arrow Flight. DoGet streams
// a dataset by name, DoExchange runs an operation over a streamed layer.
type GISFlightServer struct {
	flight.BaseFlightServer
	cat *catalog.Catalog
}

func NewGISFlightServer(cat *catalog.Catalog) *GISFlightServer {
	return &GISFlightServer{
		cat: cat,
	}
}

// DoGet streams the record batches of the dataset named by the ticket.
func (s *GISFlightServer) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	name := string(ticket.GetTicket())
	if name == "" {
		return fmt.Errorf("empty ticket, expected a dataset name")
	}

	ds, err := s.cat.Get(stream.Context(), name)
	if err != nil {
		return fmt.Errorf("failed to resolve dataset %s: %v", name, err)
	}

	layer, err := catalog.Load(stream.Context(), ds)
	if err != nil {
		return fmt.Errorf("failed to load dataset %s: %v", name, err)
	}
	defer layer.Release()

	records := layer.GetRecords()
	if len(records) == 0 {
		return fmt.Errorf("dataset %s has no records", name)
	}

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(records[0].Schema()))
	defer writer.Close()

	for _, rec := range records {
		if err := writer.Write(rec); err != nil {
			return err
		}
	}

	return nil
}

func (s *GISFlightServer) DoExchange(stream flight.FlightService_DoExchangeServer) error {
	desc, err := stream.Recv()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	// Parse the operation and CRS pair from AppMetadata
	var operation string
	sourceCRS := "EPSG:4326" // Default CRS
	targetCRS := ""

	// Define a struct for the expected JSON metadata
	type Action struct {
		Operation string `json:"operation"`
		SourceCRS string `json:"source_crs"`
		CRS       string `json:"crs"`
	}

	var action Action
	// Try parsing as JSON first
	if len(desc.AppMetadata) > 0 {
		if err := json.Unmarshal(desc.AppMetadata, &action); err == nil && action.Operation != "" {
			operation = action.Operation
			if action.SourceCRS != "" {
				sourceCRS = action.SourceCRS
			}
			targetCRS = action.CRS
		} else {
			// Fallback: treat the metadata as a raw string (the operation name)
			operation = string(desc.AppMetadata)
		}
	} else if desc.FlightDescriptor != nil && len(desc.FlightDescriptor.Cmd) > 0 {
		// Try parsing from Descriptor.Cmd
		if err := json.Unmarshal(desc.FlightDescriptor.Cmd, &action); err == nil && action.Operation != "" {
			operation = action.Operation
			if action.SourceCRS != "" {
				sourceCRS = action.SourceCRS
			}
			targetCRS = action.CRS
		} else {
			operation = string(desc.FlightDescriptor.Cmd)
		}
	}

	log.Printf("DoExchange operation: %s, source: %s, target: %s", operation, sourceCRS, targetCRS)

	switch operation {
	case "reproject":
		if targetCRS == "" {
			return fmt.Errorf("reproject requires a crs field in the exchange metadata")
		}
		return s.handleReproject(stream, sourceCRS, targetCRS)
	default:
		return fmt.Errorf("unsupported operation: %s", operation)
	}
}

func (s *GISFlightServer) handleReproject(stream flight.FlightService_DoExchangeServer, sourceCRS, targetCRS string) error {
	ctx := stream.Context()

	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		return err
	}
	defer reader.Release()

	// Spool oversized streams to parquet instead of holding them in memory
	spool, err := NewParquetSpool()
	if err != nil {
		return fmt.Errorf("failed to create spool: %v", err)
	}
	defer spool.Cleanup()

	var records []arrow.RecordBatch
	var bufferedRows int64
	const maxBufferedRows = 1000 * 1000 // 1 million rows

	// Retained batches must be released on every exit path; the slice is
	// nilled once ownership moves to the spool or the layer.
	releaseRecords := func() {
		for _, r := range records {
			r.Release()
		}
		records = nil
	}
	defer releaseRecords()

	for reader.Next() {
		rec := reader.RecordBatch()
		rec.Retain()
		records = append(records, rec)
		bufferedRows += rec.NumRows()

		if bufferedRows >= maxBufferedRows {
			log.Printf("Buffered %d rows, spooling to parquet", bufferedRows)
			if err := spool.Add(records); err != nil {
				return err
			}
			releaseRecords()
			bufferedRows = 0
		}
	}
	if err := reader.Err(); err != nil {
		return err
	}

	var layer *vector.Layer
	if spool.HasBatches() {
		// Flush the tail and reload everything from the spool
		if len(records) > 0 {
			if err := spool.Add(records); err != nil {
				return err
			}
			releaseRecords()
		}

		layer, err = spool.Load(ctx, "exchange", sourceCRS)
		if err != nil {
			return fmt.Errorf("failed to load spooled records: %v", err)
		}
	} else {
		if len(records) == 0 {
			return fmt.Errorf("no records received")
		}

		layer, err = vector.NewLayerFromRecords("exchange", records, sourceCRS)
		if err != nil {
			return fmt.Errorf("failed to create layer from records: %v", err)
		}
		// The layer owns the batches now; its Release covers them
		records = nil
	}
	defer layer.Release()

	projected, err := crs.Transform(ctx, layer, targetCRS)
	if err != nil {
		return fmt.Errorf("failed to transform projection: %v", err)
	}
	defer projected.Release()

	result := projected.GetRecords()
	writer := flight.NewRecordWriter(stream, ipc.WithSchema(result[0].Schema()))
	defer writer.Close()

	for _, rec := range result {
		if err := writer.Write(rec); err != nil {
			return err
		}
	}

	return nil
}
