package flight

import (
	"fmt"
	"gis-primer/pkg/catalog"
	"log"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc"
)

func NewFlightServer(cat *catalog.Catalog) flight.Server {
	server := flight.NewServerWithMiddleware(nil)
	gisServer := NewGISFlightServer(cat)
	server.RegisterFlightService(gisServer)
	return server
}

func StartFlightServer(cat *catalog.Catalog, port int) error {
	addr := fmt.Sprintf(":%d", port)
	server := NewFlightServer(cat)
	log.Printf("Starting GIS Flight server on %s...\n", addr)
	if err := server.Init(addr); err != nil {
		return err
	}
	return server.Serve()
}

// StartFlightServerWithGRPC allows passing custom gRPC options
func StartFlightServerWithGRPC(cat *catalog.Catalog, port int, opts ...grpc.ServerOption) error {
	addr := fmt.Sprintf(":%d", port)
	server := flight.NewServerWithMiddleware(nil, opts...)
	gisServer := NewGISFlightServer(cat)
	server.RegisterFlightService(gisServer)

	log.Printf("Starting GIS Flight server on %s...\n", addr)
	if err := server.Init(addr); err != nil {
		return err
	}
	return server.Serve()
}
