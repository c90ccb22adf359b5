package api

import (
	"fmt"
	"gis-primer/pkg/catalog"
	"log"
	"net/http"
)

// APIServer represents the REST API server
type APIServer struct {
	cat    *catalog.Catalog
	port   int
	server *http.Server
}

// NewAPIServer creates a new API server instance
func NewAPIServer(cat *catalog.Catalog, port int) *APIServer {
	return &APIServer{
		cat:  cat,
		port: port,
	}
}

// Start starts the REST API server
func (s *APIServer) Start() error {
	handler := NewAPIHandler(s.cat)

	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("/api/v1/datasets", handler.ListDatasetsHandler)
	mux.HandleFunc("/api/v1/reproject", handler.ReprojectHandler)
	mux.HandleFunc("/api/v1/preview", handler.PreviewHandler)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	log.Printf("Starting REST API server on port %d", s.port)
	return s.server.ListenAndServe()
}

// Stop stops the REST API server
func (s *APIServer) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
