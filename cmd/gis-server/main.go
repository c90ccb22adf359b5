package main

import (
	"gis-primer/pkg/api"
	"gis-primer/pkg/catalog"
	"gis-primer/pkg/flight"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	catalogPath := os.Getenv("GIS_CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "catalog.db"
	}

	cat, err := catalog.Open(catalogPath)
	if err != nil {
		log.Fatal("Failed to open dataset catalog:", err)
	}
	defer cat.Close()

	// Start REST API server in goroutine
	restPort := envPort("GIS_REST_PORT", 8080)
	apiServer := api.NewAPIServer(cat, restPort)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("REST API server error: %v", err)
		}
	}()

	// Start Flight server
	flightPort := envPort("GIS_FLIGHT_PORT", 50051)
	if err := flight.StartFlightServer(cat, flightPort); err != nil {
		log.Fatal("Flight server failed:", err)
	}
}

func envPort(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	port, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return port
}
