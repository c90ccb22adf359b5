package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"gis-primer/pkg/catalog"
	"gis-primer/pkg/crs"
	"gis-primer/pkg/render"
	"gis-primer/pkg/vector"
	"io"
	"net/http"
)

// APIHandler handles REST API requests for the dataset catalog and
// reprojection endpoints
type APIHandler struct {
	cat *catalog.Catalog
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(cat *catalog.Catalog) *APIHandler {
	return &APIHandler{
		cat: cat,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListDatasetsHandler handles GET requests for the dataset catalog
func (h *APIHandler) ListDatasetsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "only GET method is allowed")
		return
	}

	datasets, err := h.cat.List(r.Context())
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list datasets: %v", err))
		return
	}
	if datasets == nil {
		datasets = []catalog.Dataset{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(datasets)
}

// ReprojectHandler handles POST requests to reproject a GeoJSON
// FeatureCollection into the CRS named by the crs query parameter
func (h *APIHandler) ReprojectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "only POST method is allowed")
		return
	}

	// Read request body
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err))
		return
	}
	defer r.Body.Close()

	target := r.URL.Query().Get("crs")
	if target == "" {
		h.sendError(w, http.StatusBadRequest, "missing required crs query parameter")
		return
	}
	target = crs.Normalize(target)

	// Source CRS from query parameter, default to EPSG:4326
	source := r.URL.Query().Get("source_crs")
	if source == "" {
		source = "EPSG:4326"
	}
	source = crs.Normalize(source)

	// Validate GeoJSON structure
	if err := h.validateGeoJSON(body); err != nil {
		h.sendError(w, http.StatusBadRequest, fmt.Sprintf("invalid GeoJSON: %v", err))
		return
	}

	layer, err := vector.NewLayerFromGeoJSON("request", body, source)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse GeoJSON: %v", err))
		return
	}
	defer layer.Release()

	projected, err := crs.Transform(r.Context(), layer, target)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to transform projection: %v", err))
		return
	}
	defer projected.Release()

	geojsonBytes, err := projected.ToGeoJSON()
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to serialize result to GeoJSON: %v", err))
		return
	}

	// Send response
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(geojsonBytes)
}

// PreviewHandler handles GET requests for an interactive HTML preview of a
// cataloged point dataset, colored by the given attribute
func (h *APIHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "only GET method is allowed")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		h.sendError(w, http.StatusBadRequest, "missing required name query parameter")
		return
	}
	attribute := r.URL.Query().Get("attribute")
	if attribute == "" {
		h.sendError(w, http.StatusBadRequest, "missing required attribute query parameter")
		return
	}

	ds, err := h.cat.Get(r.Context(), name)
	if err != nil {
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("failed to resolve dataset %s: %v", name, err))
		return
	}

	layer, err := catalog.Load(r.Context(), ds)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load dataset %s: %v", name, err))
		return
	}
	defer layer.Release()

	// Render to a buffer first so a failure can still produce an error status
	var buf bytes.Buffer
	if err := render.PointMap(layer, render.DefaultStyle(attribute), &buf); err != nil {
		h.sendError(w, http.StatusUnprocessableEntity, fmt.Sprintf("failed to render preview: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// validateGeoJSON validates the basic GeoJSON structure
func (h *APIHandler) validateGeoJSON(data []byte) error {
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}

	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	if fc.Type != "FeatureCollection" {
		return fmt.Errorf("expected FeatureCollection, got %s", fc.Type)
	}

	if len(fc.Features) == 0 {
		return fmt.Errorf("no features in FeatureCollection")
	}

	for i, f := range fc.Features {
		if f.Type != "Feature" {
			return fmt.Errorf("feature %d: expected Feature type, got %s", i, f.Type)
		}
		if f.Geometry.Type == "" {
			return fmt.Errorf("feature %d: missing geometry type", i)
		}
		if len(f.Geometry.Coordinates) == 0 {
			return fmt.Errorf("feature %d: missing coordinates", i)
		}
	}

	return nil
}

// sendError sends an error response as JSON
func (h *APIHandler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
