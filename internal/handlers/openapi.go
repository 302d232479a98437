package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// OpenAPIHandler serves the embedded OpenAPI document as YAML and JSON
type OpenAPIHandler struct {
	yamlDoc []byte
	jsonDoc []byte
}

// NewOpenAPIHandler parses doc once so malformed documents fail at startup
func NewOpenAPIHandler(doc []byte) (*OpenAPIHandler, error) {
	var parsed map[string]any
	if err := yaml.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	jsonDoc, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document as JSON: %w", err)
	}
	return &OpenAPIHandler{yamlDoc: doc, jsonDoc: jsonDoc}, nil
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods(http.MethodGet)
}

// ServeYAML serves the OpenAPI document in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(h.yamlDoc) // Client disconnects are not actionable
}

// ServeJSON serves the OpenAPI document in JSON format
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc) // Client disconnects are not actionable
}
