package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/smart-decide/api"
	"github.com/gorilla/mux"
)

func TestOpenAPIHandler(t *testing.T) {
	t.Parallel()

	h, err := NewOpenAPIHandler(api.OpenAPIYAML)
	if err != nil {
		t.Fatalf("NewOpenAPIHandler() error = %v", err)
	}
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	tests := []struct {
		path        string
		contentType string
	}{
		{path: "/api/v1/openapi.yaml", contentType: "application/x-yaml"},
		{path: "/api/v1/openapi.json", contentType: "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got := w.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Expected Content-Type %q, got %q", tt.contentType, got)
			}
			if tt.contentType == "application/json" {
				var doc map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
					t.Fatalf("Expected valid JSON, got error %v", err)
				}
				if _, ok := doc["paths"].(map[string]any); !ok {
					t.Error("Expected paths object in JSON document")
				}
			}
		})
	}
}

func TestNewOpenAPIHandler_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := NewOpenAPIHandler([]byte("openapi: [unterminated")); err == nil {
		t.Error("Expected error for malformed document")
	}
}
