package api

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestOpenAPIYAML_Parses(t *testing.T) {
	t.Parallel()

	var doc struct {
		OpenAPI string                    `yaml:"openapi"`
		Paths   map[string]map[string]any `yaml:"paths"`
	}
	if err := yaml.Unmarshal(OpenAPIYAML, &doc); err != nil {
		t.Fatalf("Failed to parse embedded document: %v", err)
	}
	if doc.OpenAPI == "" {
		t.Error("Expected openapi version to be set")
	}
	for _, path := range []string{"/api/v1/decide", "/api/decide", "/healthz"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("Expected path %s to be documented", path)
		}
	}
}
