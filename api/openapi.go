// Package api holds the published HTTP contract.
package api

import _ "embed"

// OpenAPIYAML is the OpenAPI 3 document served at /api/v1/openapi.yaml
//
//go:embed openapi.yaml
var OpenAPIYAML []byte
