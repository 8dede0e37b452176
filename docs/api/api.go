// Package api embeds the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// Spec is the OpenAPI 3 document served at GET /openapi.yaml.
//
//go:embed openapi.yaml
var Spec []byte
