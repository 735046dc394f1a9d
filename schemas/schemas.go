// Package schemas holds the embedded JSON Schemas used for validating
// on-disk artifacts.
package schemas

import _ "embed"

// ManifestSchemaJSON is the JSON Schema for model artifact manifest files.
//
//go:embed manifest.schema.json
var ManifestSchemaJSON string
