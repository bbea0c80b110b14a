// Package openapi embeds the OpenAPI description of the HTTP API.
package openapi

import _ "embed"

// CinemaAPI is the OpenAPI 3 document for the /v1 routes.
//
//go:embed cinemacore.yaml
var CinemaAPI []byte

// YAML returns a copy of the embedded document.
func YAML() []byte {
	return append([]byte(nil), CinemaAPI...)
}
