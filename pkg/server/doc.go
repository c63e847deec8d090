// Package server exposes the diagram pipeline over HTTP.
//
// # Endpoints
//
//	GET  /healthz                  {"status": "ok", "version": ...}
//	POST /v1/layout                document in, layout JSON out
//	POST /v1/render?format=svg     document in, artifact out
//
// The request body is a literal document. Its encoding follows the input
// query parameter (json, yaml or tree) and defaults to the Content-Type:
// application/yaml selects YAML, text/plain a diagram script, anything
// else JSON.
//
// Layout and drawing options are taken from the query string: width,
// height, margin, minSpan, minDepth, distance, step, style, font, scale and
// class. The render endpoint also accepts background, cols, rows, detailed
// and free.
//
// # Errors
//
// Failures are reported as JSON:
//
//	{"code": "EMPTY_FOREST", "message": "forest contains no trees"}
//
// Errors caused by the request (see [errors.IsInputError]) are returned
// with status 400, everything else with 500.
//
// Every response carries an X-Request-ID header. An incoming X-Request-ID
// is kept; otherwise a random UUID is assigned.
package server
