// Package server wires the svcinfo HTTP surface.
//
// The gin engine serves three negotiated endpoints, /version, /healthz
// and /metrics, plus the Prometheus exposition path. Each negotiated
// response goes through the same pipeline: the output format is selected
// from the format query parameter and the Accept header before any data
// is gathered, the endpoint builds a structured value from live state,
// and the selected renderer serializes it.
//
// Unknown paths answer 404 with the table of available endpoints and
// known paths with another method answer 405, both in the negotiated
// format. A rejected format parameter always answers 400 with a JSON
// body.
package server
