// Package provider defines the boundary between the metrics pipeline and the
// upstream market-data APIs. Every client, real or fake, returns the same
// Response envelope so the orchestration layer only ever sees one shape.
package provider

import (
	"context"
	"fmt"
)

// Provider fetches raw JSON payloads from a market-data API.
type Provider interface {
	// Fetch performs a single request. It never returns a nil Response and
	// never panics; transport failures are folded into the envelope.
	Fetch(ctx context.Context, endpoint string, params map[string]string) *Response
}

// Response is the canonical fetch envelope. Success requires both a 2xx
// transport status and an application-level success code in the body; clients
// are responsible for enforcing that dual check before setting Success.
type Response struct {
	Success    bool
	StatusCode int
	Data       map[string]any
	Err        string
}

// OK wraps a decoded body as a successful response.
func OK(data map[string]any, statusCode int) *Response {
	return &Response{Success: true, StatusCode: statusCode, Data: data}
}

// Failure builds a typed failure response.
func Failure(msg string, statusCode int) *Response {
	return &Response{Success: false, StatusCode: statusCode, Err: msg}
}

// NotSupported reports an endpoint with no mapping on this provider. It is a
// typed failure, never an error: callers treat it like any other fetch miss.
func NotSupported(provider, endpoint string) *Response {
	return Failure(fmt.Sprintf("%s: no mapping for endpoint %s", provider, endpoint), 501)
}
