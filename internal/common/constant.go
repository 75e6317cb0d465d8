// Package common contains constants and sentinel errors shared by the client
// and the fake backend.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"
	// BearerPrefix precedes the token inside the Authorization header.
	BearerPrefix = "Bearer "
	// RequestIDHeaderName carries the per-request correlation id.
	RequestIDHeaderName = "X-Request-ID"
)
