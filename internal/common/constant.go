// Package common contains shared constants and sentinel errors used across
// Bill Board client components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// outbound backend requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the token value in AuthorizationHeaderName.
const BearerScheme = "Bearer "

// RequestIDHeaderName tags every backend request with a unique id so client
// and server logs can be correlated.
const RequestIDHeaderName = "X-Request-ID"
