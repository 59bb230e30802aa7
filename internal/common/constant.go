// Package common contains shared constants and sentinel errors used across
// pixelboard components.
package common

// AuthorizationHeaderName is the HTTP header that carries the bearer
// access token on inbound requests.
const AuthorizationHeaderName = "Authorization"
