// Package gateway is the HTTP client for the Holy Culture API.
//
// Every request carries the bearer token (when set), a fresh X-Request-ID,
// client identification headers and cache-suppression headers. Responses are
// never returned as Go errors: each call yields a Result whose Err, when set,
// tells network failures, timeouts, HTTP errors, auth rejections and schema
// violations apart.
package gateway
