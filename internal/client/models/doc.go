// Package models defines the client-side data shared by the gateway, the
// session manager and the terminal client.
package models
