// Package common contains shared constants and sentinel errors used across
// the Holy Culture client components.
package common

// Outbound request headers attached by the API gateway.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	ClientNameHeaderName    = "X-Client-Name"
	ClientVersionHeaderName = "X-Client-Version"
	PlatformHeaderName      = "X-Client-Platform"

	BearerPrefix = "Bearer "
)

// Credential store service names. Each one is an independently clearable
// namespace.
const (
	TokensService    = "holy_culture_tokens"
	UserService      = "holy_culture_user"
	BiometricService = "holy_culture_biometric"
)
