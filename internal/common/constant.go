package common

const (
	// AuthorizationHeaderName carries the bearer token on inbound HTTP requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// ServiceName is reported by the version endpoint and used as the metrics namespace.
	ServiceName = "falcontrade"
)
