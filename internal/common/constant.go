package common

const (
	// AuthorizationHeaderName carries the access token as "Bearer <token>".
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the authorization scheme accepted by the HTTP adapter.
	BearerScheme = "Bearer"

	// RoleAdmin is the role value stored for administrator accounts.
	RoleAdmin = "admin"

	// RoleUser is the default role for self-registered accounts.
	RoleUser = "user"
)
