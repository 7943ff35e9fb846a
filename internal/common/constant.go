package common

const (
	// AuthorizationHeaderName carries the bearer credential on protected calls.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the raw token inside the Authorization header.
	BearerPrefix = "Bearer "

	// SessionTokenKey and SessionUserKey name the two durable client entries
	// (and the server-side page cookie) holding the session.
	SessionTokenKey = "auth_token"
	SessionUserKey  = "user_data"

	// LoginPath, RegisterPath, LandingPath and HomePath are the navigation
	// entry points shared by the server page guard and the client.
	LoginPath    = "/login"
	RegisterPath = "/register"
	LandingPath  = "/"
	HomePath     = "/home"
)
