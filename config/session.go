package config

// SessionConfig contains session lifecycle configuration.
type SessionConfig struct {
	// LogoutRedirect is the path clients are sent to after logout.
	LogoutRedirect string `env:"SESSION_LOGOUT_REDIRECT" envDefault:"/"`
}
