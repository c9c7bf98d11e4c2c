package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"3000"`
	// ApiKey is the secret key required to access the API. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// StaticDir is the directory with the browser front-end, served at "/".
	StaticDir string `mapstructure:"static_dir" default:"frontend"`
}

// PublicPaths are reachable without an API key.
var PublicPaths = []string{"/health", "/metrics", "/swagger"}

// IsPublic reports whether path is exempt from API key authentication.
func IsPublic(path string) bool {
	for _, p := range PublicPaths {
		if path == p || len(path) > len(p) && path[:len(p)+1] == p+"/" {
			return true
		}
	}
	return false
}
