package storage

// Config holds configuration for the storage provider.
type Config struct {
	// Endpoint is the host (and port) of the storage service. Empty disables storage.
	Endpoint string `mapstructure:"endpoint" default:""`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket receives the spreadsheet exports.
	Bucket string `mapstructure:"bucket" default:"inventario"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Enabled reports whether an object storage endpoint is configured.
func (c Config) Enabled() bool {
	return c.Endpoint != ""
}
