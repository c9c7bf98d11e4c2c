package export

// Config holds settings for spreadsheet exports.
type Config struct {
	// Enabled mounts the export endpoints.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Prefix is the object key prefix inside the storage bucket.
	Prefix string `mapstructure:"prefix" default:"exports"`
	// Retention is the number of most recent exports kept. Zero keeps everything.
	Retention int `mapstructure:"retention" default:"10"`
}
