package config

import (
	"fmt"
	"reflect"
	"strings"

	"equipment-inventory/core/broker"
	"equipment-inventory/core/database"
	"equipment-inventory/core/logger"
	"equipment-inventory/core/server"
	"equipment-inventory/core/storage"
	"equipment-inventory/feature/export"
	equipSync "equipment-inventory/feature/sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Local is the store the application reads and writes directly.
	Local database.Config `mapstructure:"local"`
	// Remote is the shared store kept in sync with Local.
	Remote database.Config `mapstructure:"remote"`
	// Storage holds configuration for the object storage used by exports.
	Storage storage.Config `mapstructure:"storage"`
	// Broker holds configuration for publishing sync reports.
	Broker broker.Config `mapstructure:"broker"`
	// Sync controls the synchronization scheduler and triggers.
	Sync equipSync.Config `mapstructure:"sync"`
	// Export controls spreadsheet exports.
	Export export.Config `mapstructure:"export"`
}

// storeDefaults override the shared database.Config defaults per store.
// The remote has no host by default, so it stays disabled until configured.
var storeDefaults = map[string]any{
	"local.driver":  database.DriverSQLite,
	"local.name":    "equipos.db",
	"remote.driver": database.DriverPostgres,
	"remote.name":   "inventario",
	"remote.host":   "",
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")
	for key, val := range storeDefaults {
		v.SetDefault(key, val)
	}

	// Map environment variables to nested keys (e.g. REMOTE_URL -> remote.url)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DATABASE_URL is the conventional name for the shared database.
	if err := v.BindEnv("remote.url", "REMOTE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if !c.Local.IsValidDriver() {
		return fmt.Errorf("local: unsupported database driver %q", c.Local.Driver)
	}
	if c.Remote.Enabled() && !c.Remote.IsValidDriver() {
		return fmt.Errorf("remote: unsupported database driver %q", c.Remote.Driver)
	}
	if c.Sync.IntervalSeconds < 0 {
		return fmt.Errorf("sync: interval_seconds must not be negative")
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync: max_attempts must be at least 1")
	}
	if c.Export.Retention < 0 {
		return fmt.Errorf("export: retention must not be negative")
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
