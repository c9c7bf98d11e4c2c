// Package config provides configuration management for the equipment inventory.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file (loaded with godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, static front-end)
//   - Log: Logging level, format and optional rotated file
//   - Local / Remote: the two database connections kept in sync
//   - Storage: S3/MinIO credentials and bucket for exports
//   - Broker: RabbitMQ URL for sync report notifications
//   - Sync: scheduler interval, triggers and retry policy
//   - Export: object prefix and retention of spreadsheet exports
//
// Environment variables map to nested keys by replacing dots with underscores,
// e.g. REMOTE_URL sets remote.url. DATABASE_URL is accepted as an alias of REMOTE_URL.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
