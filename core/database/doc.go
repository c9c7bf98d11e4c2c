// Package database handles database connections and schema inspection.
//
// It wraps GORM to open the two stores the application synchronizes: a local,
// offline-capable SQLite file and a remote PostgreSQL server. MySQL is accepted as
// an alternative remote engine. Connection handles are explicit values; there is no
// package-level connection.
//
// # Connect
//
// Connect picks the GORM dialector from Config.Driver, applies pool settings and
// pings the database within Config.TimeoutSeconds. SQLite connections are limited to
// a single open connection so that in-memory databases are shared and writes are
// serialized.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns report the columns of a table for each dialect.
// The equipment store uses them to upgrade legacy tables that predate soft deletes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Local)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	log.Println("connected to", database.Describe(cfg.Local))
package database
