// Package database provides SQLite connectivity for the data collector.
//
// It owns the single local storage file: directory creation, connection
// pragmas (WAL, busy timeout, foreign keys), a one-connection pool, and
// health checks. Table definitions belong to the packages that use them;
// the person store creates its own table with CREATE TABLE IF NOT EXISTS.
//
// Security Considerations:
//   - All queries elsewhere use parameterised statements
//   - The database file is restricted to the owner (0600)
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
package database
