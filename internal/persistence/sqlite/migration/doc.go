// Package migration applies versioned SQL migrations to the events database.
//
// Migration files live in an fs.FS (usually embedded into the binary) and
// follow the naming convention {version}_{description}.sql, for example
// "001_create_events.sql". Applied versions are tracked in the
// schema_migrations table so each file runs exactly once.
//
// Example usage:
//
//	manager := NewMigrationManager(NewFileScanner(files), NewSQLiteExecutor(db), "migrations", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
