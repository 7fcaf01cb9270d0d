// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migrations are read from an fs.FS (usually an embed.FS) and must be named
// {version}_{description}.sql, e.g. "001_kv_entries.sql". Each migration runs
// in its own transaction and is recorded in the schema_migrations table so it
// is applied at most once.
//
// Example usage:
//
//	manager := migration.NewManager(migration.NewFileScanner(files, "."), migration.NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
