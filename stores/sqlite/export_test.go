package sqlite

import (
	"context"
	"database/sql"
)

// RunMigrate runs migration on a database (exported for testing)
func RunMigrate(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db)
}

// RunMigrateV1 runs v1 migration on a database (exported for testing)
func RunMigrateV1(ctx context.Context, db *sql.DB) error {
	return migrateV1(ctx, db)
}

// NewFromDB creates a backend from an existing db connection (exported for testing)
// This allows testing the error path in newFromDB when prepareStatements fails
func NewFromDB(db *sql.DB) (*Backend, error) {
	return newFromDB(db, defaultConfig())
}

// GetDB exposes the database connection for testing
func (b *Backend) GetDB() *sql.DB {
	return b.db
}

// ScanChanges exposes scanChanges for testing
func (b *Backend) ScanChanges(rows rowScanner) ([]change, error) {
	return b.scanChanges(rows)
}

// SetDBOpener replaces the database opener for testing
func SetDBOpener(opener func(driverName, dataSourceName string) (*sql.DB, error)) {
	dbOpener = opener
}

// ResetDBOpener restores the default database opener
func ResetDBOpener() {
	dbOpener = sql.Open
}
