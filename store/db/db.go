package db // import "github.com/epustaka/epustaka/store/db"

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/epustaka/epustaka/config"
	"github.com/epustaka/epustaka/store"
	"github.com/epustaka/epustaka/version"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	return &DB{d}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}

//go:embed migration
var migrationFS embed.FS

const latestSchemaFileName = "LATEST_SCHEMA.sql"

// Migrate brings the database schema up to the current version.
func (d *DB) Migrate(ctx context.Context) error {
	currentVersion := version.GetCurrentVersion()
	fmt.Println("Current version: ", currentVersion)
	if _, err := os.Stat(config.Opts.DSN); err != nil {
		// If the db file does not exist, create a new one with latest schema
		if errors.Is(err, os.ErrNotExist) {
			if err := d.applyLatestSchema(ctx); err != nil {
				return errors.Wrap(err, "failed to apply latest schema")
			}
			// Upsert the newest version to migration_history.
			if _, err := d.UpsertMigrationHistory(ctx, &store.UpsertMigrationHistory{
				Version: currentVersion,
			}); err != nil {
				return errors.Wrap(err, "failed to upsert migration history")
			}
		} else {
			return errors.Wrap(err, "failed to check database file")
		}
		return nil
	}

	// If db file exist, check need to migrate or not
	exists, err := d.CheckTableExists(ctx, "migration_history")
	if err != nil {
		return errors.Wrap(err, "failed to check migration history table")
	}
	migrationHistoryList := []*store.MigrationHistory{}
	if exists {
		migrationHistoryList, err = d.FindMigrationHistoryList(ctx, &store.FindMigrationHistory{})
		if err != nil {
			return errors.Wrap(err, "failed to find migration history list")
		}
	}

	// If no migration history, apply latest schema
	if len(migrationHistoryList) == 0 {
		if err := d.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		if _, err = d.UpsertMigrationHistory(ctx, &store.UpsertMigrationHistory{
			Version: currentVersion,
		}); err != nil {
			return errors.Wrap(err, "failed to upsert migration history")
		}
		return nil
	}

	migrationHistoryVersionList := []string{}
	for _, migrationHistory := range migrationHistoryList {
		migrationHistoryVersionList = append(migrationHistoryVersionList, migrationHistory.Version)
	}
	// Sort and get the latest version
	version.SortVersion(migrationHistoryVersionList)
	latestMigrationHistoryVersion := migrationHistoryVersionList[len(migrationHistoryVersionList)-1]

	if !version.IsVersionGreaterThan(version.GetSchemaVersion(currentVersion), latestMigrationHistoryVersion) {
		return nil
	}

	minorVersionList, err := getMinorVersionList()
	if err != nil {
		return errors.Wrap(err, "failed to list migration versions")
	}
	// Backup the raw database file before migration
	rawBytes, err := os.ReadFile(config.Opts.DSN)
	if err != nil {
		return errors.Wrap(err, "failed to read raw database file")
	}
	backupDBFilePath := fmt.Sprintf("%s/epustaka_%s_%d_backup.db", config.Opts.Data, version.GetCurrentVersion(), time.Now().Unix())
	if err := os.WriteFile(backupDBFilePath, rawBytes, 0644); err != nil {
		return errors.Wrap(err, "failed to write backup database file")
	}
	fmt.Println("Backup database file: ", backupDBFilePath)
	fmt.Printf("Start migration from %s to %s\n", latestMigrationHistoryVersion, currentVersion)
	for _, minorVersion := range minorVersionList {
		// Patch releases never carry schema changes
		normalizedVersion := minorVersion + ".0"
		if version.IsVersionGreaterThan(normalizedVersion, latestMigrationHistoryVersion) && version.IsVersionGreaterOrEqualThan(currentVersion, normalizedVersion) {
			fmt.Println("Applying migration for", normalizedVersion)
			if err := d.applyMigrationForMinorVersion(ctx, minorVersion); err != nil {
				return errors.Wrap(err, "failed to apply minor version migration")
			}
		}
	}
	fmt.Println("End migrate")

	// Remove the created backup db file after migrate succeed.
	if err := os.Remove(backupDBFilePath); err != nil {
		fmt.Printf("Failed to remove temp database file, err: %v", err)
	}
	return nil
}

func (d *DB) applyLatestSchema(ctx context.Context) error {
	// Read latest schema file
	latestSchemaPath := fmt.Sprintf("migration/%s", latestSchemaFileName)
	buf, err := migrationFS.ReadFile(latestSchemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file: %q", latestSchemaPath)
	}

	stmt := string(buf)
	if err := d.execute(ctx, stmt); err != nil {
		return errors.Wrapf(err, "failed to apply latest schema: %s", stmt)
	}
	return nil
}

func (d *DB) applyMigrationForMinorVersion(ctx context.Context, minorVersion string) error {
	// Get all migration files for the minor version
	filenames, err := fs.Glob(migrationFS, fmt.Sprintf("migration/%s/*.sql", minorVersion))
	if err != nil {
		return errors.Wrapf(err, "failed to find migration files for version %s", minorVersion)
	}

	// The migration files are applied in name order.
	// 10001_example.sql, 10002_example.sql, 10003_example.sql, ...
	slices.Sort(filenames)

	for _, filename := range filenames {
		buf, err := migrationFS.ReadFile(filename)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration file: %q", filename)
		}
		stmt := string(buf)
		if err := d.execute(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to apply migration: %s", stmt)
		}
	}

	// Upsert the newest version to migration_history.
	newVersion := minorVersion + ".0"
	if _, err := d.UpsertMigrationHistory(ctx, &store.UpsertMigrationHistory{
		Version: newVersion,
	}); err != nil {
		return errors.Wrapf(err, "failed to upsert migration history for version %s", newVersion)
	}
	return nil
}

// getMinorVersionList lists the versioned migration directories, sorted
// ascending.
func getMinorVersionList() ([]string, error) {
	entries, err := migrationFS.ReadDir("migration")
	if err != nil {
		return nil, err
	}

	versions := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	version.SortVersion(versions)
	return versions, nil
}

func (d *DB) CheckTableExists(ctx context.Context, name string) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	var count int
	if err := d.DB.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) execute(ctx context.Context, stmt string) error {
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(stmt); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to execute statement")
	}

	return tx.Commit()
}
