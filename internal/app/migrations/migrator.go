package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const trackingTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    VARCHAR(255) PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Migrator applies numbered SQL files once each, tracking them in schema_migrations
type Migrator struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool, logger zerolog.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

// Applied returns the versions already applied, in order
func (m *Migrator) Applied(ctx context.Context) ([]string, error) {
	if _, err := m.db.Exec(ctx, trackingTable); err != nil {
		return nil, fmt.Errorf("failed to create migration tracking table: %w", err)
	}

	rows, err := m.db.Query(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	return versions, nil
}

// versionOf extracts the version from a file name, e.g. "001_init.sql" => "001"
func versionOf(filePath string) string {
	return strings.SplitN(filepath.Base(filePath), "_", 2)[0]
}

// pending lists the .sql files of dir, in name order, whose version is not in applied.
func pending(dir string, applied []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") || done[versionOf(e.Name())] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// MigrateFromDirectory applies every pending .sql file of dirPath in name order.
// Each file runs in its own transaction together with its tracking row.
func (m *Migrator) MigrateFromDirectory(ctx context.Context, dirPath string) error {
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	files, err := pending(dirPath, applied)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		m.logger.Info().Int("applied", len(applied)).Msg("Schema is up to date")
		return nil
	}

	for _, file := range files {
		if err := m.apply(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, file string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	name := filepath.Base(file)
	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("migration %s failed: %w", name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, versionOf(file)); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", name, err)
	}

	m.logger.Info().Str("file", name).Msg("Migration applied")
	return nil
}
