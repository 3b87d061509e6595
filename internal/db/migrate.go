package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// The gift-exchange schema ships inside the binary so a fresh sqlite file
// needs no extra deployment artifacts.
//
//go:embed migrations/*.sql
var schemaFS embed.FS

type migration struct {
	name string
	sql  []byte
}

// RunMigrations applies every .sql file in lexical order. A non-empty dir
// overrides the embedded schema, which is how local development iterates on
// migrations without rebuilding. Statements are idempotent (CREATE IF NOT
// EXISTS), so running on every start is safe.
func RunMigrations(db *sql.DB, dir string) error {
	migrations, err := loadMigrations(dir)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if len(m.sql) == 0 {
			continue
		}
		if _, err := db.Exec(string(m.sql)); err != nil {
			return fmt.Errorf("exec migration %s: %w", m.name, err)
		}
	}
	return nil
}

// loadMigrations prefers an on-disk override; a missing directory falls back
// to the embedded schema, any other read failure is surfaced.
func loadMigrations(dir string) ([]migration, error) {
	if dir != "" {
		migrations, err := readDirMigrations(dir)
		if err == nil {
			return migrations, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read migrations: %w", err)
		}
	}

	entries, err := schemaFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := schemaFS.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read embedded migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, migration{name: entry.Name(), sql: content})
	}
	sortMigrations(migrations)
	return migrations, nil
}

func readDirMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, migration{name: entry.Name(), sql: content})
	}
	sortMigrations(migrations)
	return migrations, nil
}

func sortMigrations(migrations []migration) {
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].name < migrations[j].name })
}
