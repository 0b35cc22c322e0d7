// Package sqlite provides SQLite implementations of storage ports.
//
// Paging is cursor-style: list calls take and return paging.Cursor
// instructions whose token encodes the boundary row.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/ports"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = ports.ErrNotFound

// DB wraps a SQLite database connection.
type DB struct {
	*sql.DB
}

// Open creates a new SQLite database connection.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Set pragmas for performance
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000", // 64MB
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	return &DB{DB: db}, nil
}

// Migrate runs all pending migrations.
func (db *DB) Migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("query migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("scan migration: %w", err)
		}
		applied[version] = true
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var migrations []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			migrations = append(migrations, entry.Name())
		}
	}
	sort.Strings(migrations)

	for _, name := range migrations {
		version := strings.TrimSuffix(name, ".sql")
		if applied[version] {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %s: %w", name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

// asCursor narrows an instruction to the cursor variant this backend
// understands. A nil instruction means the first page.
func asCursor(in paging.Instruction) (paging.Cursor, error) {
	switch v := in.(type) {
	case nil:
		return paging.Cursor{Limit: paging.DefaultLimit}, nil
	case paging.Cursor:
		if v.Limit <= 0 {
			v.Limit = paging.DefaultLimit
		}
		return v, nil
	default:
		return paging.Cursor{}, errors.New("sqlite: unsupported paging instruction")
	}
}

// buildPage wraps fetched rows into a page with next/prev instructions.
// For the next direction rows must arrive newest first; for prev, oldest
// first (they are reversed here). extra reports that the query fetched one
// row beyond the limit, i.e. more pages exist in the fetch direction.
func buildPage[T any](items []T, c paging.Cursor, extra bool, tokenOf func(T) string) paging.Page[T] {
	page := paging.Page[T]{Items: items}
	if len(items) == 0 {
		return page
	}

	if c.Direction == paging.DirectionPrev {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		// The boundary row itself still exists, so a next page always does.
		page.Next = paging.Cursor{Cursor: tokenOf(items[len(items)-1]), Limit: c.Limit, Direction: paging.DirectionNext}
		if extra {
			page.Prev = paging.Cursor{Cursor: tokenOf(items[0]), Limit: c.Limit, Direction: paging.DirectionPrev}
		}
		return page
	}

	if extra {
		page.Next = paging.Cursor{Cursor: tokenOf(items[len(items)-1]), Limit: c.Limit, Direction: paging.DirectionNext}
	}
	if c.Cursor != "" {
		page.Prev = paging.Cursor{Cursor: tokenOf(items[0]), Limit: c.Limit, Direction: paging.DirectionPrev}
	}
	return page
}
