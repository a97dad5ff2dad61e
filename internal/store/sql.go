package store

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite3" driver used by openSqlite.
	_ "github.com/mattn/go-sqlite3"
)

// currentSchemaVersion is stored in SQLite's user_version pragma.
// Increment this whenever the schema changes (tables, columns,
// indices). A lower stored version triggers a migration on Open; a
// higher one is rejected.
const currentSchemaVersion = 1

// openSqlite opens the task database and applies the configured pragmas.
func openSqlite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	err = applyPragmas(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}

// sqliteBusyTimeout is the time SQLite waits when the database is
// locked by another pydo process. After this, operations return
// SQLITE_BUSY.
const sqliteBusyTimeout = 10000 // milliseconds

// applyPragmas configures the SQLite connection using a single batch
// statement. WAL plus foreign keys gives each mutation a durable,
// crash-safe transaction without cross-process coordination in Go.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = FULL;
		PRAGMA foreign_keys = ON;
		PRAGMA temp_store = MEMORY;
	`, sqliteBusyTimeout))
	if err != nil {
		return fmt.Errorf("apply pragmas: %w", err)
	}

	return nil
}

// storedSchemaVersion reads the current SQLite PRAGMA user_version.
func storedSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	row := db.QueryRowContext(ctx, "PRAGMA user_version")

	var version int

	err := row.Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}

	return version, nil
}

// schemaDDL creates the task tables.
//
// tasks.id uses AUTOINCREMENT deliberately: SQLite then never reuses a
// rowid, so identifier uniqueness holds across the full task history
// even after rows would otherwise be candidates for reuse.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT NOT NULL,
	state       TEXT NOT NULL DEFAULT 'open',
	created_at  TEXT NOT NULL,
	closed_at   TEXT
);

CREATE TABLE IF NOT EXISTS task_tags (
	task_id INTEGER NOT NULL REFERENCES tasks(id),
	tag     TEXT NOT NULL,
	PRIMARY KEY (task_id, tag)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS task_projects (
	task_id INTEGER NOT NULL REFERENCES tasks(id),
	project TEXT NOT NULL,
	PRIMARY KEY (task_id, project)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_tasks_state ON tasks(state);
`

// migrate creates or upgrades the schema inside one transaction and
// stamps user_version, so a crash mid-migration leaves the previous
// version intact.
func migrate(ctx context.Context, db *sql.DB) error {
	version, err := storedSchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("%w: found %d, supported %d", ErrSchemaNewer, version, currentSchemaVersion)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, schemaDDL)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// PRAGMA does not support placeholders.
	_, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion))
	if err != nil {
		return fmt.Errorf("stamp schema version: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	return nil
}
