package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverSQLite is the default embedded store
	DriverSQLite = "sqlite3"
	// DriverPostgres stores players in a PostgreSQL server
	DriverPostgres = "postgres"

	// DefaultSQLitePath is used when no DSN is configured for SQLite
	DefaultSQLitePath = "data/mathquiz.db"
)

// Open establishes a connection to the database and creates the schema
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		if err := ensureDataDir(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres requires a DSN")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Database ready (driver=%s)", driver)
	return db, nil
}

// ensureDataDir creates the directory holding a file-backed SQLite database
func ensureDataDir(dsn string) error {
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == DriverPostgres {
		idColumn = "SERIAL PRIMARY KEY"
	}

	// Create players table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS players (
			id ` + idColumn + `,
			username TEXT UNIQUE NOT NULL,
			total_games INTEGER NOT NULL DEFAULT 0,
			total_score INTEGER NOT NULL DEFAULT 0,
			highest_score INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create players table: %w", err)
	}

	// Create quiz_results table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS quiz_results (
			id ` + idColumn + `,
			player_id INTEGER NOT NULL,
			session_id TEXT UNIQUE,
			quiz_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			difficulty TEXT NOT NULL,
			score INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			FOREIGN KEY (player_id) REFERENCES players(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create quiz_results table: %w", err)
	}

	_, err = db.Exec("CREATE INDEX IF NOT EXISTS idx_quiz_results_player ON quiz_results(player_id, quiz_date)")
	if err != nil {
		return fmt.Errorf("failed to create quiz_results index: %w", err)
	}

	return nil
}
