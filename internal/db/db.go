package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/existflow/chantier/internal/sqlstore"
	"github.com/existflow/chantier/internal/store"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// LocalOwner scopes rows of the single-user local database.
const LocalOwner = "local"

// DB wraps a migrated database connection
type DB struct {
	*sql.DB
	Dialect sqlstore.Dialect
	dsn     string
}

// DefaultDBPath returns the default database path (~/.chantier/chantier.db)
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".chantier", "chantier.db"), nil
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open opens or creates the SQLite database at dbPath
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return connect("sqlite", sqliteDSN(dbPath), sqlstore.SQLite)
}

// OpenDefault opens the database at the default path
func OpenDefault() (*DB, error) {
	path, err := DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Connect opens a PostgreSQL database for postgres:// URLs and a SQLite file
// for anything else ("sqlite://path", "file:path" or a bare path).
func Connect(url string) (*DB, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return connect("postgres", url, sqlstore.Postgres)
	case strings.HasPrefix(url, "sqlite://"):
		return Open(strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "file:"):
		path := strings.TrimPrefix(url, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		return Open(path)
	default:
		return Open(url)
	}
}

func connect(driver, dsn string, dialect sqlstore.Dialect) (*DB, error) {
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, Dialect: dialect, dsn: dsn}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Store returns the collections of owner
func (db *DB) Store(owner string, mode store.Mode) *sqlstore.Store {
	return sqlstore.New(db.DB, db.Dialect, owner, mode)
}
