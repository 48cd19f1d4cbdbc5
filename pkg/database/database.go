package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alimgiray/glscope/pkg/logger"
)

// MemoryDSN keeps the database in memory, shared by every connection of the
// process
const MemoryDSN = "file:glscope?mode=memory&cache=shared&_foreign_keys=ON&_busy_timeout=30000"

//go:embed migrations/*.sql
var migrations embed.FS

var DB *sql.DB

// Init initializes the SQLite database connection. An empty dsn selects the
// in-memory database.
func Init(dsn string) error {
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	DB = db
	logger.Info("Database connected successfully")
	return nil
}

// Open opens a database, applies the schema and returns it
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// A single connection serializes writers and keeps the shared-cache
	// memory database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err = RunSQLScripts(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// RunSQLScripts executes the embedded SQL scripts in name order
func RunSQLScripts(db *sql.DB) error {
	files, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	for _, file := range files {
		if path.Ext(file.Name()) != ".sql" {
			continue
		}

		sqlContent, err := migrations.ReadFile(path.Join("migrations", file.Name()))
		if err != nil {
			return err
		}

		if _, err = db.Exec(string(sqlContent)); err != nil {
			return fmt.Errorf("execute %s: %w", file.Name(), err)
		}

		logger.WithField("script", file.Name()).Debug("Executed SQL script")
	}

	return nil
}
