// Package database - Handles all interaction with the SQLite store
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	_ "github.com/mattn/go-sqlite3" // database/sql driver
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = InitLogger() // setup the logger

// DBConnection is the structure that defines the database engine handle
type DBConnection struct {
	DB   *sql.DB
	Path string
}

// Close releases the underlying connection pool.
func (db DBConnection) Close() error {
	return db.DB.Close()
}

// indexConfig holds one index definition for the bootstrap loop
type indexConfig struct {
	Table    string
	IdxName  string
	IdxField string
}

var initDone = false          // has the data been initialized
var dbConnection DBConnection // database connection definition

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}

// schemaDDL creates the grove tables. Idempotent; there is no migration
// framework, the schema is bootstrapped in place on every start.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS species (
  scientific_name TEXT PRIMARY KEY,
  local_name      TEXT NOT NULL DEFAULT '',
  wood_density    REAL NOT NULL CHECK (wood_density > 0),
  benefits        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trees (
  tree_id         TEXT PRIMARY KEY,
  institution     TEXT NOT NULL,
  local_name      TEXT NOT NULL DEFAULT '',
  scientific_name TEXT NOT NULL DEFAULT '',
  student_name    TEXT NOT NULL DEFAULT '',
  date_planted    TEXT NOT NULL DEFAULT '',
  tree_stage      TEXT NOT NULL DEFAULT 'Young (RCD)',
  rcd_cm          REAL,
  dbh_cm          REAL,
  height_m        REAL NOT NULL DEFAULT 0,
  latitude        REAL,
  longitude       REAL,
  co2_kg          REAL NOT NULL DEFAULT 0,
  status          TEXT NOT NULL DEFAULT 'Alive',
  county          TEXT NOT NULL DEFAULT '',
  sub_county      TEXT NOT NULL DEFAULT '',
  ward            TEXT NOT NULL DEFAULT '',
  adopter_name    TEXT
);

CREATE TABLE IF NOT EXISTS users (
  username      TEXT PRIMARY KEY,
  password_hash TEXT NOT NULL,
  role          TEXT NOT NULL,
  institution   TEXT NOT NULL DEFAULT '',
  email         TEXT NOT NULL DEFAULT '',
  is_active     INTEGER NOT NULL DEFAULT 1,
  created_at    TEXT NOT NULL DEFAULT '',
  updated_at    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS adoptions (
  adoption_id  TEXT PRIMARY KEY,
  tree_id      TEXT NOT NULL REFERENCES trees(tree_id),
  adopter_name TEXT NOT NULL,
  adopted_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// OpenDatabase opens (creating on first use) the SQLite store at path and
// bootstraps the schema and indexes. WAL for concurrent readers, immediate
// transactions so writers serialize at BEGIN instead of failing at COMMIT.
func OpenDatabase(path string) (DBConnection, error) {
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000&_txlock=immediate"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return DBConnection{}, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return DBConnection{}, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return DBConnection{}, fmt.Errorf("bootstrap schema: %w", err)
	}

	//
	// Index creation
	//

	idxList := []indexConfig{
		{Table: "trees", IdxName: "trees_institution", IdxField: "institution"},
		{Table: "trees", IdxName: "trees_status", IdxField: "status"},
		{Table: "trees", IdxName: "trees_scientific_name", IdxField: "scientific_name"},
		{Table: "users", IdxName: "users_role", IdxField: "role"},
		{Table: "adoptions", IdxName: "adoptions_tree_id", IdxField: "tree_id"},
	}

	for _, idx := range idxList {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", idx.IdxName, idx.Table, idx.IdxField)
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return DBConnection{}, fmt.Errorf("create index %s: %w", idx.IdxName, err)
		}
	}

	return DBConnection{DB: db, Path: path}, nil
}

// InitializeDatabase opens the configured store with retry, bootstraps the
// schema, and seeds reference data. The connection is process-wide.
func InitializeDatabase() DBConnection {
	const initialInterval = 2 * time.Second
	const maxInterval = 30 * time.Second

	if initDone {
		return dbConnection
	}

	dbpath := GetEnvDefault("GROVE_DB_PATH", "grove.db")

	var db DBConnection

	//
	// Database open with backoff retry
	//

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 2 * time.Minute

	err := backoff.RetryNotify(func() error {
		var err error
		db, err = OpenDatabase(dbpath)
		return err
	}, bo, func(err error, _ time.Duration) {
		logger.Sugar().Infof("Retrying SQLite open at %s: %v", dbpath, err)
	})

	if err != nil {
		logger.Sugar().Fatalf("Backoff Error %v\n", err)
	}

	if err := SeedSpecies(context.Background(), db); err != nil {
		logger.Sugar().Fatalf("Failed to seed species reference data: %v", err)
	}

	initDone = true
	dbConnection = db

	logger.Sugar().Infof("Database initialization complete at %s", dbpath)

	return dbConnection
}
