package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:codetrail.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/codetrail?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'student',
  password_hash TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS progress (
  learner_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  status TEXT NOT NULL,
  completed_topics_json TEXT NOT NULL,
  topic_cursor_json TEXT NOT NULL,
  quiz_results_json TEXT NOT NULL,
  completed_exercises_json TEXT NOT NULL,
  homework_json TEXT,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (learner_id, module_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  id TEXT NOT NULL,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,                     -- e.g., HomeworkReviewed
  key TEXT NOT NULL,                     -- natural key: learnerID|moduleID
  data TEXT NOT NULL,                    -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'student',
  password_hash TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS progress (
  learner_id TEXT NOT NULL,
  module_id TEXT NOT NULL,
  status TEXT NOT NULL,
  completed_topics_json TEXT NOT NULL,
  topic_cursor_json TEXT NOT NULL,
  quiz_results_json TEXT NOT NULL,
  completed_exercises_json TEXT NOT NULL,
  homework_json TEXT,
  updated_at BIGINT NOT NULL,
  PRIMARY KEY (learner_id, module_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  id TEXT NOT NULL,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
