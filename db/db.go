package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store mirrors flushed sessions into a SQL database.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates the schema.
func Open(driver, dsn string) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err = s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS archived_sessions (
			session_id VARCHAR(36) PRIMARY KEY,
			category VARCHAR(16) NOT NULL,
			day_key VARCHAR(6) NOT NULL,
			cid INTEGER NOT NULL,
			callsign VARCHAR(255) NOT NULL,
			server VARCHAR(255) NOT NULL,
			rating INTEGER NOT NULL,
			has_flight_plan BOOLEAN NOT NULL DEFAULT false,
			revision_id INTEGER,
			logon_time VARCHAR(40) NOT NULL,
			first_seen VARCHAR(40) NOT NULL,
			last_updated VARCHAR(40) NOT NULL,
			end_status VARCHAR(32) NOT NULL,
			record TEXT NOT NULL
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_archived_sessions_day ON archived_sessions(category, day_key)`,
		`CREATE INDEX IF NOT EXISTS idx_archived_sessions_cid ON archived_sessions(cid)`,
	}

	for _, query := range queries {
		_, err := s.db.Exec(query)
		if err != nil {
			return err
		}
	}

	return nil
}

// rebind rewrites ? placeholders into $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
