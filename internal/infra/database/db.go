package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	driverName = "postgres"

	// One connection: every statement runs on the same server session, one at a time.
	defaultMaxOpenConns    = 1
	defaultMaxIdleConns    = 1
	defaultConnMaxIdleTime = 0 // Keep the session for the life of the process
	defaultConnectTimeout  = 10 * time.Second
)

// Session owns the single live connection to PostgreSQL.
// Lifecycle: NewSession -> Connect -> ... -> Disconnect.
type Session struct {
	driver string
	dsn    string
	target string // Redacted description for errors and logs
	db     *sql.DB
}

// NewSession returns a disconnected session for dataSourceName.
// target is a human-readable description of the server (e.g. "students_db@localhost:5432")
// used in errors; it must not contain the password.
func NewSession(dataSourceName, target string) *Session {
	return &Session{driver: driverName, dsn: dataSourceName, target: target}
}

// Connect opens the connection and pings the database to ensure connectivity.
// On failure the session stays disconnected and a *ConnectionError is returned.
func (s *Session) Connect(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return &ConnectionError{Target: s.target, Err: fmt.Errorf("failed to open database connection: %w", err)}
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close() // Close the connection if ping fails
		return &ConnectionError{Target: s.target, Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	s.db = db
	return nil
}

// Disconnect releases the connection. Safe to call more than once and before Connect.
func (s *Session) Disconnect() error {
	if s == nil || s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// Connected reports whether Connect succeeded and Disconnect has not been called since.
func (s *Session) Connected() bool {
	return s != nil && s.db != nil
}

// DB returns the underlying handle, or nil while disconnected.
func (s *Session) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}
