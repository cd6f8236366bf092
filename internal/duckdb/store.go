// Package duckdb exports integrated project tables into a DuckDB database
// so they can be queried with SQL. Tables are stored in long format keyed
// by project and normalized sample id.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding exported project data.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path, "" for in-memory.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		project VARCHAR PRIMARY KEY,
		name VARCHAR,
		source VARCHAR,
		seq_type VARCHAR,
		oncotree_code VARCHAR,
		oncotree_name VARCHAR,
		tissue_code VARCHAR,
		num_samples BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS samples (
		project VARCHAR,
		sample VARCHAR,
		patient VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS mutation_counts (
		project VARCHAR,
		sample VARCHAR,
		category VARCHAR,
		count DOUBLE
	)`,
	`CREATE TABLE IF NOT EXISTS clinical (
		project VARCHAR,
		sample VARCHAR,
		field VARCHAR,
		value VARCHAR
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Conn.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// appendRows opens an Appender on table over conn and passes it to fill.
// The appender is flushed when fill returns without error.
func appendRows(conn *sql.Conn, table string, fill func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fill(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// inTx runs fn on a single connection inside a transaction, rolling back
// when fn fails.
func (s *Store) inTx(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(conn); err != nil {
		if _, rerr := conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK"); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ClearProject removes every exported row of a project.
func (s *Store) ClearProject(ctx context.Context, projectID string) error {
	return s.inTx(ctx, func(conn *sql.Conn) error {
		return clearProject(ctx, conn, projectID)
	})
}

func clearProject(ctx context.Context, db execer, projectID string) error {
	for _, table := range []string{"projects", "samples", "mutation_counts", "clinical"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE project = ?", projectID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
