// Package storage persists the leaderboard artifact and loads it into an
// in-memory SQLite database for ad-hoc queries.
package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/pable/hoopstats/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// memoryPath opens a private, throwaway database.
const memoryPath = ":memory:"

// DB is the relational view of one artifact: teams, players, per-stat
// values and ranked leaders.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", path))
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	// Every pooled connection to ":memory:" would be a separate database.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "apply schema")
	}
	return &DB{conn: conn}, nil
}

// OpenArtifact reads the artifact at path and imports it into a fresh
// in-memory database. The caller closes the DB.
func OpenArtifact(path string) (*DB, *model.Artifact, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, nil, err
	}
	db, err := Open(memoryPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Import(a); err != nil {
		db.Close()
		return nil, nil, errors.Wrapf(err, "import %s", path)
	}
	return db, a, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
