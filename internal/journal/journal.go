// Package journal is an append-only sqlite log of what the docking pipeline
// and the relativity simulator did. Nothing in it is ever read back into a
// running pipeline or simulator.
package journal

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory journal.
const MemoryPath = ":memory:"

// pragmas are applied by the driver to every pooled connection.
var pragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// filePragmas only make sense for an on-disk database.
var filePragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

type Journal struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the journal at path and brings its schema
// up to date.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if path == MemoryPath {
		// each connection to :memory: is its own database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	j := &Journal{DB: db, path: path}
	if err := j.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func dsn(path string) string {
	ps := pragmas
	if path != MemoryPath {
		ps = append(append([]string{}, pragmas...), filePragmas...)
	}
	params := make([]string, len(ps))
	for i, p := range ps {
		params[i] = "_pragma=" + p
	}
	return path + "?" + strings.Join(params, "&")
}

// Path returns the path the journal was opened with.
func (j *Journal) Path() string {
	return j.path
}
