// Package recording keeps a log of generation runs in a SQLite database.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// TableName is the table that holds one row per generation run.
const TableName = "wrapgen_runs"

// Entry describes one generation run.
type Entry struct {
	RunID       string
	Symbol      string
	Backend     string
	NumArgs     int
	NumResults  int
	NumMemories int
	Output      string
	Succeeded   bool
	Error       string
}

// Recorder stores generation runs.
type Recorder interface {
	// NewRunID returns a fresh identifier for a run.
	NewRunID() string

	// Record buffers an entry. Buffered entries are written on Flush.
	Record(e Entry)

	// Entries returns every entry written so far.
	Entries() ([]Entry, error)

	// Flush writes all the buffered entries into the database.
	Flush() error

	// Close flushes and releases the database.
	Close() error
}

// New creates a Recorder that writes into path + ".sqlite3". An empty path
// picks a unique name.
func New(path string) (Recorder, error) {
	if path == "" {
		path = "wrapgen_runs_" + xid.New().String()
	}

	filename := path
	if !strings.HasSuffix(filename, ".sqlite3") {
		filename += ".sqlite3"
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening recording database %s", filename)
	}

	return NewWithDB(db)
}

// NewWithDB creates a Recorder that writes into an open database.
func NewWithDB(db *sql.DB) (Recorder, error) {
	w := &sqliteWriter{
		DB:        db,
		batchSize: 1000,
	}

	if err := w.createTable(); err != nil {
		return nil, err
	}

	atexit.Register(func() {
		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush run records: %v\n", err)
		}
	})

	return w, nil
}

// sqliteWriter is the writer that writes entries into a SQLite database.
type sqliteWriter struct {
	*sql.DB

	lock      sync.Mutex
	entries   []Entry
	batchSize int
}

func (w *sqliteWriter) NewRunID() string {
	return xid.New().String()
}

func columns() []string {
	t := reflect.TypeOf(Entry{})

	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		names = append(names, t.Field(i).Name)
	}

	return names
}

func (w *sqliteWriter) createTable() error {
	createTableSQL := `CREATE TABLE IF NOT EXISTS ` + TableName +
		` (` + "\n\t" + strings.Join(columns(), ", \n\t") + "\n" + `);`

	if _, err := w.Exec(createTableSQL); err != nil {
		return errors.Wrapf(err, "creating table %s", TableName)
	}

	return nil
}

func (w *sqliteWriter) Record(e Entry) {
	w.lock.Lock()
	w.entries = append(w.entries, e)
	full := len(w.entries) >= w.batchSize
	w.lock.Unlock()

	if full {
		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush run records: %v\n", err)
		}
	}
}

func (w *sqliteWriter) Flush() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if len(w.entries) == 0 {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}

	stmt, err := tx.Prepare(insertSQL())
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	for _, e := range w.entries {
		if _, err := stmt.Exec(values(e)...); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "recording run %s", e.RunID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing run records")
	}

	w.entries = nil

	return nil
}

func insertSQL() string {
	n := columns()
	for i := range n {
		n[i] = "?"
	}

	return "INSERT INTO " + TableName + " VALUES (" + strings.Join(n, ", ") + ")"
}

func values(e Entry) []any {
	v := reflect.ValueOf(e)

	vals := make([]any, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		vals = append(vals, v.Field(i).Interface())
	}

	return vals
}

func (w *sqliteWriter) Entries() ([]Entry, error) {
	rows, err := w.Query(
		"SELECT " + strings.Join(columns(), ", ") + " FROM " + TableName)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", TableName)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.RunID, &e.Symbol, &e.Backend,
			&e.NumArgs, &e.NumResults, &e.NumMemories,
			&e.Output, &e.Succeeded, &e.Error,
		)
		if err != nil {
			return nil, errors.Wrap(err, "reading run record")
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (w *sqliteWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}

	return w.DB.Close()
}
