// Package store is a SQLite-backed reminder store serving the HTTP surface
// the client consumes.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/notexe/task-reminder/internal/reminder"
)

// ErrNotFound is returned when a reminder id or note index does not exist.
var ErrNotFound = errors.New("not found")

// Store provides SQLite-backed storage for reminders, notes and history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at dbPath and ensures the
// tables exist. ":memory:" gives a private in-memory database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			task       TEXT    NOT NULL,
			category   TEXT    NOT NULL,
			due        TEXT    NOT NULL,
			due_time   TEXT    NOT NULL DEFAULT '',
			priority   TEXT    NOT NULL DEFAULT 'medium',
			completed  INTEGER NOT NULL DEFAULT 0,
			created_at TEXT    NOT NULL
		);
		CREATE TABLE IF NOT EXISTS notes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			content    TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS history (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			action    TEXT NOT NULL,
			reminder  TEXT NOT NULL,
			timestamp TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// AddReminder inserts a pending reminder built from f and records a
// "created" history entry. f must already be validated.
func (s *Store) AddReminder(ctx context.Context, f reminder.Fields) (reminder.Reminder, error) {
	now := s.stamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return reminder.Reminder{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO reminders (task, category, due, due_time, priority, completed, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, f.Task, f.Category, f.Due, f.DueTime, f.Priority, now)
	if err != nil {
		return reminder.Reminder{}, fmt.Errorf("failed to insert reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return reminder.Reminder{}, fmt.Errorf("failed to get inserted ID: %w", err)
	}

	r, err := getReminder(ctx, tx, id)
	if err != nil {
		return reminder.Reminder{}, err
	}
	if err := addHistory(ctx, tx, reminder.ActionCreated, r, now); err != nil {
		return reminder.Reminder{}, err
	}

	if err := tx.Commit(); err != nil {
		return reminder.Reminder{}, fmt.Errorf("failed to commit reminder: %w", err)
	}
	return r, nil
}

// ListReminders returns all reminders in creation order.
func (s *Store) ListReminders(ctx context.Context) ([]reminder.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task, category, due, due_time, priority, completed, created_at
		FROM reminders ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	out := []reminder.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CompleteReminder marks a reminder completed and records a "completed"
// history entry. Completing a completed reminder changes nothing.
func (s *Store) CompleteReminder(ctx context.Context, id int64) error {
	now := s.stamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r, err := getReminder(ctx, tx, id)
	if err != nil {
		return err
	}
	if r.Completed {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE reminders SET completed = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to complete reminder: %w", err)
	}
	r.Completed = true
	if err := addHistory(ctx, tx, reminder.ActionCompleted, r, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}
	return nil
}

// DeleteReminder removes a reminder and records a "deleted" history entry.
func (s *Store) DeleteReminder(ctx context.Context, id int64) error {
	now := s.stamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r, err := getReminder(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if err := addHistory(ctx, tx, reminder.ActionDeleted, r, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}
	return nil
}

// ListNotes returns all notes in creation order. A note's index in this list
// is its identity for DeleteNote.
func (s *Store) ListNotes(ctx context.Context) ([]reminder.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT content, created_at FROM notes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	out := []reminder.Note{}
	for rows.Next() {
		var n reminder.Note
		var createdAt string
		if err := rows.Scan(&n.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.CreatedAt = parseStamp(createdAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

// AddNote appends a note.
func (s *Store) AddNote(ctx context.Context, content string) (reminder.Note, error) {
	now := s.stamp()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO notes (content, created_at) VALUES (?, ?)`, content, now); err != nil {
		return reminder.Note{}, fmt.Errorf("failed to insert note: %w", err)
	}
	return reminder.Note{Content: content, CreatedAt: parseStamp(now)}, nil
}

// DeleteNote removes the note at index of the current list.
func (s *Store) DeleteNote(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("note %d: %w", index, ErrNotFound)
	}
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM notes WHERE id = (SELECT id FROM notes ORDER BY id ASC LIMIT 1 OFFSET ?)
	`, index)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("note %d: %w", index, ErrNotFound)
	}
	return nil
}

// ListHistory returns the history in the order it was recorded.
func (s *Store) ListHistory(ctx context.Context) ([]reminder.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT action, reminder, timestamp FROM history ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	out := []reminder.HistoryEntry{}
	for rows.Next() {
		var e reminder.HistoryEntry
		var snapshot, ts string
		if err := rows.Scan(&e.Action, &snapshot, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		if err := json.Unmarshal([]byte(snapshot), &e.Reminder); err != nil {
			return nil, fmt.Errorf("failed to decode history snapshot: %w", err)
		}
		e.Timestamp = parseStamp(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getReminder(ctx context.Context, q queryer, id int64) (reminder.Reminder, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, task, category, due, due_time, priority, completed, created_at
		FROM reminders WHERE id = ?
	`, id)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return reminder.Reminder{}, fmt.Errorf("reminder %d: %w", id, ErrNotFound)
	}
	return r, err
}

func scanReminder(row scanner) (reminder.Reminder, error) {
	var r reminder.Reminder
	var id int64
	var completed int
	var createdAt string

	if err := row.Scan(&id, &r.Task, &r.Category, &r.Due, &r.DueTime,
		&r.Priority, &completed, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("failed to scan reminder: %w", err)
	}

	r.ID = reminder.ID(strconv.FormatInt(id, 10))
	r.Completed = completed != 0
	r.CreatedAt = parseStamp(createdAt)
	return r, nil
}

func addHistory(ctx context.Context, tx *sql.Tx, action string, r reminder.Reminder, at string) error {
	snapshot, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode history snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO history (action, reminder, timestamp) VALUES (?, ?, ?)
	`, action, string(snapshot), at); err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

func parseStamp(s string) reminder.Timestamp {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return reminder.Timestamp{Time: t}
}
