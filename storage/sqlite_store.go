package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daytally/entry"
	"daytally/internal/timeutil"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var (
	ErrEntryNotFound = errors.New("time entry not found")
	ErrTimerRunning  = errors.New("a timer is already running")
	ErrNoTimer       = errors.New("no timer is running")
)

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	// end_datetime is NULL while the timer is running; corrected_duration is
	// NULL unless a day balancing run has been applied.
	const schema = `
CREATE TABLE IF NOT EXISTS time_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_number TEXT NOT NULL DEFAULT '',
	start_datetime TEXT NOT NULL,
	end_datetime TEXT,
	corrected_duration INTEGER CHECK(corrected_duration IS NULL OR corrected_duration >= 0),
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// StartEntry inserts a running entry. ErrTimerRunning is returned when
// another entry is still open.
func (s *SQLiteStore) StartEntry(projectNumber string, start time.Time) (int64, error) {
	running, err := s.RunningEntry()
	if err != nil {
		return 0, err
	}
	if running != nil {
		return 0, ErrTimerRunning
	}

	res, err := s.db.Exec(
		`INSERT INTO time_entries (project_number, start_datetime) VALUES (?, ?);`,
		projectNumber,
		start.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert running entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted row id: %w", err)
	}
	return id, nil
}

// StopEntry closes the running entry at the given end time and returns it.
func (s *SQLiteStore) StopEntry(end time.Time) (entry.Entry, error) {
	running, err := s.RunningEntry()
	if err != nil {
		return entry.Entry{}, err
	}
	if running == nil {
		return entry.Entry{}, ErrNoTimer
	}

	if _, err := s.db.Exec(
		`UPDATE time_entries SET end_datetime = ? WHERE id = ?;`,
		end.Format(time.RFC3339),
		running.ID,
	); err != nil {
		return entry.Entry{}, fmt.Errorf("stop entry %d: %w", running.ID, err)
	}

	running.EndDateTime = end
	return *running, nil
}

// RunningEntry returns the currently open entry, or nil when idle.
func (s *SQLiteStore) RunningEntry() (*entry.Entry, error) {
	const query = `
SELECT id, project_number, start_datetime, end_datetime, corrected_duration
FROM time_entries
WHERE end_datetime IS NULL
ORDER BY id DESC
LIMIT 1;
`
	row := s.db.QueryRow(query)
	value, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &value, nil
}

func (s *SQLiteStore) InsertEntries(entries []entry.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	const insertStmt = `
INSERT INTO time_entries (project_number, start_datetime, end_datetime, corrected_duration)
VALUES (?, ?, ?, ?);`

	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		if _, err := stmt.Exec(
			e.ProjectNumber,
			e.StartDateTime.Format(time.RFC3339),
			nullableEnd(e),
			nullableCorrected(e),
		); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("insert time entry: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit transaction: %w", err)
	}

	return inserted, nil
}

func (s *SQLiteStore) ListEntries() ([]entry.Entry, error) {
	const query = `
SELECT id, project_number, start_datetime, end_datetime, corrected_duration
FROM time_entries
ORDER BY start_datetime, id;
`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]entry.Entry, 0, 256)
	for rows.Next() {
		value, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}

	return entries, nil
}

// ListCompletedForDay returns all completed entries whose start falls on the
// local calendar day of the given time, ordered by start.
func (s *SQLiteStore) ListCompletedForDay(day time.Time) ([]entry.Entry, error) {
	entries, err := s.ListEntries()
	if err != nil {
		return nil, err
	}

	out := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Running() {
			continue
		}
		if !timeutil.SameDay(e.StartDateTime.In(time.Local), day.In(time.Local)) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// GetEntryByID returns one entry by ID.
func (s *SQLiteStore) GetEntryByID(id int64) (entry.Entry, bool, error) {
	if id <= 0 {
		return entry.Entry{}, false, fmt.Errorf("time entry id must be > 0")
	}

	const query = `
SELECT id, project_number, start_datetime, end_datetime, corrected_duration
FROM time_entries
WHERE id = ?;
`
	value, err := scanEntry(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry.Entry{}, false, nil
		}
		return entry.Entry{}, false, err
	}
	return value, true, nil
}

// UpdateEntry replaces the user-editable fields for the row with the given ID.
// Editing times drops any corrected duration, since the balancing it came
// from no longer matches the entry.
func (s *SQLiteStore) UpdateEntry(e entry.Entry) error {
	if e.ID <= 0 {
		return fmt.Errorf("time entry id must be > 0")
	}

	const updateStmt = `
UPDATE time_entries
SET project_number = ?, start_datetime = ?, end_datetime = ?, corrected_duration = NULL
WHERE id = ?;`

	res, err := s.db.Exec(
		updateStmt,
		e.ProjectNumber,
		e.StartDateTime.Format(time.RFC3339),
		nullableEnd(e),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("update time entry %d: %w", e.ID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// DeleteEntry removes the row with the given ID.
func (s *SQLiteStore) DeleteEntry(id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("time entry id must be > 0")
	}

	res, err := s.db.Exec(`DELETE FROM time_entries WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete time entry %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	return rowsAffected > 0, nil
}

// ApplyCorrections writes corrected durations for the given entry IDs in one
// transaction, so concurrent balancing runs for the same day cannot leave a
// half-applied mix.
func (s *SQLiteStore) ApplyCorrections(corrections map[int64]int64) (int, error) {
	if len(corrections) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`UPDATE time_entries SET corrected_duration = ? WHERE id = ?;`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare update statement: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for id, seconds := range corrections {
		if id <= 0 || seconds < 0 {
			_ = tx.Rollback()
			return 0, fmt.Errorf("invalid correction: id=%d seconds=%d", id, seconds)
		}
		res, err := stmt.Exec(seconds, id)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("apply correction for entry %d: %w", id, err)
		}
		rowsAffected, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("read updated row count: %w", err)
		}
		if rowsAffected == 0 {
			_ = tx.Rollback()
			return 0, fmt.Errorf("apply correction for entry %d: %w", id, ErrEntryNotFound)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit correction transaction: %w", err)
	}

	return updated, nil
}

// ClearCorrectionsForDay removes all corrected durations of the local
// calendar day in one transaction. Repeated calls are no-ops.
func (s *SQLiteStore) ClearCorrectionsForDay(day time.Time) (int, error) {
	entries, err := s.ListCompletedForDay(day)
	if err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if e.CorrectedDuration != nil {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`UPDATE time_entries SET corrected_duration = NULL WHERE id = ?;`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare update statement: %w", err)
	}
	defer stmt.Close()

	cleared := 0
	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("clear correction for entry %d: %w", id, err)
		}
		cleared++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit undo transaction: %w", err)
	}

	return cleared, nil
}

func (s *SQLiteStore) DeleteAllEntries() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM time_entries;`)
	if err != nil {
		return 0, fmt.Errorf("delete time entries: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	return rows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (entry.Entry, error) {
	var (
		e         entry.Entry
		startRaw  string
		endRaw    sql.NullString
		corrected sql.NullInt64
	)

	if err := row.Scan(&e.ID, &e.ProjectNumber, &startRaw, &endRaw, &corrected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry.Entry{}, err
		}
		return entry.Entry{}, fmt.Errorf("scan time entry: %w", err)
	}

	var err error
	e.StartDateTime, err = time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("parse start datetime %q: %w", startRaw, err)
	}
	if endRaw.Valid {
		e.EndDateTime, err = time.Parse(time.RFC3339, endRaw.String)
		if err != nil {
			return entry.Entry{}, fmt.Errorf("parse end datetime %q: %w", endRaw.String, err)
		}
	}
	if corrected.Valid {
		value := corrected.Int64
		e.CorrectedDuration = &value
	}

	return e, nil
}

func nullableEnd(e entry.Entry) any {
	if e.Running() {
		return nil
	}
	return e.EndDateTime.Format(time.RFC3339)
}

func nullableCorrected(e entry.Entry) any {
	if e.CorrectedDuration == nil {
		return nil
	}
	return *e.CorrectedDuration
}
