package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"flowtrack/internal/category"
	"flowtrack/internal/session"
	"flowtrack/internal/timer"
)

// SQLite is the sqlite-backed store.
type SQLite struct {
	db   *sql.DB
	path string
}

// Verify SQLite implements Store
var _ Store = (*SQLite)(nil)

// Open creates or opens the database under dataDir.
func Open(dataDir string) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "flowtrack.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLite{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL DEFAULT 'flow',
		archived INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		total_elapsed_ms INTEGER NOT NULL,
		session_start DATETIME NOT NULL,
		mode TEXT NOT NULL,
		segments INTEGER NOT NULL DEFAULT 1,
		rating INTEGER NOT NULL DEFAULT 0,
		tags_json TEXT,
		distractions_json TEXT,
		distraction_note TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		tasks_json TEXT,
		flagged INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_category ON sessions(category_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time DESC);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		name TEXT NOT NULL,
		done INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category_id, done);

	CREATE TABLE IF NOT EXISTS timer_states (
		category_id TEXT PRIMARY KEY,
		state_json TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ping verifies the connection is alive.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Category operations

func (s *SQLite) CreateCategory(ctx context.Context, c *category.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, mode, archived, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Color, string(c.Mode), c.Archived, c.CreatedAt)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return fmt.Errorf("category %q: %w", c.Name, ErrAlreadyExists)
	}
	return err
}

func (s *SQLite) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	return s.scanCategory(s.db.QueryRowContext(ctx, `
		SELECT id, name, color, mode, archived, created_at
		FROM categories WHERE id = ?
	`, id), id)
}

func (s *SQLite) GetCategoryByName(ctx context.Context, name string) (*category.Category, error) {
	return s.scanCategory(s.db.QueryRowContext(ctx, `
		SELECT id, name, color, mode, archived, created_at
		FROM categories WHERE name = ?
	`, name), name)
}

func (s *SQLite) scanCategory(row *sql.Row, key string) (*category.Category, error) {
	var c category.Category
	var mode string
	err := row.Scan(&c.ID, &c.Name, &c.Color, &mode, &c.Archived, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("category", key)
	}
	if err != nil {
		return nil, err
	}
	c.Mode = timer.Mode(mode)
	return &c, nil
}

func (s *SQLite) ListCategories(ctx context.Context, includeArchived bool) ([]*category.Category, error) {
	query := `SELECT id, name, color, mode, archived, created_at FROM categories`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*category.Category
	for rows.Next() {
		var c category.Category
		var mode string
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &mode, &c.Archived, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Mode = timer.Mode(mode)
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

func (s *SQLite) UpdateCategory(ctx context.Context, c *category.Category) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, color = ?, mode = ?, archived = ? WHERE id = ?
	`, c.Name, c.Color, string(c.Mode), c.Archived, c.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("category %q: %w", c.Name, ErrAlreadyExists)
		}
		return err
	}
	return s.requireRow(res, "category", c.ID)
}

// DeleteCategory removes the category, its tasks, and its live timer
// state. Stored sessions are retained; history outlives its category.
func (s *SQLite) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewNotFoundError("category", id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE category_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timer_states WHERE category_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Session operations

func (s *SQLite) AppendSessions(ctx context.Context, recs []session.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, rec := range recs {
		tagsJSON, _ := json.Marshal(rec.Tags)
		distractionsJSON, _ := json.Marshal(rec.Distractions)
		tasksJSON, _ := json.Marshal(rec.CompletedTasks)

		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, category_id, start_time, end_time, duration_ms,
				total_elapsed_ms, session_start, mode, segments, rating,
				tags_json, distractions_json, distraction_note, notes, tasks_json, flagged)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.CategoryID, rec.StartTime, rec.EndTime, rec.Duration.Milliseconds(),
			rec.TotalElapsed.Milliseconds(), rec.SessionStart, string(rec.Mode), rec.Segments, rec.Rating,
			tagsJSON, distractionsJSON, rec.DistractionNote, rec.Notes, tasksJSON, rec.Flagged)
		if err != nil {
			return fmt.Errorf("append session %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

const sessionColumns = `id, category_id, start_time, end_time, duration_ms,
	total_elapsed_ms, session_start, mode, segments, rating,
	tags_json, distractions_json, distraction_note, notes, tasks_json, flagged`

func (s *SQLite) GetSession(ctx context.Context, id string) (*session.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, NewNotFoundError("session", id)
	}
	return scanSession(rows)
}

func (s *SQLite) ListSessions(ctx context.Context, f SessionFilter) ([]*session.Record, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var where []string
	var args []any

	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.From.IsZero() {
		where = append(where, "start_time >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "start_time < ?")
		args = append(args, f.To)
	}
	if f.Flagged {
		where = append(where, "flagged = 1")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*session.Record
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanSession(rows *sql.Rows) (*session.Record, error) {
	var rec session.Record
	var durationMS, elapsedMS int64
	var mode string
	var tagsJSON, distractionsJSON, tasksJSON sql.NullString

	err := rows.Scan(&rec.ID, &rec.CategoryID, &rec.StartTime, &rec.EndTime, &durationMS,
		&elapsedMS, &rec.SessionStart, &mode, &rec.Segments, &rec.Rating,
		&tagsJSON, &distractionsJSON, &rec.DistractionNote, &rec.Notes, &tasksJSON, &rec.Flagged)
	if err != nil {
		return nil, err
	}

	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.TotalElapsed = time.Duration(elapsedMS) * time.Millisecond
	rec.Mode = timer.Mode(mode)
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &rec.Tags)
	}
	if distractionsJSON.Valid {
		json.Unmarshal([]byte(distractionsJSON.String), &rec.Distractions)
	}
	if tasksJSON.Valid {
		json.Unmarshal([]byte(tasksJSON.String), &rec.CompletedTasks)
	}
	return &rec, nil
}

// UpdateSessionNote is the only permitted mutation of a stored session.
func (s *SQLite) UpdateSessionNote(ctx context.Context, id, note string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET notes = ? WHERE id = ?`, note, id)
	if err != nil {
		return err
	}
	return s.requireRow(res, "session", id)
}

// Task operations

func (s *SQLite) CreateTask(ctx context.Context, t *category.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, category_id, name, done, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, NULL)
	`, t.ID, t.CategoryID, t.Name, t.Done, t.CreatedAt)
	return err
}

func (s *SQLite) GetTask(ctx context.Context, id string) (*category.Task, error) {
	var t category.Task
	var completedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, done, created_at, completed_at
		FROM tasks WHERE id = ?
	`, id).Scan(&t.ID, &t.CategoryID, &t.Name, &t.Done, &t.CreatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("task", id)
	}
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t.CompletedAt = completedAt.Time
	}
	return &t, nil
}

func (s *SQLite) CompleteTask(ctx context.Context, id string, at time.Time) (*category.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Done {
		return t, nil
	}
	t.Done = true
	t.CompletedAt = at
	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks SET done = 1, completed_at = ? WHERE id = ?
	`, at, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *SQLite) ListTasks(ctx context.Context, categoryID string, includeDone bool) ([]*category.Task, error) {
	query := `SELECT id, category_id, name, done, created_at, completed_at FROM tasks WHERE category_id = ?`
	if !includeDone {
		query += ` AND done = 0`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*category.Task
	for rows.Next() {
		var t category.Task
		var completedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.Name, &t.Done, &t.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t.CompletedAt = completedAt.Time
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (s *SQLite) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return s.requireRow(res, "task", id)
}

// Timer state operations

func (s *SQLite) LoadTimerState(ctx context.Context, categoryID string) (timer.State, bool, error) {
	var stateJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT state_json FROM timer_states WHERE category_id = ?
	`, categoryID).Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return timer.State{}, false, nil
	}
	if err != nil {
		return timer.State{}, false, err
	}

	var state timer.State
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		// A corrupt row is treated as absent; the tracker starts fresh.
		return timer.State{}, false, nil
	}
	return state, true, nil
}

func (s *SQLite) SaveTimerState(ctx context.Context, categoryID string, state timer.State, at time.Time) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal timer state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO timer_states (category_id, state_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(category_id) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at
	`, categoryID, stateJSON, at)
	return err
}

func (s *SQLite) DeleteTimerState(ctx context.Context, categoryID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM timer_states WHERE category_id = ?`, categoryID)
	return err
}

func (s *SQLite) ListTimerStates(ctx context.Context) (map[string]timer.State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category_id, state_json FROM timer_states`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make(map[string]timer.State)
	for rows.Next() {
		var categoryID, stateJSON string
		if err := rows.Scan(&categoryID, &stateJSON); err != nil {
			return nil, err
		}
		var state timer.State
		if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
			continue
		}
		states[categoryID] = state
	}
	return states, rows.Err()
}

func (s *SQLite) requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NewNotFoundError(entity, id)
	}
	return nil
}
