// Package store provides persistence for categories, sessions, tasks, and
// live timer state. The Store interface is what the rest of flowtrack
// programs against; SQLite is the only implementation.
package store

import (
	"context"
	"time"

	"flowtrack/internal/category"
	"flowtrack/internal/session"
	"flowtrack/internal/timer"
)

// SessionFilter defines query parameters for listing sessions.
type SessionFilter struct {
	CategoryID string    // restrict to one category ("" = all)
	From       time.Time // inclusive lower bound on start time (zero = open)
	To         time.Time // exclusive upper bound on start time (zero = open)
	Flagged    bool      // only flagged sessions if true
	Limit      int       // maximum results (0 = no limit)
}

// DefaultSessionFilter returns a filter with sensible defaults.
func DefaultSessionFilter() SessionFilter {
	return SessionFilter{Limit: 100}
}

// WithCategory returns a copy of the filter restricted to one category.
func (f SessionFilter) WithCategory(id string) SessionFilter {
	f.CategoryID = id
	return f
}

// WithRange returns a copy of the filter bounded to [from, to).
func (f SessionFilter) WithRange(from, to time.Time) SessionFilter {
	f.From = from
	f.To = to
	return f
}

// WithLimit returns a copy of the filter with a new limit.
func (f SessionFilter) WithLimit(n int) SessionFilter {
	f.Limit = n
	return f
}

// CategoryStore is category CRUD.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *category.Category) error
	GetCategory(ctx context.Context, id string) (*category.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*category.Category, error)
	ListCategories(ctx context.Context, includeArchived bool) ([]*category.Category, error)
	UpdateCategory(ctx context.Context, c *category.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// SessionStore is the append-only session history. Records are never
// mutated once stored except through UpdateSessionNote.
type SessionStore interface {
	AppendSessions(ctx context.Context, recs []session.Record) error
	GetSession(ctx context.Context, id string) (*session.Record, error)
	ListSessions(ctx context.Context, f SessionFilter) ([]*session.Record, error)
	UpdateSessionNote(ctx context.Context, id, note string) error
}

// TaskStore is per-category task CRUD.
type TaskStore interface {
	CreateTask(ctx context.Context, t *category.Task) error
	GetTask(ctx context.Context, id string) (*category.Task, error)
	CompleteTask(ctx context.Context, id string, at time.Time) (*category.Task, error)
	ListTasks(ctx context.Context, categoryID string, includeDone bool) ([]*category.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// TimerStateStore persists each category's live engine state so separate
// CLI invocations share one timeline.
type TimerStateStore interface {
	LoadTimerState(ctx context.Context, categoryID string) (timer.State, bool, error)
	SaveTimerState(ctx context.Context, categoryID string, s timer.State, at time.Time) error
	DeleteTimerState(ctx context.Context, categoryID string) error
	ListTimerStates(ctx context.Context) (map[string]timer.State, error)
}

// Store is the full persistence surface.
type Store interface {
	CategoryStore
	SessionStore
	TaskStore
	TimerStateStore

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	// Close releases any resources held by the store.
	Close() error
}
