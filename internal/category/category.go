// Package category defines user categories and their task lists.
package category

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flowtrack/internal/timer"
)

// ErrInvalidName indicates an unusable category name.
var ErrInvalidName = errors.New("invalid category name")

// Category is one independently tracked focus area.
type Category struct {
	ID        string
	Name      string
	Color     string
	Mode      timer.Mode
	Archived  bool
	CreatedAt time.Time
}

// New creates a category with a fresh ID. Unknown modes fall back to flow.
func New(name, color string, mode timer.Mode, now time.Time) (Category, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return Category{}, err
	}
	if !mode.Valid() {
		mode = timer.ModeFlow
	}
	return Category{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		Mode:      mode,
		CreatedAt: now,
	}, nil
}

// ValidateName rejects empty and over-long names.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > 120 {
		return fmt.Errorf("%w: longer than 120 characters", ErrInvalidName)
	}
	return nil
}

// Task is one item on a category's task list. Completing a task while the
// category's session chain is open records it into the session.
type Task struct {
	ID          string
	CategoryID  string
	Name        string
	Done        bool
	CreatedAt   time.Time
	CompletedAt time.Time
}

// NewTask creates a task with a fresh ID.
func NewTask(categoryID, name string, now time.Time) (Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Task{}, fmt.Errorf("%w: empty task name", ErrInvalidName)
	}
	return Task{
		ID:         uuid.NewString(),
		CategoryID: categoryID,
		Name:       name,
		CreatedAt:  now,
	}, nil
}
