package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrack/internal/category"
	"flowtrack/internal/session"
	"flowtrack/internal/timer"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testCategory(t *testing.T, s *SQLite, name string) *category.Category {
	t.Helper()
	c, err := category.New(name, "", timer.ModeFlow, t0)
	require.NoError(t, err)
	require.NoError(t, s.CreateCategory(context.Background(), &c))
	return &c
}

func testRecord(categoryID string, start time.Time, focused time.Duration) session.Record {
	return session.NewRecord(categoryID, session.Candidate{
		Focused:      focused,
		TotalElapsed: focused,
		Segments:     1,
		Start:        start,
		End:          start.Add(focused),
		Mode:         timer.ModeFlow,
	}, session.Metadata{}, 0)
}

// --- Category Tests ---

func TestCategoryRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := testCategory(t, s, "writing")

	got, err := s.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "writing", got.Name)
	assert.Equal(t, timer.ModeFlow, got.Mode)

	got, err = s.GetCategoryByName(ctx, "writing")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestCategoryUniqueName(t *testing.T) {
	s := openTestStore(t)

	testCategory(t, s, "writing")
	dup, err := category.New("writing", "", timer.ModeFlow, t0)
	require.NoError(t, err)

	err = s.CreateCategory(context.Background(), &dup)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCategoryNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetCategory(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
}

func TestListCategoriesSkipsArchived(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	testCategory(t, s, "writing")
	archived := testCategory(t, s, "old project")
	archived.Archived = true
	require.NoError(t, s.UpdateCategory(ctx, archived))

	active, err := s.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "writing", active[0].Name)

	all, err := s.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteCategoryRetainsSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := testCategory(t, s, "writing")
	rec := testRecord(c.ID, t0, 10*time.Minute)
	require.NoError(t, s.AppendSessions(ctx, []session.Record{rec}))
	require.NoError(t, s.SaveTimerState(ctx, c.ID, timer.NewState(timer.ModeFlow), t0))

	require.NoError(t, s.DeleteCategory(ctx, c.ID))

	_, err := s.GetCategory(ctx, c.ID)
	assert.True(t, IsNotFound(err))

	_, found, err := s.LoadTimerState(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, found, "live state goes with the category")

	recs, err := s.ListSessions(ctx, DefaultSessionFilter())
	require.NoError(t, err)
	assert.Len(t, recs, 1, "history outlives its category")
}

// --- Session Tests ---

func TestSessionAppendAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := testCategory(t, s, "writing")
	rec := testRecord(c.ID, t0, 25*time.Minute)
	rec.Rating = 4
	rec.Tags = []string{"deep", "morning"}
	rec.CompletedTasks = []timer.TaskRef{{ID: "t1", Name: "draft intro", CompletedAt: t0.Add(time.Minute)}}

	require.NoError(t, s.AppendSessions(ctx, []session.Record{rec}))

	got, err := s.GetSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 25*time.Minute, got.Duration)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, []string{"deep", "morning"}, got.Tags)
	require.Len(t, got.CompletedTasks, 1)
	assert.Equal(t, "draft intro", got.CompletedTasks[0].Name)
	assert.True(t, got.StartTime.Equal(t0))
}

func TestListSessionsFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := testCategory(t, s, "writing")
	b := testCategory(t, s, "reading")

	require.NoError(t, s.AppendSessions(ctx, []session.Record{
		testRecord(a.ID, t0, 10*time.Minute),
		testRecord(a.ID, t0.Add(24*time.Hour), 20*time.Minute),
		testRecord(b.ID, t0.Add(time.Hour), 30*time.Minute),
	}))

	recs, err := s.ListSessions(ctx, DefaultSessionFilter().WithCategory(a.ID))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.True(t, recs[0].StartTime.After(recs[1].StartTime), "newest first")

	recs, err = s.ListSessions(ctx, DefaultSessionFilter().WithRange(t0, t0.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = s.ListSessions(ctx, DefaultSessionFilter().WithLimit(1))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestListSessionsFlaggedOnly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := testCategory(t, s, "writing")
	flagged := testRecord(c.ID, t0, 4*time.Hour)
	flagged.Flagged = true
	require.NoError(t, s.AppendSessions(ctx, []session.Record{
		flagged,
		testRecord(c.ID, t0.Add(5*time.Hour), 10*time.Minute),
	}))

	f := DefaultSessionFilter()
	f.Flagged = true
	recs, err := s.ListSessions(ctx, f)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, flagged.ID, recs[0].ID)
}

func TestUpdateSessionNote(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := testCategory(t, s, "writing")
	rec := testRecord(c.ID, t0, 10*time.Minute)
	require.NoError(t, s.AppendSessions(ctx, []session.Record{rec}))

	require.NoError(t, s.UpdateSessionNote(ctx, rec.ID, "went well"))
	got, err := s.GetSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "went well", got.Notes)

	err = s.UpdateSessionNote(ctx, "nope", "x")
	assert.True(t, IsNotFound(err))
}

// --- Task Tests ---

func TestTaskLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := testCategory(t, s, "writing")
	task, err := category.NewTask(c.ID, "draft intro", t0)
	require.NoError(t, err)
	require.NoError(t, s.CreateTask(ctx, &task))

	open, err := s.ListTasks(ctx, c.ID, false)
	require.NoError(t, err)
	require.Len(t, open, 1)

	done, err := s.CompleteTask(ctx, task.ID, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, done.Done)
	assert.True(t, done.CompletedAt.Equal(t0.Add(time.Hour)))

	open, err = s.ListTasks(ctx, c.ID, false)
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := s.ListTasks(ctx, c.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Completing twice is a no-op.
	again, err := s.CompleteTask(ctx, task.ID, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, again.CompletedAt.Equal(t0.Add(time.Hour)))
}

// --- Timer State Tests ---

func TestTimerStateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := testCategory(t, s, "writing")

	_, found, err := s.LoadTimerState(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, found)

	state, _ := timer.Start(timer.NewState(timer.ModeFlow), t0, timer.Config{})
	state, _ = timer.Toggle(state, t0.Add(10*time.Second), timer.Config{})
	require.NoError(t, s.SaveTimerState(ctx, c.ID, state, t0.Add(10*time.Second)))

	got, found, err := s.LoadTimerState(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, timer.StatusBreak, got.Status)
	assert.Equal(t, state.Intervals, got.Intervals)

	// Upsert keeps one row per category.
	state, _ = timer.Toggle(state, t0.Add(12*time.Second), timer.Config{})
	require.NoError(t, s.SaveTimerState(ctx, c.ID, state, t0.Add(12*time.Second)))

	states, err := s.ListTimerStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, timer.StatusRunning, states[c.ID].Status)

	require.NoError(t, s.DeleteTimerState(ctx, c.ID))
	_, found, err = s.LoadTimerState(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, found)
}
