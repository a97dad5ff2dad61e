package task_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydo/internal/task"
	"pydo/internal/testutil"
)

// memRepo is an in-memory Repository for lifecycle tests. It mirrors
// the store's contract: ids are allocated once and never reused, and
// CloseTask only transitions open tasks.
type memRepo struct {
	tasks  []*task.Task
	nextID int64
}

func (r *memRepo) AddTask(_ context.Context, t *task.Task) error {
	r.nextID++
	t.ID = r.nextID
	r.tasks = append(r.tasks, t)

	return nil
}

func (r *memRepo) GetTask(_ context.Context, id int64) (*task.Task, error) {
	for _, t := range r.tasks {
		if t.ID == id {
			return t, nil
		}
	}

	return nil, fmt.Errorf("%w: %d", task.ErrTaskNotFound, id)
}

func (r *memRepo) ScanTasks(_ context.Context, state string) ([]*task.Task, error) {
	var out []*task.Task

	for _, t := range r.tasks {
		if state == "" || t.State == state {
			out = append(out, t)
		}
	}

	return out, nil
}

func (r *memRepo) CloseTask(_ context.Context, id int64, state string, closedAt time.Time) (bool, error) {
	for _, t := range r.tasks {
		if t.ID != id {
			continue
		}

		if t.State != task.StateOpen {
			return false, nil
		}

		t.State = state
		closed := closedAt
		t.ClosedAt = &closed

		return true, nil
	}

	return false, nil
}

func newTestService() (*task.Service, *memRepo) {
	repo := &memRepo{}

	return task.NewService(repo, testutil.NewClock().Now), repo
}

func affectedIDs(tasks []*task.Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}

	return ids
}

func Test_Add_Allocates_Sequential_IDs(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Add(ctx, "Buy milk", []string{"shopping"}, nil)
	require.NoError(t, err)

	second, err := svc.Add(ctx, "Buy bread", []string{"shopping"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func Test_Add_Rejects_Empty_Description(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService()

	_, err := svc.Add(context.Background(), "", nil, nil)
	require.ErrorIs(t, err, task.ErrValidation)
	assert.Empty(t, repo.tasks, "no partial task may be created")
}

func Test_Add_Then_List_Includes_Task_Exactly_Once(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	added, err := svc.Add(ctx, "Buy milk", nil, nil)
	require.NoError(t, err)

	open, err := svc.List(ctx, "", task.ScopeOpen)
	require.NoError(t, err)

	assert.Equal(t, []int64{added.ID}, affectedIDs(open))
}

func Test_Complete_Applies_To_All_Matches(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "Buy milk", []string{"shopping"}, nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Buy bread", []string{"shopping"}, nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Water plants", nil, nil)
	require.NoError(t, err)

	affected, err := svc.Complete(ctx, "+shopping")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, affectedIDs(affected), "multiple hits apply to all of them")

	open, err := svc.List(ctx, "", task.ScopeOpen)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, affectedIDs(open))
}

func Test_Complete_Twice_Is_Idempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "Buy milk", []string{"shopping"}, nil)
	require.NoError(t, err)

	first, err := svc.Complete(ctx, "+shopping")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Complete(ctx, "+shopping")
	require.NoError(t, err)
	assert.Empty(t, second, "second invocation affects nothing")
}

func Test_Complete_Empty_Result_Is_Not_An_Error(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()

	affected, err := svc.Complete(context.Background(), "+nothing-has-this-tag")
	require.NoError(t, err)
	assert.Empty(t, affected)
}

func Test_Complete_Missing_ID_Reports_Not_Found(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService()

	_, err := svc.Complete(context.Background(), "1")
	require.ErrorIs(t, err, task.ErrTaskNotFound)
	assert.True(t, task.IsNotFound(err))
	assert.Empty(t, repo.tasks, "store stays unchanged")
}

func Test_Complete_By_ID_Of_Closed_Task_Is_A_NoOp(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	added, err := svc.Add(ctx, "Buy milk", nil, nil)
	require.NoError(t, err)

	_, err = svc.Remove(ctx, "1")
	require.NoError(t, err)

	// The id resolves across history, but the transition guard skips
	// the already-closed task instead of erroring.
	affected, err := svc.Complete(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, affected)

	got, err := svc.List(ctx, "1", task.ScopeOpen)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, task.StateDeleted, got[0].State, "first transition wins")
	assert.Equal(t, added.ID, got[0].ID)
}

func Test_Remove_Transitions_To_Deleted(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "Buy milk", nil, nil)
	require.NoError(t, err)

	affected, err := svc.Remove(ctx, "milk")
	require.NoError(t, err)
	require.Len(t, affected, 1)

	assert.Equal(t, task.StateDeleted, affected[0].State)
	require.NotNil(t, affected[0].ClosedAt)
}

func Test_Closed_Tasks_Leave_Open_Scope_For_Any_Filter(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "Buy milk", []string{"shopping"}, []string{"home"})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "")
	require.NoError(t, err)

	for _, filter := range []string{"", "+shopping", "pro:home", "milk"} {
		open, listErr := svc.List(ctx, filter, task.ScopeOpen)
		require.NoError(t, listErr)
		assert.Empty(t, open, "filter %q must not see closed tasks", filter)
	}

	done, err := svc.List(ctx, "", task.ScopeDone)
	require.NoError(t, err)
	assert.Len(t, done, 1)
}

func Test_List_ID_Filter_Bypasses_Scope(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "Buy milk", nil, nil)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "1")
	require.NoError(t, err)

	got, err := svc.List(ctx, "1", task.ScopeOpen)
	require.NoError(t, err)
	require.Len(t, got, 1, "explicit id resolves regardless of state")
	assert.Equal(t, task.StateDone, got[0].State)
}

func Test_Resolve_Keeps_Creation_Order(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	for _, description := range []string{"first chore", "second chore", "third chore"} {
		_, err := svc.Add(ctx, description, []string{"chores"}, nil)
		require.NoError(t, err)
	}

	open, err := svc.List(ctx, "+chores", task.ScopeOpen)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, affectedIDs(open))
}
