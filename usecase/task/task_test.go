package task

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/repository"
	"github.com/fastygo/taskr/repository/sqlite"
	"github.com/fastygo/taskr/usecase"
)

// spyRepository counts mutating calls and can inject version conflicts.
type spyRepository struct {
	repository.TaskRepository

	mu        sync.Mutex
	updates   int
	deletes   int
	conflicts int
}

func (s *spyRepository) Update(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	s.updates++
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return domain.ErrTaskConflict
	}
	s.mu.Unlock()
	return s.TaskRepository.Update(ctx, task)
}

func (s *spyRepository) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	return s.TaskRepository.Delete(ctx, id)
}

type memoryRecorder struct {
	decisions []usecase.AccessDecision
}

func (m *memoryRecorder) RecordAccess(_ context.Context, decision usecase.AccessDecision) error {
	m.decisions = append(m.decisions, decision)
	return nil
}

type fixture struct {
	uc       *UseCase
	repo     *spyRepository
	recorder *memoryRecorder
	users    repository.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	spy := &spyRepository{TaskRepository: sqlite.NewTaskRepository(db)}
	recorder := &memoryRecorder{}
	return &fixture{
		uc:       New(spy, recorder, nil),
		repo:     spy,
		recorder: recorder,
		users:    sqlite.NewUserRepository(db),
	}
}

func (f *fixture) login(t *testing.T, name string, role domain.Role) *domain.Session {
	t.Helper()
	user := &domain.User{Name: name, Email: name + "@gogo.com", PasswordHash: "x", Role: role}
	require.NoError(t, f.users.Create(context.Background(), user))
	return &domain.Session{ID: "session-" + name, UserID: user.ID, UserName: name, Role: role}
}

var bankTask = CreateInput{
	Name:       "Go to the bank",
	DueDate:    "2015-02-05",
	Priority:   1,
	PostedDate: "2015-02-04",
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.login(t, "Aleksandr", domain.RoleUser)

	created, err := f.uc.CreateTask(ctx, owner, bankTask)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, created.Status)
	assert.Equal(t, owner.UserID, created.OwnerID)

	t.Run("slash dates accepted", func(t *testing.T) {
		task, err := f.uc.CreateTask(ctx, owner, CreateInput{
			Name: "Finish Real Python", DueDate: "03/13/2015", Priority: 10, PostedDate: "03/13/2015",
		})
		require.NoError(t, err)
		assert.Equal(t, "2015-03-13", task.DueDate.Format("2006-01-02"))
	})

	t.Run("past due date permitted", func(t *testing.T) {
		_, err := f.uc.CreateTask(ctx, owner, CreateInput{
			Name: "Old", DueDate: "1999-01-01", Priority: 1, PostedDate: "1999-01-01",
		})
		assert.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			desc  string
			input CreateInput
			field string
		}{
			{"empty name", CreateInput{Name: " ", DueDate: "2015-02-05", Priority: 1, PostedDate: "2015-02-04"}, "name"},
			{"empty due date", CreateInput{Name: "Go to the bank", DueDate: "", Priority: 1, PostedDate: "02/04/2016"}, "due_date"},
			{"bad due date", CreateInput{Name: "x", DueDate: "2015-13-45", Priority: 1, PostedDate: "2015-02-04"}, "due_date"},
			{"zero priority", CreateInput{Name: "x", DueDate: "2015-02-05", Priority: 0, PostedDate: "2015-02-04"}, "priority"},
			{"negative priority", CreateInput{Name: "x", DueDate: "2015-02-05", Priority: -3, PostedDate: "2015-02-04"}, "priority"},
			{"bad posted date", CreateInput{Name: "x", DueDate: "2015-02-05", Priority: 1, PostedDate: "yesterday"}, "posted_date"},
		}
		for _, tc := range cases {
			t.Run(tc.desc, func(t *testing.T) {
				_, err := f.uc.CreateTask(ctx, owner, tc.input)
				require.Error(t, err)
				assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
				assert.Equal(t, tc.field, domain.FieldOf(err))
			})
		}
	})

	t.Run("requires session", func(t *testing.T) {
		_, err := f.uc.CreateTask(ctx, nil, bankTask)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}

func TestListTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.login(t, "Aleksandr", domain.RoleUser)
	other := f.login(t, "Thisguy", domain.RoleUser)

	first, err := f.uc.CreateTask(ctx, owner, bankTask)
	require.NoError(t, err)
	second, err := f.uc.CreateTask(ctx, owner, CreateInput{Name: "Second", DueDate: "2015-02-06", Priority: 2, PostedDate: "2015-02-04"})
	require.NoError(t, err)
	_, err = f.uc.CreateTask(ctx, other, bankTask)
	require.NoError(t, err)

	tasks, err := f.uc.ListTasks(ctx, owner, ListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)

	_, err = f.uc.CompleteTask(ctx, owner, first.ID)
	require.NoError(t, err)

	open := domain.StatusOpen
	openTasks, err := f.uc.ListTasks(ctx, owner, ListFilter{Status: &open})
	require.NoError(t, err)
	require.Len(t, openTasks, 1)
	assert.Equal(t, second.ID, openTasks[0].ID)

	_, err = f.uc.ListTasks(ctx, nil, ListFilter{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestCompleteTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.login(t, "Aleksandr", domain.RoleUser)

	created, err := f.uc.CreateTask(ctx, owner, bankTask)
	require.NoError(t, err)

	completed, err := f.uc.CompleteTask(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, completed.Status)

	again, err := f.uc.CompleteTask(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, again.Status)
	assert.Equal(t, 1, f.repo.updates, "re-closing must not write")

	_, err = f.uc.CompleteTask(ctx, owner, "missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestCompleteTask_RetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.login(t, "Aleksandr", domain.RoleUser)

	created, err := f.uc.CreateTask(ctx, owner, bankTask)
	require.NoError(t, err)

	f.repo.conflicts = 2
	completed, err := f.uc.CompleteTask(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, completed.Status)
	assert.Equal(t, 3, f.repo.updates)
	assert.Len(t, f.recorder.decisions, 1)
}

func TestCompleteTask_ConflictExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.login(t, "Aleksandr", domain.RoleUser)

	created, err := f.uc.CreateTask(ctx, owner, bankTask)
	require.NoError(t, err)

	f.repo.conflicts = maxConflictRetries
	_, err = f.uc.CompleteTask(ctx, owner, created.ID)
	assert.ErrorIs(t, err, domain.ErrTaskConflict)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.login(t, "Aleksandr", domain.RoleUser)

	created, err := f.uc.CreateTask(ctx, owner, bankTask)
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteTask(ctx, owner, created.ID))

	tasks, err := f.uc.ListTasks(ctx, owner, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.ErrorIs(t, f.uc.DeleteTask(ctx, owner, created.ID), domain.ErrTaskNotFound)
}

func TestForeignMutationsAreForbidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.login(t, "Aleksandr", domain.RoleUser)
	intruder := f.login(t, "Thisguy", domain.RoleUser)

	created, err := f.uc.CreateTask(ctx, owner, bankTask)
	require.NoError(t, err)

	_, err = f.uc.CompleteTask(ctx, intruder, created.ID)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	assert.Equal(t, "You can only update tasks that belong to you.", err.Error())

	err = f.uc.DeleteTask(ctx, intruder, created.ID)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	assert.Equal(t, "You can only delete tasks that belong to you.", err.Error())

	assert.Zero(t, f.repo.updates)
	assert.Zero(t, f.repo.deletes)

	tasks, err := f.uc.ListTasks(ctx, owner, ListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.StatusOpen, tasks[0].Status)

	require.Len(t, f.recorder.decisions, 2)
	for _, d := range f.recorder.decisions {
		assert.False(t, d.Allowed)
		assert.Equal(t, intruder.UserID, d.Actor.UserID)
		assert.Equal(t, owner.UserID, d.OwnerID)
	}
}

func TestScenario_OwnerCreatesIntruderDenied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	aleksandr := f.login(t, "Aleksandr", domain.RoleUser)

	created, err := f.uc.CreateTask(ctx, aleksandr, bankTask)
	require.NoError(t, err)

	tasks, err := f.uc.ListTasks(ctx, aleksandr, ListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Go to the bank", tasks[0].Name)
	assert.Equal(t, domain.StatusOpen, tasks[0].Status)

	thisguy := f.login(t, "Thisguy", domain.RoleUser)
	_, err = f.uc.CompleteTask(ctx, thisguy, created.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	reread, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, reread.Status)
}

func TestScenario_AdminActsOnAnyTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	aleksandr := f.login(t, "Aleksandr", domain.RoleUser)
	skynet := f.login(t, "Skynet", domain.RoleAdmin)

	first, err := f.uc.CreateTask(ctx, aleksandr, bankTask)
	require.NoError(t, err)
	second, err := f.uc.CreateTask(ctx, aleksandr, bankTask)
	require.NoError(t, err)

	completed, err := f.uc.CompleteTask(ctx, skynet, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, completed.Status)
	assert.Equal(t, aleksandr.UserID, completed.OwnerID, "owner never changes")

	require.NoError(t, f.uc.DeleteTask(ctx, skynet, second.ID))

	tasks, err := f.uc.ListTasks(ctx, aleksandr, ListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, domain.StatusClosed, tasks[0].Status)
}
