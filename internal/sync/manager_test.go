package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldforge/jobsync/internal/api"
	"github.com/fieldforge/jobsync/internal/model"
	"github.com/fieldforge/jobsync/internal/store"
)

// fakeRemote is an in-memory Remote. Each Create hands back a
// backend-style ID so rekeying paths get exercised; errors are
// injected per concern.
type fakeRemote struct {
	online bool

	createSeq int

	failProjects bool
	failTasks    bool
	failEvents   bool

	projectFields map[string][]api.Fields
	taskFields    map[string][]api.Fields
	eventFields   map[string][]api.Fields

	createdProjects []api.ProjectCreate
	createdTasks    []api.TaskCreate
	createdEvents   []api.EventCreate

	deletedTasks  []string
	deletedEvents []string

	company   *model.Company
	users     []model.User
	taskTypes []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		online:        true,
		projectFields: map[string][]api.Fields{},
		taskFields:    map[string][]api.Fields{},
		eventFields:   map[string][]api.Fields{},
	}
}

func (f *fakeRemote) nextID(prefix string) string {
	f.createSeq++
	return fmt.Sprintf("%s-%d", prefix, f.createSeq)
}

func (f *fakeRemote) Online(ctx context.Context) bool { return f.online }

func (f *fakeRemote) UpdateProjectFields(ctx context.Context, id string, fields api.Fields) error {
	if f.failProjects {
		return errors.New("backend unavailable")
	}
	f.projectFields[id] = append(f.projectFields[id], fields)
	return nil
}

func (f *fakeRemote) CreateProject(ctx context.Context, create api.ProjectCreate) (string, error) {
	if f.failProjects {
		return "", errors.New("backend unavailable")
	}
	f.createdProjects = append(f.createdProjects, create)
	return f.nextID("srv-p"), nil
}

func (f *fakeRemote) UpdateTaskFields(ctx context.Context, id string, fields api.Fields) error {
	if f.failTasks {
		return errors.New("backend unavailable")
	}
	f.taskFields[id] = append(f.taskFields[id], fields)
	return nil
}

func (f *fakeRemote) CreateTask(ctx context.Context, create api.TaskCreate) (string, error) {
	if f.failTasks {
		return "", errors.New("backend unavailable")
	}
	f.createdTasks = append(f.createdTasks, create)
	return f.nextID("srv-t"), nil
}

func (f *fakeRemote) DeleteTask(ctx context.Context, id string) error {
	if f.failTasks {
		return errors.New("backend unavailable")
	}
	f.deletedTasks = append(f.deletedTasks, id)
	return nil
}

func (f *fakeRemote) CreateCalendarEvent(ctx context.Context, create api.EventCreate) (string, error) {
	if f.failEvents {
		return "", errors.New("backend unavailable")
	}
	f.createdEvents = append(f.createdEvents, create)
	return f.nextID("srv-e"), nil
}

func (f *fakeRemote) UpdateCalendarEvent(ctx context.Context, id string, fields api.Fields) error {
	if f.failEvents {
		return errors.New("backend unavailable")
	}
	f.eventFields[id] = append(f.eventFields[id], fields)
	return nil
}

func (f *fakeRemote) DeleteCalendarEvent(ctx context.Context, id string) error {
	if f.failEvents {
		return errors.New("backend unavailable")
	}
	f.deletedEvents = append(f.deletedEvents, id)
	return nil
}

func (f *fakeRemote) FetchCompany(ctx context.Context, companyID string) (*model.Company, error) {
	if f.company == nil {
		return nil, errors.New("company not found")
	}
	return f.company, nil
}

func (f *fakeRemote) FetchCompanyUsers(ctx context.Context, companyID string) ([]model.User, error) {
	return f.users, nil
}

func (f *fakeRemote) FetchCompanyTaskTypes(ctx context.Context, companyID string) ([]string, error) {
	return f.taskTypes, nil
}

func (f *fakeRemote) FetchUser(ctx context.Context, userID string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID == userID {
			return &f.users[i], nil
		}
	}
	return nil, errors.New("user not found")
}

func setupManager(t *testing.T) (*Manager, *store.Store, *fakeRemote) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	remote := newFakeRemote()
	return NewManager(st, remote, "c1"), st, remote
}

func seedSyncedProject(t *testing.T, st *store.Store, id string) {
	t.Helper()

	p := model.NewProject(id, "c1", "Project "+id)
	require.NoError(t, st.SaveProject(context.Background(), &p))
	require.NoError(t, st.MarkProjectSynced(context.Background(), id, time.Now()))
}

func seedSyncedTask(t *testing.T, st *store.Store, id, projectID string) {
	t.Helper()

	task := model.NewProjectTask(id, "c1", projectID, "Task "+id)
	require.NoError(t, st.SaveTask(context.Background(), &task))
	require.NoError(t, st.MarkTaskSynced(context.Background(), id, time.Now()))
}

func TestUpdateProjectStatusOffline(t *testing.T) {
	m, st, remote := setupManager(t)
	remote.online = false
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	require.NoError(t, m.UpdateProjectStatus(ctx, "p1", model.StatusInProgress, false))

	got, err := st.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.True(t, got.NeedsSync, "offline change must stay queued")
	assert.Empty(t, remote.projectFields["p1"], "no remote call while offline")
}

func TestUpdateProjectStatusOnlinePushes(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	require.NoError(t, m.UpdateProjectStatus(ctx, "p1", model.StatusCompleted, false))

	got, err := st.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, got.NeedsSync)

	require.Len(t, remote.projectFields["p1"], 1)
	assert.Equal(t, api.Fields{"Status": model.StatusCompleted}, remote.projectFields["p1"][0])
}

func TestUpdateProjectStatusRejectsUnknownStatus(t *testing.T) {
	m, st, _ := setupManager(t)
	seedSyncedProject(t, st, "p1")

	err := m.UpdateProjectStatus(context.Background(), "p1", "paused", false)
	assert.Error(t, err)
}

func TestUpdateTaskStatusPushFailureLeavesDirty(t *testing.T) {
	m, st, remote := setupManager(t)
	remote.failTasks = true
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	seedSyncedTask(t, st, "t1", "p1")

	// The push fails but the call itself succeeds; the status is safe
	// locally and queued for the sweep.
	require.NoError(t, m.UpdateTaskStatus(ctx, "t1", model.StatusCompleted, true))

	got, err := st.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.True(t, got.NeedsSync)
}

func TestUpdateProjectNotesDurableBeforeNetwork(t *testing.T) {
	m, st, remote := setupManager(t)
	remote.failProjects = true
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")

	ok := m.UpdateProjectNotes(ctx, "p1", "Inspector coming Friday")
	assert.True(t, ok, "local save decides the result, not the push")

	got, err := st.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Inspector coming Friday", got.Notes)
	assert.True(t, got.NeedsSync)
}

func TestUpdateProjectNotesUnknownProject(t *testing.T) {
	m, _, _ := setupManager(t)
	assert.False(t, m.UpdateProjectNotes(context.Background(), "missing", "text"))
}

func TestFirstPushCreatesAndRekeys(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	p := model.NewProject("local-p", "c1", "Fence")
	require.NoError(t, st.SaveProject(ctx, &p))

	result, err := m.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, remote.createdProjects, 1)
	assert.Equal(t, "Fence", remote.createdProjects[0].Name)

	// The backend ID replaced the local one.
	_, err = st.GetProject(ctx, "local-p")
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := st.GetProject(ctx, "srv-p-1")
	require.NoError(t, err)
	assert.False(t, got.NeedsSync)
	assert.True(t, got.EverSynced())
}

func TestConcurrentFirstPushesCreateOnce(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	p := model.NewProject("local-p", "c1", "Fence")
	require.NoError(t, st.SaveProject(ctx, &p))

	// Background notes pushes and the retry sweep can race on the
	// same never-synced entity; the pushes serialize so only the
	// first takes the create branch.
	var wg stdsync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.pushProject(ctx, "local-p", nil)
		}()
	}
	wg.Wait()

	assert.Len(t, remote.createdProjects, 1, "exactly one remote create regardless of interleaving")

	got, err := st.GetProject(ctx, "srv-p-1")
	require.NoError(t, err)
	assert.True(t, got.EverSynced())
	assert.False(t, got.NeedsSync)
}

func TestTaskFirstPushCreatesParentFirst(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	p := model.NewProject("local-p", "c1", "Fence")
	require.NoError(t, st.SaveProject(ctx, &p))
	task := model.NewProjectTask("local-t", "c1", "local-p", "Posts")
	require.NoError(t, st.SaveTask(ctx, &task))

	// Push the task directly; the parent project must be created
	// remotely first and the task re-pointed at its backend ID.
	require.NoError(t, m.UpdateTaskStatus(ctx, "local-t", model.StatusInProgress, true))

	require.Len(t, remote.createdProjects, 1)
	require.Len(t, remote.createdTasks, 1)
	assert.Equal(t, "srv-p-1", remote.createdTasks[0].ProjectID)

	got, err := st.GetTask(ctx, "srv-t-2")
	require.NoError(t, err)
	assert.Equal(t, "srv-p-1", got.ProjectID)
}

func TestUpdateTeamMembersTaskPropagatesToProject(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	require.NoError(t, st.SetProjectMembers(ctx, "p1", []string{"u1"}))
	require.NoError(t, st.MarkProjectSynced(ctx, "p1", time.Now()))

	seedSyncedTask(t, st, "t1", "p1")

	ev := model.NewCalendarEvent("e1", "c1", "Posts")
	ev.TaskID = "t1"
	ev.ProjectID = "p1"
	require.NoError(t, st.SaveEvent(ctx, &ev))
	require.NoError(t, st.MarkEventSynced(ctx, "e1", time.Now()))
	require.NoError(t, st.LinkTaskEvent(ctx, "t1", "e1"))

	require.NoError(t, m.UpdateTeamMembers(ctx, model.OwnerTask, "t1", []string{"u2", "u3"}))

	gotTask, err := st.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, gotTask.Members)

	gotEv, err := st.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, gotEv.Members)

	// Project roster absorbs the new members instead of replacing.
	gotProject, err := st.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, gotProject.Members)

	assert.Len(t, remote.taskFields["t1"], 1)
	assert.Len(t, remote.eventFields["e1"], 1)
	assert.Len(t, remote.projectFields["p1"], 1)
}

func TestUpdateTeamMembersPartialFailure(t *testing.T) {
	m, st, remote := setupManager(t)
	remote.failEvents = true
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	seedSyncedTask(t, st, "t1", "p1")

	ev := model.NewCalendarEvent("e1", "c1", "Posts")
	ev.TaskID = "t1"
	ev.ProjectID = "p1"
	require.NoError(t, st.SaveEvent(ctx, &ev))
	require.NoError(t, st.MarkEventSynced(ctx, "e1", time.Now()))
	require.NoError(t, st.LinkTaskEvent(ctx, "t1", "e1"))

	err := m.UpdateTeamMembers(ctx, model.OwnerTask, "t1", []string{"u9"})

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	require.Len(t, partial.Legs, 1)
	assert.Equal(t, "event", partial.Legs[0].Entity)
	assert.Equal(t, "e1", partial.Legs[0].ID)

	// Every leg's local write committed; only the failed leg stays dirty.
	gotEv, err := st.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u9"}, gotEv.Members)
	assert.True(t, gotEv.NeedsSync)

	gotTask, err := st.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u9"}, gotTask.Members)
	assert.False(t, gotTask.NeedsSync)
}

func TestScheduleEventCreatesAndLinks(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	seedSyncedTask(t, st, "t1", "p1")

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC)

	ev, err := m.ScheduleEvent(ctx, EventDescriptor{
		Title:     "Posts",
		ProjectID: "p1",
		TaskID:    "t1",
		Start:     start,
		End:       end,
		MemberIDs: []string{"u1"},
	})
	require.NoError(t, err)

	// Created remotely and rekeyed onto the backend ID.
	require.Len(t, remote.createdEvents, 1)
	assert.Equal(t, 3, remote.createdEvents[0].Duration)
	assert.Equal(t, "srv-e-1", ev.ID)
	assert.False(t, ev.NeedsSync)

	gotTask, err := st.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "srv-e-1", gotTask.EventID)
}

func TestScheduleEventRescheduleUpdates(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	seedSyncedTask(t, st, "t1", "p1")

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	first, err := m.ScheduleEvent(ctx, EventDescriptor{
		Title: "Posts", ProjectID: "p1", TaskID: "t1",
		Start: start, End: start.AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	// Rescheduling the same event must not create a second one.
	second, err := m.ScheduleEvent(ctx, EventDescriptor{
		EventID: first.ID,
		Start:   start.AddDate(0, 0, 7), End: start.AddDate(0, 0, 8),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Duration)
	require.Len(t, remote.createdEvents, 1)
	require.Len(t, remote.eventFields[first.ID], 1)

	fields := remote.eventFields[first.ID][0]
	assert.Equal(t, 2, fields["Duration"])
	assert.NotNil(t, fields["Start Date"])
	assert.NotNil(t, fields["End Date"])
}

func TestScheduleEventCreatesOwningTaskFirst(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	task := model.NewProjectTask("local-t", "c1", "p1", "Posts")
	require.NoError(t, st.SaveTask(ctx, &task))

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	ev, err := m.ScheduleEvent(ctx, EventDescriptor{
		Title:     "Posts",
		ProjectID: "p1",
		TaskID:    "local-t",
		Start:     start,
		End:       start.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	// The task reached the backend before the event, so the event's
	// create payload carries the backend-assigned task ID, never the
	// provisional local one.
	require.Len(t, remote.createdTasks, 1)
	require.Len(t, remote.createdEvents, 1)
	assert.Equal(t, "srv-t-1", remote.createdEvents[0].TaskID)

	gotTask, err := st.GetTask(ctx, "srv-t-1")
	require.NoError(t, err)
	assert.True(t, gotTask.EverSynced())
	assert.Equal(t, ev.ID, gotTask.EventID)
	assert.Equal(t, "srv-e-2", ev.ID)
}

func TestScheduleEventCreatesOwningProjectFirst(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	p := model.NewProject("local-p", "c1", "Fence")
	require.NoError(t, st.SaveProject(ctx, &p))

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	_, err := m.ScheduleEvent(ctx, EventDescriptor{
		Title:     "Fence week",
		ProjectID: "local-p",
		Start:     start,
		End:       start.AddDate(0, 0, 4),
	})
	require.NoError(t, err)

	require.Len(t, remote.createdProjects, 1)
	require.Len(t, remote.createdEvents, 1)
	assert.Equal(t, "srv-p-1", remote.createdEvents[0].ProjectID)
}

func TestScheduleEventOwnerPushFailureKeepsEventQueued(t *testing.T) {
	m, st, remote := setupManager(t)
	remote.failTasks = true
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	task := model.NewProjectTask("local-t", "c1", "p1", "Posts")
	require.NoError(t, st.SaveTask(ctx, &task))

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	ev, err := m.ScheduleEvent(ctx, EventDescriptor{
		Title:     "Posts",
		ProjectID: "p1",
		TaskID:    "local-t",
		Start:     start,
		End:       start.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	// The task never made it out, so the event must not either; both
	// stay dirty for the sweep.
	assert.Empty(t, remote.createdEvents)
	assert.True(t, ev.NeedsSync)

	gotTask, err := st.GetTask(ctx, "local-t")
	require.NoError(t, err)
	assert.True(t, gotTask.NeedsSync)
}

func TestClearEventWindow(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	ev := model.NewCalendarEvent("e1", "c1", "Posts")
	ev.SetWindow(time.Now(), time.Now().AddDate(0, 0, 1))
	require.NoError(t, st.SaveEvent(ctx, &ev))
	require.NoError(t, st.MarkEventSynced(ctx, "e1", time.Now()))

	require.NoError(t, m.ClearEventWindow(ctx, "e1"))

	got, err := st.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.EndDate)
	assert.Equal(t, 0, got.Duration)

	require.Len(t, remote.eventFields["e1"], 1)
	fields := remote.eventFields["e1"][0]
	assert.Nil(t, fields["Start Date"])
	assert.Nil(t, fields["End Date"])
	assert.Equal(t, 0, fields["Duration"])
}

func TestUpdateProjectDatesDerivesFromTasks(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	seedSyncedTask(t, st, "t1", "p1")
	seedSyncedTask(t, st, "t2", "p1")

	early := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

	ev1 := model.NewCalendarEvent("e1", "c1", "First")
	ev1.TaskID = "t1"
	ev1.SetWindow(early, early.AddDate(0, 0, 2))
	require.NoError(t, st.SaveEvent(ctx, &ev1))
	require.NoError(t, st.LinkTaskEvent(ctx, "t1", "e1"))

	ev2 := model.NewCalendarEvent("e2", "c1", "Second")
	ev2.TaskID = "t2"
	ev2.SetWindow(late.AddDate(0, 0, -3), late)
	require.NoError(t, st.SaveEvent(ctx, &ev2))
	require.NoError(t, st.LinkTaskEvent(ctx, "t2", "e2"))

	require.NoError(t, m.UpdateProjectDates(ctx, "p1", nil, nil, false))

	got, err := st.GetProject(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.True(t, got.StartDate.Equal(early))
	assert.True(t, got.EndDate.Equal(late))

	require.Len(t, remote.projectFields["p1"], 1)
}

func TestUpdateProjectDatesNoScheduledTasksClears(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)
	require.NoError(t, st.SetProjectDates(ctx, "p1", &start, &end))
	require.NoError(t, st.MarkProjectSynced(ctx, "p1", time.Now()))

	seedSyncedTask(t, st, "t1", "p1")

	require.NoError(t, m.UpdateProjectDates(ctx, "p1", nil, nil, false))

	got, err := st.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.EndDate)

	require.Len(t, remote.projectFields["p1"], 1)
	fields := remote.projectFields["p1"][0]
	assert.Nil(t, fields["Start Date"])
	assert.Nil(t, fields["End Date"])
}

func TestDeleteTaskRemoteFirst(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	seedSyncedTask(t, st, "t1", "p1")

	t.Run("remote failure keeps local record", func(t *testing.T) {
		remote.failTasks = true
		err := m.DeleteTask(ctx, "t1")
		assert.Error(t, err)

		_, err = st.GetTask(ctx, "t1")
		assert.NoError(t, err)
	})

	t.Run("remote success removes local record", func(t *testing.T) {
		remote.failTasks = false
		require.NoError(t, m.DeleteTask(ctx, "t1"))

		assert.Equal(t, []string{"t1"}, remote.deletedTasks)
		_, err := st.GetTask(ctx, "t1")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDeleteNeverSyncedTaskSkipsRemote(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	task := model.NewProjectTask("t-local", "c1", "p1", "Scratch")
	require.NoError(t, st.SaveTask(ctx, &task))

	require.NoError(t, m.DeleteTask(ctx, "t-local"))
	assert.Empty(t, remote.deletedTasks)
}

func TestFlushDirtyCountsFailures(t *testing.T) {
	m, st, remote := setupManager(t)
	remote.failEvents = true
	ctx := context.Background()

	seedSyncedProject(t, st, "p1")
	require.NoError(t, st.UpdateProjectNotes(ctx, "p1", "dirty"))

	ev := model.NewCalendarEvent("e1", "c1", "Posts")
	ev.ProjectID = "p1"
	require.NoError(t, st.SaveEvent(ctx, &ev))

	result, err := m.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)
	assert.Equal(t, 1, result.Failed)
}

func TestSyncCompanyCachesReferenceData(t *testing.T) {
	m, st, remote := setupManager(t)
	ctx := context.Background()

	remote.company = &model.Company{ID: "c1", Name: "Acme Decks"}
	remote.users = []model.User{
		{ID: "u1", CompanyID: "c1", Name: "Ana", Email: "ana@acme.test"},
	}
	remote.taskTypes = []string{"carpentry", "painting"}

	require.NoError(t, m.SyncCompany(ctx))
	require.NoError(t, m.SyncCompanyTeamMembers(ctx, "c1"))
	require.NoError(t, m.SyncCompanyTaskTypes(ctx, "c1"))

	company, err := st.GetCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Decks", company.Name)
	assert.Equal(t, []string{"carpentry", "painting"}, company.TaskTypes)

	users, err := st.ListCompanyUsers(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ana@acme.test", users[0].Email)
}
