package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldforge/jobsync/internal/model"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProject(t *testing.T, s *Store, id, name string) *model.Project {
	t.Helper()

	p := model.NewProject(id, "c1", name)
	require.NoError(t, s.SaveProject(context.Background(), &p))
	return &p
}

func TestProjectRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := model.NewProject("p1", "c1", "Bathroom remodel")
	p.Notes = "Demo starts Monday"
	p.SetMembers([]string{"u2", "u1"})
	p.ImageURLs = []string{"/uploads/a.jpg"}
	require.NoError(t, s.SaveProject(ctx, &p))

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, "Bathroom remodel", got.Name)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, "Demo starts Monday", got.Notes)
	assert.Equal(t, []string{"u1", "u2"}, got.Members)
	assert.Equal(t, "u1,u2", got.MemberIDList)
	assert.Equal(t, []string{"/uploads/a.jpg"}, got.ImageURLs)
	assert.True(t, got.NeedsSync)
	assert.False(t, got.EverSynced())
}

func TestGetProjectNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirtyProjectsOrderedByPriority(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	low := model.NewProject("p-low", "c1", "Low")
	low.SyncPriority = model.PriorityLow
	require.NoError(t, s.SaveProject(ctx, &low))

	high := model.NewProject("p-high", "c1", "High")
	high.SyncPriority = model.PriorityHigh
	require.NoError(t, s.SaveProject(ctx, &high))

	clean := model.NewProject("p-clean", "c1", "Clean")
	require.NoError(t, s.SaveProject(ctx, &clean))
	require.NoError(t, s.MarkProjectSynced(ctx, "p-clean", time.Now()))

	dirty, err := s.DirtyProjects(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, dirty, 2)
	assert.Equal(t, "p-high", dirty[0].ID)
	assert.Equal(t, "p-low", dirty[1].ID)
}

func TestMarkProjectSyncedClearsDirty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedProject(t, s, "p1", "Deck")
	at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkProjectSynced(ctx, "p1", at))

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, got.NeedsSync)
	require.NotNil(t, got.LastSyncedAt)
	assert.True(t, got.LastSyncedAt.Equal(at))
}

func TestFieldUpdatesMarkDirty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedProject(t, s, "p1", "Deck")
	require.NoError(t, s.MarkProjectSynced(ctx, "p1", time.Now()))

	require.NoError(t, s.UpdateProjectStatus(ctx, "p1", model.StatusInProgress))

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.True(t, got.NeedsSync, "a local edit must re-dirty a synced project")
}

func TestSetProjectMembersKeepsDualRepresentation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedProject(t, s, "p1", "Deck")
	require.NoError(t, s.SetProjectMembers(ctx, "p1", []string{"u3", "u1", "u3"}))

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, got.Members)
	assert.Equal(t, "u1,u3", got.MemberIDList)

	// The join table itself must agree with the list column.
	rows, err := s.loadMembers(ctx, "project_members", "project_id", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, rows)
}

func TestSetProjectDates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedProject(t, s, "p1", "Deck")

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetProjectDates(ctx, "p1", &start, &end))

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.True(t, got.StartDate.Equal(start))
	assert.True(t, got.EndDate.Equal(end))

	require.NoError(t, s.SetProjectDates(ctx, "p1", nil, nil))
	got, err = s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.EndDate)
}

func TestRekeyProjectRewritesReferences(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedProject(t, s, "local-p", "Deck")
	require.NoError(t, s.SetProjectMembers(ctx, "local-p", []string{"u1"}))

	task := model.NewProjectTask("t1", "c1", "local-p", "Framing")
	require.NoError(t, s.SaveTask(ctx, &task))

	ev := model.NewCalendarEvent("e1", "c1", "Deck")
	ev.ProjectID = "local-p"
	require.NoError(t, s.SaveEvent(ctx, &ev))

	require.NoError(t, s.RekeyProject(ctx, "local-p", "backend-p"))

	_, err := s.GetProject(ctx, "local-p")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetProject(ctx, "backend-p")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.Members)

	gotTask, err := s.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "backend-p", gotTask.ProjectID)

	gotEv, err := s.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "backend-p", gotEv.ProjectID)
}

func TestDeleteTaskLocalCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedProject(t, s, "p1", "Deck")

	task := model.NewProjectTask("t1", "c1", "p1", "Framing")
	require.NoError(t, s.SaveTask(ctx, &task))
	require.NoError(t, s.SetTaskMembers(ctx, "t1", []string{"u1"}))

	ev := model.NewCalendarEvent("e1", "c1", "Framing")
	ev.ProjectID = "p1"
	ev.TaskID = "t1"
	require.NoError(t, s.SaveEvent(ctx, &ev))
	require.NoError(t, s.LinkTaskEvent(ctx, "t1", "e1"))

	require.NoError(t, s.DeleteTaskLocal(ctx, "t1"))

	_, err := s.GetTask(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetEvent(ctx, "e1")
	assert.ErrorIs(t, err, ErrNotFound)

	members, err := s.loadMembers(ctx, "task_members", "task_id", "t1")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestPendingUploadQueue(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedProject(t, s, "p1", "Deck")

	u := &PendingUpload{
		ID:        "up1",
		OwnerType: model.OwnerProject,
		OwnerID:   "p1",
		LocalPath: "/tmp/a.jpg",
		SizeBytes: 1024,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.InsertPendingUpload(ctx, u))

	list, err := s.ListPendingUploads(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].OwnerID)
	assert.Equal(t, 0, list[0].Attempts)

	require.NoError(t, s.IncrementUploadAttempts(ctx, u.ID))
	list, err = s.ListPendingUploads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list[0].Attempts)

	require.NoError(t, s.DeletePendingUpload(ctx, u.ID))
	list, err = s.ListPendingUploads(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImageURLSwapMarksOwnerDirty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedProject(t, s, "p1", "Deck")
	require.NoError(t, s.AppendImageURL(ctx, model.OwnerProject, "p1", "/tmp/local.jpg"))
	require.NoError(t, s.MarkProjectSynced(ctx, "p1", time.Now()))

	require.NoError(t, s.ReplaceImageURL(ctx, model.OwnerProject, "p1", "/tmp/local.jpg", "/uploads/remote.jpg"))

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/remote.jpg"}, got.ImageURLs)
	assert.True(t, got.NeedsSync)
}

func TestReplaceCompanyUsers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCompany(ctx, &model.Company{ID: "c1", Name: "Acme Plumbing"}))

	first := []model.User{
		{ID: "u1", CompanyID: "c1", Name: "Ana", Email: "ana@acme.test"},
		{ID: "u2", CompanyID: "c1", Name: "Bo", Email: "bo@acme.test"},
	}
	require.NoError(t, s.ReplaceCompanyUsers(ctx, "c1", first))

	second := []model.User{
		{ID: "u2", CompanyID: "c1", Name: "Bo", Email: "bo@acme.test"},
		{ID: "u3", CompanyID: "c1", Name: "Cy", Email: "cy@acme.test"},
	}
	require.NoError(t, s.ReplaceCompanyUsers(ctx, "c1", second))

	users, err := s.ListCompanyUsers(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[0].ID)
	assert.Equal(t, "u3", users[1].ID)

	// The refresh is a full replacement, not a merge.
	_, err = s.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetCompanyTaskTypes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCompany(ctx, &model.Company{ID: "c1", Name: "Acme"}))
	require.NoError(t, s.SetCompanyTaskTypes(ctx, "c1", []string{"plumbing", "electrical"}))

	company, err := s.GetCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"plumbing", "electrical"}, company.TaskTypes)
}
