package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldforge/jobsync/internal/api"
	"github.com/fieldforge/jobsync/internal/logger"
	"github.com/fieldforge/jobsync/internal/model"
	"github.com/fieldforge/jobsync/internal/store"
)

// Manager reconciles local truth with remote truth, one entity or one
// explicit small group at a time. Local writes always land before any
// network attempt; a failed push leaves the entity dirty for a later
// pass instead of retrying inline.
type Manager struct {
	store     *store.Store
	remote    Remote
	companyID string

	pushMu stdsync.Mutex // serializes pushes; see push.go
}

// NewManager creates a sync manager scoped to one company.
func NewManager(st *store.Store, remote Remote, companyID string) *Manager {
	return &Manager{store: st, remote: remote, companyID: companyID}
}

// CompanyID returns the tenant this manager is scoped to.
func (m *Manager) CompanyID() string {
	return m.companyID
}

// UpdateProjectStatus writes the new status locally and, when forced
// or currently online, attempts an immediate push. Push failures are
// logged and left for the retry sweep.
func (m *Manager) UpdateProjectStatus(ctx context.Context, projectID, status string, forceSync bool) error {
	if !model.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	if err := m.store.UpdateProjectStatus(ctx, projectID, status); err != nil {
		return fmt.Errorf("failed to save status locally: %w", err)
	}

	if forceSync || m.remote.Online(ctx) {
		if _, err := m.pushProject(ctx, projectID, api.StatusUpdate{Status: status}.FieldMap()); err != nil {
			logger.Warn("Status push failed, will retry",
				logger.F("project", projectID), logger.F("error", err))
		}
	}
	return nil
}

// UpdateTaskStatus is the task counterpart of UpdateProjectStatus.
func (m *Manager) UpdateTaskStatus(ctx context.Context, taskID, status string, forceSync bool) error {
	if !model.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	if err := m.store.UpdateTaskStatus(ctx, taskID, status); err != nil {
		return fmt.Errorf("failed to save status locally: %w", err)
	}

	if forceSync || m.remote.Online(ctx) {
		if _, err := m.pushTask(ctx, taskID, api.StatusUpdate{Status: status}.FieldMap()); err != nil {
			logger.Warn("Status push failed, will retry",
				logger.F("task", taskID), logger.F("error", err))
		}
	}
	return nil
}

// UpdateProjectNotes stores the text durably and reports whether the
// local write succeeded. The push happens in the background and never
// blocks the caller; the user's text survives any network outcome.
func (m *Manager) UpdateProjectNotes(ctx context.Context, projectID, notes string) bool {
	if err := m.store.UpdateProjectNotes(ctx, projectID, notes); err != nil {
		logger.Error("Failed to save notes locally",
			logger.F("project", projectID), logger.F("error", err))
		return false
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := m.pushProject(ctx, projectID, api.NotesUpdate{Notes: notes}.FieldMap()); err != nil {
			logger.Warn("Notes push failed, will retry",
				logger.F("project", projectID), logger.F("error", err))
		}
	}()
	return true
}

// UpdateTaskNotes is the task counterpart of UpdateProjectNotes.
func (m *Manager) UpdateTaskNotes(ctx context.Context, taskID, notes string) bool {
	if err := m.store.UpdateTaskNotes(ctx, taskID, notes); err != nil {
		logger.Error("Failed to save notes locally",
			logger.F("task", taskID), logger.F("error", err))
		return false
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := m.pushTask(ctx, taskID, api.NotesUpdate{Notes: notes}.FieldMap()); err != nil {
			logger.Warn("Notes push failed, will retry",
				logger.F("task", taskID), logger.F("error", err))
		}
	}()
	return true
}

// UpdateTeamMembers replaces the roster of a task or project and its
// owned calendar event. For tasks it also propagates the new members
// up into the parent project's roster. The legs run sequentially
// (task, then event, then project); each leg's own dirty flag governs
// its retry and succeeded legs are never rolled back. A *PartialError
// names the legs whose remote push failed.
func (m *Manager) UpdateTeamMembers(ctx context.Context, kind, id string, memberIDs []string) error {
	switch kind {
	case model.OwnerTask:
		return m.updateTaskTeam(ctx, id, memberIDs)
	case model.OwnerProject:
		return m.updateProjectTeam(ctx, id, memberIDs)
	}
	return fmt.Errorf("unknown entity kind %q", kind)
}

func (m *Manager) updateTaskTeam(ctx context.Context, taskID string, memberIDs []string) error {
	task, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}

	var legs []LegError

	// Task leg.
	if err := m.store.SetTaskMembers(ctx, taskID, memberIDs); err != nil {
		return fmt.Errorf("failed to save task members: %w", err)
	}
	if _, err := m.pushTask(ctx, taskID, api.TeamMembersUpdate{MemberIDs: memberIDs}.FieldMap()); err != nil {
		legs = append(legs, LegError{Entity: "task", ID: taskID, Err: err})
	}

	// Owned calendar event leg.
	if task.EventID != "" {
		if err := m.store.SetEventMembers(ctx, task.EventID, memberIDs); err != nil {
			return fmt.Errorf("failed to save event members: %w", err)
		}
		if _, err := m.pushEvent(ctx, task.EventID, api.TeamMembersUpdate{MemberIDs: memberIDs}.FieldMap()); err != nil {
			legs = append(legs, LegError{Entity: "event", ID: task.EventID, Err: err})
		}
	}

	// Parent project leg: the project roster absorbs the new members.
	project, err := m.store.GetProject(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load parent project: %w", err)
	}
	merged := model.NormalizeMemberIDs(append(append([]string{}, project.Members...), memberIDs...))
	if !model.SameMembers(merged, project.Members) {
		if err := m.store.SetProjectMembers(ctx, project.ID, merged); err != nil {
			return fmt.Errorf("failed to save project members: %w", err)
		}
		if _, err := m.pushProject(ctx, project.ID, api.TeamMembersUpdate{MemberIDs: merged}.FieldMap()); err != nil {
			legs = append(legs, LegError{Entity: "project", ID: project.ID, Err: err})
		}
	}

	if len(legs) > 0 {
		return &PartialError{Legs: legs}
	}
	return nil
}

func (m *Manager) updateProjectTeam(ctx context.Context, projectID string, memberIDs []string) error {
	project, err := m.store.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	var legs []LegError

	if err := m.store.SetProjectMembers(ctx, projectID, memberIDs); err != nil {
		return fmt.Errorf("failed to save project members: %w", err)
	}
	if _, err := m.pushProject(ctx, projectID, api.TeamMembersUpdate{MemberIDs: memberIDs}.FieldMap()); err != nil {
		legs = append(legs, LegError{Entity: "project", ID: projectID, Err: err})
	}

	if project.EventID != "" {
		if err := m.store.SetEventMembers(ctx, project.EventID, memberIDs); err != nil {
			return fmt.Errorf("failed to save event members: %w", err)
		}
		if _, err := m.pushEvent(ctx, project.EventID, api.TeamMembersUpdate{MemberIDs: memberIDs}.FieldMap()); err != nil {
			legs = append(legs, LegError{Entity: "event", ID: project.EventID, Err: err})
		}
	}

	if len(legs) > 0 {
		return &PartialError{Legs: legs}
	}
	return nil
}

// SyncCompany pulls the tenant record into the local cache.
func (m *Manager) SyncCompany(ctx context.Context) error {
	company, err := m.remote.FetchCompany(ctx, m.companyID)
	if err != nil {
		return fmt.Errorf("failed to fetch company: %w", err)
	}
	if err := m.store.SaveCompany(ctx, company); err != nil {
		return fmt.Errorf("failed to cache company: %w", err)
	}
	return nil
}

// SyncCompanyTeamMembers full-refreshes the cached roster.
func (m *Manager) SyncCompanyTeamMembers(ctx context.Context, companyID string) error {
	users, err := m.remote.FetchCompanyUsers(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to fetch company users: %w", err)
	}
	if err := m.store.ReplaceCompanyUsers(ctx, companyID, users); err != nil {
		return fmt.Errorf("failed to cache company users: %w", err)
	}
	logger.Info("Company roster refreshed",
		logger.F("company", companyID), logger.F("users", len(users)))
	return nil
}

// SyncCompanyTaskTypes full-refreshes the cached task-type list.
func (m *Manager) SyncCompanyTaskTypes(ctx context.Context, companyID string) error {
	taskTypes, err := m.remote.FetchCompanyTaskTypes(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to fetch task types: %w", err)
	}
	if err := m.store.SetCompanyTaskTypes(ctx, companyID, taskTypes); err != nil {
		return fmt.Errorf("failed to cache task types: %w", err)
	}
	return nil
}

// EventDescriptor describes a schedule window for a project or task.
type EventDescriptor struct {
	EventID   string // existing local event, empty on first scheduling
	Title     string
	Color     string
	ProjectID string
	TaskID    string // set for task-granularity scheduling
	Start     time.Time
	End       time.Time
	MemberIDs []string
}

// ScheduleEvent creates or updates the calendar event for a schedule
// window. Create vs update is decided by whether the local event has
// ever completed a round-trip. The local record and the owner link are
// durable before any network attempt; a failed push leaves the event
// dirty.
func (m *Manager) ScheduleEvent(ctx context.Context, desc EventDescriptor) (*model.CalendarEvent, error) {
	var ev *model.CalendarEvent

	if desc.EventID != "" {
		existing, err := m.store.GetEvent(ctx, desc.EventID)
		if err != nil {
			return nil, fmt.Errorf("failed to load event: %w", err)
		}
		ev = existing
	} else {
		created := model.NewCalendarEvent(uuid.NewString(), m.companyID, desc.Title)
		created.ProjectID = desc.ProjectID
		created.TaskID = desc.TaskID
		if desc.Color != "" {
			created.Color = desc.Color
		}
		ev = &created
	}

	if desc.Title != "" {
		ev.Title = desc.Title
	}
	ev.SetWindow(desc.Start, desc.End)
	if desc.MemberIDs != nil {
		ev.SetMembers(desc.MemberIDs)
	}

	if err := m.store.SaveEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to save event locally: %w", err)
	}

	// Link the owner on first scheduling.
	if desc.EventID == "" {
		if err := m.linkEventOwner(ctx, ev); err != nil {
			return nil, err
		}
	}

	currentID, err := m.pushEvent(ctx, ev.ID, eventFields(ev))
	if err != nil {
		logger.Warn("Event push failed, will retry",
			logger.F("event", ev.ID), logger.F("error", err))
	}

	// The push may have rekeyed a newly-created event onto its
	// backend ID; reload so callers see the current record.
	current, err := m.store.GetEvent(ctx, currentID)
	if err == nil {
		return current, nil
	}
	return ev, nil
}

func (m *Manager) linkEventOwner(ctx context.Context, ev *model.CalendarEvent) error {
	if ev.TaskID != "" {
		if err := m.store.LinkTaskEvent(ctx, ev.TaskID, ev.ID); err != nil {
			return fmt.Errorf("failed to link event to task: %w", err)
		}
		return nil
	}
	if ev.ProjectID != "" {
		if err := m.store.LinkProjectEvent(ctx, ev.ProjectID, ev.ID); err != nil {
			return fmt.Errorf("failed to link event to project: %w", err)
		}
	}
	return nil
}

// ClearEventWindow removes an event's schedule. Dates and duration are
// cleared together locally, then pushed.
func (m *Manager) ClearEventWindow(ctx context.Context, eventID string) error {
	ev, err := m.store.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to load event: %w", err)
	}

	ev.ClearWindow()
	if err := m.store.SaveEvent(ctx, ev); err != nil {
		return fmt.Errorf("failed to save event locally: %w", err)
	}

	if _, err := m.pushEvent(ctx, ev.ID, api.EventWindowUpdate{}.FieldMap()); err != nil {
		logger.Warn("Event push failed, will retry",
			logger.F("event", ev.ID), logger.F("error", err))
	}
	return nil
}

// UpdateProjectDates recomputes a project's displayed date range.
// With explicit dates it applies them directly; with clearDates it
// nulls the range; otherwise it derives the range from the min/max of
// the tasks' scheduled windows, clearing it when no task retains one.
func (m *Manager) UpdateProjectDates(ctx context.Context, projectID string, start, end *time.Time, clearDates bool) error {
	if !clearDates && start == nil && end == nil {
		derivedStart, derivedEnd, err := m.deriveProjectDates(ctx, projectID)
		if err != nil {
			return err
		}
		start, end = derivedStart, derivedEnd
		clearDates = start == nil
	}

	if clearDates {
		start, end = nil, nil
	}

	if err := m.store.SetProjectDates(ctx, projectID, start, end); err != nil {
		return fmt.Errorf("failed to save project dates locally: %w", err)
	}

	update := api.DateRangeUpdate{Start: start, End: end, Clear: clearDates}
	if _, err := m.pushProject(ctx, projectID, update.FieldMap()); err != nil {
		logger.Warn("Project dates push failed, will retry",
			logger.F("project", projectID), logger.F("error", err))
	}
	return nil
}

// deriveProjectDates computes min start / max end over the project's
// tasks' scheduled windows. Both returns are nil when nothing is
// scheduled.
func (m *Manager) deriveProjectDates(ctx context.Context, projectID string) (*time.Time, *time.Time, error) {
	tasks, err := m.store.ListProjectTasks(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var minStart, maxEnd *time.Time
	for _, t := range tasks {
		if t.EventID == "" {
			continue
		}
		ev, err := m.store.GetEvent(ctx, t.EventID)
		if err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return nil, nil, err
		}
		if !ev.Scheduled() {
			continue
		}
		if minStart == nil || ev.StartDate.Before(*minStart) {
			minStart = ev.StartDate
		}
		if maxEnd == nil || ev.EndDate.After(*maxEnd) {
			maxEnd = ev.EndDate
		}
	}
	return minStart, maxEnd, nil
}

// DeleteTask deletes a task remote-first: the local record (and its
// owned calendar event) is removed only after the backend confirms,
// so a dependent event is never orphaned remotely.
func (m *Manager) DeleteTask(ctx context.Context, taskID string) error {
	task, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}

	if task.EverSynced() {
		if err := m.remote.DeleteTask(ctx, taskID); err != nil {
			return fmt.Errorf("remote delete failed: %w", err)
		}
	}

	if err := m.store.DeleteTaskLocal(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task locally: %w", err)
	}

	logger.Info("Task deleted", logger.F("task", taskID), logger.F("event", task.EventID))
	return nil
}
