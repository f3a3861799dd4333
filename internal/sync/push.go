package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldforge/jobsync/internal/api"
	"github.com/fieldforge/jobsync/internal/logger"
	"github.com/fieldforge/jobsync/internal/model"
)

// Push helpers. An entity that has never completed a round-trip is
// created remotely (the backend assigns its real ID, which replaces
// the locally-generated one); anything else gets the supplied field
// update. Success clears the dirty flag and stamps last_synced_at.
// Each helper returns the entity's current local ID, which changes
// when a first push rekeys it.
//
// All pushes run under one manager-wide mutex. Two concurrent pushes
// of the same never-synced entity would otherwise both take the create
// branch and register it remotely twice; serializing them means the
// second push reloads the entity and sees the completed round-trip.

func (m *Manager) pushProject(ctx context.Context, projectID string, fields api.Fields) (string, error) {
	m.pushMu.Lock()
	defer m.pushMu.Unlock()
	return m.pushProjectLocked(ctx, projectID, fields)
}

func (m *Manager) pushProjectLocked(ctx context.Context, projectID string, fields api.Fields) (string, error) {
	p, err := m.store.GetProject(ctx, projectID)
	if err != nil {
		return projectID, fmt.Errorf("failed to load project for push: %w", err)
	}

	if !p.EverSynced() {
		remoteID, err := m.remote.CreateProject(ctx, api.ProjectCreate{
			Name:      p.Name,
			Status:    p.Status,
			Notes:     p.Notes,
			CompanyID: p.CompanyID,
			ClientID:  p.ClientID,
			MemberIDs: p.Members,
			Start:     p.StartDate,
			End:       p.EndDate,
		})
		if err != nil {
			return projectID, err
		}
		if remoteID != p.ID {
			if err := m.store.RekeyProject(ctx, p.ID, remoteID); err != nil {
				return projectID, fmt.Errorf("failed to adopt backend project id: %w", err)
			}
		}
		if err := m.store.MarkProjectSynced(ctx, remoteID, time.Now()); err != nil {
			return remoteID, err
		}
		logger.Debug("Project created remotely",
			logger.F("localID", p.ID), logger.F("remoteID", remoteID))
		return remoteID, nil
	}

	if err := m.remote.UpdateProjectFields(ctx, p.ID, fields); err != nil {
		return p.ID, err
	}
	return p.ID, m.store.MarkProjectSynced(ctx, p.ID, time.Now())
}

func (m *Manager) pushTask(ctx context.Context, taskID string, fields api.Fields) (string, error) {
	m.pushMu.Lock()
	defer m.pushMu.Unlock()
	return m.pushTaskLocked(ctx, taskID, fields)
}

func (m *Manager) pushTaskLocked(ctx context.Context, taskID string, fields api.Fields) (string, error) {
	t, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		return taskID, fmt.Errorf("failed to load task for push: %w", err)
	}

	if !t.EverSynced() {
		// The parent project must exist remotely before the task can.
		project, err := m.store.GetProject(ctx, t.ProjectID)
		if err != nil {
			return taskID, fmt.Errorf("failed to load parent project: %w", err)
		}
		if !project.EverSynced() {
			if _, err := m.pushProjectLocked(ctx, project.ID, nil); err != nil {
				return taskID, fmt.Errorf("parent project push failed: %w", err)
			}
			if t, err = m.store.GetTask(ctx, taskID); err != nil {
				return taskID, err
			}
		}

		remoteID, err := m.remote.CreateTask(ctx, api.TaskCreate{
			Name:      t.Name,
			TaskType:  t.TaskType,
			Status:    t.Status,
			Notes:     t.Notes,
			CompanyID: t.CompanyID,
			ProjectID: t.ProjectID,
			MemberIDs: t.Members,
		})
		if err != nil {
			return taskID, err
		}
		if remoteID != t.ID {
			if err := m.store.RekeyTask(ctx, t.ID, remoteID); err != nil {
				return taskID, fmt.Errorf("failed to adopt backend task id: %w", err)
			}
		}
		if err := m.store.MarkTaskSynced(ctx, remoteID, time.Now()); err != nil {
			return remoteID, err
		}
		logger.Debug("Task created remotely",
			logger.F("localID", t.ID), logger.F("remoteID", remoteID))
		return remoteID, nil
	}

	if err := m.remote.UpdateTaskFields(ctx, t.ID, fields); err != nil {
		return t.ID, err
	}
	return t.ID, m.store.MarkTaskSynced(ctx, t.ID, time.Now())
}

func (m *Manager) pushEvent(ctx context.Context, eventID string, fields api.Fields) (string, error) {
	m.pushMu.Lock()
	defer m.pushMu.Unlock()
	return m.pushEventLocked(ctx, eventID, fields)
}

func (m *Manager) pushEventLocked(ctx context.Context, eventID string, fields api.Fields) (string, error) {
	ev, err := m.store.GetEvent(ctx, eventID)
	if err != nil {
		return eventID, fmt.Errorf("failed to load event for push: %w", err)
	}

	if !ev.EverSynced() {
		// The owner must exist remotely before the event references
		// it. The backend's event link is fixed at create time, so a
		// provisional owner ID sent here could never be corrected.
		if ev.TaskID != "" {
			task, err := m.store.GetTask(ctx, ev.TaskID)
			if err != nil {
				return eventID, fmt.Errorf("failed to load owning task: %w", err)
			}
			if !task.EverSynced() {
				if _, err := m.pushTaskLocked(ctx, task.ID, nil); err != nil {
					return eventID, fmt.Errorf("owning task push failed: %w", err)
				}
				// Rekeying the task rewrote this event's owner IDs.
				if ev, err = m.store.GetEvent(ctx, eventID); err != nil {
					return eventID, err
				}
			}
		} else if ev.ProjectID != "" {
			project, err := m.store.GetProject(ctx, ev.ProjectID)
			if err != nil {
				return eventID, fmt.Errorf("failed to load owning project: %w", err)
			}
			if !project.EverSynced() {
				if _, err := m.pushProjectLocked(ctx, project.ID, nil); err != nil {
					return eventID, fmt.Errorf("owning project push failed: %w", err)
				}
				if ev, err = m.store.GetEvent(ctx, eventID); err != nil {
					return eventID, err
				}
			}
		}

		remoteID, err := m.remote.CreateCalendarEvent(ctx, api.EventCreate{
			Title:     ev.Title,
			Color:     ev.Color,
			CompanyID: ev.CompanyID,
			ProjectID: ev.ProjectID,
			TaskID:    ev.TaskID,
			Start:     ev.StartDate,
			End:       ev.EndDate,
			Duration:  ev.Duration,
			MemberIDs: ev.Members,
		})
		if err != nil {
			return eventID, err
		}
		if remoteID != ev.ID {
			if err := m.store.RekeyEvent(ctx, ev.ID, remoteID); err != nil {
				return eventID, fmt.Errorf("failed to adopt backend event id: %w", err)
			}
		}
		if err := m.store.MarkEventSynced(ctx, remoteID, time.Now()); err != nil {
			return remoteID, err
		}
		logger.Debug("Event created remotely",
			logger.F("localID", ev.ID), logger.F("remoteID", remoteID))
		return remoteID, nil
	}

	if err := m.remote.UpdateCalendarEvent(ctx, ev.ID, fields); err != nil {
		return ev.ID, err
	}
	return ev.ID, m.store.MarkEventSynced(ctx, ev.ID, time.Now())
}

// Full-state field maps used by the retry sweep, where the specific
// field that diverged is unknown and the whole entity state goes out.

func fullProjectFields(p *model.Project) api.Fields {
	fields := api.ProjectCreate{
		Name:      p.Name,
		Status:    p.Status,
		Notes:     p.Notes,
		CompanyID: p.CompanyID,
		ClientID:  p.ClientID,
		MemberIDs: p.Members,
		Start:     p.StartDate,
		End:       p.EndDate,
	}.FieldMap()
	return fields
}

func fullTaskFields(t *model.ProjectTask) api.Fields {
	return api.TaskCreate{
		Name:      t.Name,
		TaskType:  t.TaskType,
		Status:    t.Status,
		Notes:     t.Notes,
		CompanyID: t.CompanyID,
		ProjectID: t.ProjectID,
		MemberIDs: t.Members,
	}.FieldMap()
}

func eventFields(ev *model.CalendarEvent) api.Fields {
	fields := api.EventWindowUpdate{
		Start:    ev.StartDate,
		End:      ev.EndDate,
		Duration: ev.Duration,
	}.FieldMap()
	fields["Title"] = ev.Title
	fields["Color"] = ev.Color
	fields["Team Members"] = model.JoinMemberIDs(ev.Members)
	return fields
}

// FlushResult summarizes one pass over the dirty set.
type FlushResult struct {
	Pushed int
	Failed int
}

// FlushDirty pushes every dirty entity in the company, highest
// priority first, projects before tasks before events so that
// first-push creates find their parents remotely. Individual push
// failures are logged and counted, never fatal to the pass.
func (m *Manager) FlushDirty(ctx context.Context) (FlushResult, error) {
	var result FlushResult

	projects, err := m.store.DirtyProjects(ctx, m.companyID)
	if err != nil {
		return result, err
	}
	for i := range projects {
		if _, err := m.pushProject(ctx, projects[i].ID, fullProjectFields(&projects[i])); err != nil {
			logger.Warn("Project flush failed",
				logger.F("project", projects[i].ID), logger.F("error", err))
			result.Failed++
			continue
		}
		result.Pushed++
	}

	tasks, err := m.store.DirtyTasks(ctx, m.companyID)
	if err != nil {
		return result, err
	}
	for i := range tasks {
		if _, err := m.pushTask(ctx, tasks[i].ID, fullTaskFields(&tasks[i])); err != nil {
			logger.Warn("Task flush failed",
				logger.F("task", tasks[i].ID), logger.F("error", err))
			result.Failed++
			continue
		}
		result.Pushed++
	}

	events, err := m.store.DirtyEvents(ctx, m.companyID)
	if err != nil {
		return result, err
	}
	for i := range events {
		if _, err := m.pushEvent(ctx, events[i].ID, eventFields(&events[i])); err != nil {
			logger.Warn("Event flush failed",
				logger.F("event", events[i].ID), logger.F("error", err))
			result.Failed++
			continue
		}
		result.Pushed++
	}

	if result.Pushed > 0 || result.Failed > 0 {
		logger.Info("Dirty flush completed",
			logger.F("pushed", result.Pushed), logger.F("failed", result.Failed))
	}
	return result, nil
}
