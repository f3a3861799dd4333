package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldforge/jobsync/internal/model"
)

// SaveTask upserts a task and its member join rows in one transaction.
func (s *Store) SaveTask(ctx context.Context, t *model.ProjectTask) error {
	t.MemberIDList = model.JoinMemberIDs(t.Members)
	t.UpdatedAt = time.Now().UTC()

	return s.inTx(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, company_id, project_id, name, task_type, status, notes,
				event_id, team_member_ids, image_urls,
				needs_sync, sync_priority, last_synced_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				company_id = excluded.company_id,
				project_id = excluded.project_id,
				name = excluded.name,
				task_type = excluded.task_type,
				status = excluded.status,
				notes = excluded.notes,
				event_id = excluded.event_id,
				team_member_ids = excluded.team_member_ids,
				image_urls = excluded.image_urls,
				needs_sync = excluded.needs_sync,
				sync_priority = excluded.sync_priority,
				last_synced_at = excluded.last_synced_at,
				updated_at = excluded.updated_at`,
			t.ID, t.CompanyID, t.ProjectID, t.Name, t.TaskType, t.Status, t.Notes,
			nullString(t.EventID), t.MemberIDList, encodeURLList(t.ImageURLs),
			boolToInt(t.NeedsSync), t.SyncPriority, encodeTimePtr(t.LastSyncedAt),
			encodeTime(t.CreatedAt), encodeTime(t.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
		return replaceMembers(ctx, tx, "task_members", "task_id", t.ID, t.Members)
	})
}

// GetTask loads a task including its member set.
func (s *Store) GetTask(ctx context.Context, id string) (*model.ProjectTask, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, project_id, name, task_type, status, notes, event_id,
			team_member_ids, image_urls, needs_sync, sync_priority, last_synced_at,
			created_at, updated_at
		FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}

	members, err := s.loadMembers(ctx, "task_members", "task_id", id)
	if err != nil {
		return nil, err
	}
	t.Members = members
	return t, nil
}

// ListProjectTasks returns all tasks that belong to a project.
func (s *Store) ListProjectTasks(ctx context.Context, projectID string) ([]model.ProjectTask, error) {
	return s.queryTasks(ctx, `
		SELECT id, company_id, project_id, name, task_type, status, notes, event_id,
			team_member_ids, image_urls, needs_sync, sync_priority, last_synced_at,
			created_at, updated_at
		FROM tasks WHERE project_id = ? ORDER BY created_at`, projectID)
}

// DirtyTasks returns tasks awaiting a push, highest priority first.
func (s *Store) DirtyTasks(ctx context.Context, companyID string) ([]model.ProjectTask, error) {
	return s.queryTasks(ctx, `
		SELECT id, company_id, project_id, name, task_type, status, notes, event_id,
			team_member_ids, image_urls, needs_sync, sync_priority, last_synced_at,
			created_at, updated_at
		FROM tasks WHERE company_id = ? AND needs_sync = 1
		ORDER BY sync_priority DESC, updated_at`, companyID)
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]model.ProjectTask, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.ProjectTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		members, err := s.loadMembers(ctx, "task_members", "task_id", tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Members = members
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*model.ProjectTask, error) {
	var t model.ProjectTask
	var eventID, lastSynced sql.NullString
	var imageURLs, createdAt, updatedAt string
	var needsSync int

	err := row.Scan(&t.ID, &t.CompanyID, &t.ProjectID, &t.Name, &t.TaskType,
		&t.Status, &t.Notes, &eventID, &t.MemberIDList, &imageURLs,
		&needsSync, &t.SyncPriority, &lastSynced, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	t.EventID = eventID.String
	t.NeedsSync = needsSync != 0
	t.ImageURLs = decodeURLList(imageURLs)
	if t.LastSyncedAt, err = decodeTimePtr(lastSynced); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTaskStatus writes the status and marks the task dirty.
func (s *Store) UpdateTaskStatus(ctx context.Context, id, status string) error {
	return s.touchTaskField(ctx, id, "status", status)
}

// UpdateTaskNotes writes the notes and marks the task dirty.
func (s *Store) UpdateTaskNotes(ctx context.Context, id, notes string) error {
	return s.touchTaskField(ctx, id, "notes", notes)
}

func (s *Store) touchTaskField(ctx context.Context, id, column, value string) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE tasks SET %s = ?, needs_sync = 1, updated_at = ? WHERE id = ?`, column),
		value, encodeTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", column, err)
	}
	return requireRow(res)
}

// SetTaskMembers replaces the task's team in both representations in
// one transaction.
func (s *Store) SetTaskMembers(ctx context.Context, id string, memberIDs []string) error {
	return s.setEntityMembers(ctx, "tasks", "task_members", "task_id", id, memberIDs)
}

// LinkTaskEvent records the task's owned calendar event.
func (s *Store) LinkTaskEvent(ctx context.Context, taskID, eventID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET event_id = ?, updated_at = ? WHERE id = ?`,
		nullString(eventID), encodeTime(time.Now()), taskID)
	if err != nil {
		return fmt.Errorf("failed to link task event: %w", err)
	}
	return requireRow(res)
}

// MarkTaskSynced clears the dirty flag after a confirmed push.
func (s *Store) MarkTaskSynced(ctx context.Context, id string, at time.Time) error {
	return s.markSynced(ctx, "tasks", id, at)
}

// DeleteTaskLocal removes a task, its owned calendar event and all
// associated join rows in one transaction. Callers must have confirmed
// the remote delete first; the local graph never loses a task the
// backend still knows about.
func (s *Store) DeleteTaskLocal(ctx context.Context, taskID string) error {
	return s.inTx(func(tx *sql.Tx) error {
		var eventID sql.NullString
		err := tx.QueryRowContext(ctx, `SELECT event_id FROM tasks WHERE id = ?`, taskID).Scan(&eventID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load task for delete: %w", err)
		}

		if eventID.Valid && eventID.String != "" {
			if _, err := tx.ExecContext(ctx, `DELETE FROM event_members WHERE event_id = ?`, eventID.String); err != nil {
				return fmt.Errorf("failed to delete event members: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID.String); err != nil {
				return fmt.Errorf("failed to delete event: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM task_members WHERE task_id = ?`, taskID); err != nil {
			return fmt.Errorf("failed to delete task members: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}
