package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldforge/jobsync/internal/model"
)

// SaveEvent upserts a calendar event and its member join rows in one
// transaction.
func (s *Store) SaveEvent(ctx context.Context, ev *model.CalendarEvent) error {
	ev.MemberIDList = model.JoinMemberIDs(ev.Members)

	return s.inTx(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, company_id, project_id, task_id, title, color,
				start_date, end_date, duration, team_member_ids,
				needs_sync, sync_priority, last_synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				company_id = excluded.company_id,
				project_id = excluded.project_id,
				task_id = excluded.task_id,
				title = excluded.title,
				color = excluded.color,
				start_date = excluded.start_date,
				end_date = excluded.end_date,
				duration = excluded.duration,
				team_member_ids = excluded.team_member_ids,
				needs_sync = excluded.needs_sync,
				sync_priority = excluded.sync_priority,
				last_synced_at = excluded.last_synced_at`,
			ev.ID, ev.CompanyID, nullString(ev.ProjectID), nullString(ev.TaskID),
			ev.Title, ev.Color,
			encodeTimePtr(ev.StartDate), encodeTimePtr(ev.EndDate), ev.Duration,
			ev.MemberIDList, boolToInt(ev.NeedsSync), ev.SyncPriority,
			encodeTimePtr(ev.LastSyncedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to save event: %w", err)
		}
		return replaceMembers(ctx, tx, "event_members", "event_id", ev.ID, ev.Members)
	})
}

// GetEvent loads a calendar event including its member set.
func (s *Store) GetEvent(ctx context.Context, id string) (*model.CalendarEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, project_id, task_id, title, color,
			start_date, end_date, duration, team_member_ids,
			needs_sync, sync_priority, last_synced_at
		FROM events WHERE id = ?`, id)

	ev, err := scanEvent(row)
	if err != nil {
		return nil, err
	}

	members, err := s.loadMembers(ctx, "event_members", "event_id", id)
	if err != nil {
		return nil, err
	}
	ev.Members = members
	return ev, nil
}

// DirtyEvents returns events awaiting a push, highest priority first.
func (s *Store) DirtyEvents(ctx context.Context, companyID string) ([]model.CalendarEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, project_id, task_id, title, color,
			start_date, end_date, duration, team_member_ids,
			needs_sync, sync_priority, last_synced_at
		FROM events WHERE company_id = ? AND needs_sync = 1
		ORDER BY sync_priority DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		members, err := s.loadMembers(ctx, "event_members", "event_id", events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].Members = members
	}
	return events, nil
}

func scanEvent(row rowScanner) (*model.CalendarEvent, error) {
	var ev model.CalendarEvent
	var projectID, taskID, startDate, endDate, lastSynced sql.NullString
	var needsSync int

	err := row.Scan(&ev.ID, &ev.CompanyID, &projectID, &taskID, &ev.Title, &ev.Color,
		&startDate, &endDate, &ev.Duration, &ev.MemberIDList,
		&needsSync, &ev.SyncPriority, &lastSynced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	ev.ProjectID = projectID.String
	ev.TaskID = taskID.String
	ev.NeedsSync = needsSync != 0
	if ev.StartDate, err = decodeTimePtr(startDate); err != nil {
		return nil, err
	}
	if ev.EndDate, err = decodeTimePtr(endDate); err != nil {
		return nil, err
	}
	if ev.LastSyncedAt, err = decodeTimePtr(lastSynced); err != nil {
		return nil, err
	}
	return &ev, nil
}

// SetEventMembers replaces the event's team in both representations in
// one transaction.
func (s *Store) SetEventMembers(ctx context.Context, id string, memberIDs []string) error {
	return s.setEntityMembers(ctx, "events", "event_members", "event_id", id, memberIDs)
}

// MarkEventSynced clears the dirty flag after a confirmed push.
func (s *Store) MarkEventSynced(ctx context.Context, id string, at time.Time) error {
	return s.markSynced(ctx, "events", id, at)
}

// DeleteEventLocal removes an event and its join rows.
func (s *Store) DeleteEventLocal(ctx context.Context, id string) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_members WHERE event_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete event members: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
}
