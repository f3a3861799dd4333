package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fieldforge/jobsync/internal/model"
)

func encodeURLList(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	b, _ := json.Marshal(urls)
	return string(b)
}

func decodeURLList(s string) []string {
	if s == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(s), &urls); err != nil {
		return nil
	}
	return urls
}

// SaveProject upserts a project and its member join rows in one
// transaction, keeping the ID-list column and the relationship set
// identical.
func (s *Store) SaveProject(ctx context.Context, p *model.Project) error {
	p.MemberIDList = model.JoinMemberIDs(p.Members)
	p.UpdatedAt = time.Now().UTC()

	return s.inTx(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, company_id, name, status, notes, client_id, event_id,
				start_date, end_date, team_member_ids, image_urls,
				needs_sync, sync_priority, last_synced_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				company_id = excluded.company_id,
				name = excluded.name,
				status = excluded.status,
				notes = excluded.notes,
				client_id = excluded.client_id,
				event_id = excluded.event_id,
				start_date = excluded.start_date,
				end_date = excluded.end_date,
				team_member_ids = excluded.team_member_ids,
				image_urls = excluded.image_urls,
				needs_sync = excluded.needs_sync,
				sync_priority = excluded.sync_priority,
				last_synced_at = excluded.last_synced_at,
				updated_at = excluded.updated_at`,
			p.ID, p.CompanyID, p.Name, p.Status, p.Notes,
			nullString(p.ClientID), nullString(p.EventID),
			encodeTimePtr(p.StartDate), encodeTimePtr(p.EndDate),
			p.MemberIDList, encodeURLList(p.ImageURLs),
			boolToInt(p.NeedsSync), p.SyncPriority, encodeTimePtr(p.LastSyncedAt),
			encodeTime(p.CreatedAt), encodeTime(p.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		return replaceMembers(ctx, tx, "project_members", "project_id", p.ID, p.Members)
	})
}

// GetProject loads a project including its member set.
func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, status, notes, client_id, event_id,
			start_date, end_date, team_member_ids, image_urls,
			needs_sync, sync_priority, last_synced_at, created_at, updated_at
		FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if err != nil {
		return nil, err
	}

	members, err := s.loadMembers(ctx, "project_members", "project_id", id)
	if err != nil {
		return nil, err
	}
	p.Members = members
	return p, nil
}

// ListProjects returns all projects in a company.
func (s *Store) ListProjects(ctx context.Context, companyID string) ([]model.Project, error) {
	return s.queryProjects(ctx, `
		SELECT id, company_id, name, status, notes, client_id, event_id,
			start_date, end_date, team_member_ids, image_urls,
			needs_sync, sync_priority, last_synced_at, created_at, updated_at
		FROM projects WHERE company_id = ? ORDER BY created_at`, companyID)
}

// DirtyProjects returns projects awaiting a push, highest priority first.
func (s *Store) DirtyProjects(ctx context.Context, companyID string) ([]model.Project, error) {
	return s.queryProjects(ctx, `
		SELECT id, company_id, name, status, notes, client_id, event_id,
			start_date, end_date, team_member_ids, image_urls,
			needs_sync, sync_priority, last_synced_at, created_at, updated_at
		FROM projects WHERE company_id = ? AND needs_sync = 1
		ORDER BY sync_priority DESC, updated_at`, companyID)
}

func (s *Store) queryProjects(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		members, err := s.loadMembers(ctx, "project_members", "project_id", projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Members = members
	}
	return projects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	var clientID, eventID, startDate, endDate, lastSynced sql.NullString
	var imageURLs, createdAt, updatedAt string
	var needsSync int

	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Status, &p.Notes,
		&clientID, &eventID, &startDate, &endDate, &p.MemberIDList, &imageURLs,
		&needsSync, &p.SyncPriority, &lastSynced, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	p.ClientID = clientID.String
	p.EventID = eventID.String
	p.NeedsSync = needsSync != 0
	p.ImageURLs = decodeURLList(imageURLs)
	if p.StartDate, err = decodeTimePtr(startDate); err != nil {
		return nil, err
	}
	if p.EndDate, err = decodeTimePtr(endDate); err != nil {
		return nil, err
	}
	if p.LastSyncedAt, err = decodeTimePtr(lastSynced); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProjectStatus writes the status and marks the project dirty.
func (s *Store) UpdateProjectStatus(ctx context.Context, id, status string) error {
	return s.touchProjectField(ctx, id, "status", status)
}

// UpdateProjectNotes writes the notes and marks the project dirty.
func (s *Store) UpdateProjectNotes(ctx context.Context, id, notes string) error {
	return s.touchProjectField(ctx, id, "notes", notes)
}

func (s *Store) touchProjectField(ctx context.Context, id, column, value string) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE projects SET %s = ?, needs_sync = 1, updated_at = ? WHERE id = ?`, column),
		value, encodeTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", column, err)
	}
	return requireRow(res)
}

// SetProjectDates sets or clears the displayed date range and marks
// the project dirty. Both dates change together.
func (s *Store) SetProjectDates(ctx context.Context, id string, start, end *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET start_date = ?, end_date = ?, needs_sync = 1, updated_at = ?
		WHERE id = ?`,
		encodeTimePtr(start), encodeTimePtr(end), encodeTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to set project dates: %w", err)
	}
	return requireRow(res)
}

// SetProjectMembers replaces the project's team in both
// representations in one transaction.
func (s *Store) SetProjectMembers(ctx context.Context, id string, memberIDs []string) error {
	return s.setEntityMembers(ctx, "projects", "project_members", "project_id", id, memberIDs)
}

// LinkProjectEvent records the project's primary calendar event.
func (s *Store) LinkProjectEvent(ctx context.Context, projectID, eventID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET event_id = ?, updated_at = ? WHERE id = ?`,
		nullString(eventID), encodeTime(time.Now()), projectID)
	if err != nil {
		return fmt.Errorf("failed to link project event: %w", err)
	}
	return requireRow(res)
}

// MarkProjectSynced clears the dirty flag after a confirmed push.
func (s *Store) MarkProjectSynced(ctx context.Context, id string, at time.Time) error {
	return s.markSynced(ctx, "projects", id, at)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
