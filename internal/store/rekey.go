package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Entities created offline carry a locally-generated ID until their
// first successful push, when the backend assigns the real one. Rekey
// rewrites the ID and every reference to it in one transaction.

// RekeyProject moves a project and all references to oldID onto newID.
func (s *Store) RekeyProject(ctx context.Context, oldID, newID string) error {
	return s.inTx(func(tx *sql.Tx) error {
		if err := rekeyRow(ctx, tx, "projects", oldID, newID); err != nil {
			return err
		}
		for _, stmt := range []string{
			`UPDATE tasks SET project_id = ? WHERE project_id = ?`,
			`UPDATE events SET project_id = ? WHERE project_id = ?`,
			`UPDATE project_members SET project_id = ? WHERE project_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, newID, oldID); err != nil {
				return fmt.Errorf("failed to rekey project references: %w", err)
			}
		}
		return nil
	})
}

// RekeyTask moves a task and all references to oldID onto newID.
func (s *Store) RekeyTask(ctx context.Context, oldID, newID string) error {
	return s.inTx(func(tx *sql.Tx) error {
		if err := rekeyRow(ctx, tx, "tasks", oldID, newID); err != nil {
			return err
		}
		for _, stmt := range []string{
			`UPDATE events SET task_id = ? WHERE task_id = ?`,
			`UPDATE task_members SET task_id = ? WHERE task_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, newID, oldID); err != nil {
				return fmt.Errorf("failed to rekey task references: %w", err)
			}
		}
		return nil
	})
}

// RekeyEvent moves a calendar event and all references to oldID onto
// newID, including the owner's link column.
func (s *Store) RekeyEvent(ctx context.Context, oldID, newID string) error {
	return s.inTx(func(tx *sql.Tx) error {
		if err := rekeyRow(ctx, tx, "events", oldID, newID); err != nil {
			return err
		}
		for _, stmt := range []string{
			`UPDATE event_members SET event_id = ? WHERE event_id = ?`,
			`UPDATE tasks SET event_id = ? WHERE event_id = ?`,
			`UPDATE projects SET event_id = ? WHERE event_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, newID, oldID); err != nil {
				return fmt.Errorf("failed to rekey event references: %w", err)
			}
		}
		return nil
	})
}

func rekeyRow(ctx context.Context, tx *sql.Tx, table, oldID, newID string) error {
	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET id = ? WHERE id = ?`, table), newID, oldID)
	if err != nil {
		return fmt.Errorf("failed to rekey %s row: %w", table, err)
	}
	return requireRow(res)
}
