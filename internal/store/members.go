package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldforge/jobsync/internal/model"
)

// replaceMembers rewrites the join rows for one entity inside an open
// transaction.
func replaceMembers(ctx context.Context, tx *sql.Tx, table, keyColumn, id string, memberIDs []string) error {
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, keyColumn), id); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	for _, userID := range model.NormalizeMemberIDs(memberIDs) {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (%s, user_id) VALUES (?, ?)`, table, keyColumn),
			id, userID); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// setEntityMembers updates the denormalized ID-list column and the join
// table together, marking the entity dirty. The two representations
// never diverge: they change in the same transaction or not at all.
func (s *Store) setEntityMembers(ctx context.Context, entityTable, joinTable, keyColumn, id string, memberIDs []string) error {
	list := model.JoinMemberIDs(memberIDs)
	return s.inTx(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET team_member_ids = ?, needs_sync = 1 WHERE id = ?`, entityTable),
			list, id)
		if err != nil {
			return fmt.Errorf("failed to update %s members: %w", entityTable, err)
		}
		if err := requireRow(res); err != nil {
			return err
		}
		return replaceMembers(ctx, tx, joinTable, keyColumn, id, memberIDs)
	})
}

func (s *Store) loadMembers(ctx context.Context, table, keyColumn, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT user_id FROM %s WHERE %s = ? ORDER BY user_id`, table, keyColumn), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		members = append(members, userID)
	}
	return members, rows.Err()
}

func (s *Store) markSynced(ctx context.Context, table, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET needs_sync = 0, last_synced_at = ? WHERE id = ?`, table),
		encodeTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to mark %s synced: %w", table, err)
	}
	return requireRow(res)
}
