package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldforge/jobsync/internal/model"
)

// Company, user and client records are reference data: pulled from the
// backend, cached locally, rarely mutated from the device.

// SaveCompany upserts the tenant record.
func (s *Store) SaveCompany(ctx context.Context, c *model.Company) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, owner_id, task_types, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			owner_id = excluded.owner_id,
			task_types = excluded.task_types`,
		c.ID, c.Name, nullString(c.OwnerID),
		strings.Join(c.TaskTypes, ","), encodeTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

// GetCompany loads the tenant record.
func (s *Store) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	var c model.Company
	var ownerID sql.NullString
	var taskTypes, createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, task_types, created_at FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &ownerID, &taskTypes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	c.OwnerID = ownerID.String
	if taskTypes != "" {
		c.TaskTypes = strings.Split(taskTypes, ",")
	}
	if c.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetCompanyTaskTypes replaces the cached task-type list.
func (s *Store) SetCompanyTaskTypes(ctx context.Context, companyID string, taskTypes []string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET task_types = ? WHERE id = ?`,
		strings.Join(taskTypes, ","), companyID)
	if err != nil {
		return fmt.Errorf("failed to set task types: %w", err)
	}
	return requireRow(res)
}

// SaveUser upserts a team member record.
func (s *Store) SaveUser(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, company_id, name, email, phone, role, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company_id = excluded.company_id,
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			role = excluded.role,
			avatar_url = excluded.avatar_url`,
		u.ID, u.CompanyID, u.Name, u.Email, u.Phone, u.Role, u.AvatarURL,
		encodeTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser loads a team member record.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, email, phone, role, avatar_url, created_at
		FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.AvatarURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if u.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListCompanyUsers returns the cached roster for a company.
func (s *Store) ListCompanyUsers(ctx context.Context, companyID string) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, name, email, phone, role, avatar_url, created_at
		FROM users WHERE company_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.Phone,
			&u.Role, &u.AvatarURL, &createdAt); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ReplaceCompanyUsers swaps the cached roster for a full-refresh pull.
func (s *Store) ReplaceCompanyUsers(ctx context.Context, companyID string, users []model.User) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE company_id = ?`, companyID); err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}
		for _, u := range users {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO users (id, company_id, name, email, phone, role, avatar_url, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				u.ID, companyID, u.Name, u.Email, u.Phone, u.Role, u.AvatarURL,
				encodeTime(u.CreatedAt)); err != nil {
				return fmt.Errorf("failed to insert user: %w", err)
			}
		}
		return nil
	})
}

// SaveClient upserts a customer record.
func (s *Store) SaveClient(ctx context.Context, c *model.Client) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, company_id, name, email, phone, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company_id = excluded.company_id,
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address`,
		c.ID, c.CompanyID, c.Name, c.Email, c.Phone, c.Address, encodeTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}
	return nil
}

// GetClient loads a customer record.
func (s *Store) GetClient(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, email, phone, address, created_at
		FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Address, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	if c.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}
