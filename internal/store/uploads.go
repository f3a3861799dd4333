package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldforge/jobsync/internal/model"
)

// PendingUpload is one queued image upload bound to an owning entity.
type PendingUpload struct {
	ID        string
	OwnerType string // "project" or "task"
	OwnerID   string
	LocalPath string
	SizeBytes int64
	Attempts  int
	CreatedAt time.Time
}

// InsertPendingUpload records a queued upload.
func (s *Store) InsertPendingUpload(ctx context.Context, u *PendingUpload) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_uploads (id, owner_type, owner_id, local_path, size_bytes, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.OwnerType, u.OwnerID, u.LocalPath, u.SizeBytes, u.Attempts, encodeTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert pending upload: %w", err)
	}
	return nil
}

// ListPendingUploads returns all queued uploads, oldest first.
func (s *Store) ListPendingUploads(ctx context.Context) ([]PendingUpload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_type, owner_id, local_path, size_bytes, attempts, created_at
		FROM pending_uploads ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending uploads: %w", err)
	}
	defer rows.Close()

	var uploads []PendingUpload
	for rows.Next() {
		var u PendingUpload
		var createdAt string
		if err := rows.Scan(&u.ID, &u.OwnerType, &u.OwnerID, &u.LocalPath,
			&u.SizeBytes, &u.Attempts, &createdAt); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// DeletePendingUpload removes one queued upload.
func (s *Store) DeletePendingUpload(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending upload: %w", err)
	}
	return nil
}

// ClearPendingUploads discards the whole queue.
func (s *Store) ClearPendingUploads(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_uploads`)
	if err != nil {
		return fmt.Errorf("failed to clear pending uploads: %w", err)
	}
	return nil
}

// IncrementUploadAttempts bumps the attempt counter for one upload.
func (s *Store) IncrementUploadAttempts(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pending_uploads SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment upload attempts: %w", err)
	}
	return nil
}

// AppendImageURL adds a URL to the owning entity's image list and
// marks it dirty. This is the single coupling point between the image
// queue and the document sync path.
func (s *Store) AppendImageURL(ctx context.Context, ownerType, ownerID, url string) error {
	return s.swapImageURL(ctx, ownerType, ownerID, "", url)
}

// ReplaceImageURL swaps a local URL for its uploaded remote URL in the
// owning entity's image list and marks the entity dirty.
func (s *Store) ReplaceImageURL(ctx context.Context, ownerType, ownerID, oldURL, newURL string) error {
	return s.swapImageURL(ctx, ownerType, ownerID, oldURL, newURL)
}

func (s *Store) swapImageURL(ctx context.Context, ownerType, ownerID, oldURL, newURL string) error {
	table, err := ownerTable(ownerType)
	if err != nil {
		return err
	}

	var encoded string
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT image_urls FROM %s WHERE id = ?`, table), ownerID).Scan(&encoded)
	if err != nil {
		return fmt.Errorf("failed to load image urls: %w", err)
	}

	urls := decodeURLList(encoded)
	if oldURL == "" {
		urls = append(urls, newURL)
	} else {
		replaced := false
		for i, u := range urls {
			if u == oldURL {
				urls[i] = newURL
				replaced = true
				break
			}
		}
		if !replaced {
			urls = append(urls, newURL)
		}
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET image_urls = ?, needs_sync = 1, updated_at = ? WHERE id = ?`, table),
		encodeURLList(urls), encodeTime(time.Now()), ownerID)
	if err != nil {
		return fmt.Errorf("failed to update image urls: %w", err)
	}
	return requireRow(res)
}

func ownerTable(ownerType string) (string, error) {
	switch ownerType {
	case model.OwnerProject:
		return "projects", nil
	case model.OwnerTask:
		return "tasks", nil
	}
	return "", fmt.Errorf("unknown image owner type %q", ownerType)
}
