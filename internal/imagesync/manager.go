package imagesync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldforge/jobsync/internal/logger"
	"github.com/fieldforge/jobsync/internal/store"
)

// Uploader is the backend surface the image queue depends on.
// *api.Client satisfies it.
type Uploader interface {
	Online(ctx context.Context) bool
	UploadImage(ctx context.Context, ownerType, ownerID, filename string, data []byte) (string, error)
}

// Image is one captured photo to attach to an entity.
type Image struct {
	Name string
	Data []byte
}

// Options configures the upload queue.
type Options struct {
	Dir       string        // local image directory
	QueueSize int           // in-flight queue capacity
	Workers   int           // concurrent uploads
	MaxBytes  int64         // pending uploads above this are dropped at startup
	MaxAge    time.Duration // pending uploads older than this are dropped at startup
}

// Manager decouples slow binary uploads from the document sync path.
// Images are durable locally (and immediately renderable) before any
// upload; a completed upload swaps the local URL for the remote one in
// the owning entity's image list and marks it dirty, which is the only
// coupling point with document sync.
type Manager struct {
	store  *store.Store
	remote Uploader
	opts   Options

	queue  chan store.PendingUpload
	wg     stdsync.WaitGroup
	stopCh chan struct{}
	once   stdsync.Once
}

// DefaultDir returns the default local image directory (~/.jobsync/images).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".jobsync", "images"), nil
}

// NewManager creates the upload queue and starts its workers.
func NewManager(st *store.Store, remote Uploader, opts Options) (*Manager, error) {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	m := &Manager{
		store:  st,
		remote: remote,
		opts:   opts,
		queue:  make(chan store.PendingUpload, opts.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < opts.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}

	return m, nil
}

// SaveImages persists images locally first, appends their local URLs
// to the owning entity (so they render immediately), and enqueues each
// for upload. The returned URLs are usable by the caller whether or
// not the uploads ever complete.
func (m *Manager) SaveImages(ctx context.Context, images []Image, ownerType, ownerID string) ([]string, error) {
	urls := make([]string, 0, len(images))

	for _, img := range images {
		name := uuid.NewString() + "_" + filepath.Base(img.Name)
		path := filepath.Join(m.opts.Dir, name)

		if err := os.WriteFile(path, img.Data, 0644); err != nil {
			return urls, fmt.Errorf("failed to persist image locally: %w", err)
		}

		if err := m.store.AppendImageURL(ctx, ownerType, ownerID, path); err != nil {
			return urls, fmt.Errorf("failed to record image on owner: %w", err)
		}

		pending := store.PendingUpload{
			ID:        uuid.NewString(),
			OwnerType: ownerType,
			OwnerID:   ownerID,
			LocalPath: path,
			SizeBytes: int64(len(img.Data)),
			CreatedAt: time.Now().UTC(),
		}
		if err := m.store.InsertPendingUpload(ctx, &pending); err != nil {
			return urls, fmt.Errorf("failed to queue image upload: %w", err)
		}

		m.enqueue(pending)
		urls = append(urls, path)
	}

	return urls, nil
}

// enqueue hands an upload to a worker without blocking. A full queue
// is fine: the row stays in pending_uploads and the next Resume pass
// picks it up.
func (m *Manager) enqueue(u store.PendingUpload) {
	select {
	case m.queue <- u:
	default:
		logger.Debug("Upload queue full, deferring", logger.F("upload", u.ID))
	}
}

// PendingUploads lists the uploads still awaiting completion.
func (m *Manager) PendingUploads(ctx context.Context) ([]store.PendingUpload, error) {
	return m.store.ListPendingUploads(ctx)
}

// ClearAllPendingUploads discards every unfinished upload. The local
// image files stay on disk; only the upload intent is dropped.
func (m *Manager) ClearAllPendingUploads(ctx context.Context) error {
	return m.store.ClearPendingUploads(ctx)
}

// Resume re-enqueues unfinished uploads at startup. Stale or oversized
// entries are dropped rather than retried indefinitely, keeping the
// startup cost bounded.
func (m *Manager) Resume(ctx context.Context) error {
	uploads, err := m.store.ListPendingUploads(ctx)
	if err != nil {
		return err
	}

	for _, u := range uploads {
		tooOld := m.opts.MaxAge > 0 && time.Since(u.CreatedAt) > m.opts.MaxAge
		tooBig := m.opts.MaxBytes > 0 && u.SizeBytes > m.opts.MaxBytes
		if tooOld || tooBig {
			logger.Warn("Dropping pending upload",
				logger.F("upload", u.ID),
				logger.F("stale", tooOld),
				logger.F("oversized", tooBig))
			if err := m.store.DeletePendingUpload(ctx, u.ID); err != nil {
				return err
			}
			continue
		}
		m.enqueue(u)
	}
	return nil
}

func (m *Manager) worker() {
	defer m.wg.Done()

	for {
		select {
		case u := <-m.queue:
			m.process(u)
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) process(u store.PendingUpload) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	data, err := os.ReadFile(u.LocalPath)
	if err != nil {
		// Local file gone; the upload can never succeed.
		logger.Error("Pending upload lost its local file",
			logger.F("upload", u.ID), logger.F("path", u.LocalPath))
		_ = m.store.DeletePendingUpload(ctx, u.ID)
		return
	}

	remoteURL, err := m.remote.UploadImage(ctx, u.OwnerType, u.OwnerID, filepath.Base(u.LocalPath), data)
	if err != nil {
		logger.Warn("Image upload failed, will retry on next resume",
			logger.F("upload", u.ID), logger.F("error", err))
		_ = m.store.IncrementUploadAttempts(ctx, u.ID)
		return
	}

	if err := m.store.ReplaceImageURL(ctx, u.OwnerType, u.OwnerID, u.LocalPath, remoteURL); err != nil {
		logger.Error("Failed to record uploaded image URL",
			logger.F("upload", u.ID), logger.F("error", err))
		return
	}
	if err := m.store.DeletePendingUpload(ctx, u.ID); err != nil {
		logger.Error("Failed to clear completed upload",
			logger.F("upload", u.ID), logger.F("error", err))
		return
	}

	logger.Info("Image uploaded",
		logger.F("owner", u.OwnerID), logger.F("url", remoteURL))
}

// Stop halts the workers after the current uploads finish.
func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
}
