package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldforge/jobsync/internal/api"
	"github.com/fieldforge/jobsync/internal/config"
	"github.com/fieldforge/jobsync/internal/health"
	"github.com/fieldforge/jobsync/internal/imagesync"
	"github.com/fieldforge/jobsync/internal/logger"
	"github.com/fieldforge/jobsync/internal/session"
	"github.com/fieldforge/jobsync/internal/store"
	"github.com/fieldforge/jobsync/internal/sync"
)

// Controller is the single object the application layer talks to. It
// composes the store, the API client, the session, the sync and image
// managers and the health manager, all constructed explicitly. There
// is one controller per process, or per test.
type Controller struct {
	Store    *store.Store
	API      *api.Client
	Sessions *session.Store
	Session  *session.Session
	Sync     *sync.Manager
	Images   *imagesync.Manager
	Health   *health.Manager
	Sweeper  *sync.Sweeper

	cfg *config.Config
}

// New wires up a controller from its leaf dependencies.
func New(cfg *config.Config, st *store.Store, sessions *session.Store) (*Controller, error) {
	sess, err := sessions.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	client := api.NewClient(sess.ServerURL, sess.Token)

	c := &Controller{
		Store:    st,
		API:      client,
		Sessions: sessions,
		Session:  sess,
		cfg:      cfg,
	}

	c.Sync = sync.NewManager(st, client, sess.CompanyID)
	c.Health = health.NewManager(st, client, sessions, sess, c.reinitializeSync)

	imageDir, err := imagesync.DefaultDir()
	if err != nil {
		return nil, err
	}
	c.Images, err = imagesync.NewManager(st, client, imagesync.Options{
		Dir:       imageDir,
		QueueSize: cfg.ImageQueueSize,
		Workers:   cfg.UploadWorkers,
		MaxBytes:  cfg.MaxImageBytes,
		MaxAge:    cfg.MaxPendingAge,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start image queue: %w", err)
	}

	return c, nil
}

// reinitializeSync rebuilds the sync manager and runs the full
// company-scoped refresh, discarding whatever half-initialized state a
// previous partial sync left behind.
func (c *Controller) reinitializeSync(ctx context.Context) error {
	c.Sync = sync.NewManager(c.Store, c.API, c.Session.CompanyID)

	if err := c.Sync.SyncCompany(ctx); err != nil {
		return err
	}
	if err := c.Sync.SyncCompanyTeamMembers(ctx, c.Session.CompanyID); err != nil {
		return err
	}
	if err := c.Sync.SyncCompanyTaskTypes(ctx, c.Session.CompanyID); err != nil {
		return err
	}
	return nil
}

// StartupResult reports how a launch cycle resolved.
type StartupResult struct {
	State    health.State
	Action   health.RecoveryAction
	Terminal bool
	Flush    sync.FlushResult
}

// Startup runs the launch sequence: minimum-data gate, health check,
// recovery, a normal sync pass, then image-queue reconciliation. A
// terminal outcome (logout, return to onboarding) stops before any
// sync and the caller must hand control back to authentication.
func (c *Controller) Startup(ctx context.Context) (StartupResult, error) {
	var result StartupResult

	// The cheap gate: a complete entity graph with a finished full
	// sync behind it needs no diagnosis, so the launch goes straight
	// to the sync pass.
	if c.Health.HasMinimumRequiredData(ctx) && c.Session.LastFullSync != nil {
		result.State = health.StateHealthy
		result.Action = health.ActionNone
		logger.Debug("Minimum data present, skipping full health check")
	} else {
		state, action, err := c.Health.PerformHealthCheck(ctx)
		if err != nil {
			return result, fmt.Errorf("health check failed: %w", err)
		}
		result.State = state
		result.Action = action

		logger.Info("Health check completed",
			logger.F("state", state.String()), logger.F("action", action.String()))

		outcome, err := c.Health.ExecuteRecoveryAction(ctx, action)
		if err != nil {
			logger.Error("Recovery action failed",
				logger.F("action", action.String()), logger.F("error", err))
		}
		if outcome == health.OutcomeTerminal {
			result.Terminal = true
			return result, nil
		}
	}

	// Normal sync pass: push accumulated dirty state, then refresh
	// company-scoped reference data when reachable.
	flush, err := c.Sync.FlushDirty(ctx)
	if err != nil {
		return result, fmt.Errorf("sync pass failed: %w", err)
	}
	result.Flush = flush

	if c.API.Online(ctx) {
		if err := c.Sync.SyncCompanyTeamMembers(ctx, c.Session.CompanyID); err != nil {
			logger.Warn("Roster refresh failed", logger.F("error", err))
		}
		now := time.Now().UTC()
		c.Session.LastFullSync = &now
		if err := c.Sessions.Save(c.Session); err != nil {
			return result, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	if err := c.Images.Resume(ctx); err != nil {
		logger.Warn("Image queue reconciliation failed", logger.F("error", err))
	}

	return result, nil
}

// StartSweeper launches the background retry sweep.
func (c *Controller) StartSweeper() {
	if c.Sweeper == nil {
		c.Sweeper = sync.NewSweeper(c.Sync, c.cfg.SweepInterval)
	}
}

// Login authenticates against the backend and persists the session.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	result, err := c.API.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.Session.Token = result.Token
	c.Session.UserID = result.UserID
	c.Session.CompanyID = result.CompanyID
	c.Session.Onboarded = true
	if err := c.Sessions.Save(c.Session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	// The sync manager is scoped to the company, which may have changed.
	c.Sync = sync.NewManager(c.Store, c.API, c.Session.CompanyID)
	c.Health = health.NewManager(c.Store, c.API, c.Sessions, c.Session, c.reinitializeSync)

	// Onboarding completion pulls the company-scoped reference data.
	if err := c.Sync.SyncCompany(ctx); err != nil {
		return err
	}
	if err := c.Sync.SyncCompanyTeamMembers(ctx, c.Session.CompanyID); err != nil {
		return err
	}
	if err := c.Sync.SyncCompanyTaskTypes(ctx, c.Session.CompanyID); err != nil {
		logger.Warn("Task type refresh failed", logger.F("error", err))
	}
	return nil
}

// Register creates a fresh account (and company) on the backend and
// persists the resulting session.
func (c *Controller) Register(ctx context.Context, email, password, company string) error {
	result, err := c.API.Register(ctx, api.Credentials{
		Email:    email,
		Password: password,
		Company:  company,
	})
	if err != nil {
		return err
	}

	c.Session.Token = result.Token
	c.Session.UserID = result.UserID
	c.Session.CompanyID = result.CompanyID
	c.Session.Onboarded = true
	if err := c.Sessions.Save(c.Session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	c.Sync = sync.NewManager(c.Store, c.API, c.Session.CompanyID)
	c.Health = health.NewManager(c.Store, c.API, c.Sessions, c.Session, c.reinitializeSync)

	if err := c.Sync.SyncCompany(ctx); err != nil {
		return err
	}
	return nil
}

// Logout clears credentials and identity.
func (c *Controller) Logout() error {
	return c.Sessions.Clear(c.Session)
}

// Shutdown stops background work and closes the store.
func (c *Controller) Shutdown() error {
	if c.Sweeper != nil {
		c.Sweeper.Stop()
	}
	c.Images.Stop()
	return c.Store.Close()
}
