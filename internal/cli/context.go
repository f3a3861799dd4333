package cli

import (
	"fmt"

	"github.com/fieldforge/jobsync/internal/config"
	"github.com/fieldforge/jobsync/internal/controller"
	"github.com/fieldforge/jobsync/internal/logger"
	"github.com/fieldforge/jobsync/internal/session"
	"github.com/fieldforge/jobsync/internal/store"
)

// openController builds a fully wired controller from the default
// on-disk locations. Every command opens its own controller and shuts
// it down when done.
func openController() (*controller.Controller, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("Failed to load config, using defaults", logger.F("error", err))
		cfg = config.DefaultConfig()
	}

	st, err := store.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sessions, err := session.NewDefaultStore()
	if err != nil {
		st.Close()
		return nil, err
	}

	c, err := controller.New(cfg, st, sessions)
	if err != nil {
		st.Close()
		return nil, err
	}
	return c, nil
}

// requireAuth fails fast when no session token is stored.
func requireAuth(c *controller.Controller) error {
	if !c.Session.IsAuthenticated() {
		return fmt.Errorf("not logged in, run 'jobsync auth login' first")
	}
	return nil
}
