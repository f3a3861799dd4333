package controller

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldforge/jobsync/internal/config"
	"github.com/fieldforge/jobsync/internal/health"
	"github.com/fieldforge/jobsync/internal/model"
	"github.com/fieldforge/jobsync/internal/session"
	"github.com/fieldforge/jobsync/internal/store"
)

// The backend is never reachable here; startup paths must resolve on
// local state alone.
func setupController(t *testing.T, sess *session.Session) (*Controller, *store.Store) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	sessions := session.NewStore(filepath.Join(dir, "session.json"))
	if sess != nil {
		require.NoError(t, sessions.Save(sess))
	}

	c, err := New(config.DefaultConfig(), st, sessions)
	require.NoError(t, err)
	t.Cleanup(func() { c.Shutdown() })

	return c, st
}

func fullTestSession() *session.Session {
	now := time.Now().UTC()
	return &session.Session{
		ServerURL:    "http://127.0.0.1:9",
		Token:        "tok",
		UserID:       "u1",
		CompanyID:    "c1",
		Onboarded:    true,
		LastFullSync: &now,
	}
}

func TestStartupMinimumDataGateShortCircuits(t *testing.T) {
	c, st := setupController(t, fullTestSession())
	ctx := context.Background()

	require.NoError(t, st.SaveUser(ctx, &model.User{ID: "u1", CompanyID: "c1", Name: "Ana"}))
	require.NoError(t, st.SaveCompany(ctx, &model.Company{ID: "c1", Name: "Acme Decks"}))

	result, err := c.Startup(ctx)
	require.NoError(t, err)

	assert.Equal(t, health.StateHealthy, result.State)
	assert.Equal(t, health.ActionNone, result.Action)
	assert.False(t, result.Terminal)
	assert.Equal(t, 0, result.Flush.Pushed)
}

func TestStartupMissingUserRunsFullCheck(t *testing.T) {
	c, st := setupController(t, fullTestSession())
	ctx := context.Background()

	// Company cached, user row gone: the gate fails and the full
	// check must name the missing piece.
	require.NoError(t, st.SaveCompany(ctx, &model.Company{ID: "c1", Name: "Acme Decks"}))

	result, err := c.Startup(ctx)
	require.NoError(t, err)

	assert.Equal(t, health.StateMissingUser, result.State)
	assert.Equal(t, health.ActionFetchUserFromAPI, result.Action)
	// The fetch cannot succeed offline, but recovery is non-terminal.
	assert.False(t, result.Terminal)
}

func TestStartupWithoutIdentityIsTerminal(t *testing.T) {
	c, _ := setupController(t, nil)

	result, err := c.Startup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, health.StateInvalidSession, result.State)
	assert.Equal(t, health.ActionReturnToOnboarding, result.Action)
	assert.True(t, result.Terminal)
}
