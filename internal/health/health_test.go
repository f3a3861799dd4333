package health

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldforge/jobsync/internal/model"
	"github.com/fieldforge/jobsync/internal/session"
	"github.com/fieldforge/jobsync/internal/store"
)

type fakeRemote struct {
	user       *model.User
	company    *model.Company
	userErr    error
	companyErr error
}

func (f *fakeRemote) FetchUser(ctx context.Context, userID string) (*model.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeRemote) FetchCompany(ctx context.Context, companyID string) (*model.Company, error) {
	if f.companyErr != nil {
		return nil, f.companyErr
	}
	return f.company, nil
}

type fixture struct {
	manager *Manager
	store   *store.Store
	remote  *fakeRemote
	sess    *session.Session
	reinits *int
}

func setup(t *testing.T, sess *session.Session) fixture {
	t.Helper()

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sessions := session.NewStore(filepath.Join(dir, "session.json"))
	require.NoError(t, sessions.Save(sess))

	remote := &fakeRemote{}
	reinits := 0
	m := NewManager(st, remote, sessions, sess, func(ctx context.Context) error {
		reinits++
		return nil
	})
	return fixture{manager: m, store: st, remote: remote, sess: sess, reinits: &reinits}
}

func fullSession() *session.Session {
	now := time.Now().UTC()
	return &session.Session{
		ServerURL:    "http://localhost:8080",
		Token:        "tok",
		UserID:       "u1",
		CompanyID:    "c1",
		LastFullSync: &now,
		Onboarded:    true,
	}
}

func seedIdentity(t *testing.T, f fixture) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, f.store.SaveCompany(ctx, &model.Company{ID: "c1", Name: "Acme"}))
	require.NoError(t, f.store.SaveUser(ctx, &model.User{ID: "u1", CompanyID: "c1", Name: "Ana", Email: "ana@acme.test"}))
}

func TestHealthyNoAction(t *testing.T) {
	f := setup(t, fullSession())
	seedIdentity(t, f)

	state, action, err := f.manager.PerformHealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateHealthy, state)
	assert.Equal(t, ActionNone, action)
	assert.True(t, f.manager.HasMinimumRequiredData(context.Background()))
}

func TestHealthCheckIsIdempotent(t *testing.T) {
	f := setup(t, fullSession())
	seedIdentity(t, f)
	ctx := context.Background()

	s1, a1, err := f.manager.PerformHealthCheck(ctx)
	require.NoError(t, err)
	s2, a2, err := f.manager.PerformHealthCheck(ctx)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, a1, a2)
}

func TestStaleTokenWithoutUser(t *testing.T) {
	sess := fullSession()
	sess.UserID = ""

	f := setup(t, sess)
	state, action, err := f.manager.PerformHealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateInvalidSession, state)
	assert.Equal(t, ActionLogout, action)

	outcome, err := f.manager.ExecuteRecoveryAction(context.Background(), action)
	require.NoError(t, err)
	assert.Equal(t, OutcomeTerminal, outcome)
	assert.Empty(t, f.sess.Token)
}

func TestNoIdentityAtAll(t *testing.T) {
	sess := fullSession()
	sess.UserID = ""
	sess.Token = ""

	f := setup(t, sess)
	state, action, err := f.manager.PerformHealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateInvalidSession, state)
	assert.Equal(t, ActionReturnToOnboarding, action)
}

func TestMissingUserFetchesAndRelinks(t *testing.T) {
	sess := fullSession()
	sess.CompanyID = ""

	f := setup(t, sess)
	ctx := context.Background()

	state, action, err := f.manager.PerformHealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateMissingUser, state)
	assert.Equal(t, ActionFetchUserFromAPI, action)

	f.remote.user = &model.User{ID: "u1", CompanyID: "c1", Name: "Ana", Email: "ana@acme.test"}

	outcome, err := f.manager.ExecuteRecoveryAction(ctx, action)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProceed, outcome)

	// User cached and the company link adopted from the fetched record.
	_, err = f.store.GetUser(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, "c1", f.sess.CompanyID)
}

func TestMissingUserFetchFailure(t *testing.T) {
	f := setup(t, fullSession())
	f.remote.userErr = errors.New("backend unavailable")

	_, action, err := f.manager.PerformHealthCheck(context.Background())
	require.NoError(t, err)

	outcome, err := f.manager.ExecuteRecoveryAction(context.Background(), action)
	assert.Error(t, err)
	assert.Equal(t, OutcomeProceed, outcome, "a failed fetch is retried next launch, not terminal")
}

func TestMissingCompanyFetches(t *testing.T) {
	f := setup(t, fullSession())
	ctx := context.Background()
	require.NoError(t, f.store.SaveUser(ctx, &model.User{ID: "u1", CompanyID: "c1", Name: "Ana", Email: "ana@acme.test"}))

	state, action, err := f.manager.PerformHealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateMissingCompany, state)
	assert.Equal(t, ActionFetchCompanyFromAPI, action)

	f.remote.company = &model.Company{ID: "c1", Name: "Acme"}
	outcome, err := f.manager.ExecuteRecoveryAction(ctx, action)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProceed, outcome)

	_, err = f.store.GetCompany(ctx, "c1")
	assert.NoError(t, err)
}

func TestUserWithoutCompanyLinkGoesToOnboarding(t *testing.T) {
	sess := fullSession()
	sess.CompanyID = ""

	f := setup(t, sess)
	ctx := context.Background()
	require.NoError(t, f.store.SaveUser(ctx, &model.User{ID: "u1", Name: "Ana", Email: "ana@acme.test"}))

	state, action, err := f.manager.PerformHealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateMissingCompany, state)
	assert.Equal(t, ActionReturnToOnboarding, action)
}

func TestInterruptedFirstSyncReinitializes(t *testing.T) {
	sess := fullSession()
	sess.LastFullSync = nil

	f := setup(t, sess)
	seedIdentity(t, f)
	ctx := context.Background()

	state, action, err := f.manager.PerformHealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateHealthy, state)
	assert.Equal(t, ActionReinitializeSyncManager, action)

	outcome, err := f.manager.ExecuteRecoveryAction(ctx, action)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProceed, outcome)
	assert.Equal(t, 1, *f.reinits)
}
