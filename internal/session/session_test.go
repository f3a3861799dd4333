package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "session.json"))

	s, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", s.ServerURL)
	assert.False(t, s.IsAuthenticated())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "session.json"))

	synced := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	s := &Session{
		ServerURL:    "https://api.acme.test",
		Token:        "tok",
		UserID:       "u1",
		CompanyID:    "c1",
		LastFullSync: &synced,
		Onboarded:    true,
	}
	require.NoError(t, st.Save(s))

	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, s.ServerURL, got.ServerURL)
	assert.Equal(t, s.Token, got.Token)
	assert.Equal(t, s.UserID, got.UserID)
	assert.Equal(t, s.CompanyID, got.CompanyID)
	require.NotNil(t, got.LastFullSync)
	assert.True(t, got.LastFullSync.Equal(synced))
	assert.True(t, got.IsAuthenticated())
}

func TestClearKeepsServerURL(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "session.json"))

	s := &Session{ServerURL: "https://api.acme.test", Token: "tok", UserID: "u1", CompanyID: "c1", Onboarded: true}
	require.NoError(t, st.Save(s))
	require.NoError(t, st.Clear(s))

	assert.Empty(t, s.Token)
	assert.Empty(t, s.UserID)
	assert.Empty(t, s.CompanyID)
	assert.False(t, s.Onboarded)

	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.acme.test", got.ServerURL)
	assert.False(t, got.IsAuthenticated())
}
