package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session is the typed, persisted device session: who is signed in,
// which tenant they belong to and the credentials for the backend.
// The controller owns one instance and threads it through explicitly.
type Session struct {
	ServerURL    string     `json:"server_url"`
	Token        string     `json:"token"`
	UserID       string     `json:"user_id"`
	CompanyID    string     `json:"company_id"`
	LastFullSync *time.Time `json:"last_full_sync,omitempty"`
	Onboarded    bool       `json:"onboarded"`
}

// IsAuthenticated reports whether the session carries credentials and
// a user identity.
func (s *Session) IsAuthenticated() bool {
	return s.Token != "" && s.UserID != ""
}

// Store persists the session as a JSON file.
type Store struct {
	path string
}

// DefaultPath returns the default session file path (~/.jobsync/session.json).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".jobsync", "session.json"), nil
}

// NewStore creates a session store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewDefaultStore creates a session store at the default path.
func NewDefaultStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

// Load reads the persisted session. A missing file yields an empty
// session with the default server URL, not an error.
func (st *Store) Load() (*Session, error) {
	data, err := os.ReadFile(st.path)
	if os.IsNotExist(err) {
		return &Session{ServerURL: "http://localhost:8080"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	if s.ServerURL == "" {
		s.ServerURL = "http://localhost:8080"
	}
	return &s, nil
}

// Save writes the session to disk.
func (st *Store) Save(s *Session) error {
	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(st.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear wipes credentials and identity but keeps the server URL.
func (st *Store) Clear(s *Session) error {
	s.Token = ""
	s.UserID = ""
	s.CompanyID = ""
	s.LastFullSync = nil
	s.Onboarded = false
	return st.Save(s)
}
