package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldforge/jobsync/internal/logger"
	"github.com/fieldforge/jobsync/internal/model"
	"github.com/fieldforge/jobsync/internal/session"
	"github.com/fieldforge/jobsync/internal/store"
)

// State classifies the local entity graph at launch or foreground.
type State int

const (
	StateHealthy State = iota
	StateMissingUser    // session knows a user id but no local user row exists
	StateMissingCompany // company record missing or unlinked
	StateInvalidSession // session has no usable user identity
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateMissingUser:
		return "missing_user"
	case StateMissingCompany:
		return "missing_company"
	case StateInvalidSession:
		return "invalid_session"
	default:
		return "unknown"
	}
}

// RecoveryAction is the single remedy a health check prescribes.
type RecoveryAction int

const (
	ActionNone RecoveryAction = iota
	ActionFetchUserFromAPI
	ActionFetchCompanyFromAPI
	ActionReinitializeSyncManager
	ActionLogout
	ActionReturnToOnboarding
)

func (a RecoveryAction) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionFetchUserFromAPI:
		return "fetch_user_from_api"
	case ActionFetchCompanyFromAPI:
		return "fetch_company_from_api"
	case ActionReinitializeSyncManager:
		return "reinitialize_sync_manager"
	case ActionLogout:
		return "logout"
	case ActionReturnToOnboarding:
		return "return_to_onboarding"
	default:
		return "unknown"
	}
}

// Outcome tells the caller what to do after a recovery action.
type Outcome int

const (
	// OutcomeProceed means recovery succeeded (or was unnecessary)
	// and a normal sync pass should follow.
	OutcomeProceed Outcome = iota
	// OutcomeTerminal means this launch cycle must stop and hand
	// control back to authentication/onboarding.
	OutcomeTerminal
)

// Remote is the backend surface health recovery depends on.
type Remote interface {
	FetchUser(ctx context.Context, userID string) (*model.User, error)
	FetchCompany(ctx context.Context, companyID string) (*model.Company, error)
}

// Manager diagnoses a structurally incomplete local store and drives
// the one recovery action to take. It centralizes what every screen
// would otherwise have to guess at when data is missing.
type Manager struct {
	store    *store.Store
	remote   Remote
	sessions *session.Store
	sess     *session.Session
	reinit   func(ctx context.Context) error // rebuilds the sync subsystem
}

// NewManager creates a health manager for one session.
func NewManager(st *store.Store, remote Remote, sessions *session.Store, sess *session.Session, reinit func(ctx context.Context) error) *Manager {
	return &Manager{store: st, remote: remote, sessions: sessions, sess: sess, reinit: reinit}
}

// HasMinimumRequiredData is the cheap gate run before the full check:
// both the local user row and the local company row must exist.
func (m *Manager) HasMinimumRequiredData(ctx context.Context) bool {
	if m.sess.UserID == "" || m.sess.CompanyID == "" {
		return false
	}
	if _, err := m.store.GetUser(ctx, m.sess.UserID); err != nil {
		return false
	}
	if _, err := m.store.GetCompany(ctx, m.sess.CompanyID); err != nil {
		return false
	}
	return true
}

// PerformHealthCheck inspects the local store against the session's
// known identifiers and prescribes exactly one recovery action. It is
// pure inspection: calling it twice without intervening mutation
// yields the same result.
func (m *Manager) PerformHealthCheck(ctx context.Context) (State, RecoveryAction, error) {
	// No usable identity at all: never recoverable by fetching.
	if m.sess.UserID == "" {
		if m.sess.Token != "" {
			// Stale credentials with no user behind them, typically a
			// fresh install that inherited an old keychain entry.
			return StateInvalidSession, ActionLogout, nil
		}
		return StateInvalidSession, ActionReturnToOnboarding, nil
	}

	if _, err := m.store.GetUser(ctx, m.sess.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StateMissingUser, ActionFetchUserFromAPI, nil
		}
		return StateMissingUser, ActionNone, fmt.Errorf("failed to inspect local user: %w", err)
	}

	if m.sess.CompanyID == "" {
		// A user with no company link cannot operate; onboarding
		// establishes the tenant.
		return StateMissingCompany, ActionReturnToOnboarding, nil
	}

	if _, err := m.store.GetCompany(ctx, m.sess.CompanyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StateMissingCompany, ActionFetchCompanyFromAPI, nil
		}
		return StateMissingCompany, ActionNone, fmt.Errorf("failed to inspect local company: %w", err)
	}

	// Graph complete but no full sync has ever finished: a previous
	// pass died partway. Rebuild the sync subsystem before trusting it.
	if m.sess.LastFullSync == nil {
		return StateHealthy, ActionReinitializeSyncManager, nil
	}

	return StateHealthy, ActionNone, nil
}

// ExecuteRecoveryAction dispatches one prescribed remedy and reports
// whether the caller should proceed to a normal sync pass or stop.
func (m *Manager) ExecuteRecoveryAction(ctx context.Context, action RecoveryAction) (Outcome, error) {
	logger.Info("Executing recovery action", logger.F("action", action.String()))

	switch action {
	case ActionNone:
		return OutcomeProceed, nil

	case ActionFetchUserFromAPI:
		user, err := m.remote.FetchUser(ctx, m.sess.UserID)
		if err != nil {
			return OutcomeProceed, fmt.Errorf("failed to fetch user: %w", err)
		}
		if err := m.store.SaveUser(ctx, user); err != nil {
			return OutcomeProceed, fmt.Errorf("failed to cache user: %w", err)
		}
		// The fetched user may also re-establish the company link.
		if m.sess.CompanyID == "" && user.CompanyID != "" {
			m.sess.CompanyID = user.CompanyID
			if err := m.sessions.Save(m.sess); err != nil {
				return OutcomeProceed, fmt.Errorf("failed to persist session: %w", err)
			}
		}
		return OutcomeProceed, nil

	case ActionFetchCompanyFromAPI:
		company, err := m.remote.FetchCompany(ctx, m.sess.CompanyID)
		if err != nil {
			return OutcomeProceed, fmt.Errorf("failed to fetch company: %w", err)
		}
		if err := m.store.SaveCompany(ctx, company); err != nil {
			return OutcomeProceed, fmt.Errorf("failed to cache company: %w", err)
		}
		return OutcomeProceed, nil

	case ActionReinitializeSyncManager:
		if m.reinit != nil {
			if err := m.reinit(ctx); err != nil {
				return OutcomeProceed, fmt.Errorf("failed to reinitialize sync: %w", err)
			}
		}
		return OutcomeProceed, nil

	case ActionLogout:
		if err := m.sessions.Clear(m.sess); err != nil {
			return OutcomeTerminal, fmt.Errorf("failed to clear session: %w", err)
		}
		return OutcomeTerminal, nil

	case ActionReturnToOnboarding:
		if err := m.sessions.Clear(m.sess); err != nil {
			return OutcomeTerminal, fmt.Errorf("failed to clear session: %w", err)
		}
		return OutcomeTerminal, nil
	}

	return OutcomeProceed, fmt.Errorf("unknown recovery action %d", action)
}
