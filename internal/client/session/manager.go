// Package session owns the authentication lifecycle: registration, login,
// logout, password changes and account deletion. It keeps the local cache
// mirror of the signed-in identity coherent and announces every transition
// on a typed event bus so UI components can react without polling.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"github.com/sharmaronit/mindspend-labs/internal/client/api"
	"github.com/sharmaronit/mindspend-labs/internal/client/bus"
	"github.com/sharmaronit/mindspend-labs/internal/client/models"
	"github.com/sharmaronit/mindspend-labs/internal/client/store"
	"github.com/sharmaronit/mindspend-labs/internal/common"
	"github.com/sharmaronit/mindspend-labs/internal/logging"
)

// State is the coarse auth lifecycle phase.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// EventType distinguishes session bus events.
type EventType string

const (
	// EventAuthUpdated fires after a successful login, registration or
	// session restore. User is always set; Profile may be nil when the
	// profile fetch failed.
	EventAuthUpdated EventType = "auth_updated"
	// EventProfileUpdated fires when the profile mirror changes while the
	// identity stays the same.
	EventProfileUpdated EventType = "profile_updated"
	// EventAuthCleared fires after logout or account deletion.
	EventAuthCleared EventType = "auth_cleared"
)

// Event is published on every session transition.
type Event struct {
	Type    EventType
	User    *models.SessionUser
	Profile *models.Profile
}

// RegistrationInput carries everything needed to create an account and its
// profile row in one user-visible step.
type RegistrationInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
}

// Login throttling: 5 attempts, refilling one every 3 minutes. Mirrors the
// service-side limit so most lockouts are reported locally without burning
// a network round trip.
const (
	loginBurst    = 5
	loginRefill   = 3 * time.Minute
	profilesTable = api.TableProfiles
)

// Manager drives the auth lifecycle against the hosted service and keeps
// the cache mirror in sync. All methods are safe for concurrent use.
type Manager struct {
	api    api.Client
	cache  *store.Store
	log    logging.Logger
	events *bus.Bus[Event]
	now    func() time.Time

	loginLimiter *rate.Limiter

	mu      sync.Mutex
	state   State
	user    *models.SessionUser
	profile *models.Profile
}

// NewManager builds a Manager in the anonymous state.
func NewManager(client api.Client, cache *store.Store, logger logging.Logger) *Manager {
	return &Manager{
		api:          client,
		cache:        cache,
		log:          logger.With("component", "session"),
		events:       bus.New[Event](),
		now:          time.Now,
		loginLimiter: rate.NewLimiter(rate.Every(loginRefill), loginBurst),
		state:        StateAnonymous,
	}
}

// Subscribe returns a channel of session events and a cancel func. Events
// published while the subscriber's buffer is full are dropped.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	return m.events.Subscribe()
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Register creates the account and its profile row as one user-visible
// operation. The identity and profile steps are separate calls against the
// service, so a failure between them leaves a half-created account; Register
// records that state locally and attempts to delete the fresh account so a
// plain retry works. If the compensating delete also fails, the pending
// record stays behind and ResumeRegistration can finish the job later.
func (m *Manager) Register(ctx context.Context, in RegistrationInput) error {
	m.setState(StateAuthenticating)

	user, err := m.api.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		m.setState(StateAnonymous)
		return fmt.Errorf("creating account: %w", err)
	}

	profile := models.Profile{
		ID:        user.ID,
		Email:     user.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := m.insertProfile(ctx, profile); err != nil {
		m.logPending(ctx, user, in)
		if delErr := m.api.DeleteAccount(ctx); delErr != nil {
			m.log.Error(ctx, "could not roll back half-created account",
				"user_id", user.ID, "error", delErr)
		} else {
			m.cache.Clear(ctx, store.KeyPendingRegistration)
		}
		m.api.ClearSession()
		m.setState(StateAnonymous)
		return fmt.Errorf("creating profile: %w", err)
	}
	m.cache.Clear(ctx, store.KeyPendingRegistration)

	m.finishLogin(ctx, user, &profile)
	return nil
}

// ResumeRegistration finishes a registration whose profile step failed.
// The password is required again because only the service can prove it.
func (m *Manager) ResumeRegistration(ctx context.Context, password string) error {
	var pending models.PendingRegistration
	if !m.cache.Load(ctx, store.KeyPendingRegistration, &pending) {
		return common.ErrNoPendingRegistration
	}

	m.setState(StateAuthenticating)
	user, err := m.api.SignIn(ctx, pending.Email, password)
	if err != nil {
		m.setState(StateAnonymous)
		return fmt.Errorf("resuming registration: %w", err)
	}

	profile := models.Profile{
		ID:        user.ID,
		Email:     user.Email,
		Username:  pending.Username,
		FirstName: pending.FirstName,
		LastName:  pending.LastName,
	}
	if err := m.insertProfile(ctx, profile); err != nil && !errors.Is(err, common.ErrAlreadyExists) {
		m.api.ClearSession()
		m.setState(StateAnonymous)
		return fmt.Errorf("creating profile: %w", err)
	}
	m.cache.Clear(ctx, store.KeyPendingRegistration)

	m.finishLogin(ctx, user, &profile)
	return nil
}

// Login authenticates and mirrors the identity into the cache. Attempts are
// throttled locally; once the budget is spent Login fails with
// ErrTooManyAttempts without touching the network.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if !m.loginLimiter.Allow() {
		return common.ErrTooManyAttempts
	}

	m.setState(StateAuthenticating)
	user, err := m.api.SignIn(ctx, email, password)
	if err != nil {
		m.setState(StateAnonymous)
		return err
	}

	// Profile load is best effort: a missing or unreachable profile must
	// not block the login itself.
	profile, err := m.fetchProfile(ctx, user.ID)
	if err != nil {
		m.log.Warn(ctx, "profile unavailable after login", "user_id", user.ID, "error", err)
	}

	m.finishLogin(ctx, user, profile)
	return nil
}

// Logout ends the session. It is idempotent: when nobody is signed in it
// clears the identity mirror without any network call, and a failed
// server-side sign-out still clears local state.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	authed := m.state == StateAuthenticated
	m.user = nil
	m.profile = nil
	m.state = StateAnonymous
	m.mu.Unlock()

	if authed {
		if err := m.api.SignOut(ctx); err != nil {
			m.log.Warn(ctx, "server-side sign-out failed", "error", err)
		}
	}
	m.api.ClearSession()

	for _, key := range store.IdentityKeys {
		m.cache.Clear(ctx, key)
	}
	m.events.Publish(Event{Type: EventAuthCleared})
}

// ChangePassword verifies the current password by re-authenticating, then
// sets the new one. A wrong current password surfaces as
// ErrPasswordVerification so callers can distinguish it from a rejected
// new password.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) error {
	user, ok := m.Current(ctx)
	if !ok {
		return common.ErrNotAuthenticated
	}

	if _, err := m.api.SignIn(ctx, user.Email, current); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return common.ErrPasswordVerification
		}
		return fmt.Errorf("verifying current password: %w", err)
	}
	if err := m.api.UpdatePassword(ctx, next); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// DeleteAccount verifies the password, deletes the account through the
// companion backend and wipes every locally cached value, including derived
// analysis data. Local state is cleared even when the server-side sign-out
// afterwards fails.
func (m *Manager) DeleteAccount(ctx context.Context, password string) error {
	user, ok := m.Current(ctx)
	if !ok {
		return common.ErrNotAuthenticated
	}

	if _, err := m.api.SignIn(ctx, user.Email, password); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return common.ErrPasswordVerification
		}
		return fmt.Errorf("verifying password: %w", err)
	}
	// Past this point the local wipe happens no matter what the backend
	// says: stale identity data after a user-initiated deletion is worse
	// than losing a retry opportunity.
	var delErr error
	if err := m.api.DeleteAccount(ctx); err != nil {
		delErr = fmt.Errorf("deleting account: %w", err)
	}

	if err := m.api.SignOut(ctx); err != nil {
		m.log.Warn(ctx, "sign-out after account deletion failed", "error", err)
	}
	m.api.ClearSession()

	m.mu.Lock()
	m.user = nil
	m.profile = nil
	m.state = StateAnonymous
	m.mu.Unlock()

	if err := m.cache.ClearAll(ctx); err != nil {
		m.log.Error(ctx, "wiping cache after account deletion", "error", err)
	}
	m.events.Publish(Event{Type: EventAuthCleared})
	return delErr
}

// RequestPasswordReset asks the service to mail a reset link. It succeeds
// for unknown addresses too; the service does not reveal which emails exist.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	return m.api.SendPasswordResetEmail(ctx, email)
}

// Current returns the signed-in user, preferring live state and falling
// back to the cache mirror. A cached session with a missing or expired
// access token counts as absent.
func (m *Manager) Current(ctx context.Context) (*models.SessionUser, bool) {
	m.mu.Lock()
	if m.state == StateAuthenticated && m.user != nil {
		u := *m.user
		m.mu.Unlock()
		return &u, true
	}
	m.mu.Unlock()

	var cached models.SessionUser
	if !m.cache.Load(ctx, store.KeySessionUser, &cached) {
		return nil, false
	}
	if !tokenAlive(&cached, m.now()) {
		return nil, false
	}
	return &cached, true
}

// Profile returns the cached profile mirror, if any.
func (m *Manager) Profile(ctx context.Context) (*models.Profile, bool) {
	m.mu.Lock()
	if m.profile != nil {
		p := *m.profile
		m.mu.Unlock()
		return &p, true
	}
	m.mu.Unlock()

	var cached models.Profile
	if !m.cache.Load(ctx, store.KeyProfile, &cached) {
		return nil, false
	}
	return &cached, true
}

// Restore pushes a cached session back into the API client at startup.
// It reports whether a usable session was found. No network call is made;
// an expired-but-refreshable token pair is repaired lazily by the API
// client's refresh-and-retry on first use.
func (m *Manager) Restore(ctx context.Context) bool {
	var cached models.SessionUser
	if !m.cache.Load(ctx, store.KeySessionUser, &cached) {
		return false
	}
	if cached.AccessToken == "" || cached.RefreshToken == "" {
		return false
	}

	m.api.SetSession(cached.AccessToken, cached.RefreshToken)

	m.mu.Lock()
	m.user = &cached
	m.state = StateAuthenticated
	var profile models.Profile
	if m.cache.Load(ctx, store.KeyProfile, &profile) {
		m.profile = &profile
	}
	p := m.profile
	m.mu.Unlock()

	m.events.Publish(Event{Type: EventAuthUpdated, User: &cached, Profile: p})
	return true
}

// MirrorProfile replaces the profile mirror (cache plus denormalized
// display fields) and announces the change.
func (m *Manager) MirrorProfile(ctx context.Context, profile models.Profile) {
	m.mu.Lock()
	p := profile
	m.profile = &p
	m.mu.Unlock()

	m.cache.Save(ctx, store.KeyProfile, profile)
	m.cache.Save(ctx, store.KeyDisplayUsername, profile.Username)
	m.cache.Save(ctx, store.KeyDisplayFirstName, profile.FirstName)
	m.cache.Save(ctx, store.KeyDisplayLastName, profile.LastName)

	m.events.Publish(Event{Type: EventProfileUpdated, Profile: &p})
}

func (m *Manager) insertProfile(ctx context.Context, profile models.Profile) error {
	var inserted []models.Profile
	return m.api.Insert(ctx, profilesTable, []models.Profile{profile}, &inserted)
}

func (m *Manager) fetchProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var rows []models.Profile
	if err := m.api.Select(ctx, profilesTable, api.Eq("id", userID), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrNotFound
	}
	return &rows[0], nil
}

// logPending records the half-finished registration before any rollback
// attempt, so a crash mid-rollback still leaves evidence behind.
func (m *Manager) logPending(ctx context.Context, user *models.SessionUser, in RegistrationInput) {
	m.cache.Save(ctx, store.KeyPendingRegistration, models.PendingRegistration{
		Token:     user.AccessToken,
		UserID:    user.ID,
		Email:     user.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		CreatedAt: m.now().UTC(),
	})
}

func (m *Manager) finishLogin(ctx context.Context, user *models.SessionUser, profile *models.Profile) {
	m.mu.Lock()
	m.user = user
	m.profile = profile
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.cache.Save(ctx, store.KeySessionUser, user)
	if profile != nil {
		m.cache.Save(ctx, store.KeyProfile, profile)
		m.cache.Save(ctx, store.KeyDisplayUsername, profile.Username)
		m.cache.Save(ctx, store.KeyDisplayFirstName, profile.FirstName)
		m.cache.Save(ctx, store.KeyDisplayLastName, profile.LastName)
	}

	m.events.Publish(Event{Type: EventAuthUpdated, User: user, Profile: profile})
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// tokenAlive reports whether the session's access token is still usable.
// When the stored expiry is zero the JWT exp claim decides; tokens that do
// not parse as JWTs are treated as opaque and trusted.
func tokenAlive(u *models.SessionUser, now time.Time) bool {
	if !u.Valid(now) {
		return false
	}
	if !u.ExpiresAt.IsZero() {
		return true
	}
	if strings.Count(u.AccessToken, ".") != 2 {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(u.AccessToken, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.Before(exp.Time)
}
