package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"

	"github.com/sharmaronit/mindspend-labs/internal/client/api"
	"github.com/sharmaronit/mindspend-labs/internal/client/models"
	"github.com/sharmaronit/mindspend-labs/internal/client/store"
	"github.com/sharmaronit/mindspend-labs/internal/common"
	"github.com/sharmaronit/mindspend-labs/internal/logging"
)

// fakeClient is an in-memory api.Client that records calls and can be
// scripted to fail at specific steps.
type fakeClient struct {
	users map[string]string // email -> password
	rows  map[string][]models.Profile

	session *models.SessionUser

	failInsert  error
	failDelete  error
	failSignOut error

	signIns        int
	accountDeletes int
	signOuts       int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		users: map[string]string{},
		rows:  map[string][]models.Profile{},
	}
}

func (f *fakeClient) SignUp(_ context.Context, email, password string) (*models.SessionUser, error) {
	if _, ok := f.users[email]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.users[email] = password
	f.session = &models.SessionUser{
		ID:           "id-" + email,
		Email:        email,
		AccessToken:  "at-" + email,
		RefreshToken: "rt-" + email,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	u := *f.session
	return &u, nil
}

func (f *fakeClient) SignIn(_ context.Context, email, password string) (*models.SessionUser, error) {
	f.signIns++
	if pw, ok := f.users[email]; !ok || pw != password {
		return nil, common.ErrInvalidCredentials
	}
	f.session = &models.SessionUser{
		ID:           "id-" + email,
		Email:        email,
		AccessToken:  "at-" + email,
		RefreshToken: "rt-" + email,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	u := *f.session
	return &u, nil
}

func (f *fakeClient) SignOut(context.Context) error {
	f.signOuts++
	f.session = nil
	return f.failSignOut
}

func (f *fakeClient) User(context.Context) (*models.SessionUser, error) {
	if f.session == nil {
		return nil, common.ErrNotAuthenticated
	}
	u := *f.session
	return &u, nil
}

func (f *fakeClient) RefreshSession(context.Context) (*models.SessionUser, error) {
	return f.User(context.Background())
}

func (f *fakeClient) UpdatePassword(_ context.Context, newPassword string) error {
	if f.session == nil {
		return common.ErrNotAuthenticated
	}
	f.users[f.session.Email] = newPassword
	return nil
}

func (f *fakeClient) SendPasswordResetEmail(context.Context, string) error { return nil }

func (f *fakeClient) DeleteAccount(context.Context) error {
	f.accountDeletes++
	if f.failDelete != nil {
		return f.failDelete
	}
	if f.session != nil {
		delete(f.users, f.session.Email)
	}
	return nil
}

func (f *fakeClient) Select(_ context.Context, table string, _ api.Query, out any) error {
	rows := f.rows[table]
	*(out.(*[]models.Profile)) = rows
	return nil
}

func (f *fakeClient) Insert(_ context.Context, table string, row any, _ any) error {
	if f.failInsert != nil {
		return f.failInsert
	}
	f.rows[table] = append(f.rows[table], row.([]models.Profile)...)
	return nil
}

func (f *fakeClient) Update(context.Context, string, api.Query, any, any) error { return nil }
func (f *fakeClient) DeleteRows(context.Context, string, api.Query) error       { return nil }

func (f *fakeClient) SetSession(accessToken, refreshToken string) {
	f.session = &models.SessionUser{AccessToken: accessToken, RefreshToken: refreshToken}
}
func (f *fakeClient) ClearSession() { f.session = nil }
func (f *fakeClient) Close() error  { return nil }

var _ api.Client = (*fakeClient)(nil)

func setupCache(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE cache (key TEXT PRIMARY KEY, value TEXT NOT NULL);`)
	require.NoError(t, err)
	return store.New(db, logging.New("error"))
}

func setupManager(t *testing.T) (*Manager, *fakeClient, *store.Store) {
	t.Helper()
	client := newFakeClient()
	cache := setupCache(t)
	return NewManager(client, cache, logging.New("error")), client, cache
}

func TestRegister_HappyPath(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	err := m.Register(ctx, RegistrationInput{
		Email:    "alice@example.com",
		Password: "s3cret",
		Username: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, m.State())

	require.Len(t, client.rows[api.TableProfiles], 1)
	require.Equal(t, "alice", client.rows[api.TableProfiles][0].Username)

	var cached models.SessionUser
	require.True(t, cache.Load(ctx, store.KeySessionUser, &cached))
	require.Equal(t, "alice@example.com", cached.Email)

	var username string
	require.True(t, cache.Load(ctx, store.KeyDisplayUsername, &username))
	require.Equal(t, "alice", username)

	require.False(t, cache.Exists(ctx, store.KeyPendingRegistration))
}

func TestRegister_ProfileFailureRollsBack(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	client.failInsert = common.ErrUnavailable
	err := m.Register(ctx, RegistrationInput{Email: "bob@example.com", Password: "pw", Username: "bob"})
	require.Error(t, err)
	require.Equal(t, StateAnonymous, m.State())

	// Account was deleted and no pending record survives.
	require.Equal(t, 1, client.accountDeletes)
	require.False(t, cache.Exists(ctx, store.KeyPendingRegistration))
}

func TestRegister_RollbackFailureLeavesPendingRecord(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	client.failInsert = common.ErrUnavailable
	client.failDelete = common.ErrUnavailable
	err := m.Register(ctx, RegistrationInput{Email: "bob@example.com", Password: "pw", Username: "bob"})
	require.Error(t, err)

	var pending models.PendingRegistration
	require.True(t, cache.Load(ctx, store.KeyPendingRegistration, &pending))
	require.Equal(t, "bob@example.com", pending.Email)
	require.Equal(t, "bob", pending.Username)
}

func TestResumeRegistration(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	client.failInsert = common.ErrUnavailable
	client.failDelete = common.ErrUnavailable
	require.Error(t, m.Register(ctx, RegistrationInput{Email: "bob@example.com", Password: "pw", Username: "bob"}))

	client.failInsert = nil
	client.failDelete = nil
	require.NoError(t, m.ResumeRegistration(ctx, "pw"))

	require.Equal(t, StateAuthenticated, m.State())
	require.Len(t, client.rows[api.TableProfiles], 1)
	require.False(t, cache.Exists(ctx, store.KeyPendingRegistration))
}

func TestResumeRegistration_NoPending(t *testing.T) {
	m, _, _ := setupManager(t)
	err := m.ResumeRegistration(context.Background(), "pw")
	require.ErrorIs(t, err, common.ErrNoPendingRegistration)
}

func TestLogin_MirrorsProfile(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	client.users["alice@example.com"] = "s3cret"
	client.rows[api.TableProfiles] = []models.Profile{{
		ID: "id-alice@example.com", Email: "alice@example.com", Username: "alice", FirstName: "Alice",
	}}

	require.NoError(t, m.Login(ctx, "alice@example.com", "s3cret"))

	user, ok := m.Current(ctx)
	require.True(t, ok)
	require.Equal(t, "alice@example.com", user.Email)

	var first string
	require.True(t, cache.Load(ctx, store.KeyDisplayFirstName, &first))
	require.Equal(t, "Alice", first)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	m, client, _ := setupManager(t)
	client.users["alice@example.com"] = "s3cret"

	err := m.Login(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	require.Equal(t, StateAnonymous, m.State())
}

func TestLogin_Throttled(t *testing.T) {
	m, client, _ := setupManager(t)
	ctx := context.Background()

	// Exhaust the local budget without a refill.
	m.loginLimiter = rate.NewLimiter(rate.Every(time.Hour), 2)

	require.Error(t, m.Login(ctx, "x@example.com", "pw"))
	require.Error(t, m.Login(ctx, "x@example.com", "pw"))

	err := m.Login(ctx, "x@example.com", "pw")
	require.ErrorIs(t, err, common.ErrTooManyAttempts)
	require.Equal(t, 2, client.signIns, "throttled attempt must not reach the network")
}

func TestLogout_Idempotent(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	client.users["alice@example.com"] = "pw"
	require.NoError(t, m.Login(ctx, "alice@example.com", "pw"))

	events, cancel := m.Subscribe()
	defer cancel()

	m.Logout(ctx)
	require.Equal(t, 1, client.signOuts)
	require.False(t, cache.Exists(ctx, store.KeySessionUser))
	require.Equal(t, EventAuthCleared, (<-events).Type)

	// Second logout: no further network call, still no error.
	m.Logout(ctx)
	require.Equal(t, 1, client.signOuts)
}

func TestLogout_ClearsCacheEvenWhenServerFails(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	client.users["alice@example.com"] = "pw"
	require.NoError(t, m.Login(ctx, "alice@example.com", "pw"))

	client.failSignOut = errors.New("boom")
	m.Logout(ctx)
	require.False(t, cache.Exists(ctx, store.KeySessionUser))
	require.False(t, cache.Exists(ctx, store.KeyProfile))
}

func TestLogout_KeepsAnalysisBlob(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	client.users["alice@example.com"] = "pw"
	require.NoError(t, m.Login(ctx, "alice@example.com", "pw"))
	cache.Save(ctx, store.KeyUnifiedAnalysis, map[string]string{"k": "v"})

	m.Logout(ctx)
	require.True(t, cache.Exists(ctx, store.KeyUnifiedAnalysis))
}

func TestChangePassword(t *testing.T) {
	m, client, _ := setupManager(t)
	ctx := context.Background()

	client.users["alice@example.com"] = "old"
	require.NoError(t, m.Login(ctx, "alice@example.com", "old"))

	t.Run("wrong current password", func(t *testing.T) {
		err := m.ChangePassword(ctx, "nope", "new")
		require.ErrorIs(t, err, common.ErrPasswordVerification)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, m.ChangePassword(ctx, "old", "new"))
		require.Equal(t, "new", client.users["alice@example.com"])
	})
}

func TestChangePassword_NotAuthenticated(t *testing.T) {
	m, _, _ := setupManager(t)
	err := m.ChangePassword(context.Background(), "a", "b")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestDeleteAccount(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	client.users["alice@example.com"] = "pw"
	require.NoError(t, m.Login(ctx, "alice@example.com", "pw"))
	cache.Save(ctx, store.KeyUnifiedAnalysis, map[string]string{"k": "v"})

	t.Run("wrong password", func(t *testing.T) {
		err := m.DeleteAccount(ctx, "nope")
		require.ErrorIs(t, err, common.ErrPasswordVerification)
		require.Zero(t, client.accountDeletes)
	})

	t.Run("success wipes everything", func(t *testing.T) {
		require.NoError(t, m.DeleteAccount(ctx, "pw"))
		require.Equal(t, 1, client.accountDeletes)
		require.Equal(t, StateAnonymous, m.State())
		require.False(t, cache.Exists(ctx, store.KeySessionUser))
		require.False(t, cache.Exists(ctx, store.KeyUnifiedAnalysis))
	})
}

func TestDeleteAccount_BackendFailureStillWipes(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	client.users["alice@example.com"] = "pw"
	require.NoError(t, m.Login(ctx, "alice@example.com", "pw"))
	cache.Save(ctx, store.KeyUnifiedAnalysis, map[string]string{"k": "v"})

	client.failDelete = common.ErrUnavailable
	err := m.DeleteAccount(ctx, "pw")
	require.Error(t, err)

	require.Equal(t, StateAnonymous, m.State())
	require.False(t, cache.Exists(ctx, store.KeySessionUser))
	require.False(t, cache.Exists(ctx, store.KeyUnifiedAnalysis))
}

func TestCurrent_ExpiredCachedSessionIsAbsent(t *testing.T) {
	m, _, cache := setupManager(t)
	ctx := context.Background()

	cache.Save(ctx, store.KeySessionUser, models.SessionUser{
		ID:          "u1",
		Email:       "old@example.com",
		AccessToken: "at",
		ExpiresAt:   time.Now().Add(-time.Minute),
	})

	_, ok := m.Current(ctx)
	require.False(t, ok)
}

func TestRestore(t *testing.T) {
	m, client, cache := setupManager(t)
	ctx := context.Background()

	cache.Save(ctx, store.KeySessionUser, models.SessionUser{
		ID:           "u1",
		Email:        "alice@example.com",
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	cache.Save(ctx, store.KeyProfile, models.Profile{ID: "u1", Username: "alice"})

	require.True(t, m.Restore(ctx))
	require.Equal(t, StateAuthenticated, m.State())
	require.NotNil(t, client.session)
	require.Equal(t, "at", client.session.AccessToken)

	p, ok := m.Profile(ctx)
	require.True(t, ok)
	require.Equal(t, "alice", p.Username)
}

func TestRestore_NothingCached(t *testing.T) {
	m, _, _ := setupManager(t)
	require.False(t, m.Restore(context.Background()))
}

func TestMirrorProfile_PublishesEvent(t *testing.T) {
	m, _, cache := setupManager(t)
	ctx := context.Background()

	events, cancel := m.Subscribe()
	defer cancel()

	m.MirrorProfile(ctx, models.Profile{ID: "u1", Username: "zed", FirstName: "Zed"})

	e := <-events
	require.Equal(t, EventProfileUpdated, e.Type)
	require.Equal(t, "zed", e.Profile.Username)

	var username string
	require.True(t, cache.Load(ctx, store.KeyDisplayUsername, &username))
	require.Equal(t, "zed", username)
}
