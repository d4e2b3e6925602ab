package navbar

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/sharmaronit/mindspend-labs/internal/client/api"
	"github.com/sharmaronit/mindspend-labs/internal/client/models"
	"github.com/sharmaronit/mindspend-labs/internal/client/session"
	"github.com/sharmaronit/mindspend-labs/internal/client/store"
	"github.com/sharmaronit/mindspend-labs/internal/common"
	"github.com/sharmaronit/mindspend-labs/internal/logging"
)

// profileClient serves one profile table and counts lookups.
type profileClient struct {
	api.Client // panics on anything not overridden

	profiles []models.Profile
	lookups  int
	fail     error
}

func (c *profileClient) Select(_ context.Context, table string, q api.Query, out any) error {
	c.lookups++
	if c.fail != nil {
		return c.fail
	}
	var hit []models.Profile
	for _, p := range c.profiles {
		if p.ID == q.Filters["id"] {
			hit = append(hit, p)
		}
	}
	*(out.(*[]models.Profile)) = hit
	return nil
}

func setupResolver(t *testing.T) (*Resolver, *profileClient, *store.Store, *session.Manager) {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE cache (key TEXT PRIMARY KEY, value TEXT NOT NULL);`)
	require.NoError(t, err)

	cache := store.New(db, logging.New("error"))
	client := &profileClient{}
	sess := session.NewManager(client, cache, logging.New("error"))
	return NewResolver(client, sess, cache, logging.New("error")), client, cache, sess
}

func signIn(t *testing.T, cache *store.Store, email string) {
	t.Helper()
	cache.Save(context.Background(), store.KeySessionUser, models.SessionUser{
		ID:          "u1",
		Email:       email,
		AccessToken: "at",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
}

func TestDisplayName_CachedUsernameWins(t *testing.T) {
	r, client, cache, _ := setupResolver(t)
	ctx := context.Background()

	signIn(t, cache, "alice@example.com")
	cache.Save(ctx, store.KeyDisplayUsername, "alice")
	cache.Save(ctx, store.KeyDisplayFirstName, "Alice")

	assert.Equal(t, "alice", r.DisplayName(ctx))
	assert.Zero(t, client.lookups, "cached name must not trigger a fetch")
}

func TestDisplayName_FirstNameFallback(t *testing.T) {
	r, _, cache, _ := setupResolver(t)
	ctx := context.Background()

	signIn(t, cache, "alice@example.com")
	cache.Save(ctx, store.KeyDisplayFirstName, "Alice")

	assert.Equal(t, "Alice", r.DisplayName(ctx))
}

func TestDisplayName_FetchesAndMirrorsProfile(t *testing.T) {
	r, client, cache, _ := setupResolver(t)
	ctx := context.Background()

	signIn(t, cache, "alice@example.com")
	client.profiles = []models.Profile{{ID: "u1", Username: "alice_w"}}

	assert.Equal(t, "alice_w", r.DisplayName(ctx))
	assert.Equal(t, 1, client.lookups)

	// Mirrored: second resolution is served from the cache.
	assert.Equal(t, "alice_w", r.DisplayName(ctx))
	assert.Equal(t, 1, client.lookups)
}

func TestDisplayName_EmailLocalPart(t *testing.T) {
	r, client, cache, _ := setupResolver(t)
	ctx := context.Background()

	signIn(t, cache, "bob@example.com")
	client.fail = common.ErrUnavailable

	assert.Equal(t, "bob", r.DisplayName(ctx))
}

func TestDisplayName_Guest(t *testing.T) {
	r, _, _, _ := setupResolver(t)
	assert.Equal(t, GuestName, r.DisplayName(context.Background()))
}

func TestWatch_ReactsToProfileChanges(t *testing.T) {
	r, _, _, sess := setupResolver(t)
	ctx := context.Background()

	names := make(chan string, 8)
	stop := r.Watch(ctx, func(name string) { names <- name })
	defer stop()

	require.Equal(t, GuestName, <-names)

	sess.MirrorProfile(ctx, models.Profile{ID: "u1", Username: "zed"})

	// The session event and the cache writes each trigger a resolution;
	// wait until one of them observes the new name.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case name := <-names:
			if name == "zed" {
				return
			}
		case <-deadline:
			t.Fatal("display name never updated")
		}
	}
}
