// Package cli is the interactive terminal client. It wires the cache, the
// API client, the session manager and the facade together and drives them
// from a small REPL.
package cli

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"

	"github.com/sharmaronit/mindspend-labs/internal/client/api"
	"github.com/sharmaronit/mindspend-labs/internal/client/config"
	"github.com/sharmaronit/mindspend-labs/internal/client/facade"
	"github.com/sharmaronit/mindspend-labs/internal/client/navbar"
	"github.com/sharmaronit/mindspend-labs/internal/client/session"
	"github.com/sharmaronit/mindspend-labs/internal/client/store"
	"github.com/sharmaronit/mindspend-labs/internal/filex"
	"github.com/sharmaronit/mindspend-labs/internal/logging"

	_ "modernc.org/sqlite"
)

// App holds everything a REPL session needs.
type App struct {
	config  *config.Config
	log     logging.Logger
	cache   *store.Store
	api     api.Client
	session *session.Manager
	facade  *facade.Facade
	navbar  *navbar.Resolver

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the client stack from config.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel)

	if err := filex.EnsureParentDir(c.CacheDBPath); err != nil {
		return nil, err
	}

	cache, err := store.Open(ctx, c.CacheDBPath, log)
	if err != nil {
		log.Error(ctx, "opening cache database", "path", c.CacheDBPath, "error", err)
		return nil, err
	}

	client := api.NewHTTPClient(api.Options{
		ServiceURL: c.ServiceURL,
		AccountURL: c.AccountAPIURL,
		APIKey:     c.ServiceKey,
		HTTPClient: &http.Client{Timeout: c.HTTPTimeout},
	})

	sess := session.NewManager(client, cache, log)
	f := facade.New(client, sess, cache, log)
	nav := navbar.NewResolver(client, sess, cache, log)

	return &App{
		config:  c,
		log:     log,
		cache:   cache,
		api:     client,
		session: sess,
		facade:  f,
		navbar:  nav,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run restores any cached session and enters the REPL. It returns when the
// user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if a.session.Restore(ctx) {
		a.log.Info(ctx, "session restored from cache")
	}
	a.Root(ctx)
}

// Close releases the API client and the cache database.
func (a *App) Close() {
	if err := a.api.Close(); err != nil {
		a.log.Warn(context.Background(), "closing api client", "error", err)
	}
	if err := a.cache.Close(); err != nil {
		a.log.Warn(context.Background(), "closing cache", "error", err)
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, ok := a.session.Current(ctx)
	return ok
}
