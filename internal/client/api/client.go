// Package api implements the HTTP client for the hosted auth+database
// service and the companion account backend. It only issues requests and
// interprets the uniform {data, error} response shape; password hashing,
// row-level policies and SQL execution all live server-side and are opaque
// here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sharmaronit/mindspend-labs/internal/client/models"
	"github.com/sharmaronit/mindspend-labs/internal/common"
)

// Client is the collaborator surface consumed by the session manager and
// the API facade.
type Client interface {
	// Identity operations against the hosted auth service.
	SignUp(ctx context.Context, email, password string) (*models.SessionUser, error)
	SignIn(ctx context.Context, email, password string) (*models.SessionUser, error)
	SignOut(ctx context.Context) error
	User(ctx context.Context) (*models.SessionUser, error)
	RefreshSession(ctx context.Context) (*models.SessionUser, error)
	UpdatePassword(ctx context.Context, newPassword string) error
	SendPasswordResetEmail(ctx context.Context, email string) error

	// DeleteAccount calls the companion backend deletion endpoint using the
	// current access token.
	DeleteAccount(ctx context.Context) error

	// Table operations, scoped server-side by row-level policies keyed on
	// the bearer token's identity.
	Select(ctx context.Context, table string, q Query, out any) error
	Insert(ctx context.Context, table string, row any, out any) error
	Update(ctx context.Context, table string, q Query, patch any, out any) error
	DeleteRows(ctx context.Context, table string, q Query) error

	// Session token plumbing, used to restore a cached session at startup.
	SetSession(accessToken, refreshToken string)
	ClearSession()

	Close() error
}

// Options configures an HTTPClient.
type Options struct {
	// ServiceURL is the base URL of the hosted auth+database service.
	ServiceURL string
	// AccountURL is the base URL of the companion account backend.
	AccountURL string
	// APIKey is the public project key sent with every request.
	APIKey string
	// HTTPClient supplies transport and timeout behavior. The client adds
	// no retries or backoff of its own beyond a single token refresh.
	HTTPClient *http.Client
}

// HTTPClient is the concrete Client. Token state is guarded so a refresh
// racing a request does not tear the pair.
type HTTPClient struct {
	serviceURL string
	accountURL string
	apiKey     string
	httpc      *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client. A nil Options.HTTPClient gets a client
// with a 15-second overall timeout.
func NewHTTPClient(opts Options) *HTTPClient {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{
		serviceURL: opts.ServiceURL,
		accountURL: opts.AccountURL,
		apiKey:     opts.APIKey,
		httpc:      hc,
	}
}

// SetSession installs token state, typically restored from the local cache.
func (c *HTTPClient) SetSession(accessToken, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
}

// ClearSession drops token state.
func (c *HTTPClient) ClearSession() {
	c.SetSession("", "")
}

func (c *HTTPClient) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// Close exists to satisfy Client; the underlying transport needs no
// teardown.
func (c *HTTPClient) Close() error { return nil }

// call describes one HTTP exchange.
type call struct {
	op     string
	method string
	url    string
	body   any
	// authed attaches the bearer access token.
	authed bool
	// refreshable allows one refresh-and-retry on 401 when a refresh token
	// is held. Auth endpoints themselves must not set it.
	refreshable bool
	// prefer sets the Prefer header (representation return on writes).
	prefer string
}

// wireError is the machine-readable error the collaborator returns.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wireEnvelope is the uniform response shape of the hosted service.
type wireEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *wireError      `json:"error"`
}

// do executes one call and decodes the envelope's data into out (when out is
// non-nil). All transport and collaborator errors are folded into sentinel
// errors via mapError; nothing else escapes.
func (c *HTTPClient) do(ctx context.Context, cl call, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, cl, out, true)
	observe(cl.op, start, err)
	return err
}

func (c *HTTPClient) doOnce(ctx context.Context, cl call, out any, allowRefresh bool) error {
	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, cl.url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.prefer != "" {
		req.Header.Set("Prefer", cl.prefer)
	}
	if cl.authed {
		access, _ := c.tokens()
		if access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", common.ErrUnavailable, err)
	}

	var env wireEnvelope
	if len(raw) > 0 {
		// A non-JSON body on an error status still maps below; a non-JSON
		// body on success is a protocol violation.
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode == http.StatusUnauthorized && cl.refreshable && allowRefresh {
		_, refresh := c.tokens()
		if refresh != "" {
			if _, rerr := c.RefreshSession(ctx); rerr == nil {
				return c.doOnce(ctx, cl, out, false)
			}
		}
	}

	if resp.StatusCode >= 300 {
		return mapError(resp.StatusCode, env.Error)
	}
	if env.Error != nil {
		return mapError(resp.StatusCode, env.Error)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
