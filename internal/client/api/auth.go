package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sharmaronit/mindspend-labs/internal/client/models"
	"github.com/sharmaronit/mindspend-labs/internal/common"
)

// authUser mirrors the identity part of an auth response.
type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// authSession mirrors a full session grant: identity plus tokens.
type authSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresAt    int64    `json:"expires_at"`
	User         authUser `json:"user"`
}

func (s *authSession) toModel() *models.SessionUser {
	u := &models.SessionUser{
		ID:           s.User.ID,
		Email:        s.User.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
	if s.ExpiresAt > 0 {
		u.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	}
	return u
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates a new identity and installs the issued session tokens.
func (c *HTTPClient) SignUp(ctx context.Context, email, password string) (*models.SessionUser, error) {
	var sess authSession
	err := c.do(ctx, call{
		op:     "sign_up",
		method: "POST",
		url:    c.serviceURL + "/auth/v1/signup",
		body:   credentials{Email: email, Password: password},
	}, &sess)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	c.SetSession(sess.AccessToken, sess.RefreshToken)
	return sess.toModel(), nil
}

// SignIn authenticates with email and password and installs the session.
func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*models.SessionUser, error) {
	var sess authSession
	err := c.do(ctx, call{
		op:     "sign_in",
		method: "POST",
		url:    c.serviceURL + "/auth/v1/token?grant_type=password",
		body:   credentials{Email: email, Password: password},
	}, &sess)
	if err != nil {
		// The token endpoint reports bad credentials as a generic 401;
		// surface the specific sentinel to callers.
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	c.SetSession(sess.AccessToken, sess.RefreshToken)
	return sess.toModel(), nil
}

// RefreshSession exchanges the held refresh token for fresh tokens.
func (c *HTTPClient) RefreshSession(ctx context.Context) (*models.SessionUser, error) {
	_, refresh := c.tokens()
	if refresh == "" {
		return nil, common.ErrNotAuthenticated
	}

	var sess authSession
	err := c.do(ctx, call{
		op:     "refresh_session",
		method: "POST",
		url:    c.serviceURL + "/auth/v1/token?grant_type=refresh_token",
		body:   map[string]string{"refresh_token": refresh},
	}, &sess)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	c.SetSession(sess.AccessToken, sess.RefreshToken)
	return sess.toModel(), nil
}

// SignOut invalidates the collaborator session. Token state is dropped
// locally whether or not the request succeeds.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	err := c.do(ctx, call{
		op:     "sign_out",
		method: "POST",
		url:    c.serviceURL + "/auth/v1/logout",
		authed: true,
	}, nil)
	c.ClearSession()
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// User fetches the identity behind the current access token.
func (c *HTTPClient) User(ctx context.Context) (*models.SessionUser, error) {
	access, refresh := c.tokens()
	if access == "" {
		return nil, common.ErrNotAuthenticated
	}

	var u authUser
	err := c.do(ctx, call{
		op:          "get_user",
		method:      "GET",
		url:         c.serviceURL + "/auth/v1/user",
		authed:      true,
		refreshable: true,
	}, &u)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Tokens may have rotated during a refresh-and-retry.
	access, refresh = c.tokens()
	return &models.SessionUser{
		ID:           u.ID,
		Email:        u.Email,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// UpdatePassword changes the authenticated user's password.
func (c *HTTPClient) UpdatePassword(ctx context.Context, newPassword string) error {
	err := c.do(ctx, call{
		op:          "update_password",
		method:      "PUT",
		url:         c.serviceURL + "/auth/v1/user",
		body:        map[string]string{"password": newPassword},
		authed:      true,
		refreshable: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SendPasswordResetEmail asks the auth service to mail a reset link.
func (c *HTTPClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	err := c.do(ctx, call{
		op:     "password_reset",
		method: "POST",
		url:    c.serviceURL + "/auth/v1/recover",
		body:   map[string]string{"email": email},
	}, nil)
	if err != nil {
		return fmt.Errorf("password reset: %w", err)
	}
	return nil
}
