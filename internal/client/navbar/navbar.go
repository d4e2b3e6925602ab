// Package navbar resolves the display name shown in the app header. The
// name comes from the cheapest source available, falling back step by step:
// cached username, cached first name, a profile fetch, the email local
// part, and finally "Guest".
package navbar

import (
	"context"
	"strings"

	"github.com/sharmaronit/mindspend-labs/internal/client/api"
	"github.com/sharmaronit/mindspend-labs/internal/client/models"
	"github.com/sharmaronit/mindspend-labs/internal/client/session"
	"github.com/sharmaronit/mindspend-labs/internal/client/store"
	"github.com/sharmaronit/mindspend-labs/internal/logging"
)

// GuestName is shown when nobody is signed in and no fallback applies.
const GuestName = "Guest"

// Resolver computes the current display name.
type Resolver struct {
	api     api.Client
	session *session.Manager
	cache   *store.Store
	log     logging.Logger
}

// NewResolver builds a Resolver.
func NewResolver(client api.Client, sess *session.Manager, cache *store.Store, logger logging.Logger) *Resolver {
	return &Resolver{
		api:     client,
		session: sess,
		cache:   cache,
		log:     logger.With("component", "navbar"),
	}
}

// DisplayName resolves the name to show right now. Cached fields win so the
// common path stays synchronous; the profile fetch only happens when the
// cache has no usable display field, and its result is mirrored so the next
// call is cheap again.
func (r *Resolver) DisplayName(ctx context.Context) string {
	if name := r.cachedName(ctx); name != "" {
		return name
	}

	user, ok := r.session.Current(ctx)
	if !ok {
		return GuestName
	}

	if profile := r.fetchProfile(ctx, user.ID); profile != nil {
		r.session.MirrorProfile(ctx, *profile)
		if profile.Username != "" {
			return profile.Username
		}
		if profile.FirstName != "" {
			return profile.FirstName
		}
	}

	if local := emailLocalPart(user.Email); local != "" {
		return local
	}
	return GuestName
}

// cachedName checks the denormalized display fields, username first.
func (r *Resolver) cachedName(ctx context.Context) string {
	var username string
	if r.cache.Load(ctx, store.KeyDisplayUsername, &username) && username != "" {
		return username
	}
	var first string
	if r.cache.Load(ctx, store.KeyDisplayFirstName, &first) && first != "" {
		return first
	}
	return ""
}

func (r *Resolver) fetchProfile(ctx context.Context, userID string) *models.Profile {
	var rows []models.Profile
	if err := r.api.Select(ctx, api.TableProfiles, api.Eq("id", userID), &rows); err != nil {
		r.log.Warn(ctx, "profile lookup failed", "user_id", userID, "error", err)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}

// emailLocalPart returns the part of the address before the @, or "".
func emailLocalPart(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return local
}

// Watch re-resolves the display name whenever the session or the cache
// changes and hands each new value to fn. It returns a stop func; an
// in-flight resolution may still deliver one call after stop returns.
func (r *Resolver) Watch(ctx context.Context, fn func(name string)) (stop func()) {
	sessionEvents, cancelSession := r.session.Subscribe()
	cacheEvents, cancelCache := r.cache.Subscribe()
	done := make(chan struct{})

	go func() {
		fn(r.DisplayName(ctx))
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-sessionEvents:
				if !ok {
					return
				}
				fn(r.DisplayName(ctx))
			case e, ok := <-cacheEvents:
				if !ok {
					return
				}
				if displayKey(e.Key) {
					fn(r.DisplayName(ctx))
				}
			}
		}
	}()

	return func() {
		cancelSession()
		cancelCache()
		close(done)
	}
}

func displayKey(key string) bool {
	switch key {
	case store.KeyDisplayUsername, store.KeyDisplayFirstName, store.KeySessionUser, store.KeyProfile:
		return true
	}
	return false
}
