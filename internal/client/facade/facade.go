// Package facade is the single entry point UI code calls for data
// operations. Every method returns a uniform envelope instead of an error:
// callers branch on Success and RequiresLogin, never on error types. All
// reads and writes are scoped to the signed-in user; an anonymous caller is
// turned away before any network traffic.
package facade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sharmaronit/mindspend-labs/internal/client/analysis"
	"github.com/sharmaronit/mindspend-labs/internal/client/api"
	"github.com/sharmaronit/mindspend-labs/internal/client/models"
	"github.com/sharmaronit/mindspend-labs/internal/client/session"
	"github.com/sharmaronit/mindspend-labs/internal/client/store"
	"github.com/sharmaronit/mindspend-labs/internal/logging"
)

// Envelope is the uniform operation result. Exactly one of Data and Error
// is meaningful; RequiresLogin tells the caller that re-authenticating,
// not retrying, is the fix.
type Envelope struct {
	Success       bool   `json:"success"`
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
	RequiresLogin bool   `json:"requiresLogin,omitempty"`
}

// Facade bundles the API client, session manager and cache behind
// envelope-returning operations.
type Facade struct {
	api     api.Client
	session *session.Manager
	cache   *store.Store
	log     logging.Logger

	now   func() time.Time
	newID func() string
}

// New builds a Facade.
func New(client api.Client, sess *session.Manager, cache *store.Store, logger logging.Logger) *Facade {
	return &Facade{
		api:     client,
		session: sess,
		cache:   cache,
		log:     logger.With("component", "facade"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func ok(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func fail(err error) Envelope {
	return Envelope{Success: false, Error: err.Error()}
}

func needLogin() Envelope {
	return Envelope{Success: false, Error: "Not authenticated", RequiresLogin: true}
}

// run executes op and converts both its error and any panic into a failure
// envelope. Nothing an operation does may escape to the caller as a panic.
func (f *Facade) run(ctx context.Context, name string, op func() (any, error)) (env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error(ctx, "operation panicked", "op", name, "panic", r)
			env = fail(fmt.Errorf("%s: internal error", name))
		}
	}()

	data, err := op()
	if err != nil {
		f.log.Warn(ctx, "operation failed", "op", name, "error", err)
		return fail(err)
	}
	return ok(data)
}

// user resolves the signed-in identity, or reports that login is required.
func (f *Facade) user(ctx context.Context) (*models.SessionUser, bool) {
	return f.session.Current(ctx)
}

// Profile fetches the caller's profile and refreshes the cache mirror.
func (f *Facade) Profile(ctx context.Context) Envelope {
	user, authed := f.user(ctx)
	if !authed {
		return needLogin()
	}
	return f.run(ctx, "profile", func() (any, error) {
		var rows []models.Profile
		if err := f.api.Select(ctx, api.TableProfiles, api.Eq("id", user.ID), &rows); err != nil {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("profile not found")
		}
		f.session.MirrorProfile(ctx, rows[0])
		return rows[0], nil
	})
}

// UpdateProfile applies a partial profile update and mirrors the result.
func (f *Facade) UpdateProfile(ctx context.Context, patch models.ProfilePatch) Envelope {
	user, authed := f.user(ctx)
	if !authed {
		return needLogin()
	}
	return f.run(ctx, "update_profile", func() (any, error) {
		var rows []models.Profile
		err := f.api.Update(ctx, api.TableProfiles, api.Eq("id", user.ID), patch, &rows)
		if err != nil {
			return nil, fmt.Errorf("updating profile: %w", err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("profile not found")
		}
		f.session.MirrorProfile(ctx, rows[0])
		return rows[0], nil
	})
}

// AddMetric records one spending entry for the caller. The id and owner are
// assigned here; an empty category is guessed from the description.
func (f *Facade) AddMetric(ctx context.Context, in models.MetricInput) Envelope {
	user, authed := f.user(ctx)
	if !authed {
		return needLogin()
	}
	return f.run(ctx, "add_metric", func() (any, error) {
		category := in.Category
		if category == "" {
			category = analysis.GuessCategory(in.Description)
		}
		metric := models.Metric{
			ID:          f.newID(),
			UserID:      user.ID,
			Category:    category,
			Value:       in.Value,
			Description: in.Description,
			CreatedAt:   f.now(),
		}
		var rows []models.Metric
		if err := f.api.Insert(ctx, api.TableMetrics, []models.Metric{metric}, &rows); err != nil {
			return nil, fmt.Errorf("adding metric: %w", err)
		}
		if len(rows) > 0 {
			return rows[0], nil
		}
		return metric, nil
	})
}

// Metrics lists the caller's metrics, newest first.
func (f *Facade) Metrics(ctx context.Context, limit, offset int) Envelope {
	user, authed := f.user(ctx)
	if !authed {
		return needLogin()
	}
	return f.run(ctx, "metrics", func() (any, error) {
		q := api.Eq("user_id", user.ID).
			WithOrder("created_at", true).
			WithPage(limit, offset)
		var rows []models.Metric
		if err := f.api.Select(ctx, api.TableMetrics, q, &rows); err != nil {
			return nil, fmt.Errorf("listing metrics: %w", err)
		}
		return rows, nil
	})
}

// DeleteMetric removes one metric owned by the caller. Deleting a metric
// that does not exist, or that belongs to someone else, is a no-op success.
func (f *Facade) DeleteMetric(ctx context.Context, id string) Envelope {
	user, authed := f.user(ctx)
	if !authed {
		return needLogin()
	}
	return f.run(ctx, "delete_metric", func() (any, error) {
		q := api.Eq("id", id).And("user_id", user.ID)
		if err := f.api.DeleteRows(ctx, api.TableMetrics, q); err != nil {
			return nil, fmt.Errorf("deleting metric: %w", err)
		}
		return nil, nil
	})
}

// FinancialSummary returns the caller's dashboard record. A user who has
// never entered figures gets an all-zero summary, not an error.
func (f *Facade) FinancialSummary(ctx context.Context) Envelope {
	user, authed := f.user(ctx)
	if !authed {
		return needLogin()
	}
	return f.run(ctx, "financial_summary", func() (any, error) {
		s, err := f.loadSummary(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// UpdateFinancialSummary merges the input figures into the stored summary,
// recomputes the derived fields and persists the result.
func (f *Facade) UpdateFinancialSummary(ctx context.Context, in models.FinancialInput) Envelope {
	user, authed := f.user(ctx)
	if !authed {
		return needLogin()
	}
	return f.run(ctx, "update_financial_summary", func() (any, error) {
		current, err := f.loadSummary(ctx, user.ID)
		if err != nil {
			return nil, err
		}

		next := analysis.ComputeFinancial(current, in, f.now())
		next.UserID = user.ID

		var rows []models.FinancialSummary
		q := api.Eq("user_id", user.ID)
		if err := f.api.Update(ctx, api.TableFinancial, q, next, &rows); err != nil {
			return nil, fmt.Errorf("saving summary: %w", err)
		}
		if len(rows) == 0 {
			if err := f.api.Insert(ctx, api.TableFinancial, []models.FinancialSummary{next}, &rows); err != nil {
				return nil, fmt.Errorf("saving summary: %w", err)
			}
		}
		return next, nil
	})
}

// RefreshAnalysis recomputes the behavioral analysis from the caller's full
// metric history and caches the result locally for synchronous reads.
func (f *Facade) RefreshAnalysis(ctx context.Context) Envelope {
	user, authed := f.user(ctx)
	if !authed {
		return needLogin()
	}
	return f.run(ctx, "refresh_analysis", func() (any, error) {
		var metrics []models.Metric
		q := api.Eq("user_id", user.ID).WithOrder("created_at", false)
		if err := f.api.Select(ctx, api.TableMetrics, q, &metrics); err != nil {
			return nil, fmt.Errorf("loading metrics: %w", err)
		}

		unified := analysis.Run(metrics, f.now())
		f.cache.Save(ctx, store.KeyUnifiedAnalysis, unified)
		return unified, nil
	})
}

// Export bundles everything the service holds for the caller, plus the
// locally cached analysis when present.
func (f *Facade) Export(ctx context.Context) Envelope {
	user, authed := f.user(ctx)
	if !authed {
		return needLogin()
	}
	return f.run(ctx, "export", func() (any, error) {
		bundle := models.ExportBundle{}

		var profiles []models.Profile
		if err := f.api.Select(ctx, api.TableProfiles, api.Eq("id", user.ID), &profiles); err != nil {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
		if len(profiles) > 0 {
			bundle.Profile = profiles[0]
		}

		q := api.Eq("user_id", user.ID).WithOrder("created_at", true)
		if err := f.api.Select(ctx, api.TableMetrics, q, &bundle.Metrics); err != nil {
			return nil, fmt.Errorf("loading metrics: %w", err)
		}

		var summaries []models.FinancialSummary
		if err := f.api.Select(ctx, api.TableFinancial, api.Eq("user_id", user.ID), &summaries); err != nil {
			return nil, fmt.Errorf("loading summary: %w", err)
		}
		if len(summaries) > 0 {
			bundle.Summary = &summaries[0]
		}

		var unified models.UnifiedAnalysis
		if f.cache.Load(ctx, store.KeyUnifiedAnalysis, &unified) {
			bundle.Analysis = &unified
		}

		return bundle, nil
	})
}

func (f *Facade) loadSummary(ctx context.Context, userID string) (models.FinancialSummary, error) {
	var rows []models.FinancialSummary
	if err := f.api.Select(ctx, api.TableFinancial, api.Eq("user_id", userID), &rows); err != nil {
		return models.FinancialSummary{}, fmt.Errorf("loading summary: %w", err)
	}
	if len(rows) == 0 {
		return models.FinancialSummary{UserID: userID}, nil
	}
	return rows[0], nil
}
