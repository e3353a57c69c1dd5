package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/volley-sync/internal/domain/changeset"
	"github.com/riskibarqy/volley-sync/internal/domain/match"
	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/domain/team"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
)

// ProLeagueCode identifies the league whose match dates are owned by the live feed.
const ProLeagueCode = "AALNV"

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// Reconciled is the stored state of a record after reconciliation.
type Reconciled[T any] struct {
	Record  T
	Outcome Outcome
	Changes changeset.List
}

type entityPolicy[T any, K comparable] struct {
	entity   string
	key      func(T) K
	describe func(T) string
	find     func(context.Context, K) (T, bool, error)
	create   func(context.Context, T) (T, error)
	update   func(context.Context, T, []string) (T, error)
	isActive func(T) bool
	activate func(T) T
	// merge copies the stored identity onto the candidate and reports the differing fields.
	merge func(ctx context.Context, existing, candidate T) (T, changeset.List)
}

// Reconciler performs find-or-create-or-update of one entity kind against the remote store.
type Reconciler[T any, K comparable] struct {
	policy   entityPolicy[T, K]
	validate *validator.Validate
	logger   *logging.Logger
}

type (
	PoolReconciler  = Reconciler[pool.Pool, pool.Key]
	TeamReconciler  = Reconciler[team.Team, team.Key]
	MatchReconciler = Reconciler[match.Match, match.Key]
)

func newReconciler[T any, K comparable](policy entityPolicy[T, K], logger *logging.Logger) *Reconciler[T, K] {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler[T, K]{
		policy:   policy,
		validate: newRecordValidator(),
		logger:   logger.With("entity", policy.entity),
	}
}

func NewPoolReconciler(repo pool.Repository, logger *logging.Logger) *PoolReconciler {
	return newReconciler(entityPolicy[pool.Pool, pool.Key]{
		entity:   "pool",
		key:      pool.Pool.Key,
		describe: func(p pool.Pool) string { return fmt.Sprintf("%s/%s/%d", p.PoolCode, p.LeagueCode, p.Season) },
		find:     repo.FindByKey,
		create:   repo.Create,
		update:   repo.Update,
		isActive: func(p pool.Pool) bool { return p.Active },
		activate: func(p pool.Pool) pool.Pool { p.Active = true; return p },
		merge: func(_ context.Context, existing, candidate pool.Pool) (pool.Pool, changeset.List) {
			candidate.ID = existing.ID
			return candidate, pool.Diff(existing, candidate)
		},
	}, logger)
}

func NewTeamReconciler(repo team.Repository, logger *logging.Logger) *TeamReconciler {
	return newReconciler(entityPolicy[team.Team, team.Key]{
		entity:   "team",
		key:      team.Team.Key,
		describe: func(t team.Team) string { return fmt.Sprintf("%s (pool %d)", t.TeamName, t.PoolID) },
		find:     repo.FindByKey,
		create:   repo.Create,
		update:   repo.Update,
		isActive: func(t team.Team) bool { return t.Active },
		activate: func(t team.Team) team.Team { t.Active = true; return t },
		merge: func(_ context.Context, existing, candidate team.Team) (team.Team, changeset.List) {
			candidate.ID = existing.ID
			if candidate.TeamAlias == nil {
				candidate.TeamAlias = existing.TeamAlias
			}
			return candidate, team.Diff(existing, candidate)
		},
	}, logger)
}

func NewMatchReconciler(repo match.Repository, logger *logging.Logger) *MatchReconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return newReconciler(entityPolicy[match.Match, match.Key]{
		entity:   "match",
		key:      match.Match.Key,
		describe: func(m match.Match) string { return fmt.Sprintf("%s/%s", m.LeagueCode, m.MatchCode) },
		find:     repo.FindByKey,
		create:   repo.Create,
		update:   repo.Update,
		isActive: func(m match.Match) bool { return m.Active },
		activate: func(m match.Match) match.Match { m.Active = true; return m },
		merge: func(ctx context.Context, existing, candidate match.Match) (match.Match, changeset.List) {
			return mergeMatch(ctx, logger, existing, candidate)
		},
	}, logger)
}

func mergeMatch(ctx context.Context, logger *logging.Logger, existing, candidate match.Match) (match.Match, changeset.List) {
	candidate.ID = existing.ID
	candidate.PoolID = existing.PoolID
	if candidate.LiveCode == nil {
		candidate.LiveCode = existing.LiveCode
	}

	if match.IsFinished(existing.Status) && !match.IsFinished(candidate.Status) && candidate.Set == nil && candidate.Score == nil {
		logger.WarnContext(ctx, "ignoring status regression of finished match",
			"league_code", candidate.LeagueCode,
			"match_code", candidate.MatchCode,
		)
		candidate.Status = existing.Status
		candidate.Set = existing.Set
		candidate.Score = existing.Score
	}

	opts := match.DiffOptions{}
	if candidate.LeagueCode == ProLeagueCode {
		opts.SkipMatchDate = true
		candidate.MatchDate = existing.MatchDate
	}
	return candidate, match.Diff(existing, candidate, opts)
}

// Reconcile stores candidate, using existing when the caller already fetched it.
func (r *Reconciler[T, K]) Reconcile(ctx context.Context, candidate T, existing *T) (Reconciled[T], error) {
	ctx, span := startSpan(ctx, "Reconciler.Reconcile."+r.policy.entity)
	defer span.End()

	if err := r.validateCandidate(ctx, candidate); err != nil {
		return Reconciled[T]{}, err
	}

	label := r.policy.describe(candidate)
	if existing == nil {
		found, ok, err := r.policy.find(ctx, r.policy.key(candidate))
		if err != nil {
			return Reconciled[T]{}, fmt.Errorf("lookup %s %s: %w", r.policy.entity, label, err)
		}
		if ok {
			existing = &found
		}
	}

	if existing == nil {
		created, err := r.policy.create(ctx, r.policy.activate(candidate))
		switch {
		case err == nil:
			r.logger.InfoContext(ctx, "created "+r.policy.entity, "key", label)
			return Reconciled[T]{Record: created, Outcome: OutcomeCreated}, nil
		case errors.Is(err, ErrConflict):
			found, ok, findErr := r.policy.find(ctx, r.policy.key(candidate))
			if findErr != nil {
				return Reconciled[T]{}, fmt.Errorf("lookup %s %s after conflict: %w", r.policy.entity, label, findErr)
			}
			if !ok {
				return Reconciled[T]{}, fmt.Errorf("create %s %s: %w", r.policy.entity, label, err)
			}
			r.logger.WarnContext(ctx, r.policy.entity+" created concurrently, continuing as update", "key", label)
			existing = &found
		default:
			return Reconciled[T]{}, fmt.Errorf("create %s %s: %w", r.policy.entity, label, err)
		}
	}

	merged, changes := r.policy.merge(ctx, *existing, candidate)
	if !r.policy.isActive(*existing) {
		changes = append(changes, changeset.Reactivation())
	}
	merged = r.policy.activate(merged)

	if changes.Empty() {
		return Reconciled[T]{Record: *existing, Outcome: OutcomeUnchanged}, nil
	}

	updated, err := r.policy.update(ctx, merged, changes.Strings())
	if err != nil {
		return Reconciled[T]{}, fmt.Errorf("update %s %s: %w", r.policy.entity, label, err)
	}
	r.logger.InfoContext(ctx, "updated "+r.policy.entity, "key", label, "changes", changes.String())

	return Reconciled[T]{Record: updated, Outcome: OutcomeUpdated, Changes: changes}, nil
}

func (r *Reconciler[T, K]) validateCandidate(ctx context.Context, candidate T) error {
	err := r.validate.StructCtx(ctx, candidate)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: validate %s: %v", ErrInvalidInput, r.policy.entity, err)
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Entity: r.policy.entity, Fields: fields}
}

func newRecordValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}
