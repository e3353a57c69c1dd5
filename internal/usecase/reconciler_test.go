package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/volley-sync/internal/domain/changeset"
	"github.com/riskibarqy/volley-sync/internal/domain/match"
	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/domain/team"
	matchmock "github.com/riskibarqy/volley-sync/internal/mocks/domain/match"
	poolmock "github.com/riskibarqy/volley-sync/internal/mocks/domain/pool"
	teammock "github.com/riskibarqy/volley-sync/internal/mocks/domain/team"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func samplePool() pool.Pool {
	return pool.Pool{
		PoolCode:        "3MA",
		LeagueCode:      "ABCCS",
		Season:          2024,
		PoolName:        "Nationale 3 Masculine Poule A",
		DivisionCode:    "N3",
		DivisionName:    "Nationale 3",
		Gender:          changeset.Ptr(pool.GenderMale),
		RawDivisionName: "NATIONALE 3 MASCULINE",
		LeagueName:      "NATIONAL",
	}
}

func sampleMatch() match.Match {
	kickoff := time.Date(2024, 10, 5, 20, 0, 0, 0, time.UTC)
	return match.Match{
		MatchCode:  "3MA001",
		LeagueCode: "ABCCS",
		PoolID:     7,
		TeamIDA:    11,
		TeamIDB:    12,
		MatchDate:  &kickoff,
		Status:     match.StatusUpcoming,
		Venue:      changeset.Ptr("Gymnase Jean Moulin"),
	}
}

func echoPoolUpdate(_ context.Context, item pool.Pool, _ []string) (pool.Pool, error) {
	return item, nil
}

func TestPoolReconciler_CreatesActiveRecordWhenMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := poolmock.NewRepository(t)
	candidate := samplePool()

	repo.On("FindByKey", ctx, candidate.Key()).Return(pool.Pool{}, false, nil).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(p pool.Pool) bool { return p.Active && p.PoolCode == "3MA" })).
		Return(func(_ context.Context, p pool.Pool) (pool.Pool, error) {
			p.ID = 101
			return p, nil
		}).
		Once()

	got, err := NewPoolReconciler(repo, logging.NewNop()).Reconcile(ctx, candidate, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Outcome != OutcomeCreated || got.Record.ID != 101 {
		t.Fatalf("unexpected result: outcome=%s id=%d", got.Outcome, got.Record.ID)
	}
}

func TestPoolReconciler_UnchangedRecordIsNotWritten(t *testing.T) {
	t.Parallel()

	repo := poolmock.NewRepository(t)
	existing := samplePool()
	existing.ID = 5
	existing.Active = true

	got, err := NewPoolReconciler(repo, logging.NewNop()).Reconcile(context.Background(), samplePool(), &existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Outcome != OutcomeUnchanged {
		t.Fatalf("expected unchanged, got %s", got.Outcome)
	}
	if got.Record.ID != 5 {
		t.Fatalf("expected stored record, got id %d", got.Record.ID)
	}
}

func TestPoolReconciler_SendsOnlyChangedFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := poolmock.NewRepository(t)
	existing := samplePool()
	existing.ID = 5
	existing.Active = true
	existing.PoolName = "Poule A"

	wantChanges := []string{"pool_name: 'Poule A' -> 'Nationale 3 Masculine Poule A'"}
	repo.On("Update", ctx, mock.MatchedBy(func(p pool.Pool) bool { return p.ID == 5 && p.Active }), wantChanges).
		Return(echoPoolUpdate).
		Once()

	got, err := NewPoolReconciler(repo, logging.NewNop()).Reconcile(ctx, samplePool(), &existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Outcome != OutcomeUpdated {
		t.Fatalf("expected updated, got %s", got.Outcome)
	}
	if diff := cmp.Diff(wantChanges, got.Changes.Strings()); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestPoolReconciler_ReactivatesObservedInactiveRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := poolmock.NewRepository(t)
	existing := samplePool()
	existing.ID = 5
	existing.Active = false

	repo.On("Update", ctx, mock.MatchedBy(func(p pool.Pool) bool { return p.Active }), []string{"active: 'false' -> 'true'"}).
		Return(echoPoolUpdate).
		Once()

	got, err := NewPoolReconciler(repo, logging.NewNop()).Reconcile(ctx, samplePool(), &existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !got.Record.Active || !got.Changes.Has(changeset.FieldActive) {
		t.Fatalf("expected reactivation, got %+v", got)
	}
}

func TestPoolReconciler_RejectsIncompleteCandidate(t *testing.T) {
	t.Parallel()

	repo := poolmock.NewRepository(t)
	candidate := samplePool()
	candidate.PoolName = ""
	candidate.DivisionCode = ""

	_, err := NewPoolReconciler(repo, logging.NewNop()).Reconcile(context.Background(), candidate, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if diff := cmp.Diff([]string{"pool_name", "division_code"}, vErr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestPoolReconciler_ConflictOnCreateContinuesAsUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := poolmock.NewRepository(t)
	candidate := samplePool()
	raced := samplePool()
	raced.ID = 9
	raced.Active = true
	raced.DivisionName = "N3"

	repo.On("FindByKey", ctx, candidate.Key()).Return(pool.Pool{}, false, nil).Once()
	repo.On("Create", ctx, mock.Anything).
		Return(pool.Pool{}, &TransportError{Op: "create pool", StatusCode: http.StatusConflict}).
		Once()
	repo.On("FindByKey", ctx, candidate.Key()).Return(raced, true, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(p pool.Pool) bool { return p.ID == 9 }), []string{"division_name: 'N3' -> 'Nationale 3'"}).
		Return(echoPoolUpdate).
		Once()

	got, err := NewPoolReconciler(repo, logging.NewNop()).Reconcile(ctx, candidate, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Outcome != OutcomeUpdated || got.Record.ID != 9 {
		t.Fatalf("unexpected result: outcome=%s id=%d", got.Outcome, got.Record.ID)
	}
}

func TestPoolReconciler_TransportFailureOnCreateIsReturned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := poolmock.NewRepository(t)
	candidate := samplePool()

	repo.On("FindByKey", ctx, candidate.Key()).Return(pool.Pool{}, false, nil).Once()
	repo.On("Create", ctx, mock.Anything).
		Return(pool.Pool{}, &TransportError{Op: "create pool", StatusCode: http.StatusBadGateway}).
		Once()

	_, err := NewPoolReconciler(repo, logging.NewNop()).Reconcile(ctx, candidate, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if errors.Is(err, ErrConflict) {
		t.Fatalf("did not expect ErrConflict for 502")
	}
}

func TestTeamReconciler_InheritsAliasAndDiffsClubID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := teammock.NewRepository(t)
	existing := team.Team{
		ID:        3,
		PoolID:    7,
		TeamName:  "ASPTT MULHOUSE",
		TeamAlias: changeset.Ptr("Mulhouse"),
		ClubID:    changeset.Ptr("0681234"),
		Active:    true,
	}
	candidate := team.Team{PoolID: 7, TeamName: "ASPTT MULHOUSE", ClubID: changeset.Ptr("0689999")}

	repo.On("Update", ctx, mock.MatchedBy(func(tm team.Team) bool {
		return tm.ID == 3 && changeset.Deref(tm.TeamAlias) == "Mulhouse"
	}), []string{"club_id: '0681234' -> '0689999'"}).
		Return(func(_ context.Context, tm team.Team, _ []string) (team.Team, error) { return tm, nil }).
		Once()

	got, err := NewTeamReconciler(repo, logging.NewNop()).Reconcile(ctx, candidate, &existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Outcome != OutcomeUpdated {
		t.Fatalf("expected updated, got %s", got.Outcome)
	}
}

func TestMatchReconciler_KeepsFinishedStatusWithoutResult(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	existing := sampleMatch()
	existing.ID = 40
	existing.Active = true
	existing.Status = match.StatusFinished
	existing.Set = changeset.Ptr("3-1")
	existing.Score = changeset.Ptr("25-20, 22-25, 25-18, 25-19")

	got, err := NewMatchReconciler(repo, logging.NewNop()).Reconcile(context.Background(), sampleMatch(), &existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Outcome != OutcomeUnchanged {
		t.Fatalf("expected unchanged, got %s with %s", got.Outcome, got.Changes)
	}
}

func TestMatchReconciler_InheritsLiveCode(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	existing := sampleMatch()
	existing.ID = 40
	existing.Active = true
	existing.LiveCode = changeset.Ptr(int64(1234))

	got, err := NewMatchReconciler(repo, logging.NewNop()).Reconcile(context.Background(), sampleMatch(), &existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Outcome != OutcomeUnchanged {
		t.Fatalf("expected unchanged, got %s with %s", got.Outcome, got.Changes)
	}
}

func TestMatchReconciler_ProLeagueKeepsStoredKickoff(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	existing := sampleMatch()
	existing.ID = 40
	existing.Active = true
	existing.LeagueCode = ProLeagueCode
	storedKickoff := time.Date(2024, 10, 5, 19, 30, 0, 0, time.UTC)
	existing.MatchDate = &storedKickoff

	candidate := sampleMatch()
	candidate.LeagueCode = ProLeagueCode
	candidate.Set = changeset.Ptr("3-0")
	candidate.Score = changeset.Ptr("25-10, 25-12, 25-14")
	candidate.Status = match.StatusFinished

	repo.On("Update", ctx, mock.MatchedBy(func(m match.Match) bool {
		return m.MatchDate != nil && m.MatchDate.Equal(storedKickoff)
	}), mock.MatchedBy(func(changes []string) bool {
		for _, c := range changes {
			if len(c) >= len(match.FieldMatchDate) && c[:len(match.FieldMatchDate)] == match.FieldMatchDate {
				return false
			}
		}
		return len(changes) == 3
	})).
		Return(func(_ context.Context, m match.Match, _ []string) (match.Match, error) { return m, nil }).
		Once()

	got, err := NewMatchReconciler(repo, logging.NewNop()).Reconcile(ctx, candidate, &existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Changes.Has(match.FieldMatchDate) {
		t.Fatalf("pro league kickoff must not be diffed: %s", got.Changes)
	}
	if diff := cmp.Diff([]string{"set", "score", "status"}, got.Changes.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchReconciler_RejectsMissingTeamAndKickoff(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	candidate := sampleMatch()
	candidate.TeamIDB = 0
	candidate.MatchDate = nil

	_, err := NewMatchReconciler(repo, logging.NewNop()).Reconcile(context.Background(), candidate, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if vErr.Entity != "match" {
		t.Fatalf("unexpected entity %q", vErr.Entity)
	}
	if diff := cmp.Diff([]string{"team_id_b", "match_date"}, vErr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchReconciler_ProLeagueKickoffOnlyIsUnchanged(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	existing := sampleMatch()
	existing.ID = 40
	existing.Active = true
	existing.LeagueCode = ProLeagueCode
	storedKickoff := time.Date(2024, 10, 5, 19, 30, 0, 0, time.UTC)
	existing.MatchDate = &storedKickoff

	candidate := sampleMatch()
	candidate.LeagueCode = ProLeagueCode

	got, err := NewMatchReconciler(repo, logging.NewNop()).Reconcile(context.Background(), candidate, &existing)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got.Outcome != OutcomeUnchanged {
		t.Fatalf("expected unchanged, got %s with %s", got.Outcome, got.Changes)
	}
	if !got.Record.MatchDate.Equal(storedKickoff) {
		t.Fatalf("stored kickoff replaced: %v", got.Record.MatchDate)
	}
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
