package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	concpool "github.com/sourcegraph/conc/pool"
)

// PoolCandidate is a scraped pool together with the raw season its calendar is published under.
type PoolCandidate struct {
	Pool      pool.Pool
	RawSeason string
}

type LeagueSyncResult struct {
	LeagueCode string      `json:"league_code"`
	Pools      int         `json:"pools"`
	Failed     int         `json:"failed"`
	Sweep      SweepReport `json:"sweep"`
}

// LeagueSyncService reconciles the pools of one league, syncs their calendars and sweeps stale pools.
type LeagueSyncService struct {
	poolRepo   pool.Repository
	reconciler *PoolReconciler
	poolSync   *PoolSyncService
	sweeper    *Sweeper
	maxWorkers int
	logger     *logging.Logger
}

func NewLeagueSyncService(
	poolRepo pool.Repository,
	reconciler *PoolReconciler,
	poolSync *PoolSyncService,
	sweeper *Sweeper,
	maxWorkers int,
	logger *logging.Logger,
) *LeagueSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &LeagueSyncService{
		poolRepo:   poolRepo,
		reconciler: reconciler,
		poolSync:   poolSync,
		sweeper:    sweeper,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// SyncLeague must receive the complete pool enumeration of the league; observed codes drive the sweep.
func (s *LeagueSyncService) SyncLeague(ctx context.Context, leagueCode string, candidates []PoolCandidate, observed KeySet) (LeagueSyncResult, error) {
	ctx, span := startSpan(ctx, "LeagueSyncService.SyncLeague")
	defer span.End()

	result := LeagueSyncResult{LeagueCode: leagueCode, Pools: len(candidates)}
	logger := s.logger.With("league_code", leagueCode)

	active, err := s.poolRepo.ListActive(ctx, leagueCode)
	if err != nil {
		return result, fmt.Errorf("list active pools for league %s: %w", leagueCode, err)
	}
	existingByKey := make(map[pool.Key]pool.Pool, len(active))
	for _, item := range active {
		existingByKey[item.Key()] = item
	}

	stored := make([]PoolCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		var existing *pool.Pool
		if found, ok := existingByKey[candidate.Pool.Key()]; ok {
			existing = &found
		}
		reconciled, err := s.reconciler.Reconcile(ctx, candidate.Pool, existing)
		if err != nil {
			result.Failed++
			logger.ErrorContext(ctx, "reconcile pool failed", "pool_code", candidate.Pool.PoolCode, "error", err)
			continue
		}
		stored = append(stored, PoolCandidate{Pool: reconciled.Record, RawSeason: candidate.RawSeason})
	}

	workers := concpool.New().WithMaxGoroutines(s.maxWorkers)
	failures := make(chan string, len(stored))
	for _, item := range stored {
		workers.Go(func() {
			if _, err := s.poolSync.SyncPool(ctx, item.Pool, item.RawSeason); err != nil {
				failures <- item.Pool.PoolCode
				logger.ErrorContext(ctx, "sync pool calendar failed", "pool_code", item.Pool.PoolCode, "pool_id", item.Pool.ID, "error", err)
			}
		})
	}
	workers.Wait()
	close(failures)
	for range failures {
		result.Failed++
	}

	sweep, err := s.sweeper.SweepPools(ctx, leagueCode, observed)
	result.Sweep = sweep
	if err != nil {
		return result, err
	}

	logger.InfoContext(ctx, "league synced", "pools", result.Pools, "failed", result.Failed, "pools_deactivated", sweep.Deactivated)
	return result, nil
}
