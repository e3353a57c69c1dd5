package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/executionlog"
	idgen "github.com/riskibarqy/volley-sync/internal/platform/id"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	concpool "github.com/sourcegraph/conc/pool"
)

const defaultListRunsLimit = 20

// Scraper runs one full pass over a family of competitions.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context) error
}

// RunCapture collects the log text produced while a run is in progress.
type RunCapture interface {
	Reset()
	Drain() string
}

// OrchestratorService runs every scraper once per pass and records the pass as an execution log.
type OrchestratorService struct {
	scrapers []Scraper
	logs     executionlog.Repository
	capture  RunCapture
	idGen    idgen.Generator
	logger   *logging.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewOrchestratorService(
	scrapers []Scraper,
	logs executionlog.Repository,
	capture RunCapture,
	idGen idgen.Generator,
	logger *logging.Logger,
) *OrchestratorService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = idgen.NewUUIDGenerator()
	}
	return &OrchestratorService{
		scrapers: scrapers,
		logs:     logs,
		capture:  capture,
		idGen:    idGen,
		logger:   logger,
		now:      time.Now,
	}
}

// RunOnce executes all scrapers concurrently; a second call while one is active fails with ErrRunInProgress.
func (s *OrchestratorService) RunOnce(ctx context.Context) (executionlog.ExecutionLog, error) {
	if !s.mu.TryLock() {
		return executionlog.ExecutionLog{}, ErrRunInProgress
	}
	defer s.mu.Unlock()

	return s.run(ctx)
}

// Start launches a pass in the background and returns once the run lock is held.
// The pass outlives ctx cancellation and is bounded by timeout when it is positive.
func (s *OrchestratorService) Start(ctx context.Context, timeout time.Duration) error {
	if !s.mu.TryLock() {
		return ErrRunInProgress
	}

	go func() {
		defer s.mu.Unlock()

		runCtx := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, timeout)
			defer cancel()
		}
		if _, err := s.run(runCtx); err != nil {
			s.logger.ErrorContext(runCtx, "background scrape run failed", "error", err)
		}
	}()
	return nil
}

func (s *OrchestratorService) run(ctx context.Context) (executionlog.ExecutionLog, error) {
	ctx, span := startSpan(ctx, "OrchestratorService.RunOnce")
	defer span.End()

	if s.capture != nil {
		s.capture.Reset()
	}
	started := s.now()
	s.logger.InfoContext(ctx, "scrape run started", "scrapers", len(s.scrapers))

	workers := concpool.New().WithErrors()
	for _, scraper := range s.scrapers {
		workers.Go(func() error {
			if err := scraper.Scrape(ctx); err != nil {
				s.logger.ErrorContext(ctx, "scraper failed", "scraper", scraper.Name(), "error", err)
				return fmt.Errorf("%s: %w", scraper.Name(), err)
			}
			s.logger.InfoContext(ctx, "scraper finished", "scraper", scraper.Name())
			return nil
		})
	}
	runErr := workers.Wait()

	entry := executionlog.ExecutionLog{
		StartTime: started,
		Duration:  int(s.now().Sub(started).Seconds()),
		Status:    executionlog.StatusSuccess,
	}
	if runErr != nil {
		entry.Status = executionlog.StatusFailed
	}
	s.logger.InfoContext(ctx, "scrape run finished", "status", entry.Status, "duration_seconds", entry.Duration)
	if s.capture != nil {
		entry.Changes = s.capture.Drain()
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return entry, errors.Join(runErr, fmt.Errorf("generate execution log id: %w", err))
	}
	entry.ID = id

	if s.logs != nil {
		if err := s.logs.Insert(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "persist execution log failed", "execution_log_id", entry.ID, "error", err)
			return entry, errors.Join(runErr, fmt.Errorf("insert execution log: %w", err))
		}
	}

	return entry, runErr
}

func (s *OrchestratorService) ListRuns(ctx context.Context, limit int) ([]executionlog.ExecutionLog, error) {
	ctx, span := startSpan(ctx, "OrchestratorService.ListRuns")
	defer span.End()

	if s.logs == nil {
		return nil, fmt.Errorf("%w: execution log store is not configured", ErrDependencyUnavailable)
	}
	if limit <= 0 {
		limit = defaultListRunsLimit
	}
	if limit > 200 {
		return nil, fmt.Errorf("%w: limit must be <= 200", ErrInvalidInput)
	}
	return s.logs.ListRecent(ctx, limit)
}

// Running reports whether a pass currently holds the run lock.
func (s *OrchestratorService) Running() bool {
	if s.mu.TryLock() {
		s.mu.Unlock()
		return false
	}
	return true
}
