// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/repstats/repstats/internal/adapters/cache"
	"github.com/repstats/repstats/internal/adapters/jobs"
	"github.com/repstats/repstats/internal/adapters/sheets"
	"github.com/repstats/repstats/internal/domain/aggregate"
	"github.com/repstats/repstats/internal/domain/fetch"
	"github.com/repstats/repstats/internal/domain/query"
	"github.com/repstats/repstats/internal/domain/ranking"
	"github.com/repstats/repstats/internal/domain/types"
	"github.com/repstats/repstats/pkg/logger"
	"github.com/repstats/repstats/pkg/metrics"
)

// Service wires the fetcher, cache, supersession controller and the
// refresh-job pipeline, and implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// commitMu serializes the generation re-check with the cache write
	// so a stale result can never land after a fresher one.
	commitMu sync.Mutex

	// Core components
	reader     sheets.RangeReader
	fetcher    *fetch.Fetcher
	cache      *cache.Manager
	controller *query.Controller
	queue      *jobs.InMemoryQueue
	pool       *jobs.Pool
	badger     *cache.BadgerTier
	session    *cache.MemoryTier

	// Configuration
	spreadsheetID string
	apiKey        string
	baseURL       string
	cacheDir      string
	cacheTTL      time.Duration
	workerCount   int
	queueSize     int

	now func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheTTL:    cache.DefaultTTL,
		workerCount: runtime.NumCPU(),
		queueSize:   64,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting activity engine...")

	if s.reader == nil {
		readerOpts := []sheets.Option{sheets.WithAPIKey(s.apiKey)}
		if s.baseURL != "" {
			readerOpts = append(readerOpts, sheets.WithBaseURL(s.baseURL))
		}
		s.reader = sheets.NewClient(s.spreadsheetID, readerOpts...)
	}

	s.fetcher = fetch.New(s.reader,
		fetch.WithClock(s.now),
		fetch.WithLogger(s.logger.Named("fetch")),
	)

	badger, err := cache.NewBadgerTier(s.cacheDir, cache.WithBadgerTTL(s.cacheTTL))
	if err != nil {
		// Degrades to two tiers; correctness only needs the memory tier.
		s.logger.Warn(ctx, "persistent cache unavailable", logger.Error(err))
	}
	s.badger = badger
	s.session = cache.NewMemoryTier("session")

	tiers := []cache.Tier{cache.NewMemoryTier("memory"), s.session}
	if s.badger != nil {
		tiers = append(tiers, s.badger)
	}
	s.cache = cache.NewManager(tiers,
		cache.WithTTL(s.cacheTTL),
		cache.WithClock(s.now),
		cache.WithLogger(s.logger.Named("cache")),
	)

	s.controller = query.NewController()
	s.queue = jobs.NewInMemoryQueue(jobs.WithCapacity(s.queueSize))
	s.pool = jobs.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "activity engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("cacheTTL", s.cacheTTL),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping activity engine...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.badger != nil {
		_ = s.badger.Close()
	}

	s.started = false
	s.logger.Info(ctx, "activity engine stopped")
}

// Roster returns the ordered participant names for a category.
func (s *Service) Roster(ctx context.Context, cat types.Category) ([]string, error) {
	key := cache.RosterKey(cat)

	var roster []string
	if s.cache.Get(ctx, key, &roster) {
		return roster, nil
	}

	roster, err := s.fetcher.Roster(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", cat, err)
	}

	if err := s.cache.Set(ctx, key, roster); err != nil {
		s.logger.Warn(ctx, "roster cache write failed",
			logger.String("category", string(cat)), logger.Error(err))
	}
	return roster, nil
}

// History returns a participant's full raw row history, including rows
// whose dates or values do not parse.
func (s *Service) History(ctx context.Context, cat types.Category, participant string) ([]types.DateValueRow, error) {
	key := cache.HistoryKey(cat, participant)

	var rows []types.DateValueRow
	if s.cache.Get(ctx, key, &rows) {
		return rows, nil
	}

	pos, err := s.position(ctx, cat, participant)
	if err != nil {
		return nil, err
	}

	set, err := s.fetcher.Rows(ctx, cat, []int{pos})
	if err != nil {
		return nil, fmt.Errorf("history %s/%s: %w", cat, participant, err)
	}
	rows = set.Column(pos)

	if err := s.cache.Set(ctx, key, rows); err != nil {
		s.logger.Warn(ctx, "history cache write failed",
			logger.String("category", string(cat)), logger.Error(err))
	}
	return rows, nil
}

// Leaderboard ranks a category's participants for one month (1..12) or
// for the whole year when month is 0.
func (s *Service) Leaderboard(ctx context.Context, cat types.Category, year, month int) ([]types.LeaderboardEntry, error) {
	roster, set, err := s.categoryRows(ctx, cat)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64, len(roster))
	for pos, name := range roster {
		monthly := aggregate.MonthlyTotals(set.Column(pos), year)
		if month == 0 {
			totals[name] = aggregate.YearTotal(monthly)
		} else {
			totals[name] = monthly[month-1]
		}
	}

	return ranking.Rank(roster, totals), nil
}

// Weekdays computes the two weekday aggregation variants for one
// participant and month.
func (s *Service) Weekdays(ctx context.Context, cat types.Category, participant string, year, month int) (types.WeekdayStats, error) {
	pos, err := s.position(ctx, cat, participant)
	if err != nil {
		return types.WeekdayStats{}, err
	}

	set, err := s.fetcher.Rows(ctx, cat, []int{pos})
	if err != nil {
		return types.WeekdayStats{}, fmt.Errorf("weekdays %s/%s: %w", cat, participant, err)
	}
	rows := set.Column(pos)

	start := time.Now()
	stats := types.WeekdayStats{
		Totals:   aggregate.WeekdayTotals(rows, year, month),
		Averages: aggregate.WeekdayAverages(rows, month),
	}
	metrics.RecordAggregateDuration(time.Since(start).Seconds())

	return stats, nil
}

// Medals returns the cached medal board for a category set and year,
// along with the loading/error state of any in-flight refresh. A cache
// miss triggers a background refresh and reports loading.
func (s *Service) Medals(ctx context.Context, cats []types.Category, year int) (types.MedalsResult, error) {
	key := cache.MedalsKey(cats, year)
	status := s.controller.Status(key)

	result := types.MedalsResult{Board: types.NewMedalBoard()}
	if status.State == query.StateLoading {
		result.Loading = true
	}
	result.Error = status.Err

	var board types.MedalBoard
	if s.cache.Get(ctx, key, &board) {
		result.Board = board
		if at, ok := s.cache.FetchedAt(ctx, key); ok {
			result.FetchedAt = at
		}
		return result, nil
	}

	// A cold or expired entry kicks a background refresh. An errored
	// key waits for an explicit refresh so the error stays visible.
	if status.State == query.StateIdle || status.State == query.StateSuccess {
		if _, ok := s.Refresh(ctx, cats, year, false); ok {
			result.Loading = true
		}
	}

	return result, nil
}

// Refresh starts a new generation for the (category-set, year) key and
// enqueues a refresh job. With force set, the cached entry is removed
// from every tier first so the recomputation is a full miss. Returns
// the generation and whether the job was accepted.
func (s *Service) Refresh(ctx context.Context, cats []types.Category, year int, force bool) (uint64, bool) {
	key := cache.MedalsKey(cats, year)

	if force {
		s.cache.Invalidate(ctx, key)
	}

	gen := s.controller.Begin(key)
	job := jobs.NewJob(key, gen, cats, year, force)

	if !s.queue.Enqueue(ctx, job) {
		s.controller.Commit(key, gen, ErrQueueFull)
		s.logger.Warn(ctx, "refresh job dropped",
			logger.String("key", key), logger.Uint64("generation", gen))
		return gen, false
	}

	s.logger.Debug(ctx, "refresh job enqueued",
		logger.String("job_id", job.ID),
		logger.String("key", key),
		logger.Uint64("generation", gen),
		logger.Bool("force", force))
	return gen, true
}

// Execute runs one refresh job: fetch, aggregate, rank, and commit.
// Results from superseded generations are computed but never written.
func (s *Service) Execute(ctx context.Context, job jobs.Job) error {
	board, err := s.computeMedals(ctx, job.Categories, job.Year)
	if err != nil {
		s.controller.Commit(job.Key, job.Generation, err)
		return err
	}

	// Re-check the generation before the cache write so a slow stale
	// computation cannot clobber a newer committed result. The lock
	// keeps a concurrent fresher worker from writing between the two
	// steps; only the check and the write are held, never the fetch.
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if !s.controller.Commit(job.Key, job.Generation, nil) {
		return nil
	}

	if err := s.cache.Set(ctx, job.Key, board); err != nil {
		s.logger.Warn(ctx, "medal board cache write failed",
			logger.String("key", job.Key), logger.Error(err))
	}
	return nil
}

// computeMedals builds the medal board for a category set and year
// from one batched year-window read.
func (s *Service) computeMedals(ctx context.Context, cats []types.Category, year int) (types.MedalBoard, error) {
	rosters := make(map[types.Category][]string, len(cats))
	sizes := make(map[types.Category]int, len(cats))
	for _, cat := range cats {
		roster, err := s.Roster(ctx, cat)
		if err != nil {
			return types.MedalBoard{}, err
		}
		rosters[cat] = roster
		sizes[cat] = len(roster)
	}

	windows, err := s.fetcher.AllYearWindows(ctx, cats, sizes)
	if err != nil {
		return types.MedalBoard{}, fmt.Errorf("year windows: %w", err)
	}

	start := time.Now()
	monthly := make(map[types.Category][12][]types.LeaderboardEntry, len(cats))
	for _, cat := range cats {
		roster := rosters[cat]
		set := windows[cat]

		byName := make(map[string][12]float64, len(roster))
		for pos, name := range roster {
			byName[name] = aggregate.MonthlyTotals(set.Column(pos), year)
		}

		var months [12][]types.LeaderboardEntry
		for m := 0; m < 12; m++ {
			totals := make(map[string]float64, len(roster))
			for _, name := range roster {
				totals[name] = byName[name][m]
			}
			months[m] = ranking.Rank(roster, totals)
		}
		monthly[cat] = months
	}

	board := ranking.BuildMedalBoard(year, s.now(), monthly)
	metrics.RecordAggregateDuration(time.Since(start).Seconds())

	return board, nil
}

// ResetSession clears the session cache tier.
func (s *Service) ResetSession(ctx context.Context) {
	if s.session != nil {
		s.session.Clear(ctx)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"cacheTTL":    s.cacheTTL.String(),
	}

	if s.started {
		ctx := context.Background()
		stats["queueLength"] = s.queue.Len(ctx)
		stats["persistentTier"] = s.badger != nil
	}

	return stats
}

// categoryRows fetches a category's roster plus every participant's
// rows up to the today boundary.
func (s *Service) categoryRows(ctx context.Context, cat types.Category) ([]string, fetch.RowSet, error) {
	roster, err := s.Roster(ctx, cat)
	if err != nil {
		return nil, fetch.RowSet{}, err
	}

	positions := make([]int, len(roster))
	for i := range roster {
		positions[i] = i
	}

	set, err := s.fetcher.Rows(ctx, cat, positions)
	if err != nil {
		return nil, fetch.RowSet{}, fmt.Errorf("rows %s: %w", cat, err)
	}
	return roster, set, nil
}

// position resolves a participant's column position in a category's
// roster.
func (s *Service) position(ctx context.Context, cat types.Category, participant string) (int, error) {
	roster, err := s.Roster(ctx, cat)
	if err != nil {
		return 0, err
	}
	for i, name := range roster {
		if name == participant {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownParticipant, participant)
}
