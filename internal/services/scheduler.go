package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matchwise/backend/internal/config"
	"github.com/matchwise/backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	JobRefreshMatches       = "refresh_matches"
	JobFlagExpiredSLAs      = "flag_expired_slas"
	JobCleanExpiredSessions = "clean_expired_sessions"

	schedulerModule = "scheduler"
)

type Rebuilder interface {
	Rebuild(ctx context.Context, projectID uint) (*RebuildResult, error)
}

type ActiveProjectLister interface {
	ListActiveIDs(ctx context.Context) ([]uint, error)
}

type Sweeper interface {
	Sweep(ctx context.Context) (*BatchResult, error)
}

type Reaper interface {
	Reap(ctx context.Context) (int64, error)
}

// SchedulerDeps are the units of work the scheduler drives. Locker is optional;
// without it only the in-process guard applies.
type SchedulerDeps struct {
	Projects  ActiveProjectLister
	Rebuilder Rebuilder
	Sweeper   Sweeper
	Reaper    Reaper
	Locker    JobLocker
}

// JobReport summarizes one run of a job.
type JobReport struct {
	Job        string    `json:"job"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Succeeded  int       `json:"succeeded"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Deleted    int64     `json:"deleted,omitempty"`
}

type JobInfo struct {
	Name    string     `json:"name"`
	Spec    string     `json:"spec"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

type job struct {
	name    string
	spec    string
	run     func(ctx context.Context, report *JobReport) error
	mu      sync.Mutex
	entryID cron.EntryID
}

// Scheduler owns the three periodic triggers. Each trigger is independent:
// a failing run is logged and the next scheduled run happens as usual.
// Runs of the same job never overlap, whether cron or manual.
type Scheduler struct {
	cfg        config.SchedulerConfig
	deps       SchedulerDeps
	cron       *cron.Cron
	jobs       map[string]*job
	order      []string
	lockTTL    time.Duration
	// renewEvery is how often a held lease is extended while its job runs.
	renewEvery time.Duration
	mu         sync.Mutex
	started    bool
}

func NewScheduler(cfg config.SchedulerConfig, deps SchedulerDeps) *Scheduler {
	ttl := time.Duration(cfg.LockTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	cronLog := logger.Component("cron")
	cronLogger := cron.PrintfLogger(&cronLog)

	s := &Scheduler{
		cfg:        cfg,
		deps:       deps,
		jobs:       make(map[string]*job),
		lockTTL:    ttl,
		renewEvery: ttl / 3,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
	}

	s.register(JobRefreshMatches, cfg.RefreshMatches, s.refreshMatches)
	s.register(JobFlagExpiredSLAs, cfg.SLASweep, s.flagExpiredSLAs)
	s.register(JobCleanExpiredSessions, cfg.SessionCleanup, s.cleanExpiredSessions)
	return s
}

func (s *Scheduler) register(name, spec string, run func(context.Context, *JobReport) error) {
	s.jobs[name] = &job{name: name, spec: spec, run: run}
	s.order = append(s.order, name)
}

// Start adds every job with a non-empty spec to cron and starts it.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	for _, name := range s.order {
		j := s.jobs[name]
		if j.spec == "" {
			logger.Info().Str("job", name).Msg("[Scheduler] No schedule, job runs only on demand")
			continue
		}
		jobName := name
		id, err := s.cron.AddFunc(j.spec, func() { s.runScheduled(jobName) })
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", name, j.spec, err)
		}
		j.entryID = id
		logger.Info().Str("job", name).Str("cron", j.spec).Msg("[Scheduler] Job scheduled")
	}

	s.cron.Start()
	s.started = true
	logger.Info().Msg("[Scheduler] Scheduler started")
	return nil
}

// Stop stops the cron and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		logger.Info().Msg("[Scheduler] Scheduler stopped")
	case <-ctx.Done():
		logger.Warn().Msg("[Scheduler] Stop timed out with jobs still running")
	}
	s.started = false
}

// Jobs lists the registered jobs with their next run time when scheduled.
func (s *Scheduler) Jobs() []JobInfo {
	infos := make([]JobInfo, 0, len(s.order))
	for _, name := range s.order {
		j := s.jobs[name]
		info := JobInfo{Name: name, Spec: j.spec}
		if j.entryID != 0 {
			if next := s.cron.Entry(j.entryID).Next; !next.IsZero() {
				info.NextRun = &next
			}
		}
		infos = append(infos, info)
	}
	return infos
}

func (s *Scheduler) runScheduled(name string) {
	report, err := s.RunJob(context.Background(), name)
	switch {
	case errors.Is(err, ErrJobRunning):
		logger.Info().Str("job", name).Msg("[Scheduler] Previous run still in flight, skipping")
	case err != nil:
		logger.Error().Err(err).Str("job", name).Msg("[Scheduler] Job failed")
	default:
		logger.Info().
			Str("job", name).
			Int("succeeded", report.Succeeded).
			Int("failed", report.Failed).
			Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
			Msg("[Scheduler] Job finished")
	}
}

// RunJob runs one job now. It is shared by cron and manual triggers and
// returns ErrJobRunning when another run of the same job holds its guard.
func (s *Scheduler) RunJob(ctx context.Context, name string) (*JobReport, error) {
	j, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	if !j.mu.TryLock() {
		return nil, ErrJobRunning
	}
	defer j.mu.Unlock()

	if s.deps.Locker != nil {
		acquired, err := s.deps.Locker.TryAcquire(ctx, name, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire %s lock: %w", name, err)
		}
		if !acquired {
			return nil, ErrJobRunning
		}
		defer func() {
			if err := s.deps.Locker.Release(context.Background(), name); err != nil {
				logger.Warn().Err(err).Str("job", name).Msg("[Scheduler] Failed to release lock")
			}
		}()
		stopRenew := s.keepLease(name)
		defer stopRenew()
	}

	report := &JobReport{Job: name, StartedAt: time.Now()}
	err := j.run(ctx, report)
	report.FinishedAt = time.Now()

	s.audit(report, err)
	return report, err
}

// keepLease extends the job's lease on a ticker until the returned stop func
// is called. A lost lease is logged; the run itself is not interrupted.
func (s *Scheduler) keepLease(name string) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.renewEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := s.deps.Locker.Renew(context.Background(), name, s.lockTTL); err != nil {
					logger.Warn().Err(err).Str("job", name).Msg("[Scheduler] Failed to renew lock")
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

func (s *Scheduler) audit(report *JobReport, err error) {
	switch {
	case err != nil:
		LogError(schedulerModule, report.Job, err.Error(), report)
	case report.Failed > 0:
		LogWarning(schedulerModule, report.Job, fmt.Sprintf("%s completed with %d failures", report.Job, report.Failed), report)
	default:
		LogInfo(schedulerModule, report.Job, fmt.Sprintf("%s completed", report.Job), report)
	}
}

// refreshMatches rebuilds every active project. One project failing does not
// stop the others. Failing to list the active projects aborts the run.
func (s *Scheduler) refreshMatches(ctx context.Context, report *JobReport) error {
	logger.Info().Msg("[Scheduler] Refreshing matches for active projects")

	ids, err := s.deps.Projects.ListActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active projects: %w", err)
	}

	result := NewBatchResult("project")
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			fillReport(report, result)
			return err
		}
		if _, err := s.deps.Rebuilder.Rebuild(ctx, id); err != nil {
			logger.Error().Err(err).Uint("project_id", id).Msg("[Scheduler] Failed to rebuild matches")
			result.Fail(id, err)
			continue
		}
		result.Succeed()
	}

	result.Log(JobRefreshMatches)
	fillReport(report, result)
	return nil
}

func (s *Scheduler) flagExpiredSLAs(ctx context.Context, report *JobReport) error {
	result, err := s.deps.Sweeper.Sweep(ctx)
	if result != nil {
		fillReport(report, result)
	}
	if err != nil {
		return err
	}
	result.Log(JobFlagExpiredSLAs)
	return nil
}

func (s *Scheduler) cleanExpiredSessions(ctx context.Context, report *JobReport) error {
	deleted, err := s.deps.Reaper.Reap(ctx)
	if err != nil {
		return err
	}
	report.Deleted = deleted
	report.Succeeded = 1
	return nil
}

func fillReport(report *JobReport, result *BatchResult) {
	report.Succeeded = result.Succeeded
	report.Skipped = result.Skipped
	report.Failed = result.Failed()
}
