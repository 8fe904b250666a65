// Package scheduler implements the Scheduler (C11): a small in-process
// cron table driving stream polls and the batch-processor tick, with a
// single-flight lock per job and graceful shutdown.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lionscraft/docpythia/pkg/batch"
	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/streammanager"
)

// defaultLockTTL bounds how long a single-flight lock survives a holder
// that crashes mid-run, so a stuck job doesn't wedge its slot forever.
const defaultLockTTL = 5 * time.Minute

// defaultBatchTickSchedule matches the spec's stated default cadence
// for the batch-processor tick job.
const defaultBatchTickSchedule = "@every 30m"

// Scheduler owns the cron trigger table. Missed ticks coalesce via
// cron/v3's own SkipIfStillRunning chain: a trigger firing while the
// previous run of the same job is still in flight is dropped rather
// than queued.
type Scheduler struct {
	cron    *cron.Cron
	lock    Locker
	lockTTL time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	jobs []string
}

// New constructs a Scheduler. A Redis-backed single-flight lock is used
// when cfg names a redis_addr; otherwise jobs are single-flighted only
// within this process.
func New(cfg *config.SchedulerConfig) (*Scheduler, error) {
	var lock Locker
	ttl := defaultLockTTL

	if cfg != nil && cfg.RedisAddr != "" {
		rl, err := newRedisLocker(cfg.RedisAddr, cfg.RedisPasswordEnv)
		if err != nil {
			return nil, err
		}
		lock = rl
	} else {
		lock = newInProcessLocker()
	}

	if cfg != nil && cfg.LockTTL > 0 {
		ttl = cfg.LockTTL
	}

	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		lock:    lock,
		lockTTL: ttl,
		logger:  slog.With("component", "scheduler"),
	}, nil
}

// RegisterJob adds a cron-triggered job under name, used as both its
// lock key and its log field. The single-flight lock is acquired right
// before fn runs and released right after, so a lock held by a crashed
// instance expires on its own after lockTTL rather than blocking every
// future tick.
func (s *Scheduler) RegisterJob(name, spec string, fn func(ctx context.Context) error) error {
	log := s.logger.With("job", name)

	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		release, ok, err := s.lock.TryAcquire(ctx, name, s.lockTTL)
		if err != nil {
			log.Error("failed to acquire single-flight lock", "error", err)
			return
		}
		if !ok {
			log.Debug("skipping tick, another instance holds the lock")
			return
		}
		defer release()

		if err := fn(ctx); err != nil {
			log.Error("job run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: failed to register job %q with spec %q: %w", name, spec, err)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, name)
	s.mu.Unlock()

	log.Info("job registered", "schedule", spec)
	return nil
}

// RegisterStreamPollers registers one poll job per currently-registered
// stream that declares a schedule, driving the Stream Manager's
// RunOnce. Push-based streams have no schedule and are left to their
// own delivery loop, per §4.6.
func (s *Scheduler) RegisterStreamPollers(mgr *streammanager.Manager) error {
	for _, stream := range mgr.Streams() {
		if stream.Schedule == nil || *stream.Schedule == "" {
			continue
		}
		streamID := stream.StreamID
		schedule := *stream.Schedule

		err := s.RegisterJob("stream_poll:"+streamID, schedule, func(ctx context.Context) error {
			n, err := mgr.RunOnce(ctx, streamID)
			if err != nil {
				return fmt.Errorf("stream %s: %w", streamID, err)
			}
			s.logger.Debug("stream poll complete", "stream_id", streamID, "messages", n)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// RegisterBatchTick registers the batch-processor tick job, which runs
// Processor.Tick for every currently-registered stream on each
// trigger. An empty schedule falls back to the spec's default cadence.
func (s *Scheduler) RegisterBatchTick(mgr *streammanager.Manager, processor *batch.Processor, schedule string) error {
	if schedule == "" {
		schedule = defaultBatchTickSchedule
	}

	return s.RegisterJob("batch_tick", schedule, func(ctx context.Context) error {
		var errs []error
		for _, stream := range mgr.Streams() {
			if err := processor.Tick(ctx, stream.StreamID); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", stream.StreamID, err))
			}
		}
		return errors.Join(errs...)
	})
}

// Start begins driving every registered job's cron triggers. Call
// after every RegisterJob/RegisterStreamPollers/RegisterBatchTick call.
func (s *Scheduler) Start() {
	s.mu.Lock()
	n := len(s.jobs)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", n)
}

// Stop drops pending triggers immediately and waits for any in-flight
// job run to finish, up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping scheduler, waiting for in-flight jobs")
	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
		s.logger.Info("scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler shutdown deadline exceeded, a job may still be running")
		return ctx.Err()
	}
}
