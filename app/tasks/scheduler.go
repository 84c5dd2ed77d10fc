package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"socialrss/app/cfg"
	"socialrss/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Sweeps are cheap but there is no point running them more than a few
// times a day.
const sweepEvery = 6 * time.Hour

type Scheduler struct {
	feedRepo       database.FeedRepository
	manager        FeedManagerInterface
	interval       time.Duration
	updateInterval time.Duration
	staleAgeDays   int
	workerCount    int
	nextSweepAt    time.Time
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface
}

func NewScheduler(feedRepo database.FeedRepository, manager FeedManagerInterface) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		feedRepo:       feedRepo,
		manager:        manager,
		interval:       time.Duration(cfg.SchedulerInterval) * time.Second,
		updateInterval: time.Duration(cfg.UpdateInterval) * time.Minute,
		staleAgeDays:   cfg.StaleAgeDays,
		workerCount:    cfg.WorkerCount,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	now := time.Now().UTC()

	if !s.nextSweepAt.After(now) {
		if err := s.EnqueueTask(NewSweepStaleTask(s.manager, s.staleAgeDays)); err != nil {
			slog.Warn("Failed to enqueue SweepStaleTask", "error", err)
		} else {
			s.nextSweepAt = now.Add(sweepEvery)
		}
	}

	feeds, err := s.feedRepo.GetAllFeeds()
	if err != nil {
		slog.Warn("Failed to list feeds for refresh check", "error", err)
		return
	}

	// Each feed carries its own refresh interval; the configured
	// interval is the fallback for records without one.
	var due []database.Feed
	for _, feed := range feeds {
		if feed.Status != database.FeedStatusActive {
			continue
		}
		interval := time.Duration(feed.UpdateIntervalMinutes) * time.Minute
		if interval <= 0 {
			interval = s.updateInterval
		}
		if now.Sub(feed.LastUpdatedAt) > interval {
			due = append(due, feed)
		}
	}

	if len(due) == 0 {
		slog.Debug("No feeds due for refresh")
		return
	}

	slog.Debug("Scheduling feed refreshes", "count", len(due))

	for _, feed := range due {
		task := NewRefreshFeedTask(feed.ID, s.manager)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue RefreshFeedTask", "feed", feed.ID, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed", task.GetFeedID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
