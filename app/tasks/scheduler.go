package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/leonardovviana/conecta-monitor/app/cfg"
	"github.com/leonardovviana/conecta-monitor/app/classifier"
	"github.com/leonardovviana/conecta-monitor/app/database"
	"github.com/leonardovviana/conecta-monitor/app/feed"
	"github.com/leonardovviana/conecta-monitor/app/monitor"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache      *monitor.ConfigCache
	monitorRepo      database.MonitorRepository
	mentionRepo      database.MentionRepository
	httpClient       *http.Client
	fetcher          *feed.Fetcher
	parser           *feed.Parser
	contentExtractor *feed.ContentExtractor
	defaultRules     classifier.Rules
	userAgent        string
	interval         time.Duration
	workerCount      int
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	taskQueue        chan TaskInterface
}

func NewScheduler(configCache *monitor.ConfigCache, monitorRepo database.MonitorRepository,
	mentionRepo database.MentionRepository, httpClient *http.Client, fetcher *feed.Fetcher,
	parser *feed.Parser, contentExtractor *feed.ContentExtractor, defaultRules classifier.Rules) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache:      configCache,
		monitorRepo:      monitorRepo,
		mentionRepo:      mentionRepo,
		httpClient:       httpClient,
		fetcher:          fetcher,
		parser:           parser,
		contentExtractor: contentExtractor,
		defaultRules:     defaultRules,
		userAgent:        cfg.UserAgent,
		interval:         time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:      cfg.WorkerCount,
		ctx:              ctx,
		cancel:           cancel,
		taskQueue:        make(chan TaskInterface, 300),
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

		s.enqueueStartupTasks()

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

func (s *Scheduler) enqueueStartupTasks() {
	monitorConfigs := s.configCache.GetConfigs()
	if len(monitorConfigs) == 0 {
		slog.Debug("No monitor configurations found")
		return
	}

	slog.Debug("Processing monitor configurations", "count", len(monitorConfigs))

	for _, monitorConfig := range monitorConfigs {
		syncTask := NewSyncMonitorConfigTask(monitorConfig.Name, monitorConfig, s.monitorRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncMonitorConfigTask", "monitor", monitorConfig.Name, "error", err)
			continue
		}

		if !monitorConfig.Settings.Enabled {
			slog.Debug("Monitor disabled, skipping ProcessMonitorTask", "monitor", monitorConfig.Name)
			continue
		}

		processTask := NewProcessMonitorTask(monitorConfig.Name, monitorConfig, s.fetcher, s.parser, s.defaultRules, s.monitorRepo, s.mentionRepo)
		if err := s.EnqueueTask(processTask); err != nil {
			slog.Warn("Failed to enqueue ProcessMonitorTask", "monitor", monitorConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	monitorConfigs := s.configCache.GetEnabledConfigs()
	if len(monitorConfigs) == 0 {
		slog.Debug("No enabled monitor configurations found")
		return
	}

	slog.Debug("Processing enabled monitor configurations for task scheduling", "count", len(monitorConfigs))

	for _, monitorConfig := range monitorConfigs {
		storedMonitor, err := s.monitorRepo.GetMonitor(monitorConfig.Name)
		if err != nil {
			slog.Warn("Failed to get monitor from database, skipping", "monitor", monitorConfig.Name, "error", err)
			continue
		}
		if storedMonitor == nil {
			slog.Warn("Monitor not found in database, skipping", "monitor", monitorConfig.Name)
			continue
		}

		now := time.Now().UTC()
		if storedMonitor.NextFetchAt != nil && storedMonitor.NextFetchAt.After(now) {
			slog.Debug("Monitor not due for refresh yet", "monitor", monitorConfig.Name, "next_fetch_at", storedMonitor.NextFetchAt)
		} else {
			processTask := NewProcessMonitorTask(monitorConfig.Name, monitorConfig, s.fetcher, s.parser, s.defaultRules, s.monitorRepo, s.mentionRepo)
			if err := s.EnqueueTask(processTask); err != nil {
				slog.Warn("Failed to enqueue ProcessMonitorTask", "monitor", monitorConfig.Name, "error", err)
			}
		}

		if monitorConfig.Settings.ExtractContent {
			extractTask := NewExtractContentTask(monitorConfig.Name, monitorConfig, s.httpClient, s.contentExtractor, s.mentionRepo, s.userAgent)
			if err := s.EnqueueTask(extractTask); err != nil {
				slog.Warn("Failed to enqueue ExtractContentTask", "monitor", monitorConfig.Name, "error", err)
			}
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

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "monitor", task.GetMonitorName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

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
