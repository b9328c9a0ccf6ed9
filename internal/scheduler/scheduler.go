package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/newslens/pkg/logger"
)

const (
	maxRetries = 3
	retryDelay = 30 * time.Second
)

// Scheduler manages scheduled jobs
// ⭐ SSOT: 파이프라인 스케줄링은 여기서만 관리
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]Job
	history map[string]*JobHistory
	logger  *logger.Logger
	mu      sync.RWMutex
}

// New creates a new scheduler
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		jobs:    make(map[string]Job),
		history: make(map[string]*JobHistory),
		logger:  log.WithField("component", "scheduler"),
	}
}

// AddJob registers a job with the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job already registered: %s", name)
	}

	_, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job registered")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// RunJob runs a job immediately by name
func (s *Scheduler) RunJob(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job not found: %s", name)
	}

	s.runJob(job)
	return nil
}

// runJob executes a job with retry and records the result.
func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	log := s.logger.WithField("job", name)

	result := JobResult{
		JobName:   name,
		StartTime: time.Now(),
	}

	log.Info("Job started")

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		ctx := context.Background()
		err = job.Run(ctx)
		if err == nil {
			break
		}

		log.WithError(err).Warnf("Job attempt %d/%d failed", attempt, maxRetries)
		if attempt < maxRetries {
			time.Sleep(retryDelay)
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if err != nil {
		result.Success = false
		result.Error = err.Error()
		log.WithError(err).WithField("duration", result.Duration.String()).Error("Job failed")
	} else {
		result.Success = true
		log.WithField("duration", result.Duration.String()).Info("Job completed")
	}

	s.mu.Lock()
	if h, ok := s.history[name]; ok {
		h.AddResult(result)
	}
	s.mu.Unlock()
}

// GetJobHistory returns the latest execution results for a job
func (s *Scheduler) GetJobHistory(name string, n int) ([]JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.history[name]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", name)
	}

	return h.GetLatestResults(n), nil
}

// GetAllJobs returns the names of all registered jobs
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}
