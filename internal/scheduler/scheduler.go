package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/finplan-service/internal/config"
	"github.com/Dan9191/finplan-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Jobs is the work the scheduler triggers
type Jobs interface {
	RefreshReferenceRate(ctx context.Context) (models.ReferenceRate, error)
	SweepSessions() int
}

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
	log  *logrus.Logger
}

// New registers the jobs on the schedules from cfg
func New(cfg *config.Config, jobs Jobs, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(log)))),
		jobs: jobs,
		log:  log,
	}

	if _, err := s.cron.AddFunc(cfg.RateRefreshSpec, s.refreshRate); err != nil {
		return nil, fmt.Errorf("invalid RATE_REFRESH_SPEC %q: %w", cfg.RateRefreshSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.SessionSweepSpec, s.sweepSessions); err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_SPEC %q: %w", cfg.SessionSweepSpec, err)
	}
	return s, nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infof("Scheduler started with %d jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshRate() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.jobs.RefreshReferenceRate(ctx); err != nil {
		s.log.Errorf("Failed to refresh reference rate: %v", err)
	}
}

func (s *Scheduler) sweepSessions() {
	s.jobs.SweepSessions()
}
