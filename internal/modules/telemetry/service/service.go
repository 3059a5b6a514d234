package service

import (
	"context"
	"time"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/domain"
	"github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/repository"
	"golang.org/x/sync/errgroup"
)

// TaskCounter reports how many tracked operations are in flight.
type TaskCounter interface {
	Len() int
}

// Service composes telemetry snapshots.
type Service struct {
	repo     repository.Repository
	tasks    TaskCounter
	bootTime time.Time
	now      func() time.Time
}

// New creates a telemetry service measuring uptime from bootTime.
func New(repo repository.Repository, tasks TaskCounter, bootTime time.Time) *Service {
	return &Service{
		repo:     repo,
		tasks:    tasks,
		bootTime: bootTime,
		now:      time.Now,
	}
}

// Snapshot samples every source concurrently.
func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	snap := domain.Snapshot{
		Uptime:       s.now().Sub(s.bootTime),
		RunningTasks: s.tasks.Len(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Disk, err = s.repo.Disk(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Network, err = s.repo.Network(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.CPUPercent, err = s.repo.CPUPercent(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.MemoryPercent, err = s.repo.MemoryPercent(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.ProcessRSS, err = s.repo.ProcessRSS(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}
