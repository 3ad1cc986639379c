package service

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"revenue-split-engine/internal/repository"
)

// SweepService periodically distributes auto-distribute engines that hold a
// pending native balance. Deposits trigger those engines synchronously; the
// sweep picks up value that arrived through other paths, such as payouts
// from engines not registered as distributors on them.
type SweepService struct {
	engineRepo *repository.EngineRepository
	waterfall  *WaterfallService
	cron       *cron.Cron
}

// NewSweepService creates a new SweepService with the provided dependencies.
func NewSweepService(engineRepo *repository.EngineRepository, waterfall *WaterfallService) *SweepService {
	return &SweepService{
		engineRepo: engineRepo,
		waterfall:  waterfall,
		cron:       cron.New(),
	}
}

// Start schedules the sweep with the given cron spec and starts the scheduler.
func (s *SweepService) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.Run(context.Background()); err != nil {
			log.Printf("Sweep run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *SweepService) Stop() {
	<-s.cron.Stop().Done()
}

// Run distributes every pending auto-distribute engine once. A failing
// engine is logged and skipped; one bad configuration must not starve the
// others.
func (s *SweepService) Run(ctx context.Context) error {
	engines, err := s.engineRepo.GetAutoDistributeEngines(ctx)
	if err != nil {
		return err
	}
	for _, engine := range engines {
		if err := s.waterfall.DistributeSelf(ctx, engine.Address); err != nil {
			log.Printf("Sweep: distribution failed for engine %s: %v", engine.Address, err)
		}
	}
	return nil
}
