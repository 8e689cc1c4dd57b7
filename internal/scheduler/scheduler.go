// Package scheduler wires up the cron job that periodically reloads the
// published listings catalog.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Refresher reloads a cached collection and reports how many items it holds.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron    *cron.Cron
	catalog Refresher
	spec    string // cron spec, e.g. "@every 5m"
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(catalog Refresher, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		catalog: catalog,
		spec:    fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. It also refreshes once
// immediately so the catalog is warm before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, spec: %s", s.spec)

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

// RunOnce performs a single catalog refresh. Failures are logged; the
// catalog keeps serving its previous snapshot.
func (s *Scheduler) RunOnce(ctx context.Context) {
	n, err := s.catalog.Refresh(ctx)
	if err != nil {
		log.Printf("[scheduler] Catalog refresh error: %v", err)
		return
	}
	log.Printf("[scheduler] Catalog refreshed: %d published listing(s)", n)
}
