// Package scheduler runs the background jobs of the front-end: sweeping idle
// visitors out of the page store and probing the chat script so the chat
// button knows when it can open.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caremate/caremate-web/interfaces"
	"github.com/caremate/caremate-web/logging"
	"github.com/caremate/caremate-web/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const (
	sweepInterval = time.Minute
	probeTimeout  = 10 * time.Second
)

// Scheduler handles the periodic jobs using dependency injection
type Scheduler struct {
	store         interfaces.PageStore
	widget        interfaces.ChatWidget
	probeInterval time.Duration
	scheduler     *gocron.Scheduler

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(store interfaces.PageStore, widget interfaces.ChatWidget, probeInterval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()

	return &Scheduler{
		store:         store,
		widget:        widget,
		probeInterval: probeInterval,
		scheduler:     s,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start schedules the sweep job and, for widgets that need it, the chat probe.
// gocron runs every job once right away, so an embed widget is probed on start.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(sweepInterval).Do(s.sweep); err != nil {
		logging.Error("Failed to schedule session sweep", "error", err)
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	metrics.SetChatReady(s.widget.Ready())

	if prober, ok := s.widget.(interfaces.ChatProber); ok {
		if _, err := s.scheduler.Every(s.probeInterval).Do(s.probe, prober); err != nil {
			logging.Error("Failed to schedule chat probe", "error", err)
			return fmt.Errorf("failed to schedule chat probe: %w", err)
		}
		logging.Info("Chat probe scheduled", "kind", s.widget.Kind(), "interval", s.probeInterval.String())
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels an in-flight probe
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.scheduler.Stop()
	})
}

// sweep drops idle visitors and publishes the mounted page count
func (s *Scheduler) sweep() {
	removed := s.store.Sweep()
	remaining := s.store.Len()
	metrics.MountedPages.Set(float64(remaining))

	if removed > 0 {
		logging.Debug("Swept idle visitors", "removed", removed, "remaining", remaining)
	}
}

// probe checks the chat script once and publishes readiness
func (s *Scheduler) probe(prober interfaces.ChatProber) {
	ctx, cancel := context.WithTimeout(s.ctx, probeTimeout)
	defer cancel()

	if err := prober.Probe(ctx); err != nil {
		logging.Warn("Chat widget probe failed", "error", err)
	}
	metrics.SetChatReady(s.widget.Ready())
}
