// Package stats keeps the dashboard in sync with the backend's /stats route.
package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"helmetkiosk/internal/dto"
	"helmetkiosk/internal/logger"
	"helmetkiosk/internal/submission"
	"helmetkiosk/internal/task"
	"helmetkiosk/internal/timeutil"
)

// StatsEndpoint is the backend route returning violations and user scores.
const StatsEndpoint = "/stats"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Fetcher issues GET requests against the backend.
type Fetcher interface {
	Get(ctx context.Context, endpoint string) (*submission.Response, error)
}

// Listener receives every new snapshot.
type Listener func(snapshot dto.StatsSnapshot)

// Poller fetches /stats on a fixed interval, independent of the camera, and
// replaces the displayed snapshot in full on each success. A failed tick
// leaves the previous snapshot in place.
type Poller struct {
	mu       sync.RWMutex
	current  dto.StatsSnapshot
	loaded   bool
	fetcher  Fetcher
	interval time.Duration
	clock    timeutil.Clock
	onUpdate Listener
	logger   *logger.Logger
}

// NewPoller creates a Poller. onUpdate may be nil.
func NewPoller(fetcher Fetcher, interval time.Duration, clock timeutil.Clock, onUpdate Listener, logger *logger.Logger) *Poller {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		clock:    clock,
		onUpdate: onUpdate,
		logger:   logger,
	}
}

// Run polls until ctx is done. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Stats poller started (every %s)", p.interval)

	repeater := &task.Repeater{
		Interval: p.interval,
		Mode:     task.FixedRate,
		Clock:    p.clock,
		Fn: func(ctx context.Context, started func()) {
			started()
			if err := p.Poll(ctx); err != nil {
				p.logger.Warning("Stats poll failed: %v", err)
			}
		},
	}
	repeater.Run(ctx, task.NewToken())

	p.logger.Info("Stats poller stopped")
}

// Poll performs one fetch and, on success, replaces the snapshot.
func (p *Poller) Poll(ctx context.Context) error {
	resp, err := p.fetcher.Get(ctx, StatsEndpoint)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("stats endpoint answered %d", resp.StatusCode)
	}

	var snapshot dto.StatsSnapshot
	if err := json.Unmarshal(resp.Body, &snapshot); err != nil {
		return fmt.Errorf("failed to decode stats: %w", err)
	}
	if snapshot.Violations < 0 {
		return fmt.Errorf("invalid violation count %d", snapshot.Violations)
	}
	if snapshot.Users == nil {
		snapshot.Users = []dto.UserRecord{}
	}

	p.mu.Lock()
	p.current = snapshot
	p.loaded = true
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
	return nil
}

// Snapshot returns a copy of the current snapshot and whether any poll has
// succeeded yet.
func (p *Poller) Snapshot() (dto.StatsSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]dto.UserRecord, len(p.current.Users))
	copy(users, p.current.Users)
	return dto.StatsSnapshot{Violations: p.current.Violations, Users: users}, p.loaded
}

// Dashboard renders the current snapshot. Before the first successful poll
// it is empty and not loaded.
func (p *Poller) Dashboard() dto.Dashboard {
	snapshot, loaded := p.Snapshot()
	if !loaded {
		return dto.Dashboard{Lines: []string{}}
	}
	return snapshot.Render()
}
