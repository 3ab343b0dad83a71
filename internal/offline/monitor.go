package offline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rahulmenon/billstack-backend/pkg/config"
	"github.com/rahulmenon/billstack-backend/pkg/db"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
	"github.com/rahulmenon/billstack-backend/pkg/metrics"
)

// State describes the monitor's view of ledger store reachability.
type State string

const (
	// StateUnknown holds until the first probe completes.
	StateUnknown State = "unknown"
	// StateConnected means the last probe reached the store.
	StateConnected State = "connected"
	// StateDisconnected means the last probe failed.
	StateDisconnected State = "disconnected"
)

// Monitor probes the ledger store on an interval and notifies subscribers on
// state transitions. Repeated probes with the same result stay silent, so a
// manual check while already connected never triggers a duplicate replay.
type Monitor struct {
	pinger       db.Pinger
	interval     time.Duration
	probeTimeout time.Duration
	logg         *logger.Logger
	met          *metrics.LedgerMetrics

	mu    sync.Mutex
	state State
	subs  []func(State)

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMonitor builds a monitor over the provided pinger.
func NewMonitor(pinger db.Pinger, cfg config.SyncConfig, logg *logger.Logger, met *metrics.LedgerMetrics) (*Monitor, error) {
	if pinger == nil {
		return nil, fmt.Errorf("pinger required")
	}
	interval := cfg.RecheckInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 3 * time.Second
	}

	return &Monitor{
		pinger:       pinger,
		interval:     interval,
		probeTimeout: probeTimeout,
		logg:         logg,
		met:          met,
		state:        StateUnknown,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}, nil
}

// Subscribe registers a callback invoked on every state transition. Must be
// called before Start.
func (m *Monitor) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// State returns the current reachability state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start launches the periodic probe loop.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		defer close(m.done)

		m.CheckNow(ctx)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.CheckNow(ctx)
			}
		}
	}()
}

// Stop terminates the probe loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}

// CheckNow probes the store once and returns the resulting state. Transitions
// notify subscribers; an unchanged result does not.
func (m *Monitor) CheckNow(ctx context.Context) State {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	next := StateConnected
	if err := m.pinger.Ping(probeCtx); err != nil {
		next = StateDisconnected
	}

	m.mu.Lock()
	changed := m.state != next
	m.state = next
	subs := m.subs
	m.mu.Unlock()

	m.met.SetConnected(next == StateConnected)
	if !changed {
		return next
	}

	if m.logg != nil {
		m.logg.Info(m.logg.WithField(ctx, "state", string(next)), "store connectivity changed")
	}
	for _, fn := range subs {
		fn(next)
	}
	return next
}
