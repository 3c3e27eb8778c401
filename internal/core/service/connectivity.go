package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/ports"
	"github.com/hirehub/jobboard/internal/pkg/metrics"
)

const (
	defaultProbeInterval = 15 * time.Second
	probeTimeout         = 3 * time.Second
)

// ConnectivityMonitor owns the process-wide online flag. It is the only
// writer of the flag and of the store's network mode.
type ConnectivityMonitor struct {
	online   atomic.Bool
	probe    ports.ConnectivityProbe
	network  ports.NetworkSwitch
	interval time.Duration
	log      zerolog.Logger

	mu          sync.Mutex
	subscribers map[int]func(online bool)
	nextID      int
}

// NewConnectivityMonitor returns a monitor that starts online. Call Init
// before handing it to anything that reads the flag.
func NewConnectivityMonitor(probe ports.ConnectivityProbe, network ports.NetworkSwitch, interval time.Duration, log zerolog.Logger) *ConnectivityMonitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	m := &ConnectivityMonitor{
		probe:       probe,
		network:     network,
		interval:    interval,
		log:         log,
		subscribers: make(map[int]func(bool)),
	}
	m.online.Store(true)
	metrics.ConnectivityOnline.Set(1)
	return m
}

// IsOnline reports the current flag.
func (m *ConnectivityMonitor) IsOnline() bool {
	return m.online.Load()
}

// Init sets the initial state from one probe.
func (m *ConnectivityMonitor) Init(ctx context.Context) {
	m.check(ctx)
}

// Run probes periodically until ctx is cancelled.
func (m *ConnectivityMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *ConnectivityMonitor) check(ctx context.Context) {
	if m.probe == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	err := m.probe.Ping(pctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		m.log.Debug().Err(err).Msg("connectivity probe failed")
	}
	m.SetOnline(ctx, err == nil)
}

// SetOnline records a connectivity signal. On a transition it toggles the
// store's network layer and notifies subscribers.
func (m *ConnectivityMonitor) SetOnline(ctx context.Context, online bool) {
	if m.online.Swap(online) == online {
		return
	}

	if online {
		metrics.ConnectivityOnline.Set(1)
		m.log.Info().Msg("connection restored, enabling network")
		if m.network != nil {
			if err := m.network.EnableNetwork(ctx); err != nil {
				m.log.Warn().Err(err).Msg("failed to enable network")
			}
		}
	} else {
		metrics.ConnectivityOnline.Set(0)
		m.log.Warn().Msg("connection lost, disabling network")
		if m.network != nil {
			if err := m.network.DisableNetwork(ctx); err != nil {
				m.log.Warn().Err(err).Msg("failed to disable network")
			}
		}
	}

	m.mu.Lock()
	subs := make([]func(bool), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers fn for transitions and returns its cancel function.
func (m *ConnectivityMonitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}
