package relay

import (
	"chat-relay/contract"
	"context"
	"log/slog"
	"time"
)

// LivenessMonitor sweeps all registered connections on a fixed interval.
// A connection that did not respond to the previous probe is evicted
// through the close path; the rest get their flag lowered and a fresh
// probe. Half-open transports are therefore detected within two intervals.
// A connection that joins between sweeps is not probed until the next full
// interval: it is freshly alive by construction.
type LivenessMonitor struct {
	log      *slog.Logger
	registry contract.IRegistry
	interval time.Duration
	evict    func(contract.Conn)
}

func NewLivenessMonitor(log *slog.Logger, registry contract.IRegistry,
	interval time.Duration, evict func(contract.Conn)) *LivenessMonitor {
	return &LivenessMonitor{log: log, registry: registry, interval: interval, evict: evict}
}

func (m *LivenessMonitor) Run(ctx context.Context) error {
	m.log.Info("Starting liveness monitor", "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.SweepOnce()
		}
	}
}

// SweepOnce runs a single liveness cycle.
func (m *LivenessMonitor) SweepOnce() {
	stale, probe := m.registry.Sweep()
	for _, c := range stale {
		m.log.Info("Evicting stale connection", "conn", c.ID())
		m.evict(c)
	}
	for _, c := range probe {
		if err := c.Ping(); err != nil {
			// Flag stays down; the peer is reaped on the next cycle.
			m.log.Debug("Probe send failed", "conn", c.ID(), "err", err)
		}
	}
}
