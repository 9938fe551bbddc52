package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const evictionInterval = time.Minute

type consoleEntry struct {
	console  *Console
	start    sync.Once
	lastUsed time.Time
}

// Consoles keeps one Console per web client. Consoles unused for longer
// than the idle timeout are closed; their persisted sessions stay, so the
// next request for that client restores them.
type Consoles struct {
	newConsole  func(clientID string) *Console
	idleTimeout time.Duration
	clock       clockwork.Clock
	telemetry   Telemetry

	mu      sync.Mutex
	entries map[string]*consoleEntry

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewConsoles(newConsole func(clientID string) *Console, idleTimeout time.Duration, clock clockwork.Clock, telemetry Telemetry) *Consoles {
	if telemetry == nil {
		telemetry = NopTelemetry{}
	}
	c := &Consoles{
		newConsole:  newConsole,
		idleTimeout: idleTimeout,
		clock:       clock,
		telemetry:   telemetry,
		entries:     make(map[string]*consoleEntry),
		stopCh:      make(chan struct{}),
	}

	c.startEvictionTimer()
	return c
}

// Get returns the client's console, creating and starting it on first use.
// Concurrent first requests wait for the same restore.
func (c *Consoles) Get(ctx context.Context, clientID string) *Console {
	c.mu.Lock()
	e, ok := c.entries[clientID]
	if !ok {
		e = &consoleEntry{console: c.newConsole(clientID)}
		c.entries[clientID] = e
		c.telemetry.ConsolesActive(len(c.entries))
	}
	e.lastUsed = c.clock.Now()
	c.mu.Unlock()

	// the restore outlives the request that happened to trigger it
	e.start.Do(func() {
		e.console.Start(context.WithoutCancel(ctx))
	})
	return e.console
}

func (c *Consoles) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// EvictIdle closes consoles idle for longer than the timeout and returns how
// many were removed.
func (c *Consoles) EvictIdle() int {
	now := c.clock.Now()

	c.mu.Lock()
	var idle []*Console
	for id, e := range c.entries {
		if now.Sub(e.lastUsed) > c.idleTimeout {
			idle = append(idle, e.console)
			delete(c.entries, id)
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	for _, console := range idle {
		console.Close()
	}
	if len(idle) > 0 {
		c.telemetry.ConsolesActive(n)
		slog.Info("Evicted idle consoles", "evicted", len(idle), "remaining", n)
	}
	return len(idle)
}

func (c *Consoles) startEvictionTimer() {
	ticker := c.clock.NewTicker(evictionInterval)
	c.wg.Go(func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				c.EvictIdle()
			case <-c.stopCh:
				return
			}
		}
	})
	slog.Info("Console eviction timer started", "interval", evictionInterval.String(), "idle_timeout", c.idleTimeout.String())
}

// Stop ends the eviction timer and closes every console.
func (c *Consoles) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()

	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*consoleEntry)
	c.mu.Unlock()

	for _, e := range entries {
		e.console.Close()
	}
	c.telemetry.ConsolesActive(0)
}
