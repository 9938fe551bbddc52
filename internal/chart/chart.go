package chart

import (
	"fmt"
	"sync"

	"github.com/pscheid92/chargewatch/internal/domain"
)

type Key string

const (
	Daily   Key = "daily"
	Power   Key = "power"
	Weekly  Key = "weekly"
	Monthly Key = "monthly"
)

// Keys lists every chart in render order.
var Keys = []Key{Daily, Power, Weekly, Monthly}

// Handle is one drawn chart.
type Handle interface {
	SetOption(opt Option)
	Dispose()
}

// Renderer creates chart handles.
type Renderer interface {
	New(key Key) (Handle, error)
}

// Set holds the four chart handles of one dashboard. The zero value is not
// usable; call NewSet.
type Set struct {
	mu      sync.Mutex
	handles map[Key]Handle
	options map[Key]Option
}

func NewSet() *Set {
	return &Set{
		handles: make(map[Key]Handle, len(Keys)),
		options: make(map[Key]Option, len(Keys)),
	}
}

// Ensure creates the handles that do not exist yet. Handles created before a
// failing key are kept.
func (s *Set) Ensure(r Renderer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range Keys {
		if s.handles[key] != nil {
			continue
		}
		h, err := r.New(key)
		if err != nil {
			return fmt.Errorf("create %s chart: %w", key, err)
		}
		s.handles[key] = h
	}
	return nil
}

// Render pushes fresh options built from snap to every existing handle.
// Keys without a handle are skipped.
func (s *Set) Render(snap domain.Snapshot) {
	opts := Build(snap)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range Keys {
		h := s.handles[key]
		if h == nil {
			continue
		}
		h.SetOption(opts[key])
		s.options[key] = opts[key]
	}
}

// Dispose releases every handle and forgets the rendered options.
func (s *Set) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, h := range s.handles {
		if h != nil {
			h.Dispose()
		}
		delete(s.handles, key)
	}
	clear(s.options)
}

// Active reports whether any handle is live.
func (s *Set) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles) > 0
}

// Options returns a copy of the last rendered options.
func (s *Set) Options() map[Key]Option {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[Key]Option, len(s.options))
	for k, v := range s.options {
		out[k] = v
	}
	return out
}
