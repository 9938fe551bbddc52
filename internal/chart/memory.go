package chart

import "sync"

// MemoryRenderer keeps charts in memory so their options can be served to a
// browser that does the actual drawing.
type MemoryRenderer struct {
	mu       sync.Mutex
	created  int
	disposed int
}

func NewMemoryRenderer() *MemoryRenderer {
	return &MemoryRenderer{}
}

func (r *MemoryRenderer) New(key Key) (Handle, error) {
	r.mu.Lock()
	r.created++
	r.mu.Unlock()
	return &MemoryHandle{key: key, renderer: r}, nil
}

// Live returns the number of handles created and not yet disposed.
func (r *MemoryRenderer) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created - r.disposed
}

type MemoryHandle struct {
	mu       sync.Mutex
	key      Key
	renderer *MemoryRenderer
	option   *Option
	disposed bool
}

func (h *MemoryHandle) SetOption(opt Option) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.option = &opt
}

func (h *MemoryHandle) Dispose() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	h.option = nil
	h.mu.Unlock()

	h.renderer.mu.Lock()
	h.renderer.disposed++
	h.renderer.mu.Unlock()
}

// Option returns the last option set and whether one exists.
func (h *MemoryHandle) Option() (Option, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.option == nil {
		return Option{}, false
	}
	return *h.option, true
}

func (h *MemoryHandle) Key() Key {
	return h.key
}
