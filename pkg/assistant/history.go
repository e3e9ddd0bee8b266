package assistant

import (
	"context"
	"sync"
)

// MemoryHistory keeps a bounded tail of messages per session in process memory.
type MemoryHistory struct {
	mu      sync.Mutex
	max     int
	entries map[string][]Message
}

func NewMemoryHistory(maxPerSession int) *MemoryHistory {
	if maxPerSession <= 0 {
		maxPerSession = 50
	}
	return &MemoryHistory{max: maxPerSession, entries: make(map[string][]Message)}
}

func (h *MemoryHistory) Recent(_ context.Context, sessionID string, limit int) ([]Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.entries[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (h *MemoryHistory) Append(_ context.Context, sessionID string, msgs ...Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	all := append(h.entries[sessionID], msgs...)
	if len(all) > h.max {
		all = append([]Message(nil), all[len(all)-h.max:]...)
	}
	h.entries[sessionID] = all
	return nil
}

// Forget drops a session's history.
func (h *MemoryHistory) Forget(sessionID string) {
	h.mu.Lock()
	delete(h.entries, sessionID)
	h.mu.Unlock()
}
