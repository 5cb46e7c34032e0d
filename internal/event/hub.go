package event

import "sync"

// Progress is an upload-progress event delivered to the session that
// started the upload
type Progress struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

// Hub fans upload-progress events out to per-session subscribers.
// Subscriptions are scoped: the returned cancel func removes exactly that
// subscriber, so components subscribing to the same session never
// interfere with each other. Sends never block; a slow subscriber misses
// intermediate events rather than stalling the upload.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[chan Progress]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{sessions: map[string]map[chan Progress]struct{}{}}
}

// Subscribe registers a listener for one upload session. The cancel func
// must be called when the listener goes away.
func (h *Hub) Subscribe(session string) (<-chan Progress, func()) {
	ch := make(chan Progress, 16)

	h.mu.Lock()
	subs, ok := h.sessions[session]
	if !ok {
		subs = map[chan Progress]struct{}{}
		h.sessions[session] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.sessions[session]; ok {
			if _, live := subs[ch]; live {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.sessions, session)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the session
func (h *Hub) Publish(session string, p Progress) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.sessions[session] {
		select {
		case ch <- p:
		default:
		}
	}
}

// Subscribers reports how many listeners a session currently has
func (h *Hub) Subscribers(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[session])
}

// Default is the process-wide hub the upload handlers publish to
var Default = NewHub()
