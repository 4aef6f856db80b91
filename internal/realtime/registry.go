package realtime

import (
	"log"
	"sync"
)

// Event kinds pushed to client sessions.
const (
	EventNotification = "notification"
	EventCountUpdate  = "notification_count_update"
)

// Conn is a live client session capable of receiving pushed events.
// Implementations must be safe for concurrent Send calls.
type Conn interface {
	Send(event string, payload interface{}) error
}

// Registry tracks which connections belong to which user. A user may hold
// several connections at once (tabs, devices). Entries never touch durable
// storage and do not survive a restart.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]map[Conn]struct{})}
}

func (r *Registry) Register(userID string, c Conn) {
	if userID == "" || c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[userID] = set
	}
	set[c] = struct{}{}
}

func (r *Registry) Unregister(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

// Connections reports how many live connections a user currently holds.
func (r *Registry) Connections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

// Push delivers event to every connection registered for userID. Zero
// connections is not an error. A send failure on one connection is logged
// and does not block delivery to the others.
func (r *Registry) Push(userID, event string, payload interface{}) {
	r.mu.RLock()
	targets := make([]Conn, 0, len(r.conns[userID]))
	for c := range r.conns[userID] {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(event, payload); err != nil {
			log.Printf("realtime: push %s to user %s failed: %v", event, userID, err)
		}
	}
}
