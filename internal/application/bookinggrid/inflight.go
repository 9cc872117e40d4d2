package bookinggrid

import "sync"

// InFlight tracks cells whose toggle has not resolved yet.
// One instance is shared by every controller so duplicate submissions from
// rapid repeated clicks are rejected even when they arrive as separate requests.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewInFlight creates an empty tracker.
func NewInFlight() *InFlight {
	return &InFlight{keys: make(map[string]struct{})}
}

// Acquire marks (userID, date, slot) as in flight.
// It returns false if that cell is already in flight; otherwise the caller must call release.
func (f *InFlight) Acquire(userID, date, slot string) (release func(), ok bool) {
	key := userID + "|" + date + "|" + slot
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return nil, false
	}
	f.keys[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.keys, key)
		f.mu.Unlock()
	}, true
}

