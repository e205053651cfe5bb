package engine

import (
	"sync"
	"time"
)

// DefaultResultTTL bounds how long an unclaimed result stays readable.
const DefaultResultTTL = 5 * time.Minute

// Results hands finalized text back to callers, keyed by a
// caller-supplied identifier so concurrent callers never collide.
// Entries expire after a TTL instead of accumulating; this replaces
// ambient global state with an explicit create/read/expire lifecycle.
type Results struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]resultEntry
	now func() time.Time
}

type resultEntry struct {
	text    string
	created time.Time
}

// NewResults creates a registry; ttl <= 0 selects DefaultResultTTL.
func NewResults(ttl time.Duration) *Results {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &Results{
		ttl: ttl,
		m:   make(map[string]resultEntry),
		now: time.Now,
	}
}

// Put stores the finalized text for a caller, replacing any unclaimed
// previous result under the same id.
func (r *Results) Put(callerID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	r.m[callerID] = resultEntry{text: text, created: r.now()}
}

// Take reads and removes the result for a caller.
func (r *Results) Take(callerID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	e, ok := r.m[callerID]
	if !ok {
		return "", false
	}
	delete(r.m, callerID)
	return e.text, true
}

func (r *Results) expireLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, e := range r.m {
		if e.created.Before(cutoff) {
			delete(r.m, id)
		}
	}
}
