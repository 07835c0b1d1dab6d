package progress

import "sync"

// Tracker maps logical field names ("artwork", "audio", "track-2", ...) to
// upload percentages for one submission form. Percentages are clamped to
// [0,100] and never regress; reaching 100 seals the key so late callbacks
// from a settled transfer are dropped.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	pct    int
	sealed bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]entry)}
}

// Set records pct for key. Values below the current one and updates to sealed
// keys are ignored; 100 is terminal.
func (t *Tracker) Set(key string, pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	current := t.entries[key]
	if current.sealed || pct < current.pct {
		return
	}
	t.entries[key] = entry{pct: pct, sealed: pct == 100}
}

// Get returns the recorded percentage for key (0 when never set).
func (t *Tracker) Get(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[key].pct
}

// Seal marks key terminal without requiring 100, for transfers that failed.
func (t *Tracker) Seal(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	current := t.entries[key]
	current.sealed = true
	t.entries[key] = current
}

// Reset forgets key entirely.
func (t *Tracker) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// ResetAll forgets every key; used when a form closes or a draft resets.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]entry)
}

// Active reports whether any tracked transfer is in the open interval (0,100).
// Forms use this to gate their submit button.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if !e.sealed && e.pct > 0 && e.pct < 100 {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of all current percentages.
func (t *Tracker) Snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.entries))
	for key, e := range t.entries {
		out[key] = e.pct
	}
	return out
}

// Func returns a callback that feeds key; handed to the asset encoder as the
// per-field progress hook.
func (t *Tracker) Func(key string) func(int) {
	return func(pct int) { t.Set(key, pct) }
}
