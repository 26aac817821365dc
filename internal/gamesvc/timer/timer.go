package timer

import (
	"sync"
	"time"
)

// Manager owns at most one pending countdown per room. Starting a room's
// timer replaces any pending one, and Cancel invalidates it; a timer that
// was replaced or cancelled never delivers its callback, even if it had
// already fired into the runtime queue. Callbacks run on their own
// goroutine.
type Manager struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewManager() *Manager {
	return &Manager{timers: make(map[string]*time.Timer)}
}

// Start arms the countdown for a room, replacing any pending one.
func (m *Manager) Start(code string, d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.timers[code]; ok {
		old.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		m.mu.Lock()
		current := m.timers[code] == t
		if current {
			delete(m.timers, code)
		}
		m.mu.Unlock()

		// A stale fire lost the race against Start/Cancel; drop it.
		if current {
			fn()
		}
	})
	m.timers[code] = t
}

// Cancel releases a room's pending countdown, if any.
func (m *Manager) Cancel(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.timers[code]; ok {
		t.Stop()
		delete(m.timers, code)
	}
}
