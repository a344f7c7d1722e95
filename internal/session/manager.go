// Package session tracks live exam sessions and drives their countdown
// clocks. The engine itself has no clock; each registered session gets a
// 1-second ticker goroutine that is cancelled on finish, abandon, or
// shutdown so no timer leaks past the attempt.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/edustack/examsim/internal/exam"
)

type entry struct {
	sess   *exam.Session
	cancel context.CancelFunc
}

type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewManager() *Manager {
	return &Manager{entries: map[string]*entry{}}
}

// Add registers the session and starts its clock. The session stays
// retrievable after it finishes (for snapshots and results) until Remove.
func (m *Manager) Add(s *exam.Session) {
	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.entries[s.ID()] = &entry{sess: s, cancel: cancel}
	m.mu.Unlock()
	go runClock(ctx, s)
}

func (m *Manager) Get(id string) (*exam.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return e.sess, true
}

// Remove drops the session and cancels its clock.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
	}
	m.mu.Unlock()
	if ok {
		e.cancel()
	}
}

// Shutdown cancels every live clock. Sessions are left in place so a final
// snapshot can still be read during teardown.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		e.cancel()
	}
}

func runClock(ctx context.Context, s *exam.Session) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Tick(ctx); err != nil {
				log.Printf("session %s: expiry commit failed: %v", s.ID(), err)
			}
			if s.Finished() {
				return
			}
		}
	}
}
