package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
)

// Memory is the default in-process ledger backend. Contents are lost on
// restart; this is an accepted limitation, not a bug.
type Memory struct {
	mu      sync.Mutex
	entries map[string]models.PendingOrder
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]models.PendingOrder)}
}

// Put registers contact under reference, replacing any existing entry.
func (m *Memory) Put(_ context.Context, reference, contact string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[reference] = models.PendingOrder{Contact: contact, CreatedAt: time.Now()}
	return nil
}

// PopIfPresent atomically removes and returns the contact for reference.
func (m *Memory) PopIfPresent(_ context.Context, reference string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[reference]
	if !ok {
		return "", false, nil
	}
	delete(m.entries, reference)
	return entry.Contact, true, nil
}

// EvictBefore removes entries created before cutoff and returns how many
// were dropped. Used by the expiry sweeper.
func (m *Memory) EvictBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for ref, entry := range m.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(m.entries, ref)
			evicted++
		}
	}
	return evicted, nil
}

// Len returns the number of pending orders.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
