package npc

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

var ErrDuplicateAgent = errors.New("npc: agent already managed")

// Manager holds the controllers of a match and updates them in agent ID
// order so runs are reproducible.
type Manager struct {
	mu          sync.RWMutex
	controllers map[string]*Controller
	order       []string
}

func NewManager() *Manager {
	return &Manager{controllers: make(map[string]*Controller)}
}

func (m *Manager) Add(c *Controller) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := c.ID()
	if _, exists := m.controllers[id]; exists {
		return errors.Wrapf(ErrDuplicateAgent, "%q", id)
	}
	m.controllers[id] = c
	i := sort.SearchStrings(m.order, id)
	m.order = append(m.order, "")
	copy(m.order[i+1:], m.order[i:])
	m.order[i] = id
	return nil
}

// Remove closes and drops the controller. It reports whether id was managed.
func (m *Manager) Remove(id string) (bool, error) {
	m.mu.Lock()
	c, exists := m.controllers[id]
	if exists {
		delete(m.controllers, id)
		i := sort.SearchStrings(m.order, id)
		m.order = append(m.order[:i], m.order[i+1:]...)
	}
	m.mu.Unlock()
	if !exists {
		return false, nil
	}
	return true, c.Close()
}

func (m *Manager) Get(id string) (*Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.controllers[id]
	return c, ok
}

// IDs returns managed agent IDs in update order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// UpdateAll updates every controller once, in ID order.
func (m *Manager) UpdateAll() {
	for _, c := range m.snapshot() {
		c.Update()
	}
}

// Close closes every controller and empties the manager.
func (m *Manager) Close() error {
	controllers := m.snapshot()
	m.mu.Lock()
	m.controllers = make(map[string]*Controller)
	m.order = nil
	m.mu.Unlock()

	var all error
	for _, c := range controllers {
		if err := c.Close(); err != nil {
			all = errors.CombineErrors(all, errors.Wrapf(err, "close %q", c.ID()))
		}
	}
	return all
}

func (m *Manager) snapshot() []*Controller {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Controller, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.controllers[id])
	}
	return out
}
