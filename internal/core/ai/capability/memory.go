package capability

// Memory accumulates perceived agents by identity. A newer snapshot replaces
// the older one in place, so iteration keeps first-seen order.
type Memory struct {
	order []string
	byID  map[string]PerceivedAgent
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]PerceivedAgent)}
}

// Observe records every snapshot, overwriting earlier ones with the same ID.
func (m *Memory) Observe(seen ...PerceivedAgent) {
	for _, p := range seen {
		if _, ok := m.byID[p.ID]; !ok {
			m.order = append(m.order, p.ID)
		}
		m.byID[p.ID] = p
	}
}

func (m *Memory) Get(id string) (PerceivedAgent, bool) {
	p, ok := m.byID[id]
	return p, ok
}

// Forget drops every snapshot last seen before frame.
func (m *Memory) Forget(before uint64) {
	kept := m.order[:0]
	for _, id := range m.order {
		if m.byID[id].SeenAt < before {
			delete(m.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

// All returns the remembered snapshots in first-seen order.
func (m *Memory) All() []PerceivedAgent {
	out := make([]PerceivedAgent, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

func (m *Memory) Len() int { return len(m.order) }

func (m *Memory) Clear() {
	m.order = m.order[:0]
	clear(m.byID)
}
