package interaction

import "sync"

// Key names a modifier key.
type Key string

// Modifier keys.
const (
	KeyShift   Key = "shift"
	KeyControl Key = "control"
	KeyAlt     Key = "alt"
	KeyMeta    Key = "meta"
)

// Modifiers records which modifier keys are currently held.
// It is safe for concurrent use.
type Modifiers struct {
	mu   sync.RWMutex
	held map[Key]bool
}

// NewModifiers returns a state with no keys held.
func NewModifiers() *Modifiers {
	return &Modifiers{held: make(map[Key]bool)}
}

// Press marks k as held.
func (m *Modifiers) Press(k Key) {
	m.mu.Lock()
	m.held[k] = true
	m.mu.Unlock()
}

// Release marks k as released.
func (m *Modifiers) Release(k Key) {
	m.mu.Lock()
	delete(m.held, k)
	m.mu.Unlock()
}

// Held reports whether k is held. A nil receiver holds nothing.
func (m *Modifiers) Held(k Key) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.held[k]
}

// Reset releases all keys, e.g. when the view loses focus.
func (m *Modifiers) Reset() {
	m.mu.Lock()
	clear(m.held)
	m.mu.Unlock()
}
