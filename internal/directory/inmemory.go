package directory

import "sync"

// InMemory is a Directory backed by process memory. The zero value is not
// usable; construct with NewInMemory.
type InMemory struct {
	mu      sync.RWMutex
	persona Persona
	order   []string
	chars   map[string]Character
}

// NewInMemory builds a directory with the given persona and characters.
func NewInMemory(p Persona, chars ...Character) *InMemory {
	d := &InMemory{persona: p, chars: make(map[string]Character, len(chars))}
	for _, c := range chars {
		d.order = append(d.order, c.ID)
		d.chars[c.ID] = c
	}
	return d
}

// Persona implements Directory.
func (d *InMemory) Persona() Persona {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.persona
}

// SetPersona replaces the user persona.
func (d *InMemory) SetPersona(p Persona) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.persona = p
}

// Characters implements Directory, returning characters in insertion order.
func (d *InMemory) Characters() []Character {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Character, 0, len(d.order))
	for _, id := range d.order {
		if c, ok := d.chars[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Character implements Directory.
func (d *InMemory) Character(id string) (Character, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.chars[id]
	return c, ok
}

// Upsert adds a character or replaces an existing one in place.
func (d *InMemory) Upsert(c Character) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.chars[c.ID]; !exists {
		d.order = append(d.order, c.ID)
	}
	d.chars[c.ID] = c
}

// Remove deletes a character. Scheduled tasks that fire afterwards observe the
// removal and become no-ops.
func (d *InMemory) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.chars, id)
	for i, oid := range d.order {
		if oid == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}
