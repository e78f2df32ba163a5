// Package directory supplies the current social graph: the user persona and
// the set of AI characters. The engine treats it as a mutable-by-others
// snapshot and re-reads it whenever a scheduled task fires, so renames and
// removals are always honored.
package directory

// Character is an AI-driven identity capable of authoring posts, likes and
// comments. Name is the character's true name fed to the completion prompt;
// DisplayName is what the feed shows (the user's nickname for the character).
type Character struct {
	ID          string
	Name        string
	DisplayName string
	Avatar      string
	Personality string
}

// Persona is the user's own identity within the simulated social graph.
type Persona struct {
	Name        string
	Avatar      string
	Description string
}

// Directory is the injected snapshot provider. Implementations must be safe
// for concurrent use; results are copies that callers may retain.
type Directory interface {
	// Persona returns the current user persona.
	Persona() Persona
	// Characters returns all known characters in a stable order.
	Characters() []Character
	// Character resolves one character by id.
	Character(id string) (Character, bool)
}
