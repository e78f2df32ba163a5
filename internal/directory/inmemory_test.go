package directory

import "testing"

func TestInMemory_OrderAndLookup(t *testing.T) {
	d := NewInMemory(Persona{Name: "Me"},
		Character{ID: "a", DisplayName: "Alice"},
		Character{ID: "b", DisplayName: "Bob"},
	)

	chars := d.Characters()
	if len(chars) != 2 || chars[0].ID != "a" || chars[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", chars)
	}
	if c, ok := d.Character("b"); !ok || c.DisplayName != "Bob" {
		t.Fatalf("lookup failed: %+v %v", c, ok)
	}
	if d.Persona().Name != "Me" {
		t.Fatalf("persona mismatch: %+v", d.Persona())
	}
}

func TestInMemory_UpsertRenameVisibleToLaterReads(t *testing.T) {
	d := NewInMemory(Persona{}, Character{ID: "a", DisplayName: "Alice"})

	d.Upsert(Character{ID: "a", DisplayName: "Alicia"})
	if c, _ := d.Character("a"); c.DisplayName != "Alicia" {
		t.Fatalf("rename not visible: %+v", c)
	}
	if got := len(d.Characters()); got != 1 {
		t.Fatalf("upsert duplicated the character: %d", got)
	}

	d.Upsert(Character{ID: "b", DisplayName: "Bob"})
	if got := d.Characters(); len(got) != 2 || got[1].ID != "b" {
		t.Fatalf("new character not appended: %+v", got)
	}
}

func TestInMemory_Remove(t *testing.T) {
	d := NewInMemory(Persona{},
		Character{ID: "a"}, Character{ID: "b"}, Character{ID: "c"},
	)
	d.Remove("b")

	if _, ok := d.Character("b"); ok {
		t.Fatal("removed character still resolvable")
	}
	got := d.Characters()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected survivors: %+v", got)
	}
	// Removing twice is harmless.
	d.Remove("b")
}
