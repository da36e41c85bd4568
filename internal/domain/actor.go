package domain

import "github.com/google/uuid"

type ActorID string

// Actor is a speakable character. Reserved holds the user currently holding
// the actor, or empty when anyone may claim it.
type Actor struct {
	ID       ActorID
	Name     string
	Img      string
	Color    string
	Reserved UserID
	Known    []string
	Familiar []string
}

// NewActor creates a fresh actor reserved by its creator, speaking the default
// language.
func NewActor(reserved UserID) *Actor {
	return &Actor{
		ID:       ActorID(uuid.NewString()),
		Name:     DefaultName,
		Reserved: reserved,
		Known:    []string{DefaultLanguage},
		Familiar: []string{},
	}
}

func (a *Actor) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	a.Name = name
	return nil
}

// Clone copies the actor under a fresh id, reserved by the cloning user.
func (a Actor) Clone(reserved UserID) Actor {
	c := a
	c.ID = ActorID(uuid.NewString())
	c.Reserved = reserved
	c.Known = append([]string{}, a.Known...)
	c.Familiar = append([]string{}, a.Familiar...)
	return c
}

func (a *Actor) Fields() map[string]any {
	return map[string]any{
		"id":       string(a.ID),
		"name":     a.Name,
		"img":      a.Img,
		"color":    a.Color,
		"reserved": string(a.Reserved),
		"known":    anyStrings(a.Known),
		"familiar": anyStrings(a.Familiar),
	}
}

func ActorFromMap(f map[string]any) Actor {
	return Actor{
		ID:       ActorID(str(f, "id")),
		Name:     str(f, "name"),
		Img:      str(f, "img"),
		Color:    str(f, "color"),
		Reserved: UserID(str(f, "reserved")),
		Known:    strs(f, "known"),
		Familiar: strs(f, "familiar"),
	}
}

// Knows reports whether the actor fully understands the language.
func (a Actor) Knows(language string) bool {
	for _, l := range a.Known {
		if l == language {
			return true
		}
	}
	return false
}

// FamiliarWith reports whether the actor partially understands the language.
func (a Actor) FamiliarWith(language string) bool {
	for _, l := range a.Familiar {
		if l == language {
			return true
		}
	}
	return false
}
