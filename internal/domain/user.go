// Package domain contains the room entities and their field-map conversions
// for the observable state graph. No transport or notification logic here.
package domain

import "errors"

const (
	MaxNameLen  = 36
	DefaultName = "Anonymous"
)

var (
	ErrNameEmpty   = errors.New("name empty")
	ErrNameTooLong = errors.New("name too long")
	ErrIDEmpty     = errors.New("id empty")
	ErrIDTaken     = errors.New("id already taken")
)

type UserID string

// User is one participant of a room. SendingFrom is the actor the user
// currently speaks as; SendingTo are the actors they address.
type User struct {
	ID          UserID
	Name        string
	Active      bool
	SendingFrom ActorID
	SendingTo   []ActorID
}

func NewUser(id UserID) *User {
	return &User{
		ID:        id,
		Name:      DefaultName,
		Active:    true,
		SendingTo: []ActorID{},
	}
}

func (u *User) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	u.Name = name
	return nil
}

func (u *User) Fields() map[string]any {
	return map[string]any{
		"id":          string(u.ID),
		"name":        u.Name,
		"active":      u.Active,
		"sendingFrom": string(u.SendingFrom),
		"sendingTo":   anyStrings(u.SendingTo),
	}
}

func UserFromMap(f map[string]any) User {
	return User{
		ID:          UserID(str(f, "id")),
		Name:        str(f, "name"),
		Active:      boolean(f, "active"),
		SendingFrom: ActorID(str(f, "sendingFrom")),
		SendingTo:   actorIDs(f, "sendingTo"),
	}
}
