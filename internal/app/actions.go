package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/observe"
)

var (
	ErrNoSpeaker     = errors.New("user has no sending actor")
	ErrActorNotFound = errors.New("actor not found")
	ErrUserNotFound  = errors.New("user not found")
)

// EnsureUser returns the acting subscriber's user record, creating it on
// first join and marking it active on every join.
func (v *RoomView) EnsureUser() domain.User {
	if _, ok := v.User(v.uid); ok {
		v.Update("users", v.uid, map[string]any{"active": true})
		u, _ := v.User(v.uid)
		return u
	}
	u := domain.NewUser(domain.UserID(v.uid))
	v.Push("users", u.Fields())
	log.Info().Str("module", "app.room").Str("room", v.RoomID()).Str("user", v.uid).Msg("user joined")
	return *u
}

// SetActive flips the user's presence flag.
func (v *RoomView) SetActive(active bool) bool {
	return v.Update("users", v.uid, map[string]any{"active": active})
}

// SetUserName renames the acting user.
func (v *RoomView) SetUserName(name string) error {
	u, ok := v.User(v.uid)
	if !ok {
		return ErrUserNotFound
	}
	if err := u.SetName(name); err != nil {
		return err
	}
	v.Update("users", v.uid, map[string]any{"name": u.Name})
	return nil
}

// CreateActor adds a fresh actor reserved by the acting user. A user with no
// sending actor adopts the new one.
func (v *RoomView) CreateActor() domain.Actor {
	a := domain.NewActor(domain.UserID(v.uid))
	v.Push("actors", a.Fields())
	v.adoptSendingFrom(a.ID)
	log.Info().Str("module", "app.room").Str("room", v.RoomID()).Str("actor", string(a.ID)).Msg("actor created")
	return *a
}

// CloneActor copies an existing actor under a fresh id, reserved by the
// acting user.
func (v *RoomView) CloneActor(actorID string) (domain.Actor, error) {
	src, ok := v.Actor(actorID)
	if !ok {
		return domain.Actor{}, ErrActorNotFound
	}
	clone := src.Clone(domain.UserID(v.uid))
	v.Push("actors", clone.Fields())
	v.adoptSendingFrom(clone.ID)
	return clone, nil
}

func (v *RoomView) adoptSendingFrom(id domain.ActorID) {
	u, ok := v.User(v.uid)
	if ok && u.SendingFrom == "" {
		v.Update("users", v.uid, map[string]any{"sendingFrom": string(id)})
	}
}

// ReceiveMessage appends a chat line spoken by the acting user's current
// actor, addressed to the actors the user is sending to.
func (v *RoomView) ReceiveMessage(body, language string) (domain.Message, error) {
	u, ok := v.User(v.uid)
	if !ok {
		return domain.Message{}, ErrUserNotFound
	}
	if u.SendingFrom == "" {
		return domain.Message{}, ErrNoSpeaker
	}
	msg := domain.NewMessage(u.ID, u.SendingFrom, body, language, u.SendingTo)
	if err := msg.Validate(); err != nil {
		return domain.Message{}, err
	}
	v.Push("messages", msg.Fields())
	return *msg, nil
}

// SetSendingFrom switches which actor the acting user speaks as.
func (v *RoomView) SetSendingFrom(actorID string) error {
	if _, ok := v.Actor(actorID); !ok {
		return ErrActorNotFound
	}
	v.Update("users", v.uid, map[string]any{"sendingFrom": actorID})
	return nil
}

// SetSendingTo retargets the acting user. With extend the actor is toggled in
// the current target set; without it the set collapses to just that actor.
func (v *RoomView) SetSendingTo(actorID string, extend bool) error {
	if _, ok := v.Actor(actorID); !ok {
		return ErrActorNotFound
	}
	target, ok := v.userList(v.uid, "sendingTo")
	if !ok {
		return ErrUserNotFound
	}
	if extend {
		target.Toggle(actorID)
		return nil
	}
	target.SetAll([]any{actorID})
	return nil
}

// ToggleReserve reserves a free actor for the acting user or releases a held
// one. Releasing the actor the user speaks as also clears their speaker.
func (v *RoomView) ToggleReserve(actorID string) error {
	a, ok := v.Actor(actorID)
	if !ok {
		return ErrActorNotFound
	}
	reserved := ""
	if a.Reserved == "" {
		reserved = v.uid
	}
	v.Update("actors", actorID, map[string]any{"reserved": reserved})

	if u, ok := v.User(v.uid); ok && reserved == "" && string(u.SendingFrom) == actorID {
		v.Update("users", v.uid, map[string]any{"sendingFrom": ""})
	}
	return nil
}

// RenameActor changes an actor's id, refusing ids already in use. The sync
// tree cascades the rename through messages and user targets.
func (v *RoomView) RenameActor(actorID, newID string) error {
	if newID == "" {
		return domain.ErrIDEmpty
	}
	if _, ok := v.Actor(actorID); !ok {
		return ErrActorNotFound
	}
	if newID != actorID {
		if _, taken := v.Actor(newID); taken {
			return domain.ErrIDTaken
		}
	}
	v.Update("actors", actorID, map[string]any{"id": newID})
	return nil
}

// SetActorName renames an actor's display name.
func (v *RoomView) SetActorName(actorID, name string) error {
	a, ok := v.Actor(actorID)
	if !ok {
		return ErrActorNotFound
	}
	if err := a.SetName(name); err != nil {
		return err
	}
	v.Update("actors", actorID, map[string]any{"name": a.Name})
	return nil
}

// SetActorColor sets an actor's chat color.
func (v *RoomView) SetActorColor(actorID, color string) error {
	if !v.Update("actors", actorID, map[string]any{"color": color}) {
		return ErrActorNotFound
	}
	return nil
}

// SetActorImg sets an actor's portrait reference.
func (v *RoomView) SetActorImg(actorID, img string) error {
	if !v.Update("actors", actorID, map[string]any{"img": img}) {
		return ErrActorNotFound
	}
	return nil
}

// AddKnownLanguage teaches the actor a language fully; a familiar entry for
// the same language is promoted away.
func (v *RoomView) AddKnownLanguage(actorID, language string) error {
	known, ok := v.actorList(actorID, "known")
	if !ok {
		return ErrActorNotFound
	}
	if !contains(known, language) {
		known.Append(language)
	}
	if familiar, ok := v.actorList(actorID, "familiar"); ok {
		familiar.Delete(language)
	}
	return nil
}

// RemoveKnownLanguage unteaches a known language. Absent languages are a
// silent no-op.
func (v *RoomView) RemoveKnownLanguage(actorID, language string) error {
	known, ok := v.actorList(actorID, "known")
	if !ok {
		return ErrActorNotFound
	}
	known.Delete(language)
	return nil
}

// AddFamiliarLanguage marks a language as partially understood.
func (v *RoomView) AddFamiliarLanguage(actorID, language string) error {
	familiar, ok := v.actorList(actorID, "familiar")
	if !ok {
		return ErrActorNotFound
	}
	if !contains(familiar, language) {
		familiar.Append(language)
	}
	return nil
}

// RemoveFamiliarLanguage drops a partial language.
func (v *RoomView) RemoveFamiliarLanguage(actorID, language string) error {
	familiar, ok := v.actorList(actorID, "familiar")
	if !ok {
		return ErrActorNotFound
	}
	familiar.Delete(language)
	return nil
}

// SetTitle renames the room's display title.
func (v *RoomView) SetTitle(title string) bool {
	return v.Set("title", title)
}

// RenameRoom re-keys the room under a new id, refusing taken ids, then writes
// the id into the state graph so subscribers learn about it.
func (v *RoomView) RenameRoom(newID string) error {
	oldID := v.RoomID()
	if newID == oldID {
		return nil
	}
	if err := v.mgr.reserveID(oldID, newID); err != nil {
		return err
	}
	v.Set("id", newID)
	return nil
}

func (v *RoomView) actorList(actorID, field string) (*observe.List, bool) {
	return elementList(v.room.list("actors"), actorID, field)
}

func (v *RoomView) userList(uid, field string) (*observe.List, bool) {
	return elementList(v.room.list("users"), uid, field)
}

func elementList(l *observe.List, id, field string) (*observe.List, bool) {
	if l == nil {
		return nil, false
	}
	it, ok := l.Find(byID(id))
	if !ok {
		return nil, false
	}
	target, ok := it.(*observe.Object).Get(field).(*observe.List)
	return target, ok
}

func contains(l *observe.List, value string) bool {
	return l.IndexFunc(func(item any) bool {
		s, ok := item.(string)
		return ok && s == value
	}) >= 0
}
