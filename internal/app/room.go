// Package app owns the shared room state and the per-request controller
// façade. All mutations go through the observable graph so every state change
// is observed and batched.
package app

import (
	"sync"

	"github.com/samber/lo"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/events"
	"github.com/dkeye/Parley/internal/observe"
)

// Room holds one room's observable state graph. The mutex is held in write
// mode for the whole unit of work (Begin to End), so a batch only ever sees
// its own mutations; snapshot reads take the read lock and may run during
// delivery.
type Room struct {
	mu    sync.RWMutex
	state *observe.Object
	batch *events.Batch
}

func newRoom(st domain.RoomState) *Room {
	r := &Room{}
	r.state = observe.Bind(st.Fields(), r.tree(), nil).(*observe.Object)
	return r
}

func (r *Room) list(prop string) *observe.List {
	l, _ := r.state.Get(prop).(*observe.List)
	return l
}

func (r *Room) settings() *observe.Object {
	o, _ := r.state.Get("settings").(*observe.Object)
	return o
}

func (r *Room) enqueueBroadcast(tag events.Tag) {
	if r.batch != nil {
		r.batch.AddBroadcast(tag)
	}
}

func (r *Room) enqueueTargeted(uid string, tag events.Tag) {
	if r.batch != nil {
		r.batch.AddTargeted(uid, tag)
	}
}

// Locked reads. Used by views inside a unit of work, and wrapped with the read
// lock below for delivery-time snapshots.

func (r *Room) idLocked() string {
	id, _ := r.state.Get("id").(string)
	return id
}

func (r *Room) stateLocked() domain.RoomState {
	title, _ := r.state.Get("title").(string)
	host, _ := r.state.Get("hostId").(string)
	return domain.RoomState{
		ID:       domain.RoomID(r.idLocked()),
		Title:    title,
		HostID:   domain.UserID(host),
		Users:    r.usersLocked(),
		Actors:   r.actorsLocked(),
		Messages: r.messagesLocked(),
		Settings: domain.SettingsFromMap(r.settings().Snapshot()),
	}
}

func (r *Room) usersLocked() []domain.User {
	return lo.Map(r.list("users").Items(), func(it any, _ int) domain.User {
		return domain.UserFromMap(it.(*observe.Object).Snapshot())
	})
}

func (r *Room) actorsLocked() []domain.Actor {
	return lo.Map(r.list("actors").Items(), func(it any, _ int) domain.Actor {
		return domain.ActorFromMap(it.(*observe.Object).Snapshot())
	})
}

func (r *Room) messagesLocked() []domain.Message {
	return lo.Map(r.list("messages").Items(), func(it any, _ int) domain.Message {
		return domain.MessageFromMap(it.(*observe.Object).Snapshot())
	})
}

func (r *Room) userLocked(uid string) (domain.User, bool) {
	it, ok := r.list("users").Find(byID(uid))
	if !ok {
		return domain.User{}, false
	}
	return domain.UserFromMap(it.(*observe.Object).Snapshot()), true
}

func (r *Room) actorLocked(id string) (domain.Actor, bool) {
	it, ok := r.list("actors").Find(byID(id))
	if !ok {
		return domain.Actor{}, false
	}
	return domain.ActorFromMap(it.(*observe.Object).Snapshot()), true
}

// Snapshot reads for materializers and handlers outside a unit of work.

func (r *Room) ID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.idLocked()
}

func (r *Room) Title() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	title, _ := r.state.Get("title").(string)
	return title
}

func (r *Room) HostID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	host, _ := r.state.Get("hostId").(string)
	return host
}

func (r *Room) State() domain.RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stateLocked()
}

func (r *Room) Users() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usersLocked()
}

func (r *Room) Actors() []domain.Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actorsLocked()
}

func (r *Room) Messages() []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.messagesLocked()
}

func (r *Room) Settings() domain.Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.SettingsFromMap(r.settings().Snapshot())
}

func (r *Room) User(uid string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userLocked(uid)
}

func (r *Room) Actor(id string) (domain.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actorLocked(id)
}

func byID(id string) func(item any) bool {
	return func(item any) bool {
		o, ok := item.(*observe.Object)
		if !ok {
			return false
		}
		v, _ := o.Get("id").(string)
		return v == id
	}
}
