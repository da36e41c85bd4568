package app

import (
	"sort"

	"github.com/samber/lo"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/events"
	"github.com/dkeye/Parley/internal/observe"
)

// RoomView is the controller façade for one unit of work: one room, one
// acting subscriber. It is created by Manager.Begin, must not outlive the
// request that created it, and must finish with exactly one End or Discard.
// Who is acting is carried here, never stored on the room.
type RoomView struct {
	room *Room
	mgr  *Manager
	uid  string
	done bool
}

func (v *RoomView) UID() string    { return v.uid }
func (v *RoomView) RoomID() string { return v.room.idLocked() }

// End flushes the batch and releases the room. Flush happens after unlock so
// delivery-time snapshots can take the read lock; by then the batch is
// detached and cannot pick up another request's mutations.
func (v *RoomView) End() {
	if v.done {
		return
	}
	v.done = true
	batch := v.room.batch
	roomID := v.room.idLocked()
	v.room.batch = nil
	v.room.mu.Unlock()
	batch.Flush(v.mgr.deliver, roomID)
}

// Discard drops the pending batch and releases the room. Mutations already
// applied remain; they surface on the next full sync.
func (v *RoomView) Discard() {
	if v.done {
		return
	}
	v.done = true
	v.room.batch = nil
	v.room.mu.Unlock()
}

// Set writes a scalar room field. Equal values are a silent no-op.
func (v *RoomView) Set(prop string, value any) bool {
	return v.room.state.Set(prop, value)
}

// UpdateSettings patches the settings record field by field, with the same
// scalar/collection handling as Update.
func (v *RoomView) UpdateSettings(patch map[string]any) {
	patchObject(v.room.settings(), patch)
}

// Push appends records to a collection. An unknown collection is a silent
// no-op.
func (v *RoomView) Push(prop string, items ...map[string]any) {
	l := v.room.list(prop)
	if l == nil {
		return
	}
	l.Append(lo.ToAnySlice(items)...)
}

// Remove deletes the first record matching pred. Removing nothing is a silent
// no-op.
func (v *RoomView) Remove(prop string, pred func(map[string]any) bool) bool {
	l := v.room.list(prop)
	if l == nil {
		return false
	}
	return l.DeleteFunc(func(item any) bool {
		o, ok := item.(*observe.Object)
		return ok && pred(o.Snapshot())
	})
}

// Find returns a snapshot of the record with the given id.
func (v *RoomView) Find(prop, id string) (map[string]any, bool) {
	l := v.room.list(prop)
	if l == nil {
		return nil, false
	}
	it, ok := l.Find(byID(id))
	if !ok {
		return nil, false
	}
	return it.(*observe.Object).Snapshot(), true
}

// Update patches the record with the given id field by field. Reports false
// when no record matches.
func (v *RoomView) Update(prop, id string, patch map[string]any) bool {
	l := v.room.list(prop)
	if l == nil {
		return false
	}
	it, ok := l.Find(byID(id))
	if !ok {
		return false
	}
	patchObject(it.(*observe.Object), patch)
	return true
}

// patchObject applies patch in key order. Scalar fields go through Set (equal
// values are no-ops); collection-valued fields are replaced wholesale.
func patchObject(obj *observe.Object, patch map[string]any) {
	keys := lo.Keys(patch)
	sort.Strings(keys)
	for _, key := range keys {
		if target, ok := obj.Get(key).(*observe.List); ok {
			target.SetAll(toAnyValues(patch[key]))
			continue
		}
		obj.Set(key, patch[key])
	}
}

// State snapshots the whole room within the unit of work.
func (v *RoomView) State() domain.RoomState { return v.room.stateLocked() }

func (v *RoomView) Users() []domain.User       { return v.room.usersLocked() }
func (v *RoomView) Actors() []domain.Actor     { return v.room.actorsLocked() }
func (v *RoomView) Messages() []domain.Message { return v.room.messagesLocked() }

func (v *RoomView) User(uid string) (domain.User, bool)  { return v.room.userLocked(uid) }
func (v *RoomView) Actor(id string) (domain.Actor, bool) { return v.room.actorLocked(id) }

// Broadcast queues tag for every subscriber; delivered on End.
func (v *RoomView) Broadcast(tag events.Tag) {
	v.room.enqueueBroadcast(tag)
}

// SendTo queues tag for one subscriber; delivered on End.
func (v *RoomView) SendTo(subscriberID string, tag events.Tag) {
	v.room.enqueueTargeted(subscriberID, tag)
}

// Send queues tag for the acting subscriber.
func (v *RoomView) Send(tag events.Tag) {
	v.SendTo(v.uid, tag)
}

// Init queues every known event for the acting subscriber, giving a fresh
// connection the complete current state.
func (v *RoomView) Init() {
	for _, tag := range events.All() {
		v.Send(tag)
	}
}

func toAnyValues(value any) []any {
	switch t := value.(type) {
	case []any:
		return t
	case []string:
		return lo.ToAnySlice(t)
	case []domain.ActorID:
		out := make([]any, len(t))
		for i, id := range t {
			out[i] = string(id)
		}
		return out
	case nil:
		return nil
	default:
		return []any{t}
	}
}
