package app

import (
	"github.com/dkeye/Parley/internal/events"
	"github.com/dkeye/Parley/internal/observe"
)

// tree declares, in one place, which mutations of the state graph enqueue
// which events. Request handlers never decide who needs to know about a
// change; writing through the graph is enough.
func (r *Room) tree() observe.Record {
	return observe.Record{
		Fields: map[string]observe.Node{
			"id": observe.Leaf{OnSet: func(_, _ any) {
				r.enqueueBroadcast(events.UpdateID)
			}},
			"title": observe.Leaf{OnSet: func(_, _ any) {
				r.enqueueBroadcast(events.UpdateTitle)
			}},
			"hostId": observe.Leaf{OnSet: func(_, _ any) {
				r.enqueueBroadcast(events.UpdateHost)
			}},
			"users": observe.Collection{
				Base: func() { r.enqueueBroadcast(events.UpdateUsers) },
				Item: r.userTree,
			},
			"actors": observe.Collection{
				Base: func() { r.enqueueBroadcast(events.UpdateActors) },
				Item: r.actorTree,
			},
			"messages": observe.Collection{
				Base: func() { r.enqueueBroadcast(events.UpdateMessages) },
			},
			"settings": observe.Record{
				Base: func() { r.enqueueBroadcast(events.UpdateSettings) },
			},
		},
	}
}

// userTree is bound to each user record as it enters the collection. Changes
// to what a user sends from or to only concern that user's own view, so they
// enqueue targeted refreshes.
func (r *Room) userTree(item any) observe.Node {
	fields, _ := item.(map[string]any)
	uid, _ := fields["id"].(string)
	return observe.Record{
		Fields: map[string]observe.Node{
			"sendingFrom": observe.Leaf{OnSet: func(_, _ any) {
				r.enqueueTargeted(uid, events.UpdateFromActors)
				r.enqueueTargeted(uid, events.UpdateMessages)
			}},
			"sendingTo": observe.Collection{
				Base: func() { r.enqueueTargeted(uid, events.UpdateToActors) },
			},
		},
	}
}

// actorTree is bound to each actor record as it enters the collection.
// Renaming an actor id rewrites every reference to it, declared here once
// instead of at every call site that might trigger a rename.
func (r *Room) actorTree(any) observe.Node {
	return observe.Record{
		Fields: map[string]observe.Node{
			"id": observe.Leaf{OnSet: func(newValue, oldValue any) {
				oldID, _ := oldValue.(string)
				newID, _ := newValue.(string)
				r.actorRenamed(oldID, newID)
			}},
			"known": observe.Collection{
				Base: func() { r.enqueueBroadcast(events.UpdateActors) },
			},
			"familiar": observe.Collection{
				Base: func() { r.enqueueBroadcast(events.UpdateActors) },
			},
		},
	}
}

// actorRenamed cascades an actor id change through every record referencing
// the old id. Runs inside the renaming unit of work; the writes below notify
// through their own nodes, so the batch picks up the affected events without
// extra bookkeeping here.
func (r *Room) actorRenamed(oldID, newID string) {
	if oldID == "" || oldID == newID {
		return
	}
	for _, it := range r.list("messages").Items() {
		msg := it.(*observe.Object)
		if v, _ := msg.Get("actorId").(string); v == oldID {
			msg.Set("actorId", newID)
		}
		if to, ok := msg.Get("to").(*observe.List); ok {
			replaceID(to, oldID, newID)
		}
	}
	for _, it := range r.list("users").Items() {
		u := it.(*observe.Object)
		if v, _ := u.Get("sendingFrom").(string); v == oldID {
			u.Set("sendingFrom", newID)
		}
		if to, ok := u.Get("sendingTo").(*observe.List); ok {
			replaceID(to, oldID, newID)
		}
	}
}

func replaceID(l *observe.List, oldID, newID string) {
	i := l.IndexFunc(func(item any) bool {
		s, ok := item.(string)
		return ok && s == oldID
	})
	if i >= 0 {
		l.ReplaceRange(i, 1, newID)
	}
}
