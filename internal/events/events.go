// Package events defines the closed set of notification tags and the
// per-unit-of-work batch that accumulates them.
package events

// Tag names a kind of room-state change. The set is closed: every tag is bound
// to exactly one materializer in the delivery layer, and calling code only
// ever uses these constants.
type Tag string

const (
	UpdateID         Tag = "update:id"
	UpdateTitle      Tag = "update:title"
	UpdateHost       Tag = "update:host"
	UpdateUsers      Tag = "update:users"
	UpdateActors     Tag = "update:actors"
	UpdateFromActors Tag = "update:fromActors"
	UpdateToActors   Tag = "update:toActors"
	UpdateMessages   Tag = "update:messages"
	UpdateSettings   Tag = "update:settings"
)

// All returns every known tag. Init re-sends all of them to a single
// subscriber so a fresh connection converges on the current state.
func All() []Tag {
	return []Tag{
		UpdateID,
		UpdateTitle,
		UpdateHost,
		UpdateUsers,
		UpdateActors,
		UpdateFromActors,
		UpdateToActors,
		UpdateMessages,
		UpdateSettings,
	}
}

// Deliverer resolves live subscriber channels and pushes one materialized
// payload per recipient. Rekey moves a renamed room's subscribers under the
// new id so later deliveries still find them. Implemented by the core
// registry.
type Deliverer interface {
	Broadcast(roomID string, tag Tag)
	SendTo(roomID, subscriberID string, tag Tag)
	Rekey(oldRoomID, newRoomID string)
}
