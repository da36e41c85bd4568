package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/events"
)

type entry struct {
	uid string
	ch  PushChannel
}

// Registry is a threadsafe map of room id to live subscriber channels.
// Several channels may exist for one (room, subscriber) pair across
// reconnects; the latest registered one is canonical for targeted sends,
// broadcasts hit every channel. Implements events.Deliverer.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string][]entry
	mats  map[events.Tag]Materializer
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string][]entry)}
}

// SetMaterializers installs the tag table. Called once at wiring time, before
// any delivery.
func (r *Registry) SetMaterializers(mats map[events.Tag]Materializer) {
	r.mats = mats
}

func (r *Registry) Register(roomID, subscriberID string, ch PushChannel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[roomID] = append(r.rooms[roomID], entry{uid: subscriberID, ch: ch})
	log.Info().Str("module", "core.registry").Str("room", roomID).Str("subscriber", subscriberID).Msg("channel registered")
}

// Unregister removes that specific channel only; an older or newer channel of
// the same subscriber stays registered.
func (r *Registry) Unregister(roomID, subscriberID string, ch PushChannel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.rooms[roomID]
	for i, e := range entries {
		if e.uid == subscriberID && e.ch == ch {
			r.rooms[roomID] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(r.rooms[roomID]) == 0 {
		delete(r.rooms, roomID)
	}
	log.Info().Str("module", "core.registry").Str("room", roomID).Str("subscriber", subscriberID).Msg("channel unregistered")
}

// Rekey moves every channel of oldID under newID. Runs when a room is
// renamed, so broadcasts under the new id keep reaching the subscribers who
// connected under the old one.
func (r *Registry) Rekey(oldID, newID string) {
	if oldID == newID {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, ok := r.rooms[oldID]
	if !ok {
		return
	}
	delete(r.rooms, oldID)
	r.rooms[newID] = append(r.rooms[newID], entries...)
	log.Info().Str("module", "core.registry").Str("room", oldID).Str("new_id", newID).Int("channels", len(entries)).Msg("channels rekeyed")
}

// SubscriberCount reports live channels for a room.
func (r *Registry) SubscriberCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// Broadcast materializes tag per recipient and pushes it to every channel of
// the room. Channels that refuse the frame are skipped, not retried.
func (r *Registry) Broadcast(roomID string, tag events.Tag) {
	r.mu.RLock()
	entries := make([]entry, len(r.rooms[roomID]))
	copy(entries, r.rooms[roomID])
	r.mu.RUnlock()

	sent, dropped := 0, 0
	for _, e := range entries {
		if r.push(roomID, tag, e) {
			sent++
		} else {
			dropped++
		}
	}
	log.Debug().Str("module", "core.registry").Str("room", roomID).Str("event", string(tag)).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}

// SendTo pushes tag to the canonical channel of one subscriber. A subscriber
// with no channel is silently skipped; they converge on next connect.
func (r *Registry) SendTo(roomID, subscriberID string, tag events.Tag) {
	r.mu.RLock()
	var target *entry
	entries := r.rooms[roomID]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].uid == subscriberID {
			e := entries[i]
			target = &e
			break
		}
	}
	r.mu.RUnlock()

	if target == nil {
		log.Debug().Str("module", "core.registry").Str("room", roomID).Str("subscriber", subscriberID).Str("event", string(tag)).Msg("no channel, dropped")
		return
	}
	r.push(roomID, tag, *target)
}

func (r *Registry) push(roomID string, tag events.Tag, e entry) bool {
	mat, ok := r.mats[tag]
	if !ok {
		log.Error().Str("module", "core.registry").Str("event", string(tag)).Msg("no materializer for event")
		return false
	}
	payload, err := mat(roomID, e.uid)
	if err != nil {
		log.Error().Err(err).Str("module", "core.registry").Str("event", string(tag)).Str("subscriber", e.uid).Msg("materialize failed")
		return false
	}
	if err := e.ch.Send(string(tag), payload); err != nil {
		log.Debug().Err(err).Str("module", "core.registry").Str("subscriber", e.uid).Str("event", string(tag)).Msg("send failed")
		return false
	}
	return true
}
