package events

import (
	"sort"

	"github.com/samber/lo"
)

// Batch accumulates pending notifications for one unit of work. Tags are sets:
// enqueueing the same tag twice delivers it once. A tag pending as a broadcast
// subsumes the same tag pending as a targeted send, so no subscriber receives
// a notification twice out of one flush.
type Batch struct {
	broadcast map[Tag]struct{}
	targeted  map[string]map[Tag]struct{}
}

func NewBatch() *Batch {
	return &Batch{
		broadcast: make(map[Tag]struct{}),
		targeted:  make(map[string]map[Tag]struct{}),
	}
}

// AddBroadcast queues tag for every subscriber of the room.
func (b *Batch) AddBroadcast(tag Tag) {
	b.broadcast[tag] = struct{}{}
}

// AddTargeted queues tag for a single subscriber.
func (b *Batch) AddTargeted(subscriberID string, tag Tag) {
	set, ok := b.targeted[subscriberID]
	if !ok {
		set = make(map[Tag]struct{})
		b.targeted[subscriberID] = set
	}
	set[tag] = struct{}{}
}

func (b *Batch) Empty() bool {
	return len(b.broadcast) == 0 && len(b.targeted) == 0
}

// Flush delivers every pending broadcast to the room, then for each subscriber
// the targeted tags not already covered by a broadcast, then clears the batch.
// Flushing an empty batch is a no-op; tags go out in sorted order so delivery
// is deterministic per recipient.
func (b *Batch) Flush(d Deliverer, roomID string) {
	for _, tag := range sortedTags(b.broadcast) {
		d.Broadcast(roomID, tag)
	}
	subscribers := lo.Keys(b.targeted)
	sort.Strings(subscribers)
	for _, uid := range subscribers {
		for _, tag := range sortedTags(b.targeted[uid]) {
			if _, covered := b.broadcast[tag]; covered {
				continue
			}
			d.SendTo(roomID, uid, tag)
		}
	}
	b.broadcast = make(map[Tag]struct{})
	b.targeted = make(map[string]map[Tag]struct{})
}

func sortedTags(set map[Tag]struct{}) []Tag {
	tags := lo.Keys(set)
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
