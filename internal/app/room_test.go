package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/events"
)

type recorded struct {
	Kind string
	Room string
	UID  string
	Tag  events.Tag
}

type recorder struct {
	out    []recorded
	rekeys []string
}

func (r *recorder) Broadcast(roomID string, tag events.Tag) {
	r.out = append(r.out, recorded{Kind: "broadcast", Room: roomID, Tag: tag})
}

func (r *recorder) SendTo(roomID, subscriberID string, tag events.Tag) {
	r.out = append(r.out, recorded{Kind: "targeted", Room: roomID, UID: subscriberID, Tag: tag})
}

func (r *recorder) Rekey(oldID, newID string) {
	r.rekeys = append(r.rekeys, oldID+">"+newID)
}

func (r *recorder) broadcasts(tag events.Tag) int {
	n := 0
	for _, d := range r.out {
		if d.Kind == "broadcast" && d.Tag == tag {
			n++
		}
	}
	return n
}

func (r *recorder) targeted(uid string, tag events.Tag) int {
	n := 0
	for _, d := range r.out {
		if d.Kind == "targeted" && d.UID == uid && d.Tag == tag {
			n++
		}
	}
	return n
}

func newTestRoom(t *testing.T) (*Manager, *recorder) {
	t.Helper()
	rec := &recorder{}
	mgr := NewManager(rec)
	mgr.Create("host-1", "room-1")
	return mgr, rec
}

func begin(t *testing.T, mgr *Manager, uid string) *RoomView {
	t.Helper()
	v, err := mgr.Begin("room-1", uid)
	require.NoError(t, err)
	return v
}

func TestRoomView_ManyMutationsOneEventPerTag(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	a := v.CreateActor()
	require.NoError(t, v.SetActorColor(string(a.ID), "#aa0000"))
	require.NoError(t, v.SetActorName(string(a.ID), "Grog"))
	require.Empty(t, rec.out) // nothing leaves before End
	v.End()

	require.Equal(t, 1, rec.broadcasts(events.UpdateActors))
}

func TestRoomView_NoOpWriteDeliversNothing(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	require.False(t, v.SetTitle("new room")) // already the title
	v.End()

	require.Empty(t, rec.out)
}

func TestRoomView_DiscardKeepsMutationsDropsEvents(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	require.True(t, v.SetTitle("changed"))
	v.Discard()

	require.Empty(t, rec.out)
	room, _ := mgr.Get("room-1")
	require.Equal(t, "changed", room.Title())
}

func TestRoomView_EnsureUser(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	u := v.EnsureUser()
	v.End()

	require.Equal(t, domain.UserID("u1"), u.ID)
	require.True(t, u.Active)
	require.Equal(t, 1, rec.broadcasts(events.UpdateUsers))

	// Leaving and rejoining only flips the presence flag.
	v = begin(t, mgr, "u1")
	require.True(t, v.SetActive(false))
	v.End()

	rec.out = nil
	v = begin(t, mgr, "u1")
	v.EnsureUser()
	v.End()

	room, _ := mgr.Get("room-1")
	require.Len(t, room.Users(), 1)
	got, ok := room.User("u1")
	require.True(t, ok)
	require.True(t, got.Active)
	require.Equal(t, 1, rec.broadcasts(events.UpdateUsers))
}

func TestRoomView_SendingFromIsTargeted(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	v.EnsureUser()
	a := v.CreateActor()
	v.End()
	require.Equal(t, 1, rec.targeted("u1", events.UpdateFromActors))
	require.Equal(t, 1, rec.targeted("u1", events.UpdateMessages))

	rec.out = nil
	v = begin(t, mgr, "u1")
	require.NoError(t, v.SetSendingFrom(string(a.ID)))
	v.End()

	// Same speaker again, targeted refresh only and only once.
	require.Empty(t, rec.out)
}

func TestRoomView_SetSendingToExtendToggles(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	v.EnsureUser()
	a := v.CreateActor()
	b := v.CreateActor()
	v.End()

	v = begin(t, mgr, "u1")
	require.NoError(t, v.SetSendingTo(string(a.ID), false))
	require.NoError(t, v.SetSendingTo(string(b.ID), true))
	v.End()

	room, _ := mgr.Get("room-1")
	u, _ := room.User("u1")
	require.Equal(t, []domain.ActorID{a.ID, b.ID}, u.SendingTo)

	rec.out = nil
	v = begin(t, mgr, "u1")
	require.NoError(t, v.SetSendingTo(string(b.ID), true))
	v.End()

	u, _ = room.User("u1")
	require.Equal(t, []domain.ActorID{a.ID}, u.SendingTo)
	require.Equal(t, 1, rec.targeted("u1", events.UpdateToActors))
}

func TestRoomView_ReceiveMessageNeedsSpeaker(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	v.EnsureUser()
	v.Update("users", "u1", map[string]any{"sendingFrom": ""})
	_, err := v.ReceiveMessage("hello", domain.DefaultLanguage)
	require.ErrorIs(t, err, ErrNoSpeaker)
	v.Discard()

	rec.out = nil
	v = begin(t, mgr, "u1")
	v.EnsureUser()
	v.CreateActor()
	msg, err := v.ReceiveMessage("hello", domain.DefaultLanguage)
	require.NoError(t, err)
	v.End()

	require.Equal(t, "hello", msg.Body)
	require.Equal(t, 1, rec.broadcasts(events.UpdateMessages))
	room, _ := mgr.Get("room-1")
	require.Len(t, room.Messages(), 1)
}

func TestRoomView_ActorRenameCascades(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	v.EnsureUser()
	a := v.CreateActor()
	require.NoError(t, v.SetSendingTo(string(a.ID), false))
	_, err := v.ReceiveMessage("hi", domain.DefaultLanguage)
	require.NoError(t, err)
	v.End()

	rec.out = nil
	v = begin(t, mgr, "u1")
	require.NoError(t, v.RenameActor(string(a.ID), "grog"))
	v.End()

	room, _ := mgr.Get("room-1")
	_, ok := room.Actor(string(a.ID))
	require.False(t, ok)
	renamed, ok := room.Actor("grog")
	require.True(t, ok)
	require.Equal(t, domain.ActorID("grog"), renamed.ID)

	u, _ := room.User("u1")
	require.Equal(t, domain.ActorID("grog"), u.SendingFrom)
	require.Equal(t, []domain.ActorID{"grog"}, u.SendingTo)

	msg := room.Messages()[0]
	require.Equal(t, domain.ActorID("grog"), msg.ActorID)
	require.Equal(t, []domain.ActorID{"grog"}, msg.To)

	require.Equal(t, 1, rec.broadcasts(events.UpdateActors))
	require.Equal(t, 1, rec.broadcasts(events.UpdateMessages))
}

func TestRoomView_RenameActorValidation(t *testing.T) {
	mgr, _ := newTestRoom(t)

	v := begin(t, mgr, "u1")
	a := v.CreateActor()
	b := v.CreateActor()

	require.ErrorIs(t, v.RenameActor(string(a.ID), ""), domain.ErrIDEmpty)
	require.ErrorIs(t, v.RenameActor(string(a.ID), string(b.ID)), domain.ErrIDTaken)
	require.ErrorIs(t, v.RenameActor("missing", "x"), ErrActorNotFound)
	require.NoError(t, v.RenameActor(string(a.ID), string(a.ID)))
	v.End()
}

func TestRoomView_ToggleReserve(t *testing.T) {
	mgr, _ := newTestRoom(t)

	v := begin(t, mgr, "u1")
	v.EnsureUser()
	a := v.CreateActor()
	v.End()

	// Releasing the actor the user speaks as clears their speaker too.
	v = begin(t, mgr, "u1")
	require.NoError(t, v.ToggleReserve(string(a.ID)))
	v.End()

	room, _ := mgr.Get("room-1")
	got, _ := room.Actor(string(a.ID))
	require.Empty(t, got.Reserved)
	u, _ := room.User("u1")
	require.Empty(t, u.SendingFrom)

	v = begin(t, mgr, "u2")
	require.NoError(t, v.ToggleReserve(string(a.ID)))
	v.End()

	got, _ = room.Actor(string(a.ID))
	require.Equal(t, domain.UserID("u2"), got.Reserved)
}

func TestRoomView_LanguageLists(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	a := v.CreateActor()
	v.End()

	rec.out = nil
	v = begin(t, mgr, "u1")
	require.NoError(t, v.AddFamiliarLanguage(string(a.ID), "Elvish"))
	require.NoError(t, v.AddKnownLanguage(string(a.ID), "Dwarvish"))
	v.End()

	room, _ := mgr.Get("room-1")
	got, _ := room.Actor(string(a.ID))
	require.Equal(t, []string{domain.DefaultLanguage, "Dwarvish"}, got.Known)
	require.Equal(t, []string{"Elvish"}, got.Familiar)
	require.Equal(t, 1, rec.broadcasts(events.UpdateActors))

	// Learning a language fully drops the familiar entry.
	v = begin(t, mgr, "u1")
	require.NoError(t, v.AddKnownLanguage(string(a.ID), "Elvish"))
	v.End()

	got, _ = room.Actor(string(a.ID))
	require.Equal(t, []string{domain.DefaultLanguage, "Dwarvish", "Elvish"}, got.Known)
	require.Empty(t, got.Familiar)

	v = begin(t, mgr, "u1")
	require.NoError(t, v.RemoveKnownLanguage(string(a.ID), "Dwarvish"))
	require.NoError(t, v.RemoveFamiliarLanguage(string(a.ID), "never had it"))
	v.End()

	got, _ = room.Actor(string(a.ID))
	require.Equal(t, []string{domain.DefaultLanguage, "Elvish"}, got.Known)
}

func TestRoomView_RenameRoom(t *testing.T) {
	mgr, rec := newTestRoom(t)
	mgr.Create("host-2", "taken")

	v := begin(t, mgr, "u1")
	require.ErrorIs(t, v.RenameRoom("taken"), ErrRoomIDTaken)
	require.NoError(t, v.RenameRoom("room-1")) // same id, nothing to do
	require.NoError(t, v.RenameRoom("fresh"))
	v.End()

	require.False(t, mgr.Has("room-1"))
	room, ok := mgr.Get("fresh")
	require.True(t, ok)
	require.Equal(t, "fresh", room.ID())
	require.Equal(t, 1, rec.broadcasts(events.UpdateID))
	// The flush itself already carries the new room id, and the subscriber
	// channels moved with the room.
	require.Equal(t, "fresh", rec.out[0].Room)
	require.Equal(t, []string{"room-1>fresh"}, rec.rekeys)
}

type captureChannel struct {
	frames []string
}

func (c *captureChannel) Send(event, _ string) error {
	c.frames = append(c.frames, event)
	return nil
}

func TestRoomView_RenameRoomKeepsLiveChannelsAttached(t *testing.T) {
	registry := core.NewRegistry()
	mats := map[events.Tag]core.Materializer{}
	for _, tag := range events.All() {
		mats[tag] = func(string, string) (string, error) { return "", nil }
	}
	registry.SetMaterializers(mats)
	mgr := NewManager(registry)
	mgr.Create("host-1", "room-1")

	ch := &captureChannel{}
	registry.Register("room-1", "u1", ch)

	v, err := mgr.Begin("room-1", "u1")
	require.NoError(t, err)
	require.NoError(t, v.RenameRoom("fresh"))
	v.End()

	// The rename announcement itself reaches channels opened under the old id.
	require.Contains(t, ch.frames, string(events.UpdateID))

	v, err = mgr.Begin("fresh", "u1")
	require.NoError(t, err)
	require.True(t, v.SetTitle("changed"))
	v.End()

	require.Contains(t, ch.frames, string(events.UpdateTitle))
	require.Zero(t, registry.SubscriberCount("room-1"))
	require.Equal(t, 1, registry.SubscriberCount("fresh"))
}

func TestRoomView_UpdateSettings(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	v.UpdateSettings(map[string]any{"defaultIntro": "whispers"})
	v.End()

	room, _ := mgr.Get("room-1")
	require.Equal(t, "whispers", room.Settings().DefaultIntro)
	require.Equal(t, []recorded{{Kind: "broadcast", Room: "room-1", Tag: events.UpdateSettings}}, rec.out)

	// Writing the same intro again changes nothing and notifies no one.
	rec.out = nil
	v = begin(t, mgr, "u1")
	v.UpdateSettings(map[string]any{"defaultIntro": "whispers"})
	v.End()
	require.Empty(t, rec.out)

	v = begin(t, mgr, "u1")
	v.UpdateSettings(map[string]any{"languages": []string{"Common", "Elvish"}})
	v.End()

	require.Equal(t, []string{"Common", "Elvish"}, room.Settings().Languages)
	require.Equal(t, 1, rec.broadcasts(events.UpdateSettings))
}

func TestRoomView_UnknownCollectionIsSilent(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	v.Push("nope", map[string]any{"id": "x"})
	require.False(t, v.Remove("nope", func(map[string]any) bool { return true }))
	require.False(t, v.Update("nope", "x", map[string]any{"a": 1}))
	_, ok := v.Find("nope", "x")
	require.False(t, ok)
	v.End()

	require.Empty(t, rec.out)
}

func TestRoomView_InitSendsEverythingToActingSubscriber(t *testing.T) {
	mgr, rec := newTestRoom(t)

	v := begin(t, mgr, "u1")
	v.Init()
	v.End()

	require.Len(t, rec.out, len(events.All()))
	for _, tag := range events.All() {
		require.Equal(t, 1, rec.targeted("u1", tag))
	}
}

func TestRoomView_CloneActorCopiesEverythingButID(t *testing.T) {
	mgr, _ := newTestRoom(t)

	v := begin(t, mgr, "u1")
	a := v.CreateActor()
	require.NoError(t, v.SetActorName(string(a.ID), "Grog"))
	require.NoError(t, v.AddFamiliarLanguage(string(a.ID), "Elvish"))
	v.End()

	v = begin(t, mgr, "u2")
	clone, err := v.CloneActor(string(a.ID))
	require.NoError(t, err)
	v.End()

	require.NotEqual(t, a.ID, clone.ID)
	require.Equal(t, "Grog", clone.Name)
	require.Equal(t, []string{"Elvish"}, clone.Familiar)
	require.Equal(t, domain.UserID("u2"), clone.Reserved)

	room, _ := mgr.Get("room-1")
	require.Len(t, room.Actors(), 2)
}

func TestManager_CreateIsIdempotentPerID(t *testing.T) {
	rec := &recorder{}
	mgr := NewManager(rec)

	first := mgr.Create("host", "dup")
	second := mgr.Create("other", "dup")
	require.Same(t, first, second)

	generated := mgr.Create("host", "")
	require.NotEmpty(t, generated.ID())
	require.True(t, mgr.Has(generated.ID()))

	_, err := mgr.Begin("nope", "u1")
	require.ErrorIs(t, err, ErrRoomNotFound)
}
