package app

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/events"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomIDTaken  = errors.New("room id already taken")
)

// Manager owns every live room. Rooms are created on demand and live for the
// process lifetime.
type Manager struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	deliver events.Deliverer
}

func NewManager(deliver events.Deliverer) *Manager {
	return &Manager{
		rooms:   make(map[string]*Room),
		deliver: deliver,
	}
}

// Create makes a new room hosted by host. An empty id gets a generated one;
// a taken id returns the existing room.
func (m *Manager) Create(host, id string) *Room {
	if id == "" {
		id = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[id]; ok {
		return room
	}
	room := newRoom(domain.NewRoomState(domain.RoomID(id), domain.UserID(host)))
	m.rooms[id] = room
	log.Info().Str("module", "app.manager").Str("room", id).Str("host", host).Msg("room created")
	return room
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

func (m *Manager) Has(id string) bool {
	_, ok := m.Get(id)
	return ok
}

// reserveID re-keys a room under a new id, refusing ids already in use, so
// the map is never dual-keyed. Live subscriber channels move with the room;
// the renaming unit of work still holds the write lock, so the flush that
// announces the new id finds them already under it. The room's own id field
// is written by the caller inside its unit of work.
func (m *Manager) reserveID(oldID, newID string) error {
	if newID == "" {
		return domain.ErrIDEmpty
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.rooms[newID]; taken {
		return ErrRoomIDTaken
	}
	room, ok := m.rooms[oldID]
	if !ok {
		return ErrRoomNotFound
	}
	delete(m.rooms, oldID)
	m.rooms[newID] = room
	m.deliver.Rekey(oldID, newID)
	log.Info().Str("module", "app.manager").Str("room", oldID).Str("new_id", newID).Msg("room renamed")
	return nil
}

// Begin opens a unit of work on a room for one acting subscriber. The room is
// write-locked and a fresh batch installed until End or Discard.
func (m *Manager) Begin(roomID, subscriberID string) (*RoomView, error) {
	room, ok := m.Get(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	room.mu.Lock()
	room.batch = events.NewBatch()
	return &RoomView{room: room, mgr: m, uid: subscriberID}, nil
}
