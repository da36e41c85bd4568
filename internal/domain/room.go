package domain

type RoomID string

const DefaultRoomTitle = "new room"

// RoomState is the plain form of a room's shared state, used to seed the
// observable graph and as the snapshot type read back out of it.
type RoomState struct {
	ID       RoomID
	Title    string
	HostID   UserID
	Users    []User
	Actors   []Actor
	Messages []Message
	Settings Settings
}

func NewRoomState(id RoomID, host UserID) RoomState {
	return RoomState{
		ID:       id,
		Title:    DefaultRoomTitle,
		HostID:   host,
		Users:    []User{},
		Actors:   []Actor{},
		Messages: []Message{},
		Settings: DefaultSettings(),
	}
}

func (s RoomState) Fields() map[string]any {
	users := make([]any, len(s.Users))
	for i := range s.Users {
		users[i] = s.Users[i].Fields()
	}
	actors := make([]any, len(s.Actors))
	for i := range s.Actors {
		actors[i] = s.Actors[i].Fields()
	}
	messages := make([]any, len(s.Messages))
	for i := range s.Messages {
		messages[i] = s.Messages[i].Fields()
	}
	return map[string]any{
		"id":       string(s.ID),
		"title":    s.Title,
		"hostId":   string(s.HostID),
		"users":    users,
		"actors":   actors,
		"messages": messages,
		"settings": s.Settings.Fields(),
	}
}
