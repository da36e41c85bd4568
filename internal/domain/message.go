package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMessageEmpty  = errors.New("message empty")
	ErrLanguageEmpty = errors.New("language empty")
)

type MessageID string

// Message is one chat line, spoken by an actor on behalf of a user, in a
// language, optionally addressed to specific actors.
type Message struct {
	ID        MessageID
	UserID    UserID
	ActorID   ActorID
	Body      string
	Language  string
	Timestamp time.Time
	To        []ActorID
}

func NewMessage(userID UserID, actorID ActorID, body, language string, to []ActorID) *Message {
	return &Message{
		ID:        MessageID(uuid.NewString()),
		UserID:    userID,
		ActorID:   actorID,
		Body:      body,
		Language:  language,
		Timestamp: time.Now().UTC(),
		To:        append([]ActorID{}, to...),
	}
}

func (m *Message) Validate() error {
	if m.Body == "" {
		return ErrMessageEmpty
	}
	if m.Language == "" {
		return ErrLanguageEmpty
	}
	return nil
}

func (m *Message) Fields() map[string]any {
	return map[string]any{
		"id":        string(m.ID),
		"userId":    string(m.UserID),
		"actorId":   string(m.ActorID),
		"body":      m.Body,
		"language":  m.Language,
		"timestamp": m.Timestamp.Format(time.RFC3339Nano),
		"to":        anyStrings(m.To),
	}
}

func MessageFromMap(f map[string]any) Message {
	ts, _ := time.Parse(time.RFC3339Nano, str(f, "timestamp"))
	return Message{
		ID:        MessageID(str(f, "id")),
		UserID:    UserID(str(f, "userId")),
		ActorID:   ActorID(str(f, "actorId")),
		Body:      str(f, "body"),
		Language:  str(f, "language"),
		Timestamp: ts,
		To:        actorIDs(f, "to"),
	}
}
