// Package views materializes event tags into per-recipient JSON payloads.
// The core delivery path consumes the table built here; it never renders
// anything itself.
package views

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/events"
)

// Legibility of a message for one recipient.
const (
	LegibilityFull    = "understood"
	LegibilityPartial = "partial"
	LegibilityNone    = "unknown"
)

type userPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type actorPayload struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Img      string   `json:"img,omitempty"`
	Color    string   `json:"color,omitempty"`
	Reserved string   `json:"reserved"`
	Known    []string `json:"known"`
	Familiar []string `json:"familiar"`
}

type speakerPayload struct {
	actorPayload
	Current bool `json:"current"`
}

type targetPayload struct {
	actorPayload
	Selected bool `json:"selected"`
}

type messagePayload struct {
	ID         string   `json:"id"`
	ActorID    string   `json:"actorId"`
	Body       string   `json:"body"`
	Language   string   `json:"language"`
	Timestamp  string   `json:"timestamp"`
	To         []string `json:"to"`
	Own        bool     `json:"own"`
	Legibility string   `json:"legibility"`
}

type settingsPayload struct {
	DefaultIntro string   `json:"defaultIntro"`
	Languages    []string `json:"languages"`
}

// Materializers builds the closed tag table over live room state. Every tag
// known to the event layer gets exactly one entry.
func Materializers(mgr *app.Manager) map[events.Tag]core.Materializer {
	return map[events.Tag]core.Materializer{
		events.UpdateID: scalar(mgr, func(r *app.Room) any { return r.ID() }),
		events.UpdateTitle: scalar(mgr, func(r *app.Room) any { return r.Title() }),
		events.UpdateHost: scalar(mgr, func(r *app.Room) any { return r.HostID() }),
		events.UpdateUsers: perRecipient(mgr, func(r *app.Room, _ string) any {
			return lo.Map(r.Users(), func(u domain.User, _ int) userPayload {
				return userPayload{ID: string(u.ID), Name: u.Name, Active: u.Active}
			})
		}),
		events.UpdateActors: perRecipient(mgr, func(r *app.Room, _ string) any {
			return lo.Map(r.Actors(), func(a domain.Actor, _ int) actorPayload {
				return actor(a)
			})
		}),
		events.UpdateFromActors: perRecipient(mgr, speakers),
		events.UpdateToActors:   perRecipient(mgr, targets),
		events.UpdateMessages:   perRecipient(mgr, messages),
		events.UpdateSettings: perRecipient(mgr, func(r *app.Room, _ string) any {
			s := r.Settings()
			return settingsPayload{DefaultIntro: s.DefaultIntro, Languages: s.Languages}
		}),
	}
}

// speakers lists the actors the recipient may speak as: their own
// reservations plus unclaimed actors, flagging the one in use.
func speakers(r *app.Room, uid string) any {
	current := domain.ActorID("")
	if u, ok := r.User(uid); ok {
		current = u.SendingFrom
	}
	free := lo.Filter(r.Actors(), func(a domain.Actor, _ int) bool {
		return a.Reserved == "" || a.Reserved == domain.UserID(uid)
	})
	return lo.Map(free, func(a domain.Actor, _ int) speakerPayload {
		return speakerPayload{actorPayload: actor(a), Current: a.ID == current}
	})
}

// targets lists every actor with the recipient's current addressees flagged.
func targets(r *app.Room, uid string) any {
	selected := map[domain.ActorID]bool{}
	if u, ok := r.User(uid); ok {
		for _, id := range u.SendingTo {
			selected[id] = true
		}
	}
	return lo.Map(r.Actors(), func(a domain.Actor, _ int) targetPayload {
		return targetPayload{actorPayload: actor(a), Selected: selected[a.ID]}
	})
}

// messages renders the chat for one recipient: each line carries how well the
// recipient's current actor understands its language.
func messages(r *app.Room, uid string) any {
	var reader domain.Actor
	if u, ok := r.User(uid); ok && u.SendingFrom != "" {
		reader, _ = r.Actor(string(u.SendingFrom))
	}
	return lo.Map(r.Messages(), func(m domain.Message, _ int) messagePayload {
		return messagePayload{
			ID:         string(m.ID),
			ActorID:    string(m.ActorID),
			Body:       m.Body,
			Language:   m.Language,
			Timestamp:  m.Timestamp.Format(time.RFC3339Nano),
			To:         lo.Map(m.To, func(id domain.ActorID, _ int) string { return string(id) }),
			Own:        m.UserID == domain.UserID(uid),
			Legibility: legibility(reader, m),
		}
	})
}

func legibility(reader domain.Actor, m domain.Message) string {
	switch {
	case reader.Knows(m.Language):
		return LegibilityFull
	case reader.FamiliarWith(m.Language):
		return LegibilityPartial
	default:
		return LegibilityNone
	}
}

func actor(a domain.Actor) actorPayload {
	return actorPayload{
		ID:       string(a.ID),
		Name:     a.Name,
		Img:      a.Img,
		Color:    a.Color,
		Reserved: string(a.Reserved),
		Known:    a.Known,
		Familiar: a.Familiar,
	}
}

func scalar(mgr *app.Manager, read func(*app.Room) any) core.Materializer {
	return perRecipient(mgr, func(r *app.Room, _ string) any { return read(r) })
}

func perRecipient(mgr *app.Manager, build func(r *app.Room, uid string) any) core.Materializer {
	return func(roomID, subscriberID string) (string, error) {
		room, ok := mgr.Get(roomID)
		if !ok {
			return "", app.ErrRoomNotFound
		}
		raw, err := json.Marshal(build(room, subscriberID))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}
