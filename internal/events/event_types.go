package events

import (
	"time"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketClaimed      EventType = "ticket_claimed"
	EventPriorityChanged    EventType = "ticket_priority_changed"
	EventTicketEscalated    EventType = "ticket_escalated"
	EventTicketClosed       EventType = "ticket_closed"
	EventNoteAdded          EventType = "ticket_note_added"
	EventTicketRenamed      EventType = "ticket_renamed"
	EventParticipantAdded   EventType = "ticket_participant_added"
	EventParticipantRemoved EventType = "ticket_participant_removed"
)

// Event represents a domain event emitted after a successful mutation.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	GuildID   string    `json:"guild_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

// ActionForEvent maps an event type to its audit action kind.
func ActionForEvent(t EventType) (domain.TicketAction, bool) {
	switch t {
	case EventTicketCreated:
		return domain.ActionCreated, true
	case EventTicketClaimed:
		return domain.ActionClaimed, true
	case EventPriorityChanged:
		return domain.ActionPriorityChanged, true
	case EventTicketEscalated:
		return domain.ActionEscalated, true
	case EventTicketClosed:
		return domain.ActionClosed, true
	case EventNoteAdded:
		return domain.ActionNoteAdded, true
	case EventTicketRenamed:
		return domain.ActionRenamed, true
	case EventParticipantAdded:
		return domain.ActionParticipantAdded, true
	case EventParticipantRemoved:
		return domain.ActionParticipantRemoved, true
	default:
		return "", false
	}
}
