package domain

import "time"

// TicketAction captures what happened in an audit entry.
type TicketAction string

const (
	ActionCreated            TicketAction = "created"
	ActionClaimed            TicketAction = "claimed"
	ActionPriorityChanged    TicketAction = "priority_changed"
	ActionEscalated          TicketAction = "escalated"
	ActionClosed             TicketAction = "closed"
	ActionNoteAdded          TicketAction = "note_added"
	ActionRenamed            TicketAction = "renamed"
	ActionParticipantAdded   TicketAction = "participant_added"
	ActionParticipantRemoved TicketAction = "participant_removed"
)

// TicketLogEntry is an immutable audit record of an action taken on a ticket.
type TicketLogEntry struct {
	ID          int64
	TicketID    int64
	Action      TicketAction
	PerformedBy string
	Details     *string
	CreatedAt   time.Time
}
