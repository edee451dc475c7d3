package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "open"
	TicketStatusClaimed   TicketStatus = "claimed"
	TicketStatusClosed    TicketStatus = "closed"
	TicketStatusEscalated TicketStatus = "escalated"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// PriorityLabels maps priority values to display names.
var PriorityLabels = map[TicketPriority]string{
	TicketPriorityLow:    "Low",
	TicketPriorityMedium: "Medium",
	TicketPriorityHigh:   "High",
	TicketPriorityUrgent: "Urgent",
}

// StatusLabels maps status values to display names.
var StatusLabels = map[TicketStatus]string{
	TicketStatusOpen:      "Open",
	TicketStatusClaimed:   "Claimed",
	TicketStatusClosed:    "Closed",
	TicketStatusEscalated: "Escalated",
}

// Ticket is the aggregate for one support engagement. A ticket is hosted by
// exactly one channel, and a user may hold at most one non-closed ticket per
// guild at a time.
type Ticket struct {
	ID           int64
	UserID       string
	ChannelID    string
	GuildID      string
	Status       TicketStatus
	Priority     TicketPriority
	ClaimedBy    *string
	CreatedAt    time.Time
	ClosedAt     *time.Time
	TicketNumber int
}

// IsClosed reports whether the ticket reached its terminal state.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}
