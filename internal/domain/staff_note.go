package domain

import "time"

// StaffNote is an append-only annotation on a ticket. Notes are never edited
// or deleted and are listed most-recent-first.
type StaffNote struct {
	ID        int64
	TicketID  int64
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
