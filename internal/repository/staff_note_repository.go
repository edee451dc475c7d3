package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
)

// StaffNoteRepository stores append-only ticket annotations.
type StaffNoteRepository interface {
	Create(ctx context.Context, note *domain.StaffNote) error
	ListByTicket(ctx context.Context, ticketID int64, limit int) ([]domain.StaffNote, error)
}

type staffNoteRepository struct {
	pool *pgxpool.Pool
}

// NewStaffNoteRepository builds repository.
func NewStaffNoteRepository(pool *pgxpool.Pool) StaffNoteRepository {
	return &staffNoteRepository{pool: pool}
}

func (r *staffNoteRepository) Create(ctx context.Context, note *domain.StaffNote) error {
	const query = `
        INSERT INTO staff_notes (ticket_id, author_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		note.TicketID,
		note.AuthorID,
		note.Content,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *staffNoteRepository) ListByTicket(ctx context.Context, ticketID int64, limit int) ([]domain.StaffNote, error) {
	const query = `
        SELECT id, ticket_id, author_id, content, created_at
        FROM staff_notes WHERE ticket_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, ticketID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffNote
	for rows.Next() {
		var note domain.StaffNote
		if err := rows.Scan(
			&note.ID,
			&note.TicketID,
			&note.AuthorID,
			&note.Content,
			&note.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
