package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
)

// TicketLogRepository stores audit entries.
type TicketLogRepository interface {
	Create(ctx context.Context, entry *domain.TicketLogEntry) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketLogEntry, error)
}

type ticketLogRepository struct {
	pool *pgxpool.Pool
}

// NewTicketLogRepository builds repository.
func NewTicketLogRepository(pool *pgxpool.Pool) TicketLogRepository {
	return &ticketLogRepository{pool: pool}
}

func (r *ticketLogRepository) Create(ctx context.Context, entry *domain.TicketLogEntry) error {
	const query = `
        INSERT INTO ticket_logs (ticket_id, action, performed_by, details)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Action,
		entry.PerformedBy,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketLogRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketLogEntry, error) {
	const query = `
        SELECT id, ticket_id, action, performed_by, details, created_at
        FROM ticket_logs WHERE ticket_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketLogEntry
	for rows.Next() {
		var entry domain.TicketLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Action,
			&entry.PerformedBy,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
