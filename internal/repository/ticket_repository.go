package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = pgx.ErrNoRows

// ErrDuplicateOpenTicket is returned when an insert would give a user a
// second non-closed ticket in the same guild.
var ErrDuplicateOpenTicket = errors.New("user already has an open ticket")

const ticketColumns = `id, user_id, channel_id, guild_id, status, priority, claimed_by, created_at, closed_at, ticket_number`

// TicketRepository encapsulates ticket persistence. Mutations are
// conditional on the expected prior state so that two racing actions cannot
// both observe success.
type TicketRepository interface {
	Create(ctx context.Context, userID, channelID, guildID string) (*domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByChannel(ctx context.Context, channelID string) (*domain.Ticket, error)
	GetOpenByUser(ctx context.Context, userID, guildID string) (*domain.Ticket, error)
	// Claim sets the claimant and claimed status only if the ticket is
	// currently unclaimed and not closed. Returns false when the guard
	// did not match.
	Claim(ctx context.Context, id int64, staffID string) (bool, error)
	// Close marks the ticket closed only if it is not already closed.
	Close(ctx context.Context, id int64) (bool, error)
	// Escalate moves the ticket to escalated unless it already is, or is
	// closed.
	Escalate(ctx context.Context, id int64) (bool, error)
	// UpdatePriority changes priority on any non-closed ticket.
	UpdatePriority(ctx context.Context, id int64, priority domain.TicketPriority) (bool, error)
	UpdateChannel(ctx context.Context, id int64, channelID string) error
	TopClaimers(ctx context.Context, guildID string, limit int) ([]domain.ClaimCount, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, userID, channelID, guildID string) (*domain.Ticket, error) {
	// The ticket number is allocated inside the insert. It is an advisory
	// display counter; the open-ticket invariant is carried by the partial
	// unique index, not by this subquery.
	const query = `
        INSERT INTO tickets (user_id, channel_id, guild_id, ticket_number)
        VALUES ($1, $2, $3, (SELECT COALESCE(MAX(ticket_number), 0) + 1 FROM tickets WHERE guild_id = $3))
        RETURNING ` + ticketColumns

	ticket, err := r.fetchSingle(ctx, query, userID, channelID, guildID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateOpenTicket
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByChannel(ctx context.Context, channelID string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE channel_id = $1`
	return r.fetchSingle(ctx, query, channelID)
}

func (r *ticketRepository) GetOpenByUser(ctx context.Context, userID, guildID string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets
        WHERE user_id = $1 AND guild_id = $2 AND status <> 'closed'`
	return r.fetchSingle(ctx, query, userID, guildID)
}

func (r *ticketRepository) Claim(ctx context.Context, id int64, staffID string) (bool, error) {
	const query = `
        UPDATE tickets SET claimed_by = $2, status = 'claimed'
        WHERE id = $1 AND claimed_by IS NULL AND status <> 'closed'`
	cmd, err := r.pool.Exec(ctx, query, id, staffID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) Close(ctx context.Context, id int64) (bool, error) {
	const query = `
        UPDATE tickets SET status = 'closed', closed_at = NOW()
        WHERE id = $1 AND status <> 'closed'`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) Escalate(ctx context.Context, id int64) (bool, error) {
	const query = `
        UPDATE tickets SET status = 'escalated'
        WHERE id = $1 AND status NOT IN ('escalated', 'closed')`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) UpdatePriority(ctx context.Context, id int64, priority domain.TicketPriority) (bool, error) {
	const query = `UPDATE tickets SET priority = $2 WHERE id = $1 AND status <> 'closed'`
	cmd, err := r.pool.Exec(ctx, query, id, priority)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) UpdateChannel(ctx context.Context, id int64, channelID string) error {
	const query = `UPDATE tickets SET channel_id = $2 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, channelID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) TopClaimers(ctx context.Context, guildID string, limit int) ([]domain.ClaimCount, error) {
	const query = `
        SELECT claimed_by, COUNT(*) AS claim_count FROM tickets
        WHERE guild_id = $1 AND claimed_by IS NOT NULL
        GROUP BY claimed_by ORDER BY claim_count DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClaimCount
	for rows.Next() {
		var entry domain.ClaimCount
		if err := rows.Scan(&entry.StaffID, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.ChannelID,
		&ticket.GuildID,
		&ticket.Status,
		&ticket.Priority,
		&ticket.ClaimedBy,
		&ticket.CreatedAt,
		&ticket.ClosedAt,
		&ticket.TicketNumber,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
