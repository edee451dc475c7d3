package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
)

// LeaderboardRepository stores live leaderboard registrations.
type LeaderboardRepository interface {
	Create(ctx context.Context, reg *domain.LeaderboardRegistration) error
	List(ctx context.Context) ([]domain.LeaderboardRegistration, error)
	DeleteByMessage(ctx context.Context, messageID string) error
}

type leaderboardRepository struct {
	pool *pgxpool.Pool
}

// NewLeaderboardRepository builds repository.
func NewLeaderboardRepository(pool *pgxpool.Pool) LeaderboardRepository {
	return &leaderboardRepository{pool: pool}
}

func (r *leaderboardRepository) Create(ctx context.Context, reg *domain.LeaderboardRegistration) error {
	const query = `
        INSERT INTO leaderboard_messages (guild_id, channel_id, message_id)
        VALUES ($1, $2, $3)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		reg.GuildID,
		reg.ChannelID,
		reg.MessageID,
	).Scan(&reg.ID)
}

func (r *leaderboardRepository) List(ctx context.Context) ([]domain.LeaderboardRegistration, error) {
	const query = `SELECT id, guild_id, channel_id, message_id FROM leaderboard_messages`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LeaderboardRegistration
	for rows.Next() {
		var reg domain.LeaderboardRegistration
		if err := rows.Scan(&reg.ID, &reg.GuildID, &reg.ChannelID, &reg.MessageID); err != nil {
			return nil, err
		}
		result = append(result, reg)
	}
	return result, rows.Err()
}

func (r *leaderboardRepository) DeleteByMessage(ctx context.Context, messageID string) error {
	const query = `DELETE FROM leaderboard_messages WHERE message_id = $1`
	_, err := r.pool.Exec(ctx, query, messageID)
	return err
}
