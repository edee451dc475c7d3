package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
)

// GuildConfigRepository stores per-guild settings.
type GuildConfigRepository interface {
	// Get returns nil without error when the guild has no record yet.
	Get(ctx context.Context, guildID string) (*domain.GuildConfig, error)
	// SetField upserts a single configuration column.
	SetField(ctx context.Context, guildID string, field domain.ConfigField, value string) error
}

// settableColumns whitelists columns reachable through SetField. Field names
// are interpolated into SQL, so anything outside this set is rejected.
var settableColumns = map[domain.ConfigField]struct{}{
	domain.ConfigFieldLogsChannel:        {},
	domain.ConfigFieldTranscriptsChannel: {},
	domain.ConfigFieldTicketCategory:     {},
	domain.ConfigFieldLowStaffRole:       {},
	domain.ConfigFieldHighStaffRole:      {},
}

type guildConfigRepository struct {
	pool *pgxpool.Pool
}

// NewGuildConfigRepository builds repository.
func NewGuildConfigRepository(pool *pgxpool.Pool) GuildConfigRepository {
	return &guildConfigRepository{pool: pool}
}

func (r *guildConfigRepository) Get(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	const query = `
        SELECT guild_id, logs_channel_id, transcripts_channel_id, ticket_category_id,
               low_staff_role_id, high_staff_role_id
        FROM guild_config WHERE guild_id = $1`
	var cfg domain.GuildConfig
	err := r.pool.QueryRow(ctx, query, guildID).Scan(
		&cfg.GuildID,
		&cfg.LogsChannelID,
		&cfg.TranscriptsChannelID,
		&cfg.TicketCategoryID,
		&cfg.LowStaffRoleID,
		&cfg.HighStaffRoleID,
	)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *guildConfigRepository) SetField(ctx context.Context, guildID string, field domain.ConfigField, value string) error {
	if _, ok := settableColumns[field]; !ok {
		return fmt.Errorf("unknown config field %q", field)
	}
	query := fmt.Sprintf(`
        INSERT INTO guild_config (guild_id, %[1]s) VALUES ($1, $2)
        ON CONFLICT (guild_id) DO UPDATE SET %[1]s = EXCLUDED.%[1]s`, field)
	_, err := r.pool.Exec(ctx, query, guildID, value)
	return err
}
