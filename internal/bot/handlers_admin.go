package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/platform"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/render"
)

// configFields maps config subcommands to their settings column.
var configFields = map[string]domain.ConfigField{
	SubcommandLogsChannel:        domain.ConfigFieldLogsChannel,
	SubcommandTranscriptsChannel: domain.ConfigFieldTranscriptsChannel,
	SubcommandTicketCategory:     domain.ConfigFieldTicketCategory,
	SubcommandLowStaffRole:       domain.ConfigFieldLowStaffRole,
	SubcommandHighStaffRole:      domain.ConfigFieldHighStaffRole,
}

func (r *Router) handleConfigCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}
	sub := options[0]

	if sub.Name == SubcommandView {
		cfg, err := r.tickets.GuildConfig(ctx, i.GuildID)
		if err != nil {
			r.respondError(s, i, "ticket_config_view", err)
			return
		}
		r.respondEphemeral(s, i, "", []*discordgo.MessageEmbed{render.ConfigViewEmbed(cfg)}, nil)
		return
	}

	field, ok := configFields[sub.Name]
	if !ok || len(sub.Options) == 0 {
		return
	}

	var value, display string
	switch sub.Options[0].Type {
	case discordgo.ApplicationCommandOptionChannel:
		channel := sub.Options[0].ChannelValue(nil)
		value = channel.ID
		display = fmt.Sprintf("<#%s>", channel.ID)
	case discordgo.ApplicationCommandOptionRole:
		role := sub.Options[0].RoleValue(nil, i.GuildID)
		value = role.ID
		display = fmt.Sprintf("<@&%s>", role.ID)
	default:
		return
	}

	if err := r.tickets.SetConfigField(ctx, actor(i), i.GuildID, field, value); err != nil {
		r.respondError(s, i, "ticket_config_set", err)
		return
	}
	r.respondEphemeral(s, i, fmt.Sprintf("Setting `%s` updated to %s.", sub.Name, display), nil, nil)
}

func (r *Router) handleSendPanel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !actor(i).IsAdmin {
		r.respondEphemeral(s, i, "Only administrators can post the ticket panel.", nil, nil)
		return
	}

	panel := platform.Message{
		Embed:      render.TicketPanelEmbed(),
		Components: []discordgo.MessageComponent{render.TicketPanelRow()},
	}
	if _, err := r.platform.SendMessage(ctx, i.ChannelID, panel); err != nil {
		r.respondError(s, i, "ticket_send", err)
		return
	}
	r.respondEphemeral(s, i, "Ticket panel posted.", nil, nil)
}

func (r *Router) handleLeaderboardCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !actor(i).IsAdmin {
		r.respondEphemeral(s, i, "Only administrators can publish the leaderboard.", nil, nil)
		return
	}

	reg, err := r.leaderboard.Publish(ctx, i.GuildID, i.ChannelID)
	if err != nil {
		r.respondError(s, i, "ticket_leaderboard", err)
		return
	}
	r.logger.Info("leaderboard published",
		zap.String("guild_id", reg.GuildID),
		zap.String("message_id", reg.MessageID))
	r.respondEphemeral(s, i, "Leaderboard published. It will keep itself up to date.", nil, nil)
}
