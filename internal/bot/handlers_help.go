package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/render"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/service"
)

func (r *Router) handleHelpCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	pages := r.help.BuildPages(r.botName, actor(i).IsAdmin)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pages[0]},
			Components: []discordgo.MessageComponent{render.HelpNavRow(0, len(pages))},
		},
	})
	if err != nil {
		r.logger.Warn("help response failed", zap.Error(err))
		return
	}

	// The cursor is keyed by the posted message, so look its id up.
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		r.logger.Warn("help response lookup failed", zap.Error(err))
		return
	}
	r.sessions.SetPage(ctx, i.Member.User.ID, msg.ID, 0)
}

func (r *Router) handleHelpNavigation(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	pages := r.help.BuildPages(r.botName, actor(i).IsAdmin)
	current := r.sessions.Page(ctx, i.Member.User.ID, i.Message.ID)

	switch customID {
	case render.ButtonHelpPrevious:
		current--
	case render.ButtonHelpNext:
		current++
	case render.ButtonHelpHome:
		current = 0
	}
	current = service.Clamp(current, len(pages))

	r.respondUpdate(s, i,
		[]*discordgo.MessageEmbed{pages[current]},
		[]discordgo.MessageComponent{render.HelpNavRow(current, len(pages))})
	r.sessions.SetPage(ctx, i.Member.User.ID, i.Message.ID, current)
}
