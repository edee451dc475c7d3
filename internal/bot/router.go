package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/observability"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/platform"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/render"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/service"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/session"
	apperrors "github.com/ddex3/Shaked-Discord-Ticket-System/pkg/util"
)

// Router dispatches gateway interactions to handlers.
type Router struct {
	tickets     *service.TicketService
	leaderboard *service.LeaderboardService
	help        *service.HelpService
	sessions    *session.Store
	platform    platform.Client
	metrics     *observability.Metrics
	logger      *zap.Logger
	botName     string
}

// RouterDependencies bundles collaborators for the router.
type RouterDependencies struct {
	Tickets     *service.TicketService
	Leaderboard *service.LeaderboardService
	Help        *service.HelpService
	Sessions    *session.Store
	Platform    platform.Client
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	BotName     string
}

// NewRouter constructs the router.
func NewRouter(deps RouterDependencies) *Router {
	return &Router{
		tickets:     deps.Tickets,
		leaderboard: deps.Leaderboard,
		help:        deps.Help,
		sessions:    deps.Sessions,
		platform:    deps.Platform,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		botName:     deps.BotName,
	}
}

// HandleInteraction is the single gateway entry point, registered as the
// session's InteractionCreate handler.
func (r *Router) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.User == nil {
		return
	}
	ctx := context.Background()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		r.handleCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		r.handleComponent(ctx, s, i)
	case discordgo.InteractionModalSubmit:
		r.handleModal(ctx, s, i)
	}
}

func (r *Router) handleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	r.metrics.RecordAction("command:" + name)

	switch name {
	case CommandHelp:
		r.handleHelpCommand(ctx, s, i)
	case CommandConfig:
		r.handleConfigCommand(ctx, s, i)
	case CommandSendPanel:
		r.handleSendPanel(ctx, s, i)
	case CommandLeaderboard:
		r.handleLeaderboardCommand(ctx, s, i)
	}
}

func (r *Router) handleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	r.metrics.RecordAction("component:" + customID)

	switch customID {
	case render.ButtonOpenTicket:
		r.handleOpenTicket(ctx, s, i)
	case render.ButtonClaimTicket:
		r.handleClaim(ctx, s, i)
	case render.ButtonCloseTicket:
		r.openCloseModal(s, i)
	case render.ButtonStaffOptions:
		r.handleStaffOptions(ctx, s, i)
	case render.ButtonRenameTicket:
		r.openRenameModal(s, i)
	case render.ButtonSendTranscript:
		r.handleTranscript(ctx, s, i)
	case render.ButtonAddUser:
		r.handleAddUserPrompt(ctx, s, i)
	case render.ButtonRemoveUser:
		r.handleRemoveUserPrompt(ctx, s, i)
	case render.ButtonChangePriority:
		r.handlePriorityPrompt(ctx, s, i)
	case render.ButtonEscalateTicket:
		r.handleEscalate(ctx, s, i)
	case render.ButtonViewNotes:
		r.handleViewNotes(ctx, s, i)
	case render.ButtonAddNote:
		r.openNoteModal(s, i)
	case render.SelectPriority:
		r.handlePrioritySelected(ctx, s, i)
	case render.SelectAddUser:
		r.handleAddUserSelected(ctx, s, i)
	case render.SelectRemoveUser:
		r.handleRemoveUserSelected(ctx, s, i)
	case render.ButtonHelpPrevious, render.ButtonHelpHome, render.ButtonHelpNext:
		r.handleHelpNavigation(ctx, s, i, customID)
	}
}

func (r *Router) handleModal(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.ModalSubmitData().CustomID
	r.metrics.RecordAction("modal:" + customID)

	switch customID {
	case render.ModalCloseTicket:
		r.handleCloseSubmitted(ctx, s, i)
	case render.ModalRenameTicket:
		r.handleRenameSubmitted(ctx, s, i)
	case render.ModalStaffNote:
		r.handleNoteSubmitted(ctx, s, i)
	}
}

// actor builds the acting member's identity from the interaction payload.
// Roles and the admin bit are taken from the payload itself, so every guard
// sees the member's state at press time.
func actor(i *discordgo.InteractionCreate) service.Actor {
	return service.Actor{
		UserID:  i.Member.User.ID,
		Roles:   i.Member.Roles,
		IsAdmin: i.Member.Permissions&discordgo.PermissionAdministrator != 0,
	}
}

func (r *Router) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     embeds,
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		r.logger.Warn("interaction response failed", zap.Error(err))
	}
}

func (r *Router) respondUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     embeds,
			Components: components,
		},
	})
	if err != nil {
		r.logger.Warn("interaction update failed", zap.Error(err))
	}
}

// respondError turns a workflow error into an ephemeral notice.
func (r *Router) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, action string, err error) {
	domainErr := apperrors.ToDomainError(err)
	r.metrics.RecordFailure(action, domainErr.Code)
	if domainErr.Code == apperrors.CodeInternal {
		r.logger.Error("interaction failed",
			zap.String("action", action),
			zap.String("user_id", i.Member.User.ID),
			zap.Error(domainErr))
	}
	r.respondEphemeral(s, i, domainErr.UserMessage(), nil, nil)
}
