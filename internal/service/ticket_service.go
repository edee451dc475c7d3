package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/auth"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/events"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/platform"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/render"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/repository"
	apperrors "github.com/ddex3/Shaked-Discord-Ticket-System/pkg/util"
)

// Channel permission grants used for ticket channels.
const (
	participantAllow = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionAttachFiles |
		discordgo.PermissionReadMessageHistory
	botAllow = participantAllow |
		discordgo.PermissionManageChannels |
		discordgo.PermissionManageMessages
)

// Actor is the member performing an action, as carried by the interaction
// payload. Roles and the admin flag are fresh for every interaction, which
// is what lets Classify run synchronously inside each guard.
type Actor struct {
	UserID  string
	Roles   []string
	IsAdmin bool
}

// CloseResult reports what the close flow accomplished.
type CloseResult struct {
	Ticket        *domain.Ticket
	TranscriptURL string
}

// TicketService is the ticket lifecycle engine. Every transition re-reads
// current state before its conditional write, so racing actions resolve to
// exactly one winner.
type TicketService struct {
	tickets     repository.TicketRepository
	notes       repository.StaffNoteRepository
	configs     repository.GuildConfigRepository
	platform    platform.Client
	transcripts *TranscriptService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	closeGrace  time.Duration
}

// TicketDependencies bundles collaborators for the lifecycle engine.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	NoteRepo    repository.StaffNoteRepository
	ConfigRepo  repository.GuildConfigRepository
	Platform    platform.Client
	Transcripts *TranscriptService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	CloseGrace  time.Duration
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	grace := deps.CloseGrace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		notes:       deps.NoteRepo,
		configs:     deps.ConfigRepo,
		platform:    deps.Platform,
		transcripts: deps.Transcripts,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		closeGrace:  grace,
	}
}

// GuildConfig returns the guild's settings record, which may be nil.
func (s *TicketService) GuildConfig(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	return s.configs.Get(ctx, guildID)
}

// SetConfigField updates one guild setting. Administrators only.
func (s *TicketService) SetConfigField(ctx context.Context, actor Actor, guildID string, field domain.ConfigField, value string) error {
	if !actor.IsAdmin {
		return apperrors.NewForbidden("Only administrators can configure the ticket system.")
	}
	return s.configs.SetField(ctx, guildID, field, value)
}

// TicketByChannel resolves the ticket hosted by a channel.
func (s *TicketService) TicketByChannel(ctx context.Context, channelID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("This ticket")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

// Create opens a new ticket for the actor: allocates the next ticket
// number, creates the private hosting channel, and records the ticket. The
// caller posts the ticket panel from the returned record.
func (s *TicketService) Create(ctx context.Context, actor Actor, guildID, username string) (*domain.Ticket, *domain.GuildConfig, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	if !cfg.FullyConfigured() {
		return nil, nil, apperrors.NewConfigIncomplete()
	}

	existing, err := s.tickets.GetOpenByUser(ctx, actor.UserID, guildID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperrors.NewInternalError(err)
	}
	if existing != nil {
		return nil, nil, apperrors.NewDuplicateTicket(existing.ChannelID)
	}

	overwrites := []platform.Overwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: actor.UserID, Type: discordgo.PermissionOverwriteTypeMember, Allow: participantAllow},
		{ID: s.platform.BotUserID(), Type: discordgo.PermissionOverwriteTypeMember, Allow: botAllow},
		{ID: *cfg.LowStaffRoleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: participantAllow},
		{ID: *cfg.HighStaffRoleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: participantAllow},
	}

	channel, err := s.platform.CreateTextChannel(ctx, guildID, platform.ChannelCreate{
		Name:       "ticket-" + sanitizeChannelName(username),
		ParentID:   *cfg.TicketCategoryID,
		Overwrites: overwrites,
	})
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	ticket, err := s.tickets.Create(ctx, actor.UserID, channel.ID, guildID)
	if err != nil {
		// The channel was created ahead of the record; drop it so a failed
		// create leaves nothing behind.
		if delErr := s.platform.DeleteChannel(ctx, channel.ID); delErr != nil {
			s.logger.Warn("orphaned ticket channel could not be deleted",
				zap.String("channel_id", channel.ID), zap.Error(delErr))
		}
		if errors.Is(err, repository.ErrDuplicateOpenTicket) {
			if racing, lookupErr := s.tickets.GetOpenByUser(ctx, actor.UserID, guildID); lookupErr == nil && racing != nil {
				return nil, nil, apperrors.NewDuplicateTicket(racing.ChannelID)
			}
			return nil, nil, apperrors.NewDuplicateTicket("")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventTicketCreated, ticket, actor.UserID, "")
	return ticket, cfg, nil
}

// Claim marks the actor as the ticket's claimant. The claimant is sticky:
// re-assignment is not supported, only Close releases a ticket.
func (s *TicketService) Claim(ctx context.Context, actor Actor, channelID string) (*domain.Ticket, error) {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "Only staff members can claim tickets."); err != nil {
		return nil, err
	}

	updated, err := s.tickets.Claim(ctx, ticket.ID, actor.UserID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !updated {
		// The guard did not match: either someone claimed it between our
		// read and the write, or the ticket closed underneath us.
		fresh, freshErr := s.tickets.GetByID(ctx, ticket.ID)
		if freshErr == nil && fresh.ClaimedBy != nil {
			return nil, apperrors.NewAlreadyClaimed(*fresh.ClaimedBy)
		}
		return nil, apperrors.NewNotFound("This ticket")
	}

	fresh, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventTicketClaimed, fresh, actor.UserID, "")
	return fresh, nil
}

// ChangePriority updates a live ticket's priority.
func (s *TicketService) ChangePriority(ctx context.Context, actor Actor, channelID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	if _, ok := domain.PriorityLabels[priority]; !ok {
		return nil, apperrors.NewInternalError(errors.New("unknown priority value"))
	}
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "This action is restricted to staff members."); err != nil {
		return nil, err
	}

	updated, err := s.tickets.UpdatePriority(ctx, ticket.ID, priority)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !updated {
		return nil, apperrors.NewNotFound("This ticket")
	}

	fresh, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventPriorityChanged, fresh, actor.UserID, string(priority))
	return fresh, nil
}

// Escalate raises the ticket to senior staff and grants the high-staff role
// channel access. The role grant is idempotent: an existing overwrite is
// never touched.
func (s *TicketService) Escalate(ctx context.Context, actor Actor, channelID string) (*domain.Ticket, *domain.GuildConfig, error) {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "This action is restricted to staff members."); err != nil {
		return nil, nil, err
	}
	if ticket.Status == domain.TicketStatusEscalated {
		return nil, nil, apperrors.NewAlreadyEscalated()
	}

	updated, err := s.tickets.Escalate(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	if !updated {
		fresh, freshErr := s.tickets.GetByID(ctx, ticket.ID)
		if freshErr == nil && fresh.Status == domain.TicketStatusEscalated {
			return nil, nil, apperrors.NewAlreadyEscalated()
		}
		return nil, nil, apperrors.NewNotFound("This ticket")
	}

	cfg, err := s.configs.Get(ctx, ticket.GuildID)
	if err == nil && cfg != nil && cfg.HighStaffRoleID != nil {
		if grantErr := s.grantRoleIfAbsent(ctx, channelID, *cfg.HighStaffRoleID); grantErr != nil {
			s.logger.Warn("high staff role grant failed",
				zap.String("channel_id", channelID), zap.Error(grantErr))
		}
	}

	fresh, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventTicketEscalated, fresh, actor.UserID, "")
	return fresh, cfg, nil
}

// Close terminates the ticket. The record mutation lands first; transcript,
// audit embed, closing notice and channel removal are best-effort and never
// roll it back.
func (s *TicketService) Close(ctx context.Context, actor Actor, channelID, reason string) (*CloseResult, error) {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	capability, err := s.classify(ctx, actor, ticket.GuildID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != ticket.UserID && !capability.AtLeast(auth.CapabilityStaff) {
		return nil, apperrors.NewForbidden("You do not have permission to close this ticket.")
	}

	closed, err := s.tickets.Close(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !closed {
		return nil, apperrors.NewNotFound("This ticket")
	}

	fresh, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		fresh = ticket
	}

	channelName := channelID
	if ch, chErr := s.platform.Channel(ctx, channelID); chErr == nil {
		channelName = ch.Name
	}

	cfg, _ := s.configs.Get(ctx, ticket.GuildID)

	transcriptURL := ""
	if s.transcripts != nil && cfg != nil && cfg.TranscriptsChannelID != nil {
		transcriptURL = s.transcripts.Generate(ctx, fresh, channelName, actor.UserID, *cfg.TranscriptsChannelID)
	}

	if cfg != nil && cfg.LogsChannelID != nil {
		logMsg := platform.Message{Embed: render.CloseLogEmbed(render.CloseLog{
			Ticket:        fresh,
			ChannelName:   channelName,
			CloseReason:   reason,
			ClosedBy:      actor.UserID,
			TranscriptURL: transcriptURL,
		})}
		if transcriptURL != "" {
			logMsg.Components = []discordgo.MessageComponent{render.LinkButtonRow("Transcript", transcriptURL)}
		}
		if _, sendErr := s.platform.SendMessage(ctx, *cfg.LogsChannelID, logMsg); sendErr != nil {
			s.logger.Warn("close log post failed", zap.Int64("ticket_id", ticket.ID), zap.Error(sendErr))
		}
	}

	notice := platform.Message{Embed: render.ClosingNoticeEmbed(s.closeGrace)}
	if _, sendErr := s.platform.SendMessage(ctx, channelID, notice); sendErr != nil {
		s.logger.Warn("closing notice failed", zap.Int64("ticket_id", ticket.ID), zap.Error(sendErr))
	}

	s.publish(ctx, events.EventTicketClosed, fresh, actor.UserID, reason)

	// Leave the notice readable before the channel goes away. Removal
	// failure is swallowed; the record is already closed.
	time.AfterFunc(s.closeGrace, func() {
		if delErr := s.platform.DeleteChannel(context.Background(), channelID); delErr != nil {
			s.logger.Warn("ticket channel removal failed",
				zap.String("channel_id", channelID), zap.Error(delErr))
		}
	})

	return &CloseResult{Ticket: fresh, TranscriptURL: transcriptURL}, nil
}

// AuthorizeStaff verifies the actor holds at least staff capability in the
// guild hosting the ticket channel.
func (s *TicketService) AuthorizeStaff(ctx context.Context, actor Actor, channelID string) error {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return err
	}
	return s.requireStaff(ctx, actor, ticket.GuildID, "This panel is restricted to staff members.")
}

// Transcript generates and posts a transcript of the ticket channel without
// closing it.
func (s *TicketService) Transcript(ctx context.Context, actor Actor, channelID string) (string, error) {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return "", err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "This action is restricted to staff members."); err != nil {
		return "", err
	}

	cfg, err := s.configs.Get(ctx, ticket.GuildID)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if cfg == nil || cfg.TranscriptsChannelID == nil {
		return "", apperrors.NewConfigIncomplete()
	}

	channelName := channelID
	if ch, chErr := s.platform.Channel(ctx, channelID); chErr == nil {
		channelName = ch.Name
	}

	url := s.transcripts.Generate(ctx, ticket, channelName, actor.UserID, *cfg.TranscriptsChannelID)
	if url == "" {
		return "", apperrors.NewInternalError(errors.New("transcript generation failed"))
	}
	return url, nil
}

// AddNote appends a staff note to the ticket.
func (s *TicketService) AddNote(ctx context.Context, actor Actor, channelID, content string) (*domain.StaffNote, error) {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "This action is restricted to staff members."); err != nil {
		return nil, err
	}

	note := &domain.StaffNote{
		TicketID: ticket.ID,
		AuthorID: actor.UserID,
		Content:  strings.TrimSpace(content),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventNoteAdded, ticket, actor.UserID, "")
	return note, nil
}

// Notes lists the latest staff notes, newest first.
func (s *TicketService) Notes(ctx context.Context, actor Actor, channelID string, limit int) ([]domain.StaffNote, error) {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "This action is restricted to staff members."); err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByTicket(ctx, ticket.ID, limit)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return notes, nil
}

// Rename changes the hosting channel's display name. The channel identity
// and ticket record are untouched.
func (s *TicketService) Rename(ctx context.Context, actor Actor, channelID, newName string) error {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "This action is restricted to staff members."); err != nil {
		return err
	}
	if err := s.platform.RenameChannel(ctx, channelID, sanitizeChannelName(newName)); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventTicketRenamed, ticket, actor.UserID, newName)
	return nil
}

// AddParticipant grants a user visibility into the ticket channel.
func (s *TicketService) AddParticipant(ctx context.Context, actor Actor, channelID, targetUserID string) error {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "This action is restricted to staff members."); err != nil {
		return err
	}
	err = s.platform.UpsertOverwrite(ctx, channelID, platform.Overwrite{
		ID:    targetUserID,
		Type:  discordgo.PermissionOverwriteTypeMember,
		Allow: participantAllow,
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventParticipantAdded, ticket, actor.UserID, targetUserID)
	return nil
}

// RemoveParticipant revokes a non-protected user's channel visibility.
func (s *TicketService) RemoveParticipant(ctx context.Context, actor Actor, channelID, targetUserID string) error {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "This action is restricted to staff members."); err != nil {
		return err
	}

	cfg, err := s.configs.Get(ctx, ticket.GuildID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if s.protectedPrincipals(ticket, cfg)[targetUserID] {
		return apperrors.NewForbidden("That user cannot be removed from this ticket.")
	}

	if err := s.platform.DeleteOverwrite(ctx, channelID, targetUserID); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventParticipantRemoved, ticket, actor.UserID, targetUserID)
	return nil
}

// RemovableParticipants lists member overwrites on the ticket channel that
// may legally be revoked: never the owner, the bot, the guild root, or a
// staff role.
func (s *TicketService) RemovableParticipants(ctx context.Context, actor Actor, channelID string) ([]string, error) {
	ticket, err := s.TicketByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaff(ctx, actor, ticket.GuildID, "This action is restricted to staff members."); err != nil {
		return nil, err
	}

	channel, err := s.platform.Channel(ctx, channelID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	cfg, err := s.configs.Get(ctx, ticket.GuildID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	protected := s.protectedPrincipals(ticket, cfg)
	var removable []string
	for _, ow := range channel.PermissionOverwrites {
		if ow.Type != discordgo.PermissionOverwriteTypeMember {
			continue
		}
		if protected[ow.ID] {
			continue
		}
		removable = append(removable, ow.ID)
	}
	return removable, nil
}

func (s *TicketService) protectedPrincipals(ticket *domain.Ticket, cfg *domain.GuildConfig) map[string]bool {
	protected := map[string]bool{
		ticket.UserID:          true,
		s.platform.BotUserID(): true,
		ticket.GuildID:         true,
	}
	if cfg != nil {
		if cfg.LowStaffRoleID != nil {
			protected[*cfg.LowStaffRoleID] = true
		}
		if cfg.HighStaffRoleID != nil {
			protected[*cfg.HighStaffRoleID] = true
		}
	}
	return protected
}

func (s *TicketService) grantRoleIfAbsent(ctx context.Context, channelID, roleID string) error {
	channel, err := s.platform.Channel(ctx, channelID)
	if err != nil {
		return err
	}
	for _, ow := range channel.PermissionOverwrites {
		if ow.ID == roleID {
			return nil
		}
	}
	return s.platform.UpsertOverwrite(ctx, channelID, platform.Overwrite{
		ID:    roleID,
		Type:  discordgo.PermissionOverwriteTypeRole,
		Allow: participantAllow,
	})
}

// classify resolves the actor's capability against the guild's current
// configuration. Fetched fresh for every guard.
func (s *TicketService) classify(ctx context.Context, actor Actor, guildID string) (auth.Capability, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return auth.CapabilityNone, apperrors.NewInternalError(err)
	}
	return auth.Classify(cfg, actor.Roles, actor.IsAdmin), nil
}

func (s *TicketService) requireStaff(ctx context.Context, actor Actor, guildID, denial string) error {
	capability, err := s.classify(ctx, actor, guildID)
	if err != nil {
		return err
	}
	if !capability.AtLeast(auth.CapabilityStaff) {
		return apperrors.NewForbidden(denial)
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticket *domain.Ticket, actorID, detail string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.ID,
		GuildID:   ticket.GuildID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Detail:    detail,
	})
}

// sanitizeChannelName lowercases and strips characters Discord rejects in
// channel names.
func sanitizeChannelName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	out := b.String()
	if out == "" {
		return "ticket"
	}
	if len(out) > 100 {
		out = out[:100]
	}
	return out
}
