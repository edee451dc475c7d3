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

func (r *Router) handleOpenTicket(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	ticket, _, err := r.tickets.Create(ctx, actor(i), i.GuildID, i.Member.User.Username)
	if err != nil {
		r.respondError(s, i, "ticket_open", err)
		return
	}

	channelName := r.channelName(ctx, ticket.ChannelID)
	welcome := platform.Message{
		Content:    fmt.Sprintf("<@%s>", ticket.UserID),
		Embed:      render.TicketEmbed(ticket, channelName),
		Components: render.TicketActionRows(""),
	}
	if _, err := r.platform.SendMessage(ctx, ticket.ChannelID, welcome); err != nil {
		r.logger.Warn("ticket welcome message failed",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}

	r.respondEphemeral(s, i, fmt.Sprintf("Your ticket has been created: <#%s>", ticket.ChannelID), nil, nil)
}

func (r *Router) handleClaim(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	ticket, err := r.tickets.Claim(ctx, actor(i), i.ChannelID)
	if err != nil {
		r.respondError(s, i, "ticket_claim", err)
		return
	}

	channelName := r.channelName(ctx, i.ChannelID)
	r.respondUpdate(s, i,
		[]*discordgo.MessageEmbed{render.TicketEmbed(ticket, channelName)},
		render.TicketActionRows(i.Member.User.Username))
}

func (r *Router) openCloseModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r.openModal(s, i, render.ModalCloseTicket, "Close Ticket", discordgo.TextInput{
		CustomID:    render.InputCloseReason,
		Label:       "Close reason",
		Style:       discordgo.TextInputParagraph,
		Placeholder: "Why is this ticket being closed?",
		Required:    false,
		MaxLength:   500,
	})
}

func (r *Router) handleCloseSubmitted(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	reason := modalValue(i.ModalSubmitData(), render.InputCloseReason)
	if reason == "" {
		reason = "No reason provided"
	}

	if _, err := r.tickets.Close(ctx, actor(i), i.ChannelID, reason); err != nil {
		r.respondError(s, i, "ticket_close", err)
		return
	}
	r.respondEphemeral(s, i, "Ticket closed.", nil, nil)
}

func (r *Router) handleStaffOptions(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := r.tickets.AuthorizeStaff(ctx, actor(i), i.ChannelID); err != nil {
		r.respondError(s, i, "ticket_staff_options", err)
		return
	}
	r.respondEphemeral(s, i, "Staff controls for this ticket:", nil, render.StaffControlRows())
}

func (r *Router) openRenameModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r.openModal(s, i, render.ModalRenameTicket, "Rename Ticket", discordgo.TextInput{
		CustomID:  render.InputNewName,
		Label:     "New channel name",
		Style:     discordgo.TextInputShort,
		Required:  true,
		MaxLength: 100,
	})
}

func (r *Router) handleRenameSubmitted(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	newName := modalValue(i.ModalSubmitData(), render.InputNewName)
	if err := r.tickets.Rename(ctx, actor(i), i.ChannelID, newName); err != nil {
		r.respondError(s, i, "ticket_rename", err)
		return
	}
	r.respondEphemeral(s, i, "Ticket renamed.", nil, nil)
}

func (r *Router) handleTranscript(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	url, err := r.tickets.Transcript(ctx, actor(i), i.ChannelID)
	if err != nil {
		r.respondError(s, i, "ticket_transcript", err)
		return
	}
	r.respondEphemeral(s, i, "Transcript saved.", nil,
		[]discordgo.MessageComponent{render.LinkButtonRow("Download Transcript", url)})
}

func (r *Router) handleAddUserPrompt(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := r.tickets.AuthorizeStaff(ctx, actor(i), i.ChannelID); err != nil {
		r.respondError(s, i, "ticket_add_user", err)
		return
	}
	r.respondEphemeral(s, i, "Select a user to add to this ticket:", nil,
		[]discordgo.MessageComponent{render.AddUserSelectRow()})
}

func (r *Router) handleAddUserSelected(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	if err := r.tickets.AddParticipant(ctx, actor(i), i.ChannelID, values[0]); err != nil {
		r.respondError(s, i, "select_add_user", err)
		return
	}
	r.respondEphemeral(s, i, fmt.Sprintf("<@%s> has been added to this ticket.", values[0]), nil, nil)
}

func (r *Router) handleRemoveUserPrompt(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	removable, err := r.tickets.RemovableParticipants(ctx, actor(i), i.ChannelID)
	if err != nil {
		r.respondError(s, i, "ticket_remove_user", err)
		return
	}
	if len(removable) == 0 {
		r.respondEphemeral(s, i, "There are no removable participants in this ticket.", nil, nil)
		return
	}

	options := make([]discordgo.SelectMenuOption, 0, len(removable))
	for _, userID := range removable {
		label := userID
		if member, memberErr := r.platform.GuildMember(ctx, i.GuildID, userID); memberErr == nil && member.User != nil {
			label = member.User.Username
		}
		options = append(options, discordgo.SelectMenuOption{Label: label, Value: userID})
	}
	r.respondEphemeral(s, i, "Select a user to remove from this ticket:", nil,
		[]discordgo.MessageComponent{render.RemoveUserSelectRow(options)})
}

func (r *Router) handleRemoveUserSelected(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	if err := r.tickets.RemoveParticipant(ctx, actor(i), i.ChannelID, values[0]); err != nil {
		r.respondError(s, i, "select_remove_user", err)
		return
	}
	r.respondEphemeral(s, i, fmt.Sprintf("<@%s> has been removed from this ticket.", values[0]), nil, nil)
}

func (r *Router) handlePriorityPrompt(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := r.tickets.AuthorizeStaff(ctx, actor(i), i.ChannelID); err != nil {
		r.respondError(s, i, "ticket_change_priority", err)
		return
	}
	r.respondEphemeral(s, i, "Select the new priority:", nil,
		[]discordgo.MessageComponent{render.PrioritySelectRow()})
}

func (r *Router) handlePrioritySelected(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	priority := domain.TicketPriority(values[0])
	ticket, err := r.tickets.ChangePriority(ctx, actor(i), i.ChannelID, priority)
	if err != nil {
		r.respondError(s, i, "select_priority", err)
		return
	}
	r.respondEphemeral(s, i,
		fmt.Sprintf("Priority set to **%s**.", domain.PriorityLabels[ticket.Priority]), nil, nil)
}

func (r *Router) handleEscalate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	_, cfg, err := r.tickets.Escalate(ctx, actor(i), i.ChannelID)
	if err != nil {
		r.respondError(s, i, "ticket_escalate", err)
		return
	}

	highRole := ""
	if cfg != nil && cfg.HighStaffRoleID != nil {
		highRole = *cfg.HighStaffRoleID
	}
	notice := platform.Message{Embed: render.EscalationNoticeEmbed(highRole)}
	if _, sendErr := r.platform.SendMessage(ctx, i.ChannelID, notice); sendErr != nil {
		r.logger.Warn("escalation notice failed", zap.String("channel_id", i.ChannelID), zap.Error(sendErr))
	}
	r.respondEphemeral(s, i, "Ticket escalated to senior staff.", nil, nil)
}

func (r *Router) handleViewNotes(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	notes, err := r.tickets.Notes(ctx, actor(i), i.ChannelID, 10)
	if err != nil {
		r.respondError(s, i, "ticket_view_notes", err)
		return
	}
	channelName := r.channelName(ctx, i.ChannelID)
	r.respondEphemeral(s, i, "", []*discordgo.MessageEmbed{render.NotesEmbed(channelName, notes)}, nil)
}

func (r *Router) openNoteModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r.openModal(s, i, render.ModalStaffNote, "Add Staff Note", discordgo.TextInput{
		CustomID:  render.InputNoteContent,
		Label:     "Note",
		Style:     discordgo.TextInputParagraph,
		Required:  true,
		MaxLength: 1000,
	})
}

func (r *Router) handleNoteSubmitted(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	content := modalValue(i.ModalSubmitData(), render.InputNoteContent)
	if _, err := r.tickets.AddNote(ctx, actor(i), i.ChannelID, content); err != nil {
		r.respondError(s, i, "ticket_add_note", err)
		return
	}
	r.respondEphemeral(s, i, "Note added.", nil, nil)
}

func (r *Router) openModal(s *discordgo.Session, i *discordgo.InteractionCreate, customID, title string, input discordgo.TextInput) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customID,
			Title:    title,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}},
			},
		},
	})
	if err != nil {
		r.logger.Warn("modal open failed", zap.String("modal", customID), zap.Error(err))
	}
}

func (r *Router) channelName(ctx context.Context, channelID string) string {
	if ch, err := r.platform.Channel(ctx, channelID); err == nil {
		return ch.Name
	}
	return channelID
}

// modalValue extracts one text input's value from a modal submission.
func modalValue(data discordgo.ModalSubmitInteractionData, inputID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == inputID {
				return input.Value
			}
		}
	}
	return ""
}
