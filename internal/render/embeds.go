package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
)

func mention(userID string) string     { return fmt.Sprintf("<@%s>", userID) }
func roleMention(roleID string) string { return fmt.Sprintf("<@&%s>", roleID) }
func channelRef(channelID string) string {
	return fmt.Sprintf("<#%s>", channelID)
}

func discordTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:F>", t.Unix())
}

func relativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// TicketPanelEmbed is the public "open a ticket" panel.
func TicketPanelEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Support Tickets",
		Description: "Need help? Press the button below to open a private ticket with the staff team.",
		Color:       ColorPrimary,
	}
}

// TicketPanelRow holds the Open Ticket button.
func TicketPanelRow() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Open Ticket",
				Style:    discordgo.PrimaryButton,
				CustomID: ButtonOpenTicket,
			},
		},
	}
}

// TicketEmbed is the control message shown inside a ticket channel.
func TicketEmbed(ticket *domain.Ticket, channelName string) *discordgo.MessageEmbed {
	claimedBy := "Unclaimed"
	if ticket.ClaimedBy != nil {
		claimedBy = mention(*ticket.ClaimedBy)
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Ticket #%d - %s", ticket.TicketNumber, channelName),
		Description: "Support will be with you shortly.\n" +
			"Use the buttons below to manage this ticket.",
		Color: ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Opened By", Value: mention(ticket.UserID), Inline: true},
			{Name: "Status", Value: domain.StatusLabels[ticket.Status], Inline: true},
			{Name: "Priority", Value: domain.PriorityLabels[ticket.Priority], Inline: true},
			{Name: "Claimed By", Value: claimedBy, Inline: true},
			{Name: "Opened At", Value: discordTimestamp(ticket.CreatedAt), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// TicketActionRows builds the primary ticket buttons. When the ticket is
// claimed the claim button is disabled and labeled with the claimant.
func TicketActionRows(claimedByName string) []discordgo.MessageComponent {
	claimLabel := "Claim"
	claimed := claimedByName != ""
	if claimed {
		claimLabel = "Claimed by " + claimedByName
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    claimLabel,
					Style:    discordgo.SuccessButton,
					CustomID: ButtonClaimTicket,
					Disabled: claimed,
				},
				discordgo.Button{
					Label:    "Close",
					Style:    discordgo.DangerButton,
					CustomID: ButtonCloseTicket,
				},
				discordgo.Button{
					Label:    "Staff Options",
					Style:    discordgo.SecondaryButton,
					CustomID: ButtonStaffOptions,
				},
			},
		},
	}
}

// StaffControlRows is the ephemeral staff panel.
func StaffControlRows() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Rename", Style: discordgo.SecondaryButton, CustomID: ButtonRenameTicket},
				discordgo.Button{Label: "Transcript", Style: discordgo.SecondaryButton, CustomID: ButtonSendTranscript},
				discordgo.Button{Label: "Add User", Style: discordgo.SecondaryButton, CustomID: ButtonAddUser},
				discordgo.Button{Label: "Remove User", Style: discordgo.SecondaryButton, CustomID: ButtonRemoveUser},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Priority", Style: discordgo.SecondaryButton, CustomID: ButtonChangePriority},
				discordgo.Button{Label: "Escalate", Style: discordgo.DangerButton, CustomID: ButtonEscalateTicket},
				discordgo.Button{Label: "View Notes", Style: discordgo.SecondaryButton, CustomID: ButtonViewNotes},
				discordgo.Button{Label: "Add Note", Style: discordgo.SecondaryButton, CustomID: ButtonAddNote},
			},
		},
	}
}

// PrioritySelectRow is the priority picker.
func PrioritySelectRow() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    SelectPriority,
				Placeholder: "Select the new priority level",
				Options: []discordgo.SelectMenuOption{
					{Label: "Low", Value: string(domain.TicketPriorityLow)},
					{Label: "Medium", Value: string(domain.TicketPriorityMedium)},
					{Label: "High", Value: string(domain.TicketPriorityHigh)},
					{Label: "Urgent", Value: string(domain.TicketPriorityUrgent)},
				},
			},
		},
	}
}

// AddUserSelectRow is a user picker for granting ticket access.
func AddUserSelectRow() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.UserSelectMenu,
				CustomID:    SelectAddUser,
				Placeholder: "Select a user to add",
			},
		},
	}
}

// RemoveUserSelectRow lists removable participants.
func RemoveUserSelectRow(options []discordgo.SelectMenuOption) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    SelectRemoveUser,
				Placeholder: "Select a user to remove",
				Options:     options,
			},
		},
	}
}

// ClosingNoticeEmbed announces the pending channel removal.
func ClosingNoticeEmbed(grace time.Duration) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: fmt.Sprintf("This ticket has been closed. The channel will be removed in %d seconds.",
			int(grace.Seconds())),
		Color: ColorDanger,
	}
}

// EscalationNoticeEmbed announces an escalation inside the ticket channel.
func EscalationNoticeEmbed(highStaffRoleID string) *discordgo.MessageEmbed {
	notified := "Senior staff"
	if highStaffRoleID != "" {
		notified = roleMention(highStaffRoleID)
	}
	return &discordgo.MessageEmbed{
		Description: fmt.Sprintf("This ticket has been escalated. %s has been notified.", notified),
		Color:       ColorEscalated,
	}
}

// CloseLog carries the data for the logs-channel close record.
type CloseLog struct {
	Ticket        *domain.Ticket
	ChannelName   string
	CloseReason   string
	ClosedBy      string
	TranscriptURL string
}

// CloseLogEmbed is posted to the configured logs channel on close.
func CloseLogEmbed(data CloseLog) *discordgo.MessageEmbed {
	claimedBy := "Unclaimed"
	if data.Ticket.ClaimedBy != nil {
		claimedBy = mention(*data.Ticket.ClaimedBy)
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Ticket Closed - %s", data.ChannelName),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket Name", Value: data.ChannelName, Inline: true},
			{Name: "Opened By", Value: mention(data.Ticket.UserID), Inline: true},
			{Name: "Closed By", Value: mention(data.ClosedBy), Inline: true},
			{Name: "Claimed By", Value: claimedBy, Inline: true},
			{Name: "Opened At", Value: discordTimestamp(data.Ticket.CreatedAt), Inline: true},
			{Name: "Closed At", Value: discordTimestamp(time.Now()), Inline: true},
			{Name: "Close Reason", Value: data.CloseReason},
		},
		Color:     ColorDanger,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// TranscriptEmbed annotates an uploaded transcript.
func TranscriptEmbed(ticket *domain.Ticket, channelName, closedBy string) *discordgo.MessageEmbed {
	claimedBy := "Unclaimed"
	if ticket.ClaimedBy != nil {
		claimedBy = mention(*ticket.ClaimedBy)
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Transcript - %s", channelName),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket Owner", Value: mention(ticket.UserID), Inline: true},
			{Name: "Closed By", Value: mention(closedBy), Inline: true},
			{Name: "Claimed By", Value: claimedBy, Inline: true},
			{Name: "Opened At", Value: discordTimestamp(ticket.CreatedAt), Inline: true},
			{Name: "Closed At", Value: discordTimestamp(time.Now()), Inline: true},
		},
		Color:     ColorInfo,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// LinkButtonRow is a single external-link button.
func LinkButtonRow(label, url string) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{Label: label, Style: discordgo.LinkButton, URL: url},
		},
	}
}

// NotesEmbed lists the latest staff notes for a ticket.
func NotesEmbed(channelName string, notes []domain.StaffNote) *discordgo.MessageEmbed {
	text := "No notes have been added yet."
	if len(notes) > 0 {
		lines := make([]string, 0, len(notes))
		for _, note := range notes {
			lines = append(lines, fmt.Sprintf("**%s** - %s\n%s",
				mention(note.AuthorID), relativeTimestamp(note.CreatedAt), note.Content))
		}
		text = strings.Join(lines, "\n\n")
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Staff Notes - %s", channelName),
		Description: text,
		Color:       ColorPrimary,
	}
}

// ConfigViewEmbed shows the current guild configuration.
func ConfigViewEmbed(cfg *domain.GuildConfig) *discordgo.MessageEmbed {
	channelOrUnset := func(id *string) string {
		if id == nil {
			return "Not set"
		}
		return channelRef(*id)
	}
	roleOrUnset := func(id *string) string {
		if id == nil {
			return "Not set"
		}
		return roleMention(*id)
	}
	if cfg == nil {
		cfg = &domain.GuildConfig{}
	}
	return &discordgo.MessageEmbed{
		Title: "Ticket System Configuration",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Logs Channel", Value: channelOrUnset(cfg.LogsChannelID), Inline: true},
			{Name: "Transcripts Channel", Value: channelOrUnset(cfg.TranscriptsChannelID), Inline: true},
			{Name: "Ticket Category", Value: channelOrUnset(cfg.TicketCategoryID), Inline: true},
			{Name: "Low Staff Role", Value: roleOrUnset(cfg.LowStaffRoleID), Inline: true},
			{Name: "High Staff Role", Value: roleOrUnset(cfg.HighStaffRoleID), Inline: true},
		},
		Color:     ColorPrimary,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// LeaderboardEmbed renders the ranked claim-count view. The top three rows
// get medal markers, the rest ordinal numbering.
func LeaderboardEmbed(entries []domain.ClaimCount, interval time.Duration) *discordgo.MessageEmbed {
	medals := []string{"\U0001F947", "\U0001F948", "\U0001F949"}

	description := "No tickets have been claimed yet."
	if len(entries) > 0 {
		lines := make([]string, 0, len(entries))
		for i, entry := range entries {
			prefix := fmt.Sprintf("**%d.**", i+1)
			if i < len(medals) {
				prefix = medals[i]
			}
			plural := "s"
			if entry.Count == 1 {
				plural = ""
			}
			lines = append(lines, fmt.Sprintf("%s %s — **%d** ticket%s",
				prefix, mention(entry.StaffID), entry.Count, plural))
		}
		description = strings.Join(lines, "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       "Ticket Leaderboard",
		Description: description,
		Color:       ColorPrimary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Updates every %d seconds", int(interval.Seconds())),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// HelpNavRow builds the pagination buttons, disabling edges.
func HelpNavRow(currentPage, totalPages int) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Back",
				Style:    discordgo.SecondaryButton,
				CustomID: ButtonHelpPrevious,
				Disabled: currentPage <= 0,
			},
			discordgo.Button{
				Label:    "Home",
				Style:    discordgo.PrimaryButton,
				CustomID: ButtonHelpHome,
				Disabled: currentPage == 0,
			},
			discordgo.Button{
				Label:    "Next",
				Style:    discordgo.SecondaryButton,
				CustomID: ButtonHelpNext,
				Disabled: currentPage >= totalPages-1,
			},
		},
	}
}
