// Package bot wires gateway interactions to the ticket services. The router
// dispatches slash commands, component presses and modal submissions; the
// handler files hold one method per surface.
package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/service"
)

var adminOnly = int64(discordgo.PermissionAdministrator)

// Command names.
const (
	CommandHelp        = "help"
	CommandConfig      = "ticket-config"
	CommandSendPanel   = "ticket-send"
	CommandLeaderboard = "ticket-leaderboard"
)

// Config subcommand names, mapped to settings fields by the handler.
const (
	SubcommandView               = "view"
	SubcommandLogsChannel        = "logs-channel"
	SubcommandTranscriptsChannel = "transcripts-channel"
	SubcommandTicketCategory     = "ticket-category"
	SubcommandLowStaffRole       = "low-staff-role"
	SubcommandHighStaffRole      = "high-staff-role"
)

// ApplicationCommands returns the full slash command set for registration.
func ApplicationCommands() []*discordgo.ApplicationCommand {
	channelOption := func(name, description string, types ...discordgo.ChannelType) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         name,
			Description:  description,
			Required:     true,
			ChannelTypes: types,
		}
	}
	roleOption := func(name, description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        name,
			Description: description,
			Required:    true,
		}
	}
	subcommand := func(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: description,
			Options:     options,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandHelp,
			Description: "Browse the command reference.",
		},
		{
			Name:                     CommandSendPanel,
			Description:              "Post the ticket panel in this channel.",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     CommandLeaderboard,
			Description:              "Publish a live-updating claim leaderboard in this channel.",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     CommandConfig,
			Description:              "Configure the ticket system.",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand(SubcommandView, "Show the current configuration."),
				subcommand(SubcommandLogsChannel, "Set the channel that receives close logs.",
					channelOption("channel", "Logs channel", discordgo.ChannelTypeGuildText)),
				subcommand(SubcommandTranscriptsChannel, "Set the channel that receives transcripts.",
					channelOption("channel", "Transcripts channel", discordgo.ChannelTypeGuildText)),
				subcommand(SubcommandTicketCategory, "Set the category ticket channels are created under.",
					channelOption("category", "Ticket category", discordgo.ChannelTypeGuildCategory)),
				subcommand(SubcommandLowStaffRole, "Set the staff role.",
					roleOption("role", "Staff role")),
				subcommand(SubcommandHighStaffRole, "Set the senior staff role.",
					roleOption("role", "Senior staff role")),
			},
		},
	}
}

// Catalog describes the command set for the help browser.
func Catalog() []service.CommandDoc {
	return []service.CommandDoc{
		{
			Name:        CommandHelp,
			Description: "Browse the command reference with paginated navigation.",
			Category:    "General",
		},
		{
			Name:        CommandSendPanel,
			Description: "Post the ticket panel users press to open tickets.",
			Category:    "Tickets",
			AdminOnly:   true,
		},
		{
			Name:        CommandLeaderboard,
			Description: "Publish a claim leaderboard that refreshes itself.",
			Category:    "Tickets",
			AdminOnly:   true,
		},
		{
			Name:        CommandConfig,
			Description: "Configure channels and staff roles for the ticket system.",
			Category:    "Administration",
			AdminOnly:   true,
			Subcommands: []string{
				SubcommandView,
				SubcommandLogsChannel,
				SubcommandTranscriptsChannel,
				SubcommandTicketCategory,
				SubcommandLowStaffRole,
				SubcommandHighStaffRole,
			},
		},
	}
}

// RegisterCommands overwrites the application command set. A non-empty
// guildID scopes registration to that guild, which propagates instantly.
func RegisterCommands(s *discordgo.Session, guildID string) error {
	_, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, ApplicationCommands())
	return err
}
