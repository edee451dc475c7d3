package service

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/render"
)

// CommandDoc describes one slash command for the help browser.
type CommandDoc struct {
	Name        string
	Description string
	Category    string
	AdminOnly   bool
	Subcommands []string
}

// HelpService builds the paginated help embeds. Page 0 is the overview;
// each category gets one page after it. Admin-only commands are hidden
// from non-admin viewers, which can change the page count per viewer.
type HelpService struct {
	commands []CommandDoc
}

// NewHelpService constructs the service over a fixed command catalog.
func NewHelpService(commands []CommandDoc) *HelpService {
	return &HelpService{commands: commands}
}

// BuildPages renders the full page set for one viewer.
func (s *HelpService) BuildPages(botName string, isAdmin bool) []*discordgo.MessageEmbed {
	visible := make([]CommandDoc, 0, len(s.commands))
	for _, cmd := range s.commands {
		if cmd.AdminOnly && !isAdmin {
			continue
		}
		visible = append(visible, cmd)
	}

	var categories []string
	byCategory := make(map[string][]CommandDoc)
	for _, cmd := range visible {
		if _, ok := byCategory[cmd.Category]; !ok {
			categories = append(categories, cmd.Category)
		}
		byCategory[cmd.Category] = append(byCategory[cmd.Category], cmd)
	}

	total := len(categories) + 1
	pages := make([]*discordgo.MessageEmbed, 0, total)
	pages = append(pages, s.overviewPage(botName, visible, categories, total))
	for i, category := range categories {
		pages = append(pages, categoryPage(category, byCategory[category], i+2, total))
	}
	return pages
}

// Clamp bounds a requested page index into the valid range.
func Clamp(page, total int) int {
	if page < 0 {
		return 0
	}
	if page >= total {
		return total - 1
	}
	return page
}

func (s *HelpService) overviewPage(botName string, visible []CommandDoc, categories []string, total int) *discordgo.MessageEmbed {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** supports %d commands across %d categories.\n\n", botName, len(visible), len(categories))
	sb.WriteString("Use the buttons below to browse:\n")
	for _, category := range categories {
		fmt.Fprintf(&sb, "• **%s**\n", category)
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Help", botName),
		Description: sb.String(),
		Color:       render.ColorPrimary,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page 1 of %d", total)},
	}
}

func categoryPage(category string, commands []CommandDoc, pageNum, total int) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(commands))
	for _, cmd := range commands {
		value := cmd.Description
		if len(cmd.Subcommands) > 0 {
			value += "\nSubcommands: `" + strings.Join(cmd.Subcommands, "`, `") + "`"
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "/" + cmd.Name,
			Value: value,
		})
	}

	return &discordgo.MessageEmbed{
		Title:  category,
		Color:  render.ColorPrimary,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d of %d", pageNum, total)},
	}
}
