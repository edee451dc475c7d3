// Package discord implements platform.Client over a discordgo session.
package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/platform"
)

// Adapter wraps a discordgo session. The session's REST calls carry their
// own timeouts; the context is accepted for interface symmetry and future
// cancellation support.
type Adapter struct {
	session *discordgo.Session
}

// NewAdapter builds the adapter.
func NewAdapter(session *discordgo.Session) *Adapter {
	return &Adapter{session: session}
}

// BotUserID returns the bot's own user id.
func (a *Adapter) BotUserID() string {
	if a.session.State != nil && a.session.State.User != nil {
		return a.session.State.User.ID
	}
	return ""
}

func (a *Adapter) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	ch, err := a.session.Channel(channelID)
	if err != nil {
		return nil, wrapReferenceErr(err)
	}
	return ch, nil
}

func (a *Adapter) Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	msg, err := a.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, wrapReferenceErr(err)
	}
	return msg, nil
}

func (a *Adapter) SendMessage(ctx context.Context, channelID string, msg platform.Message) (*discordgo.Message, error) {
	send := &discordgo.MessageSend{
		Content:    msg.Content,
		Components: msg.Components,
	}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{msg.Embed}
	}
	out, err := a.session.ChannelMessageSendComplex(channelID, send)
	if err != nil {
		return nil, wrapReferenceErr(err)
	}
	return out, nil
}

func (a *Adapter) EditMessage(ctx context.Context, channelID, messageID string, msg platform.Message) error {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	if msg.Content != "" {
		edit.SetContent(msg.Content)
	}
	if msg.Embed != nil {
		edit.SetEmbed(msg.Embed)
	}
	if msg.Components != nil {
		edit.Components = &msg.Components
	}
	_, err := a.session.ChannelMessageEditComplex(edit)
	return wrapReferenceErr(err)
}

func (a *Adapter) SendFile(ctx context.Context, channelID string, file platform.File) (*discordgo.Message, error) {
	out, err := a.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        file.Name,
			ContentType: file.ContentType,
			Reader:      file.Reader,
		}},
	})
	if err != nil {
		return nil, wrapReferenceErr(err)
	}
	return out, nil
}

func (a *Adapter) CreateTextChannel(ctx context.Context, guildID string, create platform.ChannelCreate) (*discordgo.Channel, error) {
	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(create.Overwrites))
	for _, ow := range create.Overwrites {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    ow.ID,
			Type:  ow.Type,
			Allow: ow.Allow,
			Deny:  ow.Deny,
		})
	}
	ch, err := a.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 create.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             create.ParentID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, fmt.Errorf("create ticket channel: %w", err)
	}
	return ch, nil
}

func (a *Adapter) RenameChannel(ctx context.Context, channelID, name string) error {
	_, err := a.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name})
	return wrapReferenceErr(err)
}

func (a *Adapter) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := a.session.ChannelDelete(channelID)
	return wrapReferenceErr(err)
}

func (a *Adapter) UpsertOverwrite(ctx context.Context, channelID string, ow platform.Overwrite) error {
	err := a.session.ChannelPermissionSet(channelID, ow.ID, ow.Type, ow.Allow, ow.Deny)
	return wrapReferenceErr(err)
}

func (a *Adapter) DeleteOverwrite(ctx context.Context, channelID, targetID string) error {
	err := a.session.ChannelPermissionDelete(channelID, targetID)
	return wrapReferenceErr(err)
}

func (a *Adapter) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	member, err := a.session.GuildMember(guildID, userID)
	if err != nil {
		return nil, wrapReferenceErr(err)
	}
	return member, nil
}

func (a *Adapter) ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]*discordgo.Message, error) {
	msgs, err := a.session.ChannelMessages(channelID, limit, beforeID, "", "")
	if err != nil {
		return nil, wrapReferenceErr(err)
	}
	return msgs, nil
}

// wrapReferenceErr translates unknown-channel/message REST errors into
// platform.ErrReferenceLost so callers can branch on errors.Is.
func wrapReferenceErr(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownMessage:
			return fmt.Errorf("%w: %v", platform.ErrReferenceLost, err)
		}
	}
	return err
}
