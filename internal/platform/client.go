// Package platform abstracts the chat platform (channels, messages, members,
// permission overwrites) behind an interface so services can be exercised
// against fakes and the gateway library stays contained in one adapter.
package platform

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/discordgo"
)

// ErrReferenceLost marks a previously valid channel or message that no
// longer resolves. The reconciler treats it as a permanent deregistration
// signal; everywhere else it surfaces as a generic not-found.
var ErrReferenceLost = errors.New("platform reference no longer resolves")

// Overwrite describes one per-principal visibility grant on a channel.
type Overwrite struct {
	ID    string
	Type  discordgo.PermissionOverwriteType
	Allow int64
	Deny  int64
}

// ChannelCreate describes a private channel to create.
type ChannelCreate struct {
	Name       string
	ParentID   string
	Overwrites []Overwrite
}

// Message is outbound structured content.
type Message struct {
	Content    string
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// File is an attachment upload.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Client is the presentation/platform collaborator. Every method that can
// fail because the referenced entity disappeared returns an error matching
// ErrReferenceLost via errors.Is.
type Client interface {
	BotUserID() string

	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)

	SendMessage(ctx context.Context, channelID string, msg Message) (*discordgo.Message, error)
	EditMessage(ctx context.Context, channelID, messageID string, msg Message) error
	SendFile(ctx context.Context, channelID string, file File) (*discordgo.Message, error)

	CreateTextChannel(ctx context.Context, guildID string, create ChannelCreate) (*discordgo.Channel, error)
	RenameChannel(ctx context.Context, channelID, name string) error
	DeleteChannel(ctx context.Context, channelID string) error

	// UpsertOverwrite grants or replaces one principal's overwrite.
	UpsertOverwrite(ctx context.Context, channelID string, ow Overwrite) error
	DeleteOverwrite(ctx context.Context, channelID, targetID string) error

	GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]*discordgo.Message, error)
}

// IsReferenceLost reports whether err means the target channel or message is
// gone for good.
func IsReferenceLost(err error) bool {
	return errors.Is(err, ErrReferenceLost)
}
