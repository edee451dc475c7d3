package service

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/platform"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/render"
)

const transcriptFetchPage = 100

// TranscriptService exports a ticket channel's history as a self-contained
// HTML file and posts it to the transcripts channel. All failures degrade
// to an empty URL; transcript generation never blocks a close.
type TranscriptService struct {
	platform platform.Client
	logger   *zap.Logger
}

// NewTranscriptService constructs the service.
func NewTranscriptService(client platform.Client, logger *zap.Logger) *TranscriptService {
	return &TranscriptService{platform: client, logger: logger}
}

// Generate renders and uploads the transcript, returning the attachment URL
// or "" when any step fails.
func (s *TranscriptService) Generate(ctx context.Context, ticket *domain.Ticket, channelName, closedBy, transcriptsChannelID string) string {
	messages, err := s.fetchHistory(ctx, ticket.ChannelID)
	if err != nil {
		s.logger.Warn("transcript history fetch failed",
			zap.String("channel_id", ticket.ChannelID), zap.Error(err))
		return ""
	}

	doc := renderTranscriptHTML(channelName, messages)

	posted, err := s.platform.SendFile(ctx, transcriptsChannelID, platform.File{
		Name:        channelName + ".html",
		ContentType: "text/html",
		Reader:      bytes.NewReader(doc),
	})
	if err != nil {
		s.logger.Warn("transcript upload failed",
			zap.String("channel_id", transcriptsChannelID), zap.Error(err))
		return ""
	}

	fileURL := ""
	if len(posted.Attachments) > 0 {
		fileURL = posted.Attachments[0].URL
	}

	annotated := platform.Message{Embed: render.TranscriptEmbed(ticket, channelName, closedBy)}
	if fileURL != "" {
		annotated.Components = []discordgo.MessageComponent{render.LinkButtonRow("Download Transcript", fileURL)}
	}
	if err := s.platform.EditMessage(ctx, transcriptsChannelID, posted.ID, annotated); err != nil {
		s.logger.Warn("transcript annotation failed", zap.String("message_id", posted.ID), zap.Error(err))
	}

	return fileURL
}

// fetchHistory pages backwards through the channel and returns messages in
// chronological order.
func (s *TranscriptService) fetchHistory(ctx context.Context, channelID string) ([]*discordgo.Message, error) {
	var all []*discordgo.Message
	beforeID := ""
	for {
		batch, err := s.platform.ChannelMessages(ctx, channelID, transcriptFetchPage, beforeID)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		beforeID = batch[len(batch)-1].ID
		if len(batch) < transcriptFetchPage {
			break
		}
	}

	// The API returns newest-first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

func renderTranscriptHTML(channelName string, messages []*discordgo.Message) []byte {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(channelName))
	buf.WriteString("<style>body{font-family:sans-serif;background:#313338;color:#dbdee1;margin:2rem}" +
		".msg{margin-bottom:1rem}.author{font-weight:bold;color:#f2f3f5}" +
		".ts{color:#949ba4;font-size:0.8rem;margin-left:0.5rem}.attachment{color:#00a8fc}</style>\n")
	buf.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&buf, "<h1>#%s</h1>\n", html.EscapeString(channelName))

	for _, msg := range messages {
		author := "unknown"
		if msg.Author != nil {
			author = msg.Author.Username
		}
		ts := ""
		if !msg.Timestamp.IsZero() {
			ts = msg.Timestamp.UTC().Format(time.RFC3339)
		}
		buf.WriteString("<div class=\"msg\">")
		fmt.Fprintf(&buf, "<span class=\"author\">%s</span><span class=\"ts\">%s</span>",
			html.EscapeString(author), html.EscapeString(ts))
		if msg.Content != "" {
			fmt.Fprintf(&buf, "<div>%s</div>", html.EscapeString(msg.Content))
		}
		for _, att := range msg.Attachments {
			fmt.Fprintf(&buf, "<div class=\"attachment\">attachment: %s</div>", html.EscapeString(att.Filename))
		}
		buf.WriteString("</div>\n")
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}
