package service

import (
	"context"
	"html"
	"log/slog"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/relay/domain"
)

// Sender is the Bot API surface the forwarder needs.
type Sender interface {
	SendHTML(ctx context.Context, chatID int64, html string, replyTo int) (int, error)
	CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error)
	ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error)
}

// Service mirrors uncategorized private messages to the log channel.
type Service struct {
	sender       Sender
	logChannelID int64
}

// New creates a relay service. A zero logChannelID disables relaying.
func New(sender Sender, logChannelID int64) *Service {
	return &Service{
		sender:       sender,
		logChannelID: logChannelID,
	}
}

// Relay copies msg to the log channel. Failures are logged and dropped.
func (s *Service) Relay(ctx context.Context, msg domain.Inbound) {
	if s.logChannelID == 0 {
		return
	}
	if err := s.relay(ctx, msg); err != nil {
		slog.Error("Failed to relay message",
			"chat_id", msg.ChatID,
			"message_id", msg.MessageID,
			"log_channel_id", s.logChannelID,
			"error", err)
	}
}

func (s *Service) relay(ctx context.Context, msg domain.Inbound) error {
	caption := msg.Attribution()

	switch {
	case msg.Text != "" && !msg.HasMedia:
		_, err := s.sender.SendHTML(ctx, s.logChannelID, caption+"\n\n"+html.EscapeString(msg.Text), 0)
		return err
	case msg.HasMedia:
		copiedID, err := s.sender.CopyMessage(ctx, s.logChannelID, msg.ChatID, msg.MessageID)
		if err != nil {
			return err
		}
		_, err = s.sender.SendHTML(ctx, s.logChannelID, caption, copiedID)
		return err
	default:
		if _, err := s.sender.ForwardMessage(ctx, s.logChannelID, msg.ChatID, msg.MessageID); err != nil {
			return err
		}
		_, err := s.sender.SendHTML(ctx, s.logChannelID, caption, 0)
		return err
	}
}
