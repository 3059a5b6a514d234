package telegram

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	downloadDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
	postDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Sender delivers replies through the Bot API.
type Sender struct {
	mu  sync.RWMutex
	bot *bot.Bot
}

// NewSender creates a sender. SetBot must be called before use.
func NewSender() *Sender {
	return &Sender{}
}

// SetBot sets the Telegram bot instance
func (s *Sender) SetBot(b *bot.Bot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bot = b
}

func (s *Sender) client() (*bot.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bot == nil {
		return nil, errors.ErrBotNotReady
	}
	return s.bot, nil
}

func (s *Sender) SendNotice(ctx context.Context, target downloadDomain.Target, html string) (int, error) {
	return s.sendHTML(ctx, target.ChatID, html, target.ReplyTo)
}

// SendHTML implements the relay sender.
func (s *Sender) SendHTML(ctx context.Context, chatID int64, html string, replyTo int) (int, error) {
	return s.sendHTML(ctx, chatID, html, replyTo)
}

func (s *Sender) sendHTML(ctx context.Context, chatID int64, html string, replyTo int) (int, error) {
	b, err := s.client()
	if err != nil {
		return 0, err
	}
	msg, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               html,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: lo.ToPtr(true)},
		ReplyParameters:    replyParameters(replyTo),
	})
	if err != nil {
		return 0, oops.With("chat_id", chatID).Wrap(err)
	}
	return msg.ID, nil
}

// SendWelcome sends an HTML message carrying a single inline URL button.
func (s *Sender) SendWelcome(ctx context.Context, chatID int64, html, buttonText, buttonURL string) error {
	b, err := s.client()
	if err != nil {
		return err
	}
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               html,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: lo.ToPtr(true)},
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: buttonText, URL: buttonURL}},
			},
		},
	})
	if err != nil {
		return oops.With("chat_id", chatID).Wrap(err)
	}
	return nil
}

func (s *Sender) EditNotice(ctx context.Context, chatID int64, messageID int, html string) error {
	b, err := s.client()
	if err != nil {
		return err
	}
	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      html,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return oops.With("chat_id", chatID, "message_id", messageID).Wrap(err)
	}
	return nil
}

func (s *Sender) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	b, err := s.client()
	if err != nil {
		return err
	}
	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		return oops.With("chat_id", chatID, "message_id", messageID).Wrap(err)
	}
	return nil
}

func (s *Sender) SendText(ctx context.Context, target downloadDomain.Target, text postDomain.Text) error {
	b, err := s.client()
	if err != nil {
		return err
	}
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          target.ChatID,
		Text:            text.Body,
		Entities:        toEntities(text.Entities),
		ReplyParameters: replyParameters(target.ReplyTo),
	})
	if err != nil {
		return oops.With("chat_id", target.ChatID).Wrap(err)
	}
	return nil
}

func (s *Sender) SendMedia(ctx context.Context, target downloadDomain.Target, file downloadDomain.LocalFile, caption postDomain.Text) error {
	b, err := s.client()
	if err != nil {
		return err
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return oops.With("path", file.Path).Wrap(err)
	}
	defer f.Close()

	upload := &models.InputFileUpload{Filename: file.Name, Data: f}
	entities := toEntities(caption.Entities)
	reply := replyParameters(target.ReplyTo)

	switch file.Type {
	case postDomain.MediaTypePhoto:
		_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID: target.ChatID, Photo: upload, Caption: caption.Body, CaptionEntities: entities, ReplyParameters: reply,
		})
	case postDomain.MediaTypeVideo:
		_, err = b.SendVideo(ctx, &bot.SendVideoParams{
			ChatID: target.ChatID, Video: upload, Caption: caption.Body, CaptionEntities: entities, ReplyParameters: reply,
			SupportsStreaming: true,
		})
	case postDomain.MediaTypeAudio:
		_, err = b.SendAudio(ctx, &bot.SendAudioParams{
			ChatID: target.ChatID, Audio: upload, Caption: caption.Body, CaptionEntities: entities, ReplyParameters: reply,
		})
	case postDomain.MediaTypeVoice:
		_, err = b.SendVoice(ctx, &bot.SendVoiceParams{
			ChatID: target.ChatID, Voice: upload, Caption: caption.Body, CaptionEntities: entities, ReplyParameters: reply,
		})
	case postDomain.MediaTypeAnimation:
		_, err = b.SendAnimation(ctx, &bot.SendAnimationParams{
			ChatID: target.ChatID, Animation: upload, Caption: caption.Body, CaptionEntities: entities, ReplyParameters: reply,
		})
	default:
		_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID: target.ChatID, Document: upload, Caption: caption.Body, CaptionEntities: entities, ReplyParameters: reply,
		})
	}
	if err != nil {
		return oops.With("chat_id", target.ChatID, "media_type", file.Type, "size", file.Size).Wrap(err)
	}
	return nil
}

func (s *Sender) SendAlbum(ctx context.Context, target downloadDomain.Target, files []downloadDomain.LocalFile, caption postDomain.Text) error {
	b, err := s.client()
	if err != nil {
		return err
	}

	var opened []io.Closer
	defer func() {
		for _, c := range opened {
			c.Close()
		}
	}()

	media := make([]models.InputMedia, 0, len(files))
	for i, file := range files {
		f, err := os.Open(file.Path)
		if err != nil {
			return oops.With("path", file.Path).Wrap(err)
		}
		opened = append(opened, f)

		var itemCaption postDomain.Text
		if i == 0 {
			itemCaption = caption
		}
		media = append(media, inputMedia(file, f, itemCaption))
	}

	if _, err := b.SendMediaGroup(ctx, &bot.SendMediaGroupParams{
		ChatID:          target.ChatID,
		Media:           media,
		ReplyParameters: replyParameters(target.ReplyTo),
	}); err != nil {
		return oops.With("chat_id", target.ChatID, "items", len(files)).Wrap(err)
	}
	return nil
}

// CopyMessage implements the relay sender.
func (s *Sender) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	b, err := s.client()
	if err != nil {
		return 0, err
	}
	copied, err := b.CopyMessage(ctx, &bot.CopyMessageParams{
		ChatID:     toChatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
	})
	if err != nil {
		return 0, oops.With("to_chat_id", toChatID, "from_chat_id", fromChatID, "message_id", messageID).Wrap(err)
	}
	return copied.ID, nil
}

// ForwardMessage implements the relay sender.
func (s *Sender) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	b, err := s.client()
	if err != nil {
		return 0, err
	}
	forwarded, err := b.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:     toChatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
	})
	if err != nil {
		return 0, oops.With("to_chat_id", toChatID, "from_chat_id", fromChatID, "message_id", messageID).Wrap(err)
	}
	return forwarded.ID, nil
}

// SendFile uploads a local file as a document.
func (s *Sender) SendFile(ctx context.Context, chatID int64, path, caption string) error {
	b, err := s.client()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return oops.With("path", path).Wrap(err)
	}
	defer f.Close()

	if _, err := b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filepath.Base(path), Data: f},
		Caption:  caption,
	}); err != nil {
		return oops.With("chat_id", chatID, "path", path).Wrap(err)
	}
	return nil
}

func inputMedia(file downloadDomain.LocalFile, data io.Reader, caption postDomain.Text) models.InputMedia {
	attach := "attach://" + filepath.Base(file.Path)
	entities := toEntities(caption.Entities)

	switch file.Type {
	case postDomain.MediaTypePhoto:
		return &models.InputMediaPhoto{Media: attach, MediaAttachment: data, Caption: caption.Body, CaptionEntities: entities}
	case postDomain.MediaTypeVideo:
		return &models.InputMediaVideo{Media: attach, MediaAttachment: data, Caption: caption.Body, CaptionEntities: entities, SupportsStreaming: true}
	case postDomain.MediaTypeAudio:
		return &models.InputMediaAudio{Media: attach, MediaAttachment: data, Caption: caption.Body, CaptionEntities: entities}
	default:
		return &models.InputMediaDocument{Media: attach, MediaAttachment: data, Caption: caption.Body, CaptionEntities: entities}
	}
}

func toEntities(entities []postDomain.Entity) []models.MessageEntity {
	if len(entities) == 0 {
		return nil
	}
	return lo.Map(entities, func(e postDomain.Entity, _ int) models.MessageEntity {
		return models.MessageEntity{
			Type:          models.MessageEntityType(e.Type),
			Offset:        e.Offset,
			Length:        e.Length,
			URL:           e.URL,
			Language:      e.Language,
			CustomEmojiID: e.CustomEmojiID,
		}
	})
}

func replyParameters(messageID int) *models.ReplyParameters {
	if messageID == 0 {
		return nil
	}
	return &models.ReplyParameters{MessageID: messageID, AllowSendingWithoutReply: true}
}
