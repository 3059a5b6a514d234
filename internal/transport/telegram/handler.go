package telegram

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	batchService "github.com/reshetovitsme/media-relay-bot/internal/modules/batch/service"
	downloadDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
	downloadService "github.com/reshetovitsme/media-relay-bot/internal/modules/download/service"
	relayDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/relay/domain"
	relayService "github.com/reshetovitsme/media-relay-bot/internal/modules/relay/service"
	taskService "github.com/reshetovitsme/media-relay-bot/internal/modules/task/service"
	telemetryService "github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/service"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/config"
	"github.com/samber/lo"
)

const welcomeText = `<b>👋 Welcome to Media Relay Bot!</b>

I fetch posts from channels my user session can see and send their media or text back to you.

<b>Commands</b>
/dl <code>post_url</code> - Download one post
/bdl <code>start_url end_url</code> - Download a range of posts from one channel
/stats - Show uptime and resource usage
/logs - Get the bot log file
/killall - Cancel every running download
/help - Show this message

<b>Example</b>
<code>/dl https://t.me/itsSmartDev/123</code>
<code>/bdl https://t.me/itsSmartDev/100 https://t.me/itsSmartDev/120</code>

Private channels work with <code>https://t.me/c/&lt;id&gt;/&lt;post&gt;</code> links as long as the user session is a member.`

// Messenger is the part of the Bot API the command handlers reply through.
type Messenger interface {
	SendNotice(ctx context.Context, target downloadDomain.Target, html string) (int, error)
	SendWelcome(ctx context.Context, chatID int64, html, buttonText, buttonURL string) error
	SendFile(ctx context.Context, chatID int64, path, caption string) error
}

// Handler handles Telegram bot interactions
type Handler struct {
	cfg       *config.Config
	sender    Messenger
	registry  *taskService.Registry
	downloads *downloadService.Service
	batches   *batchService.Service
	telemetry *telemetryService.Service
	relay     *relayService.Service
}

// New creates a new Telegram handler
func New(
	cfg *config.Config,
	sender Messenger,
	registry *taskService.Registry,
	downloads *downloadService.Service,
	batches *batchService.Service,
	telemetry *telemetryService.Service,
	relay *relayService.Service,
) *Handler {
	return &Handler{
		cfg:       cfg,
		sender:    sender,
		registry:  registry,
		downloads: downloads,
		batches:   batches,
		telemetry: telemetry,
		relay:     relay,
	}
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.command("start", h.handleStart))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, h.command("help", h.handleStart))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/dl", bot.MatchTypePrefix, h.command("dl", h.handleDownload))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/bdl", bot.MatchTypePrefix, h.command("bdl", h.handleBatch))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypePrefix, h.command("stats", h.handleStats))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/logs", bot.MatchTypePrefix, h.command("logs", h.handleLogs))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/killall", bot.MatchTypePrefix, h.command("killall", h.handleKillAll))
}

// HandleUpdate receives every update no command matched and relays private
// messages to the log channel.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Chat.Type != "private" {
		return
	}
	h.relay.Relay(ctx, inboundOf(msg))
}

type commandFunc func(ctx context.Context, target downloadDomain.Target, args []string)

// command restricts a handler to private chats, exact command names and the
// allowed users list.
func (h *Handler) command(name string, next commandFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil || msg.Chat.Type != "private" {
			return
		}

		cmd, args := parseCommand(msg.Text)
		if cmd != name {
			// prefix match caught a longer word, e.g. /dlx
			h.HandleUpdate(ctx, b, update)
			return
		}

		target := downloadDomain.Target{ChatID: msg.Chat.ID, ReplyTo: msg.ID}
		if !h.checkAuthorization(msg.From) {
			h.reply(ctx, target, "❌ You are not authorized to use this bot.")
			return
		}

		slog.Debug("Command received", "command", name, "chat_id", target.ChatID, "args", len(args))
		next(ctx, target, args)
	}
}

func (h *Handler) checkAuthorization(from *models.User) bool {
	if len(h.cfg.AllowedUsers) == 0 {
		return true
	}
	return from != nil && lo.Contains(h.cfg.AllowedUsers, from.ID)
}

func (h *Handler) handleStart(ctx context.Context, target downloadDomain.Target, _ []string) {
	if err := h.sender.SendWelcome(ctx, target.ChatID, welcomeText, "Update Channel", h.cfg.UpdateChannelURL); err != nil {
		slog.Error("Failed to send welcome", "chat_id", target.ChatID, "error", err)
	}
}

func (h *Handler) handleDownload(ctx context.Context, target downloadDomain.Target, args []string) {
	if len(args) == 0 {
		h.reply(ctx, target, "Provide a post URL after the /dl command.")
		return
	}

	rawURL := args[0]
	h.registry.Track("dl "+rawURL, target.ChatID, func(ctx context.Context) error {
		return h.downloads.Handle(ctx, target, rawURL)
	})
}

func (h *Handler) handleBatch(ctx context.Context, target downloadDomain.Target, args []string) {
	h.registry.Track("bdl "+strings.Join(args, " "), target.ChatID, func(ctx context.Context) error {
		_, err := h.batches.Run(ctx, target, args)
		return err
	})
}

func (h *Handler) handleStats(ctx context.Context, target downloadDomain.Target, _ []string) {
	snap, err := h.telemetry.Snapshot(ctx)
	if err != nil {
		slog.Error("Failed to collect stats", "chat_id", target.ChatID, "error", err)
		h.reply(ctx, target, "❌ "+html.EscapeString(err.Error()))
		return
	}
	h.reply(ctx, target, snap.Render())
}

func (h *Handler) handleLogs(ctx context.Context, target downloadDomain.Target, _ []string) {
	info, err := os.Stat(h.cfg.LogsFile)
	if stderrors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0) {
		h.reply(ctx, target, "No logs file found.")
		return
	}

	if err == nil {
		err = h.sender.SendFile(ctx, target.ChatID, h.cfg.LogsFile, "Here are the logs")
	}
	if err != nil {
		slog.Error("Failed to send logs", "chat_id", target.ChatID, "error", err)
		h.reply(ctx, target, "❌ "+html.EscapeString(err.Error()))
	}
}

func (h *Handler) handleKillAll(ctx context.Context, target downloadDomain.Target, _ []string) {
	cancelled := h.registry.CancelAll()
	h.reply(ctx, target, fmt.Sprintf("Cancelled %d running task(s).", cancelled))
}

func (h *Handler) reply(ctx context.Context, target downloadDomain.Target, text string) {
	if _, err := h.sender.SendNotice(ctx, target, text); err != nil {
		slog.Error("Failed to send reply", "chat_id", target.ChatID, "error", err)
	}
}

// parseCommand splits "/cmd@bot arg1 arg2" into "cmd" and its arguments.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd, _, _ := strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
	return strings.ToLower(cmd), fields[1:]
}

func inboundOf(msg *models.Message) relayDomain.Inbound {
	in := relayDomain.Inbound{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      msg.Text,
		HasMedia: len(msg.Photo) > 0 ||
			msg.Video != nil ||
			msg.Audio != nil ||
			msg.Voice != nil ||
			msg.Document != nil ||
			msg.Animation != nil ||
			msg.Sticker != nil ||
			msg.VideoNote != nil,
	}
	if msg.From != nil {
		in.HasSender = true
		in.FromID = msg.From.ID
		in.Username = msg.From.Username
	}
	return in
}
