package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
)

// progressWriter counts written bytes and refreshes the placeholder at
// most once per interval.
type progressWriter struct {
	ctx       context.Context
	replier   Replier
	chatID    int64
	messageID int
	interval  time.Duration
	now       func() time.Time

	progress domain.Progress
	last     time.Time
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.progress.Done += int64(len(b))

	now := p.now()
	if now.Sub(p.last) < p.interval {
		return len(b), nil
	}
	p.last = now

	if err := p.replier.EditNotice(p.ctx, p.chatID, p.messageID, p.progress.Render()); err != nil {
		slog.Debug("Failed to update progress", "chat_id", p.chatID, "error", err)
	}
	return len(b), nil
}
