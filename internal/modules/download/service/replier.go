package service

import (
	"context"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
	postdomain "github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
)

// Replier sends results back to the requesting chat. Notices are HTML.
type Replier interface {
	SendNotice(ctx context.Context, target domain.Target, html string) (int, error)
	EditNotice(ctx context.Context, chatID int64, messageID int, html string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendText(ctx context.Context, target domain.Target, text postdomain.Text) error
	SendMedia(ctx context.Context, target domain.Target, file domain.LocalFile, caption postdomain.Text) error
	// SendAlbum sends two to ten files as one media group.
	SendAlbum(ctx context.Context, target domain.Target, files []domain.LocalFile, caption postdomain.Text) error
}
