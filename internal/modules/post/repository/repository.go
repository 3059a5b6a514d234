package repository

import (
	"context"
	"io"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
)

// Repository is the privileged session's read side of the platform.
// Implementations wrap visibility failures with errors.ErrAccess.
type Repository interface {
	// GetMessage returns nil without error when the message does not exist.
	GetMessage(ctx context.Context, ref domain.PostReference) (*domain.Message, error)
	// GetMediaGroup returns the members of groupID around ref, ordered by id.
	GetMediaGroup(ctx context.Context, ref domain.PostReference, groupID int64) ([]*domain.Message, error)
	// Download streams the media of msg into w.
	Download(ctx context.Context, msg *domain.Message, w io.Writer) error
	// ProbeChannel checks that the session can see the channel.
	ProbeChannel(ctx context.Context, channel string) error
	// IsPremium reports whether the session has the raised size entitlement.
	IsPremium(ctx context.Context) (bool, error)
}
