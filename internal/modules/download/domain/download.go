package domain

import (
	"fmt"

	"github.com/dustin/go-humanize"
	postdomain "github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/errors"
)

// Target is where replies for one request go.
type Target struct {
	ChatID  int64
	ReplyTo int
}

// LocalFile is a downloaded media file waiting to be sent.
type LocalFile struct {
	Path string
	Name string
	Type postdomain.MediaType
	Size int64
}

// SizePolicy caps the media size that may be relayed. PremiumLimit applies
// when the fetching session holds the raised entitlement.
type SizePolicy struct {
	Limit        int64
	PremiumLimit int64
}

// NeedsEntitlement reports whether size is over the plain limit.
func (p SizePolicy) NeedsEntitlement(size int64) bool {
	return p.Limit > 0 && size > p.Limit
}

// Check returns a *SizeLimitError when size is not allowed for the tier.
func (p SizePolicy) Check(size int64, premium bool) error {
	if !p.NeedsEntitlement(size) {
		return nil
	}
	if premium && (p.PremiumLimit <= 0 || size <= p.PremiumLimit) {
		return nil
	}
	limit := p.Limit
	if premium {
		limit = p.PremiumLimit
	}
	return &SizeLimitError{Size: size, Limit: limit}
}

// SizeLimitError is returned for media over the allowed ceiling.
type SizeLimitError struct {
	Size  int64
	Limit int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("%s: %s exceeds %s", errors.ErrSizeLimit, humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Limit)))
}

func (e *SizeLimitError) Unwrap() error {
	return errors.ErrSizeLimit
}
