package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/reshetovitsme/media-relay-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// privateChannelPrefix turns the internal id of a t.me/c/<id> link into a
// full channel id.
const privateChannelPrefix = "-100"

var (
	allowedHosts    = []string{"t.me", "telegram.me", "telegram.dog"}
	channelUsername = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{3,31}$`)
)

// PostReference identifies one message of one channel.
type PostReference struct {
	Channel   string
	MessageID int
}

// ParseReference extracts the channel and message id from a post link.
// Query strings and fragments are discarded. Supported shapes:
//
//	https://t.me/<username>/<id>
//	https://t.me/<username>/<topic>/<id>
//	https://t.me/s/<username>/<id>
//	https://t.me/c/<internal-id>/<id>
//	https://t.me/c/<internal-id>/<topic>/<id>
func ParseReference(raw string) (PostReference, error) {
	link := strings.TrimSpace(raw)
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	if link == "" {
		return PostReference{}, parseError(raw, "empty link")
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}

	u, err := url.Parse(link)
	if err != nil {
		return PostReference{}, oops.With("url", raw).Wrap(fmt.Errorf("%w: %v", errors.ErrParse, err))
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return PostReference{}, parseError(raw, "unsupported scheme")
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if !lo.Contains(allowedHosts, host) {
		return PostReference{}, parseError(raw, "not a telegram link")
	}

	segments := lo.Compact(strings.Split(u.Path, "/"))
	if len(segments) > 0 && segments[0] == "s" {
		segments = segments[1:]
	}
	if len(segments) < 2 {
		return PostReference{}, parseError(raw, "missing message id")
	}

	messageID, err := strconv.Atoi(segments[len(segments)-1])
	if err != nil || messageID <= 0 {
		return PostReference{}, parseError(raw, "message id is not a positive number")
	}

	if segments[0] == "c" {
		if len(segments) < 3 || len(segments) > 4 {
			return PostReference{}, parseError(raw, "malformed private link")
		}
		internalID, err := strconv.ParseInt(segments[1], 10, 64)
		if err != nil || internalID <= 0 {
			return PostReference{}, parseError(raw, "channel id is not a positive number")
		}
		return PostReference{Channel: privateChannelPrefix + segments[1], MessageID: messageID}, nil
	}

	if !channelUsername.MatchString(segments[0]) {
		return PostReference{}, parseError(raw, "invalid channel username")
	}
	if len(segments) > 3 {
		return PostReference{}, parseError(raw, "unexpected path segments")
	}

	return PostReference{Channel: segments[0], MessageID: messageID}, nil
}

// WithMessageID returns a reference to another message of the same channel.
func (r PostReference) WithMessageID(id int) PostReference {
	r.MessageID = id
	return r
}

// InternalID returns the bare channel id for private references.
func (r PostReference) InternalID() (int64, bool) {
	if !strings.HasPrefix(r.Channel, privateChannelPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(r.Channel, privateChannelPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// URL renders the canonical link of the referenced message.
func (r PostReference) URL() string {
	if id, ok := r.InternalID(); ok {
		return fmt.Sprintf("https://t.me/c/%d/%d", id, r.MessageID)
	}
	return fmt.Sprintf("https://t.me/%s/%d", r.Channel, r.MessageID)
}

func (r PostReference) String() string {
	return r.URL()
}

func parseError(raw, reason string) error {
	return oops.With("url", raw).Wrap(fmt.Errorf("%w: %s", errors.ErrParse, reason))
}
