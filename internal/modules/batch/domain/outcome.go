package domain

import (
	"fmt"
	"strings"

	postdomain "github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
)

// Range is an inclusive span of message ids on one channel.
type Range struct {
	Channel string
	Start   int
	End     int
}

// NewRange validates both endpoints of a batch request. Usernames are
// case-insensitive.
func NewRange(start, end postdomain.PostReference) (Range, error) {
	if !strings.EqualFold(start.Channel, end.Channel) {
		return Range{}, ErrChannelMismatch
	}
	if start.MessageID > end.MessageID {
		return Range{}, ErrInvalidRange
	}
	return Range{Channel: start.Channel, Start: start.MessageID, End: end.MessageID}, nil
}

// Len returns the number of ids in the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// Outcome counts what happened to each id of one batch run.
type Outcome struct {
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

func (o *Outcome) Record(r Result) {
	switch r {
	case ResultDownloaded:
		o.Downloaded++
	case ResultSkipped:
		o.Skipped++
	case ResultFailed:
		o.Failed++
	}
}

// Total returns the number of ids accounted for.
func (o Outcome) Total() int {
	return o.Downloaded + o.Skipped + o.Failed
}

func (o Outcome) String() string {
	return fmt.Sprintf("Downloaded: %d, Skipped: %d, Failed: %d", o.Downloaded, o.Skipped, o.Failed)
}

// Summary renders the final batch reply.
func (o Outcome) Summary(cancelled bool) string {
	var b strings.Builder
	if cancelled {
		b.WriteString("<b>⛔ Batch Process Cancelled</b>\n")
	} else {
		b.WriteString("<b>✅ Batch Process Complete!</b>\n")
	}
	b.WriteString("━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "📥 <b>Downloaded</b>: <code>%d</code> post(s)\n", o.Downloaded)
	fmt.Fprintf(&b, "⏭️ <b>Skipped</b>: <code>%d</code> (no content)\n", o.Skipped)
	fmt.Fprintf(&b, "❌ <b>Failed</b>: <code>%d</code> error(s)", o.Failed)
	return b.String()
}
