package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/relay/domain"
)

type call struct {
	op      string
	chatID  int64
	from    int64
	msgID   int
	text    string
	replyTo int
}

type fakeSender struct {
	calls   []call
	copyErr error
}

func (f *fakeSender) SendHTML(ctx context.Context, chatID int64, html string, replyTo int) (int, error) {
	f.calls = append(f.calls, call{op: "send", chatID: chatID, text: html, replyTo: replyTo})
	return 900, nil
}

func (f *fakeSender) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	f.calls = append(f.calls, call{op: "copy", chatID: toChatID, from: fromChatID, msgID: messageID})
	return 500, f.copyErr
}

func (f *fakeSender) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	f.calls = append(f.calls, call{op: "forward", chatID: toChatID, from: fromChatID, msgID: messageID})
	return 600, nil
}

const logChannel = int64(-1001)

func TestRelay_Text(t *testing.T) {
	sender := &fakeSender{}
	New(sender, logChannel).Relay(context.Background(), domain.Inbound{
		ChatID: 7, MessageID: 3, FromID: 42, Username: "alice", HasSender: true, Text: "hi <there>",
	})

	if len(sender.calls) != 1 {
		t.Fatalf("calls = %+v, want a single composed message", sender.calls)
	}
	got := sender.calls[0]
	if got.op != "send" || got.chatID != logChannel {
		t.Fatalf("unexpected call: %+v", got)
	}
	if !strings.Contains(got.text, "@alice") || !strings.HasSuffix(got.text, "hi &lt;there&gt;") {
		t.Fatalf("text = %q", got.text)
	}
}

func TestRelay_Media(t *testing.T) {
	sender := &fakeSender{}
	New(sender, logChannel).Relay(context.Background(), domain.Inbound{
		ChatID: 7, MessageID: 3, HasSender: true, FromID: 42, Text: "caption", HasMedia: true,
	})

	if len(sender.calls) != 2 {
		t.Fatalf("calls = %+v, want copy then caption", sender.calls)
	}
	if c := sender.calls[0]; c.op != "copy" || c.from != 7 || c.msgID != 3 {
		t.Fatalf("first call = %+v, want copy of the message", c)
	}
	if c := sender.calls[1]; c.op != "send" || c.replyTo != 500 || !strings.Contains(c.text, "Unknown User") {
		t.Fatalf("second call = %+v, want caption replying to the copy", c)
	}
}

func TestRelay_Other(t *testing.T) {
	sender := &fakeSender{}
	New(sender, logChannel).Relay(context.Background(), domain.Inbound{ChatID: 7, MessageID: 3})

	if len(sender.calls) != 2 || sender.calls[0].op != "forward" || sender.calls[1].op != "send" {
		t.Fatalf("calls = %+v, want forward then caption", sender.calls)
	}
	if !strings.Contains(sender.calls[1].text, "N/A") || sender.calls[1].replyTo != 0 {
		t.Fatalf("caption call = %+v", sender.calls[1])
	}
}

func TestRelay_FailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{copyErr: errors.New("forbidden")}
	New(sender, logChannel).Relay(context.Background(), domain.Inbound{ChatID: 7, MessageID: 3, HasMedia: true})

	if len(sender.calls) != 1 {
		t.Fatalf("calls = %+v, want stop after failed copy", sender.calls)
	}
}

func TestRelay_Disabled(t *testing.T) {
	sender := &fakeSender{}
	New(sender, 0).Relay(context.Background(), domain.Inbound{ChatID: 7, MessageID: 3, Text: "hi"})

	if len(sender.calls) != 0 {
		t.Fatalf("relayed with no log channel: %+v", sender.calls)
	}
}
