package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/batch/domain"
	downloaddomain "github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
	postdomain "github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/errors"
)

type fakeRepo struct {
	messages  map[int]*postdomain.Message
	fetchErrs map[int]error
	probeErr  error

	mu      sync.Mutex
	fetched []int
	probed  int
}

func (f *fakeRepo) GetMessage(ctx context.Context, ref postdomain.PostReference) (*postdomain.Message, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, ref.MessageID)
	f.mu.Unlock()

	if err := f.fetchErrs[ref.MessageID]; err != nil {
		return nil, err
	}
	return f.messages[ref.MessageID], nil
}

func (f *fakeRepo) GetMediaGroup(ctx context.Context, ref postdomain.PostReference, groupID int64) ([]*postdomain.Message, error) {
	return nil, nil
}

func (f *fakeRepo) Download(ctx context.Context, msg *postdomain.Message, w io.Writer) error {
	return nil
}

func (f *fakeRepo) ProbeChannel(ctx context.Context, channel string) error {
	f.probed++
	return f.probeErr
}

func (f *fakeRepo) IsPremium(ctx context.Context) (bool, error) {
	return false, nil
}

type fakeProcessor struct {
	errs      map[int]error
	processed []int
	reported  []error
	// onProcess runs before the result is returned.
	onProcess func(id int)
}

func (f *fakeProcessor) Process(ctx context.Context, target downloaddomain.Target, msg *postdomain.Message) error {
	f.processed = append(f.processed, msg.ID)
	if f.onProcess != nil {
		f.onProcess(msg.ID)
	}
	return f.errs[msg.ID]
}

func (f *fakeProcessor) Report(ctx context.Context, target downloaddomain.Target, err error) {
	f.reported = append(f.reported, err)
}

type fakeNotifier struct {
	nextID  int
	notices []string
	deleted []int
}

func (f *fakeNotifier) SendNotice(ctx context.Context, target downloaddomain.Target, html string) (int, error) {
	f.nextID++
	f.notices = append(f.notices, html)
	return f.nextID, nil
}

func (f *fakeNotifier) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

type harness struct {
	svc       *Service
	repo      *fakeRepo
	processor *fakeProcessor
	notifier  *fakeNotifier
	sleeps    int
}

func newHarness(repo *fakeRepo, processor *fakeProcessor) *harness {
	h := &harness{repo: repo, processor: processor, notifier: &fakeNotifier{}}
	h.svc = New(repo, processor, h.notifier, 3*time.Second)
	h.svc.sleep = func(ctx context.Context, d time.Duration) error {
		if d != 3*time.Second {
			panic(fmt.Sprintf("unexpected delay %s", d))
		}
		h.sleeps++
		return ctx.Err()
	}
	return h
}

var target = downloaddomain.Target{ChatID: 100, ReplyTo: 1}

func textMessage(id int, body string) *postdomain.Message {
	return &postdomain.Message{ID: id, Channel: "chan", Text: postdomain.Text{Body: body}}
}

func TestRun_MixedRange(t *testing.T) {
	h := newHarness(&fakeRepo{
		messages: map[int]*postdomain.Message{
			10: textMessage(10, "hello"),
			11: {ID: 11, Channel: "chan"},
		},
		fetchErrs: map[int]error{12: stderrors.New("flood wait")},
	}, &fakeProcessor{})

	outcome, err := h.svc.Run(context.Background(), target, []string{"https://t.me/chan/10", "https://t.me/chan/12"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := outcome.String(); got != "Downloaded: 1, Skipped: 1, Failed: 1" {
		t.Fatalf("outcome = %q", got)
	}
	if h.sleeps != 3 {
		t.Errorf("slept %d time(s), want 3", h.sleeps)
	}
	if fmt.Sprint(h.repo.fetched) != "[10 11 12]" {
		t.Errorf("fetch order = %v, want [10 11 12]", h.repo.fetched)
	}
	if len(h.processor.processed) != 1 || h.processor.processed[0] != 10 {
		t.Errorf("processed = %v, want [10]", h.processor.processed)
	}

	if len(h.notifier.notices) != 2 {
		t.Fatalf("notices = %v, want placeholder and summary", h.notifier.notices)
	}
	if h.notifier.notices[0] != "📥 Downloading posts 10–12…" {
		t.Errorf("placeholder = %q", h.notifier.notices[0])
	}
	if len(h.notifier.deleted) != 1 || h.notifier.deleted[0] != 1 {
		t.Errorf("placeholder not deleted: %v", h.notifier.deleted)
	}
	summary := h.notifier.notices[1]
	for _, want := range []string{"Complete", "<b>Downloaded</b>: <code>1</code>", "<b>Skipped</b>: <code>1</code>", "<b>Failed</b>: <code>1</code>"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary %q missing %q", summary, want)
		}
	}
}

func TestRun_PanicOnOneIDCountsAsFailure(t *testing.T) {
	h := newHarness(&fakeRepo{
		messages: map[int]*postdomain.Message{
			10: textMessage(10, "a"),
			11: textMessage(11, "b"),
			12: textMessage(12, "c"),
		},
	}, &fakeProcessor{onProcess: func(id int) {
		if id == 11 {
			panic("nil media")
		}
	}})

	outcome, err := h.svc.Run(context.Background(), target, []string{"https://t.me/chan/10", "https://t.me/chan/12"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := outcome.String(); got != "Downloaded: 2, Skipped: 0, Failed: 1" {
		t.Fatalf("outcome = %q", got)
	}
	if fmt.Sprint(h.processor.processed) != "[10 11 12]" {
		t.Errorf("processed = %v, want [10 11 12]", h.processor.processed)
	}
	if h.sleeps != 3 {
		t.Errorf("slept %d time(s), want 3", h.sleeps)
	}
	if len(h.notifier.deleted) != 1 {
		t.Errorf("placeholder not deleted: %v", h.notifier.deleted)
	}
	if len(h.notifier.notices) != 2 || !strings.Contains(h.notifier.notices[1], "Complete") {
		t.Errorf("notices = %v, want placeholder and summary", h.notifier.notices)
	}
}

func TestRun_SingleID(t *testing.T) {
	h := newHarness(&fakeRepo{
		messages: map[int]*postdomain.Message{5: textMessage(5, "only")},
	}, &fakeProcessor{})

	outcome, err := h.svc.Run(context.Background(), target, []string{"https://t.me/chan/5", "https://t.me/chan/5"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Total() != 1 || outcome.Downloaded != 1 {
		t.Fatalf("outcome = %s, want one download", outcome)
	}
	if h.sleeps != 1 {
		t.Fatalf("slept %d time(s), want exactly 1", h.sleeps)
	}
}

func TestRun_CountersPartitionRange(t *testing.T) {
	messages := map[int]*postdomain.Message{}
	fetchErrs := map[int]error{}
	procErrs := map[int]error{}
	for id := 1; id <= 20; id++ {
		switch id % 4 {
		case 0:
			messages[id] = textMessage(id, "text")
		case 1:
			fetchErrs[id] = stderrors.New("rpc error")
		case 2:
			messages[id] = textMessage(id, "fails")
			procErrs[id] = stderrors.New("send failed")
		}
	}
	h := newHarness(&fakeRepo{messages: messages, fetchErrs: fetchErrs}, &fakeProcessor{errs: procErrs})

	outcome, err := h.svc.Run(context.Background(), target, []string{"https://t.me/chan/1", "https://t.me/chan/20"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Total() != 20 {
		t.Fatalf("counters sum to %d, want 20 (%s)", outcome.Total(), outcome)
	}
	if outcome.Downloaded != 5 || outcome.Skipped != 5 || outcome.Failed != 10 {
		t.Fatalf("outcome = %s", outcome)
	}
	if h.sleeps != 20 {
		t.Fatalf("slept %d time(s), want 20", h.sleeps)
	}
	if len(h.processor.reported) != 0 {
		t.Fatalf("generic per-id failures should only be logged, got %v", h.processor.reported)
	}
}

func TestRun_SizeLimitIsReported(t *testing.T) {
	sizeErr := &downloaddomain.SizeLimitError{Size: 10, Limit: 5}
	h := newHarness(&fakeRepo{
		messages: map[int]*postdomain.Message{1: textMessage(1, "big")},
	}, &fakeProcessor{errs: map[int]error{1: sizeErr}})

	outcome, _ := h.svc.Run(context.Background(), target, []string{"https://t.me/chan/1", "https://t.me/chan/1"})
	if outcome.Failed != 1 {
		t.Fatalf("outcome = %s, want one failure", outcome)
	}
	if len(h.processor.reported) != 1 || errors.KindOf(h.processor.reported[0]) != errors.KindSizeLimit {
		t.Fatalf("reported = %v, want the size limit error", h.processor.reported)
	}
}

func TestRun_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantNotice string
	}{
		{name: "no args", args: nil, wantNotice: "/bdl start_link end_link"},
		{name: "one arg", args: []string{"https://t.me/chan/1"}, wantNotice: "/bdl start_link end_link"},
		{name: "three args", args: []string{"https://t.me/chan/1", "https://t.me/chan/2", "https://t.me/chan/3"}, wantNotice: "/bdl start_link end_link"},
		{name: "not links", args: []string{"chan/1", "chan/2"}, wantNotice: "/bdl start_link end_link"},
		{name: "unparsable", args: []string{"https://t.me/chan/abc", "https://t.me/chan/2"}, wantNotice: "invalid post reference"},
		{name: "end before start", args: []string{"https://t.me/chan/12", "https://t.me/chan/10"}, wantNotice: domain.ErrInvalidRange.Error()},
		{name: "channel mismatch", args: []string{"https://t.me/chan/10", "https://t.me/other/12"}, wantNotice: domain.ErrChannelMismatch.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(&fakeRepo{}, &fakeProcessor{})

			outcome, err := h.svc.Run(context.Background(), target, tt.args)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if outcome.Total() != 0 {
				t.Errorf("outcome = %s, want nothing processed", outcome)
			}
			if len(h.repo.fetched) != 0 || h.repo.probed != 0 {
				t.Errorf("fetched %v and probed %d time(s) before rejection", h.repo.fetched, h.repo.probed)
			}
			if h.sleeps != 0 {
				t.Errorf("slept %d time(s)", h.sleeps)
			}
			if len(h.notifier.notices) != 1 || !strings.Contains(h.notifier.notices[0], tt.wantNotice) {
				t.Errorf("notices = %v, want one containing %q", h.notifier.notices, tt.wantNotice)
			}
		})
	}
}

func TestRun_ProbeFailure(t *testing.T) {
	probeErr := fmt.Errorf("%w: CHANNEL_PRIVATE", errors.ErrAccess)
	h := newHarness(&fakeRepo{probeErr: probeErr}, &fakeProcessor{})

	outcome, err := h.svc.Run(context.Background(), target, []string{"https://t.me/chan/1", "https://t.me/chan/3"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Total() != 0 || len(h.repo.fetched) != 0 {
		t.Fatalf("loop ran after failed probe: %s, fetched %v", outcome, h.repo.fetched)
	}
	if len(h.processor.reported) != 1 || errors.KindOf(h.processor.reported[0]) != errors.KindAccess {
		t.Fatalf("reported = %v, want the access error", h.processor.reported)
	}
	if len(h.notifier.notices) != 0 {
		t.Fatalf("unexpected notices: %v", h.notifier.notices)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor := &fakeProcessor{onProcess: func(id int) {
		if id == 2 {
			cancel()
		}
	}}
	messages := map[int]*postdomain.Message{}
	for id := 1; id <= 5; id++ {
		messages[id] = textMessage(id, "text")
	}
	h := newHarness(&fakeRepo{messages: messages}, processor)

	outcome, err := h.svc.Run(ctx, target, []string{"https://t.me/chan/1", "https://t.me/chan/5"})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if outcome.Downloaded != 2 || outcome.Total() != 2 {
		t.Fatalf("outcome = %s, want two downloads before cancellation", outcome)
	}
	if fmt.Sprint(h.repo.fetched) != "[1 2]" {
		t.Fatalf("fetched = %v, remaining range should be aborted", h.repo.fetched)
	}
	if len(h.notifier.deleted) != 1 {
		t.Errorf("placeholder not deleted on cancellation")
	}
	if last := h.notifier.notices[len(h.notifier.notices)-1]; !strings.Contains(last, "Cancelled") {
		t.Errorf("last notice = %q, want partial summary", last)
	}
}

func TestSleep(t *testing.T) {
	if err := sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("sleep() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("sleep() on cancelled ctx = %v, want context.Canceled", err)
	}
}
