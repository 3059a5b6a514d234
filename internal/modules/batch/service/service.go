package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/batch/domain"
	downloaddomain "github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
	postdomain "github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
	"github.com/reshetovitsme/media-relay-bot/internal/modules/post/repository"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	linkPrefix = "https://t.me/"

	usageNotice = "🚀 <b>Batch Download</b>\n" +
		"<code>/bdl start_link end_link</code>\n\n" +
		"💡 <b>Example:</b>\n" +
		"<code>/bdl https://t.me/mediatransit/15 https://t.me/mediatransit/25</code>"
)

// Processor relays one fetched message and reports failures to the chat.
type Processor interface {
	Process(ctx context.Context, target downloaddomain.Target, msg *postdomain.Message) error
	Report(ctx context.Context, target downloaddomain.Target, err error)
}

// Notifier posts and removes status messages.
type Notifier interface {
	SendNotice(ctx context.Context, target downloaddomain.Target, html string) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Service drives the download handler over a range of message ids.
type Service struct {
	repo      repository.Repository
	processor Processor
	notifier  Notifier
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// New creates a new batch service. delay is paid after every id.
func New(repo repository.Repository, processor Processor, notifier Notifier, delay time.Duration) *Service {
	return &Service{
		repo:      repo,
		processor: processor,
		notifier:  notifier,
		delay:     delay,
		sleep:     sleep,
	}
}

// Run serves one /bdl request. Every failure is reported to the chat; only
// cancellation is returned, together with the partial outcome.
func (s *Service) Run(ctx context.Context, target downloaddomain.Target, args []string) (outcome domain.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.processor.Report(ctx, target, oops.With("panic", fmt.Sprint(rec)).Errorf("batch handler panicked"))
			err = nil
		}
	}()

	if len(args) != 2 || !lo.EveryBy(args, func(arg string) bool { return strings.HasPrefix(arg, linkPrefix) }) {
		s.notify(ctx, target, usageNotice)
		return outcome, nil
	}

	rng, err := s.parseRange(args[0], args[1])
	if err != nil {
		s.notify(ctx, target, "❌ "+html.EscapeString(err.Error()))
		return outcome, nil
	}

	if err := s.repo.ProbeChannel(ctx, rng.Channel); err != nil {
		if ctx.Err() != nil {
			return outcome, ctx.Err()
		}
		s.processor.Report(ctx, target, oops.With("channel", rng.Channel).Wrap(err))
		return outcome, nil
	}

	slog.Info("Batch started", "chat_id", target.ChatID, "channel", rng.Channel, "start", rng.Start, "end", rng.End)

	noticeID, noticeErr := s.notifier.SendNotice(ctx, target, fmt.Sprintf("📥 Downloading posts %d–%d…", rng.Start, rng.End))
	if noticeErr != nil {
		slog.Warn("Failed to send batch placeholder", "chat_id", target.ChatID, "error", noticeErr)
	}

	base := postdomain.PostReference{Channel: rng.Channel}
	for id := rng.Start; id <= rng.End; id++ {
		result, stepErr := s.step(ctx, target, base.WithMessageID(id))
		if stepErr != nil {
			err = stepErr
			break
		}
		outcome.Record(result)

		if stepErr := s.sleep(ctx, s.delay); stepErr != nil {
			err = stepErr
			break
		}
	}

	if noticeErr == nil {
		if delErr := s.notifier.DeleteMessage(context.WithoutCancel(ctx), target.ChatID, noticeID); delErr != nil {
			slog.Debug("Failed to delete batch placeholder", "chat_id", target.ChatID, "error", delErr)
		}
	}

	cancelled := err != nil
	slog.Info("Batch finished", "chat_id", target.ChatID, "channel", rng.Channel, "outcome", outcome.String(), "cancelled", cancelled)
	s.notify(context.WithoutCancel(ctx), target, outcome.Summary(cancelled))

	return outcome, err
}

func (s *Service) parseRange(startURL, endURL string) (domain.Range, error) {
	start, startErr := postdomain.ParseReference(startURL)
	end, endErr := postdomain.ParseReference(endURL)
	if err := stderrors.Join(startErr, endErr); err != nil {
		return domain.Range{}, err
	}
	return domain.NewRange(start, end)
}

// step handles a single id. The returned error is only set when ctx is done.
// A panic while handling the id counts as a failure.
func (s *Service) step(ctx context.Context, target downloaddomain.Target, ref postdomain.PostReference) (result domain.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Batch step panicked",
				"reference", ref.String(),
				"error", oops.With("panic", fmt.Sprint(rec)).Errorf("panic while handling post"))
			result, err = domain.ResultFailed, nil
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg, err := s.repo.GetMessage(ctx, ref)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Error("Failed to fetch post", "reference", ref.String(), "error", err)
		return domain.ResultFailed, nil
	}
	if msg == nil || !msg.HasContent() {
		return domain.ResultSkipped, nil
	}

	if err := s.processor.Process(ctx, target, msg); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.KindOf(err) == errors.KindSizeLimit {
			s.processor.Report(ctx, target, err)
		}
		slog.Error("Failed to download post", "reference", ref.String(), "error", err)
		return domain.ResultFailed, nil
	}
	return domain.ResultDownloaded, nil
}

func (s *Service) notify(ctx context.Context, target downloaddomain.Target, text string) {
	if _, err := s.notifier.SendNotice(ctx, target, text); err != nil {
		slog.Error("Failed to send batch notice", "chat_id", target.ChatID, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
