package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
	postdomain "github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
	"github.com/reshetovitsme/media-relay-bot/internal/modules/post/repository"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	maxAlbumSize = 10

	noContentNotice    = "No media or text found in this post."
	noGroupMediaNotice = "Could not extract any valid media from the media group."
	accessNotice       = "<b>Make sure the user client is part of the chat.</b>"
	uploadingNotice    = "📤 Uploading…"
	groupNotice        = "📥 Downloading media group…"
)

// Options configures the download service.
type Options struct {
	DownloadDir      string
	Policy           domain.SizePolicy
	ProgressInterval time.Duration
}

// Service fetches one post through the user session and relays it.
type Service struct {
	repo    repository.Repository
	replier Replier
	opts    Options
	now     func() time.Time
}

// New creates a new download service
func New(repo repository.Repository, replier Replier, opts Options) *Service {
	return &Service{
		repo:    repo,
		replier: replier,
		opts:    opts,
		now:     time.Now,
	}
}

// Handle serves one /dl request. Failures are reported to the chat and
// logged; only cancellation is returned to the caller.
func (s *Service) Handle(ctx context.Context, target domain.Target, rawURL string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = oops.With("panic", fmt.Sprint(rec), "url", rawURL).Errorf("download handler panicked")
		}
		s.Report(ctx, target, err)
		if ctx.Err() != nil {
			err = ctx.Err()
			return
		}
		err = nil
	}()

	ref, err := postdomain.ParseReference(rawURL)
	if err != nil {
		return err
	}

	msg, err := s.repo.GetMessage(ctx, ref)
	if err != nil {
		return oops.With("reference", ref.String()).Wrap(err)
	}
	if msg == nil {
		_, err = s.replier.SendNotice(ctx, target, noContentNotice)
		return err
	}

	return s.Process(ctx, target, msg)
}

// Process relays an already fetched message according to its payload kind.
func (s *Service) Process(ctx context.Context, target domain.Target, msg *postdomain.Message) error {
	if err := s.checkSize(ctx, msg); err != nil {
		return err
	}

	switch msg.Kind() {
	case postdomain.PayloadKindGroupedMedia:
		return s.sendGroup(ctx, target, msg)
	case postdomain.PayloadKindSingleMedia:
		return s.sendSingle(ctx, target, msg)
	case postdomain.PayloadKindText:
		return s.replier.SendText(ctx, target, msg.Body())
	default:
		_, err := s.replier.SendNotice(ctx, target, noContentNotice)
		return err
	}
}

// Report replies to the chat with a message matching the error kind.
func (s *Service) Report(ctx context.Context, target domain.Target, err error) {
	if err == nil {
		return
	}

	kind := errors.KindOf(err)
	if ctx.Err() != nil {
		kind = errors.KindCancelled
	}

	var text string
	switch kind {
	case errors.KindCancelled:
		slog.Info("Download cancelled", "chat_id", target.ChatID)
		return
	case errors.KindParse:
		text = "❌ " + html.EscapeString(err.Error())
	case errors.KindAccess:
		slog.Warn("Post not visible to user session", "chat_id", target.ChatID, "error", err)
		text = accessNotice
	case errors.KindSizeLimit:
		var limitErr *domain.SizeLimitError
		if stderrors.As(err, &limitErr) {
			text = fmt.Sprintf("❌ The file size (%s) exceeds the %s limit and cannot be downloaded.",
				humanize.IBytes(uint64(limitErr.Size)), humanize.IBytes(uint64(limitErr.Limit)))
		} else {
			text = "❌ The file is too large to be downloaded."
		}
	default:
		slog.Error("Download failed", "chat_id", target.ChatID, "error", err)
		text = "❌ " + html.EscapeString(err.Error())
	}

	if _, sendErr := s.replier.SendNotice(context.WithoutCancel(ctx), target, text); sendErr != nil {
		slog.Error("Failed to report download error", "chat_id", target.ChatID, "error", sendErr)
	}
}

func (s *Service) checkSize(ctx context.Context, msg *postdomain.Message) error {
	size, ok := msg.ReportedSize()
	if !ok || !s.opts.Policy.NeedsEntitlement(size) {
		return nil
	}

	premium, err := s.repo.IsPremium(ctx)
	if err != nil {
		return oops.With("context", "checking session entitlement").Wrap(err)
	}
	if err := s.opts.Policy.Check(size, premium); err != nil {
		return oops.With("reference", msg.Reference().String(), "premium", premium).Wrap(err)
	}
	return nil
}

func (s *Service) sendSingle(ctx context.Context, target domain.Target, msg *postdomain.Message) error {
	total, _ := msg.ReportedSize()
	noticeID, err := s.replier.SendNotice(ctx, target, domain.Progress{Total: total}.Render())
	if err != nil {
		return err
	}
	defer s.deleteNotice(ctx, target.ChatID, noticeID)

	progress := &progressWriter{
		ctx:       ctx,
		replier:   s.replier,
		chatID:    target.ChatID,
		messageID: noticeID,
		interval:  s.opts.ProgressInterval,
		now:       s.now,
		progress:  domain.Progress{Total: total},
		last:      s.now(),
	}

	file, err := s.download(ctx, msg, progress)
	if err != nil {
		return err
	}
	defer s.remove(file)

	if err := s.replier.EditNotice(ctx, target.ChatID, noticeID, uploadingNotice); err != nil {
		slog.Debug("Failed to update progress", "chat_id", target.ChatID, "error", err)
	}

	if err := s.replier.SendMedia(ctx, target, file, msg.Caption); err != nil {
		return oops.With("reference", msg.Reference().String(), "media_type", file.Type).Wrap(err)
	}
	return nil
}

func (s *Service) sendGroup(ctx context.Context, target domain.Target, msg *postdomain.Message) error {
	items, err := s.repo.GetMediaGroup(ctx, msg.Reference(), msg.GroupID)
	if err != nil {
		return oops.With("reference", msg.Reference().String(), "group_id", msg.GroupID).Wrap(err)
	}
	if len(items) == 0 && msg.Media != nil {
		items = []*postdomain.Message{msg}
	}

	noticeID, err := s.replier.SendNotice(ctx, target, groupNotice)
	if err != nil {
		return err
	}
	defer s.deleteNotice(ctx, target.ChatID, noticeID)

	var (
		files   []domain.LocalFile
		caption postdomain.Text
	)
	defer func() {
		for _, file := range files {
			s.remove(file)
		}
	}()

	for _, item := range items {
		if caption.IsEmpty() {
			caption = item.Caption
		}
		if err := s.checkSize(ctx, item); err != nil {
			slog.Warn("Skipping group item", "reference", item.Reference().String(), "error", err)
			continue
		}

		file, err := s.download(ctx, item, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Skipping group item", "reference", item.Reference().String(), "error", err)
			continue
		}
		files = append(files, file)
	}

	if len(files) == 0 {
		_, err := s.replier.SendNotice(ctx, target, noGroupMediaNotice)
		return err
	}

	if err := s.replier.EditNotice(ctx, target.ChatID, noticeID, uploadingNotice); err != nil {
		slog.Debug("Failed to update progress", "chat_id", target.ChatID, "error", err)
	}
	return s.sendAlbums(ctx, target, files, caption)
}

// sendAlbums sends photos and videos together, audio together and documents
// together. Anything that cannot share an album goes out on its own. The
// caption is attached to the first send only.
func (s *Service) sendAlbums(ctx context.Context, target domain.Target, files []domain.LocalFile, caption postdomain.Text) error {
	byKind := lo.GroupBy(files, func(f domain.LocalFile) string {
		switch f.Type {
		case postdomain.MediaTypePhoto, postdomain.MediaTypeVideo:
			return "visual"
		case postdomain.MediaTypeAudio:
			return "audio"
		case postdomain.MediaTypeDocument:
			return "document"
		default:
			return "single"
		}
	})

	nextCaption := func() postdomain.Text {
		c := caption
		caption = postdomain.Text{}
		return c
	}

	var (
		singles []domain.LocalFile
		sendErr error
	)
	for _, kind := range []string{"visual", "audio", "document"} {
		group := byKind[kind]
		if len(group) < 2 {
			singles = append(singles, group...)
			continue
		}
		for _, chunk := range lo.Chunk(group, maxAlbumSize) {
			if len(chunk) == 1 {
				singles = append(singles, chunk...)
				continue
			}
			if err := s.replier.SendAlbum(ctx, target, chunk, nextCaption()); err != nil {
				sendErr = stderrors.Join(sendErr, oops.With("kind", kind, "items", len(chunk)).Wrap(err))
			}
		}
	}

	for _, file := range append(singles, byKind["single"]...) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.replier.SendMedia(ctx, target, file, nextCaption()); err != nil {
			sendErr = stderrors.Join(sendErr, oops.With("media_type", file.Type).Wrap(err))
		}
	}
	return sendErr
}

// download writes the media of msg to a scratch file. The file is removed
// on every failure path, cancellation included.
func (s *Service) download(ctx context.Context, msg *postdomain.Message, progress io.Writer) (domain.LocalFile, error) {
	if err := os.MkdirAll(s.opts.DownloadDir, 0755); err != nil {
		return domain.LocalFile{}, oops.With("dir", s.opts.DownloadDir).Wrap(err)
	}

	name := msg.Media.FileName
	path := filepath.Join(s.opts.DownloadDir, uuid.NewString()+filepath.Ext(name))

	f, err := os.Create(path)
	if err != nil {
		return domain.LocalFile{}, oops.With("path", path).Wrap(err)
	}

	var w io.Writer = f
	if progress != nil {
		w = io.MultiWriter(f, progress)
	}

	err = s.repo.Download(ctx, msg, w)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.remove(domain.LocalFile{Path: path})
		return domain.LocalFile{}, oops.With("reference", msg.Reference().String()).Wrap(err)
	}

	size := msg.Media.Size
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}

	return domain.LocalFile{
		Path: path,
		Name: lo.Ternary(name != "", name, filepath.Base(path)),
		Type: msg.Media.Type,
		Size: size,
	}, nil
}

func (s *Service) remove(file domain.LocalFile) {
	if err := os.Remove(file.Path); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to remove scratch file", "path", file.Path, "error", err)
	}
}

func (s *Service) deleteNotice(ctx context.Context, chatID int64, messageID int) {
	if err := s.replier.DeleteMessage(context.WithoutCancel(ctx), chatID, messageID); err != nil {
		slog.Debug("Failed to delete progress message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}
