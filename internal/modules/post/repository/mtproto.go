package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	// groupWindow is how far around a referenced id media group siblings
	// are looked up. Albums hold at most ten items.
	groupWindow = 10
	dialogsPage = 100
)

// accessErrors are RPC errors meaning the session cannot see the peer.
var accessErrors = []string{
	"CHANNEL_PRIVATE",
	"CHANNEL_INVALID",
	"CHANNEL_PUBLIC_GROUP_NA",
	"CHAT_ID_INVALID",
	"PEER_ID_INVALID",
	"USERNAME_INVALID",
	"USERNAME_NOT_OCCUPIED",
}

// MTProto implements Repository on top of a gotd user session.
type MTProto struct {
	client      *telegram.Client
	sessionPath string
	downloader  *downloader.Downloader

	ready     chan struct{}
	readyOnce sync.Once

	mu       sync.RWMutex
	self     *tg.User
	channels map[string]*tg.InputChannel
}

// NewMTProto creates a repository backed by the session stored at sessionPath.
// The session must already be authorized; Run fails otherwise.
func NewMTProto(appID int, appHash, sessionPath string) *MTProto {
	return &MTProto{
		client: telegram.NewClient(appID, appHash, telegram.Options{
			SessionStorage: &session.FileStorage{Path: sessionPath},
		}),
		sessionPath: sessionPath,
		downloader:  downloader.NewDownloader(),
		ready:       make(chan struct{}),
		channels:    make(map[string]*tg.InputChannel),
	}
}

// Run connects the session and blocks until ctx is done.
func (m *MTProto) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(m.sessionPath), 0755); err != nil {
		return oops.With("session_path", m.sessionPath).Wrap(err)
	}

	return m.client.Run(ctx, func(ctx context.Context) error {
		status, err := m.client.Auth().Status(ctx)
		if err != nil {
			return oops.With("context", "checking session auth status").Wrap(err)
		}
		if !status.Authorized {
			return oops.With("session_path", m.sessionPath).Wrap(errors.ErrSessionUnauthorized)
		}

		self, err := m.client.Self(ctx)
		if err != nil {
			return oops.With("context", "fetching session user").Wrap(err)
		}

		m.mu.Lock()
		m.self = self
		m.mu.Unlock()
		m.readyOnce.Do(func() { close(m.ready) })

		slog.Info("User session started", "user_id", self.ID, "username", self.Username, "premium", self.Premium)

		<-ctx.Done()
		return ctx.Err()
	})
}

func (m *MTProto) api(ctx context.Context) (*tg.Client, error) {
	select {
	case <-m.ready:
		return m.client.API(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *MTProto) GetMessage(ctx context.Context, ref domain.PostReference) (*domain.Message, error) {
	msgs, err := m.getMessages(ctx, ref.Channel, []int{ref.MessageID})
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		if msg.ID == ref.MessageID {
			return msg, nil
		}
	}
	return nil, nil
}

func (m *MTProto) GetMediaGroup(ctx context.Context, ref domain.PostReference, groupID int64) ([]*domain.Message, error) {
	ids := lo.RangeFrom(max(1, ref.MessageID-groupWindow+1), 2*groupWindow)
	msgs, err := m.getMessages(ctx, ref.Channel, ids)
	if err != nil {
		return nil, err
	}

	group := lo.Filter(msgs, func(msg *domain.Message, _ int) bool {
		return msg.GroupID == groupID && msg.Media != nil
	})
	slices.SortFunc(group, func(a, b *domain.Message) int { return a.ID - b.ID })
	return group, nil
}

func (m *MTProto) Download(ctx context.Context, msg *domain.Message, w io.Writer) error {
	if msg.Media == nil {
		return oops.With("message_id", msg.ID).Errorf("message has no media")
	}
	location, ok := msg.Media.Location.(tg.InputFileLocationClass)
	if !ok {
		return oops.With("message_id", msg.ID, "media_type", msg.Media.Type).Errorf("media has no downloadable location")
	}

	api, err := m.api(ctx)
	if err != nil {
		return err
	}

	if _, err := m.downloader.Download(api, location).Stream(ctx, w); err != nil {
		return oops.With("channel", msg.Channel, "message_id", msg.ID).Wrap(classify(err))
	}
	return nil
}

func (m *MTProto) ProbeChannel(ctx context.Context, channel string) error {
	input, err := m.resolveChannel(ctx, channel)
	if err != nil {
		return err
	}
	api, err := m.api(ctx)
	if err != nil {
		return err
	}

	res, err := api.ChannelsGetChannels(ctx, []tg.InputChannelClass{input})
	if err != nil {
		return oops.With("channel", channel).Wrap(classify(err))
	}

	var chats []tg.ChatClass
	switch r := res.(type) {
	case *tg.MessagesChats:
		chats = r.Chats
	case *tg.MessagesChatsSlice:
		chats = r.Chats
	}
	if _, ok := lo.Find(chats, func(c tg.ChatClass) bool {
		ch, ok := c.(*tg.Channel)
		return ok && ch.ID == input.ChannelID
	}); !ok {
		return oops.With("channel", channel).Wrap(errors.ErrAccess)
	}
	return nil
}

func (m *MTProto) IsPremium(ctx context.Context) (bool, error) {
	select {
	case <-m.ready:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.self != nil && m.self.Premium, nil
}

func (m *MTProto) getMessages(ctx context.Context, channel string, ids []int) ([]*domain.Message, error) {
	input, err := m.resolveChannel(ctx, channel)
	if err != nil {
		return nil, err
	}
	api, err := m.api(ctx)
	if err != nil {
		return nil, err
	}

	res, err := api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
		Channel: input,
		ID: lo.Map(ids, func(id int, _ int) tg.InputMessageClass {
			return &tg.InputMessageID{ID: id}
		}),
	})
	if err != nil {
		return nil, oops.With("channel", channel, "ids", ids).Wrap(classify(err))
	}

	var raw []tg.MessageClass
	switch r := res.(type) {
	case *tg.MessagesChannelMessages:
		raw = r.Messages
	case *tg.MessagesMessages:
		raw = r.Messages
	case *tg.MessagesMessagesSlice:
		raw = r.Messages
	}

	return lo.FilterMap(raw, func(msg tg.MessageClass, _ int) (*domain.Message, bool) {
		converted := convertMessage(channel, msg)
		return converted, converted != nil
	}), nil
}

func (m *MTProto) resolveChannel(ctx context.Context, channel string) (*tg.InputChannel, error) {
	m.mu.RLock()
	cached, ok := m.channels[channel]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	api, err := m.api(ctx)
	if err != nil {
		return nil, err
	}

	var input *tg.InputChannel
	if id, private := (domain.PostReference{Channel: channel}).InternalID(); private {
		input, err = m.findDialogChannel(ctx, api, id)
	} else {
		input, err = m.resolveUsername(ctx, api, channel)
	}
	if err != nil {
		return nil, oops.With("channel", channel).Wrap(err)
	}

	m.mu.Lock()
	m.channels[channel] = input
	m.mu.Unlock()
	return input, nil
}

func (m *MTProto) resolveUsername(ctx context.Context, api *tg.Client, username string) (*tg.InputChannel, error) {
	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
	if err != nil {
		return nil, classify(err)
	}

	peer, ok := resolved.Peer.(*tg.PeerChannel)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a channel", errors.ErrAccess, username)
	}
	for _, chat := range resolved.Chats {
		if ch, ok := chat.(*tg.Channel); ok && ch.ID == peer.ChannelID {
			return &tg.InputChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not visible", errors.ErrAccess, username)
}

// findDialogChannel looks a private channel up in the session's dialogs,
// which is the only place its access hash can come from.
func (m *MTProto) findDialogChannel(ctx context.Context, api *tg.Client, channelID int64) (*tg.InputChannel, error) {
	offsetDate := 0
	for {
		res, err := api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
			OffsetDate: offsetDate,
			OffsetPeer: &tg.InputPeerEmpty{},
			Limit:      dialogsPage,
		})
		if err != nil {
			return nil, classify(err)
		}

		var (
			dialogs []tg.DialogClass
			chats   []tg.ChatClass
			msgs    []tg.MessageClass
		)
		switch r := res.(type) {
		case *tg.MessagesDialogs:
			dialogs, chats, msgs = r.Dialogs, r.Chats, r.Messages
		case *tg.MessagesDialogsSlice:
			dialogs, chats, msgs = r.Dialogs, r.Chats, r.Messages
		}

		for _, chat := range chats {
			if ch, ok := chat.(*tg.Channel); ok && ch.ID == channelID {
				return &tg.InputChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, nil
			}
		}

		nextOffset := offsetDate
		for _, msg := range msgs {
			switch v := msg.(type) {
			case *tg.Message:
				nextOffset = v.Date
			case *tg.MessageService:
				nextOffset = v.Date
			}
		}
		if len(dialogs) < dialogsPage || nextOffset == offsetDate {
			return nil, fmt.Errorf("%w: channel %d is not among the session dialogs", errors.ErrAccess, channelID)
		}
		offsetDate = nextOffset
	}
}

func classify(err error) error {
	if tgerr.Is(err, accessErrors...) {
		return fmt.Errorf("%w: %w", errors.ErrAccess, err)
	}
	return err
}

func convertMessage(channel string, raw tg.MessageClass) *domain.Message {
	switch msg := raw.(type) {
	case *tg.Message:
		out := &domain.Message{
			ID:      msg.ID,
			Channel: channel,
			GroupID: msg.GroupedID,
			Media:   convertMedia(msg.Media),
		}
		text := domain.Text{Body: msg.Message, Entities: convertEntities(msg.Entities)}
		if out.Media != nil {
			out.Caption = text
		} else {
			out.Text = text
		}
		return out
	case *tg.MessageService:
		return &domain.Message{ID: msg.ID, Channel: channel, Service: true}
	default:
		return nil
	}
}

func convertMedia(raw tg.MessageMediaClass) *domain.Media {
	switch media := raw.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := media.Photo.(*tg.Photo)
		if !ok {
			return nil
		}
		thumb, size := largestPhotoSize(photo.Sizes)
		if thumb == "" {
			return nil
		}
		return &domain.Media{
			Type:     domain.MediaTypePhoto,
			FileName: fmt.Sprintf("photo_%d.jpg", photo.ID),
			MimeType: "image/jpeg",
			Size:     int64(size),
			Location: &tg.InputPhotoFileLocation{
				ID:            photo.ID,
				AccessHash:    photo.AccessHash,
				FileReference: photo.FileReference,
				ThumbSize:     thumb,
			},
		}
	case *tg.MessageMediaDocument:
		doc, ok := media.Document.(*tg.Document)
		if !ok {
			return nil
		}
		out := &domain.Media{
			Type:     domain.MediaTypeDocument,
			FileName: "document_" + strconv.FormatInt(doc.ID, 10),
			MimeType: doc.MimeType,
			Size:     int64(doc.Size),
			Location: doc.AsInputDocumentFileLocation(),
		}
		animated := false
		for _, attr := range doc.Attributes {
			switch a := attr.(type) {
			case *tg.DocumentAttributeFilename:
				out.FileName = a.FileName
			case *tg.DocumentAttributeVideo:
				out.Type = domain.MediaTypeVideo
			case *tg.DocumentAttributeAudio:
				out.Type = lo.Ternary(a.Voice, domain.MediaTypeVoice, domain.MediaTypeAudio)
			case *tg.DocumentAttributeAnimated:
				animated = true
			}
		}
		if animated {
			out.Type = domain.MediaTypeAnimation
		}
		return out
	default:
		return nil
	}
}

func largestPhotoSize(sizes []tg.PhotoSizeClass) (string, int) {
	thumb, best := "", 0
	for _, s := range sizes {
		switch v := s.(type) {
		case *tg.PhotoSize:
			if v.Size > best {
				thumb, best = v.Type, v.Size
			}
		case *tg.PhotoSizeProgressive:
			if n := len(v.Sizes); n > 0 && v.Sizes[n-1] > best {
				thumb, best = v.Type, v.Sizes[n-1]
			}
		}
	}
	return thumb, best
}

func convertEntities(entities []tg.MessageEntityClass) []domain.Entity {
	return lo.FilterMap(entities, func(e tg.MessageEntityClass, _ int) (domain.Entity, bool) {
		out := domain.Entity{Offset: e.GetOffset(), Length: e.GetLength()}
		switch v := e.(type) {
		case *tg.MessageEntityBold:
			out.Type = domain.EntityBold
		case *tg.MessageEntityItalic:
			out.Type = domain.EntityItalic
		case *tg.MessageEntityUnderline:
			out.Type = domain.EntityUnderline
		case *tg.MessageEntityStrike:
			out.Type = domain.EntityStrikethrough
		case *tg.MessageEntitySpoiler:
			out.Type = domain.EntitySpoiler
		case *tg.MessageEntityCode:
			out.Type = domain.EntityCode
		case *tg.MessageEntityPre:
			out.Type, out.Language = domain.EntityPre, v.Language
		case *tg.MessageEntityTextURL:
			out.Type, out.URL = domain.EntityTextLink, v.URL
		case *tg.MessageEntityMention:
			out.Type = domain.EntityMention
		case *tg.MessageEntityHashtag:
			out.Type = domain.EntityHashtag
		case *tg.MessageEntityCashtag:
			out.Type = domain.EntityCashtag
		case *tg.MessageEntityBotCommand:
			out.Type = domain.EntityBotCommand
		case *tg.MessageEntityURL:
			out.Type = domain.EntityURL
		case *tg.MessageEntityEmail:
			out.Type = domain.EntityEmail
		case *tg.MessageEntityPhone:
			out.Type = domain.EntityPhoneNumber
		case *tg.MessageEntityBlockquote:
			out.Type = domain.EntityBlockquote
		case *tg.MessageEntityCustomEmoji:
			out.Type, out.CustomEmojiID = domain.EntityCustomEmoji, strconv.FormatInt(v.DocumentID, 10)
		default:
			return out, false
		}
		return out, true
	})
}
