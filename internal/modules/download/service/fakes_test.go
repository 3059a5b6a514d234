package service

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
	postdomain "github.com/reshetovitsme/media-relay-bot/internal/modules/post/domain"
)

type fakeRepo struct {
	messages  map[int]*postdomain.Message
	groups    map[int64][]*postdomain.Message
	payload   []byte
	premium   bool
	fetchErr  error
	failItems map[int]error

	// block makes Download write half the payload, signal started and
	// wait for cancellation.
	block   bool
	started chan struct{}

	mu        sync.Mutex
	downloads []int
	premiumQs int
}

func (f *fakeRepo) GetMessage(ctx context.Context, ref postdomain.PostReference) (*postdomain.Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.messages[ref.MessageID], nil
}

func (f *fakeRepo) GetMediaGroup(ctx context.Context, ref postdomain.PostReference, groupID int64) ([]*postdomain.Message, error) {
	return f.groups[groupID], nil
}

func (f *fakeRepo) Download(ctx context.Context, msg *postdomain.Message, w io.Writer) error {
	f.mu.Lock()
	f.downloads = append(f.downloads, msg.ID)
	f.mu.Unlock()

	if err := f.failItems[msg.ID]; err != nil {
		return err
	}
	if f.block {
		if _, err := w.Write(f.payload[:len(f.payload)/2]); err != nil {
			return err
		}
		close(f.started)
		<-ctx.Done()
		return ctx.Err()
	}
	_, err := w.Write(f.payload)
	return err
}

func (f *fakeRepo) ProbeChannel(ctx context.Context, channel string) error {
	return nil
}

func (f *fakeRepo) IsPremium(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.premiumQs++
	return f.premium, nil
}

type sentMedia struct {
	file    domain.LocalFile
	caption postdomain.Text
	// exists records whether the file was still on disk at send time.
	exists bool
}

type fakeReplier struct {
	mu       sync.Mutex
	nextID   int
	notices  []string
	edits    []string
	deleted  []int
	texts    []postdomain.Text
	media    []sentMedia
	albums   [][]sentMedia
	mediaErr error
}

func (f *fakeReplier) SendNotice(ctx context.Context, target domain.Target, html string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.notices = append(f.notices, html)
	return f.nextID, nil
}

func (f *fakeReplier) EditNotice(ctx context.Context, chatID int64, messageID int, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, html)
	return nil
}

func (f *fakeReplier) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeReplier) SendText(ctx context.Context, target domain.Target, text postdomain.Text) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeReplier) SendMedia(ctx context.Context, target domain.Target, file domain.LocalFile, caption postdomain.Text) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media = append(f.media, sentMedia{file: file, caption: caption, exists: fileExists(file.Path)})
	return f.mediaErr
}

func (f *fakeReplier) SendAlbum(ctx context.Context, target domain.Target, files []domain.LocalFile, caption postdomain.Text) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	album := make([]sentMedia, 0, len(files))
	for i, file := range files {
		item := sentMedia{file: file, exists: fileExists(file.Path)}
		if i == 0 {
			item.caption = caption
		}
		album = append(album, item)
	}
	f.albums = append(f.albums, album)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func dirEntries(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	return len(entries)
}
