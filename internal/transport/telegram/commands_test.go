package telegram

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	downloadDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
	taskService "github.com/reshetovitsme/media-relay-bot/internal/modules/task/service"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/config"
)

type fakeMessenger struct {
	mu      sync.Mutex
	notices []string
	files   []string
}

func (f *fakeMessenger) SendNotice(ctx context.Context, target downloadDomain.Target, html string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, html)
	return len(f.notices), nil
}

func (f *fakeMessenger) SendWelcome(ctx context.Context, chatID int64, html, buttonText, buttonURL string) error {
	return nil
}

func (f *fakeMessenger) SendFile(ctx context.Context, chatID int64, path, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = append(f.files, path)
	return nil
}

func (f *fakeMessenger) lastNotice(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.notices) == 0 {
		t.Fatal("no reply sent")
	}
	return f.notices[len(f.notices)-1]
}

var chat = downloadDomain.Target{ChatID: 7, ReplyTo: 3}

func newTestHandler(t *testing.T, cfg *config.Config) (*Handler, *fakeMessenger, *taskService.Registry) {
	t.Helper()
	messenger := &fakeMessenger{}
	registry := taskService.NewRegistry(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		registry.Shutdown(ctx)
	})
	return New(cfg, messenger, registry, nil, nil, nil, nil), messenger, registry
}

func TestHandleDownload_MissingURL(t *testing.T) {
	h, messenger, registry := newTestHandler(t, &config.Config{})

	h.handleDownload(context.Background(), chat, nil)

	if got := messenger.lastNotice(t); got != "Provide a post URL after the /dl command." {
		t.Fatalf("reply = %q", got)
	}
	if n := registry.Len(); n != 0 {
		t.Fatalf("registry holds %d task(s), want 0", n)
	}
}

func TestHandleKillAll(t *testing.T) {
	h, messenger, registry := newTestHandler(t, &config.Config{})

	started := make(chan struct{}, 2)
	for _, label := range []string{"a", "b"} {
		registry.Track(label, chat.ChatID, func(ctx context.Context) error {
			started <- struct{}{}
			<-ctx.Done()
			return ctx.Err()
		})
	}
	<-started
	<-started

	h.handleKillAll(context.Background(), chat, nil)
	if got := messenger.lastNotice(t); got != "Cancelled 2 running task(s)." {
		t.Fatalf("reply = %q", got)
	}
}

func TestHandleLogs(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	full := filepath.Join(dir, "logs.txt")
	if err := os.WriteFile(full, []byte("level=INFO msg=started\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		wantReply string
		wantFile  bool
	}{
		{name: "missing", path: filepath.Join(dir, "absent.txt"), wantReply: "No logs file found."},
		{name: "empty", path: empty, wantReply: "No logs file found."},
		{name: "present", path: full, wantFile: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, messenger, _ := newTestHandler(t, &config.Config{LogsFile: tt.path})

			h.handleLogs(context.Background(), chat, nil)

			if tt.wantFile {
				if len(messenger.files) != 1 || messenger.files[0] != tt.path {
					t.Fatalf("files sent = %v, want [%s]", messenger.files, tt.path)
				}
				if len(messenger.notices) != 0 {
					t.Fatalf("unexpected replies: %v", messenger.notices)
				}
				return
			}
			if got := messenger.lastNotice(t); got != tt.wantReply {
				t.Fatalf("reply = %q, want %q", got, tt.wantReply)
			}
			if len(messenger.files) != 0 {
				t.Fatalf("files sent = %v, want none", messenger.files)
			}
		})
	}
}
