package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	taskDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/task/domain"
	telemetryDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/domain"
)

type fakeStats struct {
	snap telemetryDomain.Snapshot
	err  error
}

func (f fakeStats) Snapshot(ctx context.Context) (telemetryDomain.Snapshot, error) {
	return f.snap, f.err
}

type fakeTasks []taskDomain.Snapshot

func (f fakeTasks) Tasks() []taskDomain.Snapshot { return f }

func TestServer_Endpoints(t *testing.T) {
	stats := fakeStats{snap: telemetryDomain.Snapshot{Uptime: time.Minute, CPUPercent: 5, RunningTasks: 1}}
	tasks := fakeTasks{{ID: "abc", Label: "dl https://t.me/chan/1", ChatID: 7, State: taskDomain.StateRunning}}
	handler := New("0", stats, tasks).Handler()

	tests := []struct {
		path   string
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			path:   "/health",
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["status"] != "ok" {
					t.Errorf("status = %v", body["status"])
				}
			},
		},
		{
			path:   "/stats",
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["cpu_percent"] != float64(5) || body["running_tasks"] != float64(1) {
					t.Errorf("unexpected stats body: %v", body)
				}
			},
		},
		{
			path:   "/tasks",
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				list, ok := body["tasks"].([]any)
				if !ok || len(list) != 1 {
					t.Fatalf("unexpected tasks body: %v", body)
				}
				if task := list[0].(map[string]any); task["id"] != "abc" || task["state"] != "running" {
					t.Errorf("unexpected task: %v", task)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			tt.check(t, body)
		})
	}
}

func TestServer_StatsError(t *testing.T) {
	handler := New("0", fakeStats{err: errors.New("no proc")}, fakeTasks{}).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestServer_Disabled(t *testing.T) {
	if err := New("", fakeStats{}, fakeTasks{}).Run(context.Background()); err != nil {
		t.Fatalf("Run() with no port = %v, want nil", err)
	}
}
