package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/domain"
)

type fakeRepo struct {
	cpuErr error
}

func (f *fakeRepo) Disk(ctx context.Context) (domain.DiskUsage, error) {
	return domain.DiskUsage{Total: 100, Used: 40, Free: 60, UsedPercent: 40}, nil
}

func (f *fakeRepo) Network(ctx context.Context) (domain.NetworkIO, error) {
	return domain.NetworkIO{BytesSent: 1, BytesRecv: 2}, nil
}

func (f *fakeRepo) CPUPercent(ctx context.Context) (float64, error) {
	return 12.5, f.cpuErr
}

func (f *fakeRepo) MemoryPercent(ctx context.Context) (float64, error) {
	return 33, nil
}

func (f *fakeRepo) ProcessRSS(ctx context.Context) (uint64, error) {
	return 4096, nil
}

type fixedTasks int

func (n fixedTasks) Len() int { return int(n) }

func TestSnapshot(t *testing.T) {
	boot := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := New(&fakeRepo{}, fixedTasks(3), boot)
	svc.now = func() time.Time { return boot.Add(time.Hour) }

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	want := domain.Snapshot{
		Uptime:        time.Hour,
		Disk:          domain.DiskUsage{Total: 100, Used: 40, Free: 60, UsedPercent: 40},
		Network:       domain.NetworkIO{BytesSent: 1, BytesRecv: 2},
		CPUPercent:    12.5,
		MemoryPercent: 33,
		ProcessRSS:    4096,
		RunningTasks:  3,
	}
	if snap != want {
		t.Fatalf("Snapshot() = %+v, want %+v", snap, want)
	}
}

func TestSnapshot_PropagatesSamplerError(t *testing.T) {
	sampleErr := errors.New("proc not mounted")
	svc := New(&fakeRepo{cpuErr: sampleErr}, fixedTasks(0), time.Now())

	if _, err := svc.Snapshot(context.Background()); !errors.Is(err, sampleErr) {
		t.Fatalf("Snapshot() error = %v, want %v", err, sampleErr)
	}
}
