package repository

import (
	"context"
	"os"
	"time"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/domain"
	"github.com/samber/oops"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

const cpuSampleWindow = 500 * time.Millisecond

// System reads resource usage through gopsutil.
type System struct {
	path string
	pid  int32
}

// NewSystem samples the volume holding path and the current process.
func NewSystem(path string) *System {
	return &System{path: path, pid: int32(os.Getpid())}
}

func (s *System) Disk(ctx context.Context) (domain.DiskUsage, error) {
	usage, err := disk.UsageWithContext(ctx, s.path)
	if err != nil {
		return domain.DiskUsage{}, oops.With("path", s.path).Wrap(err)
	}
	return domain.DiskUsage{
		Total:       usage.Total,
		Used:        usage.Used,
		Free:        usage.Free,
		UsedPercent: usage.UsedPercent,
	}, nil
}

func (s *System) Network(ctx context.Context) (domain.NetworkIO, error) {
	counters, err := psnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return domain.NetworkIO{}, oops.Wrap(err)
	}
	if len(counters) == 0 {
		return domain.NetworkIO{}, nil
	}
	return domain.NetworkIO{BytesSent: counters[0].BytesSent, BytesRecv: counters[0].BytesRecv}, nil
}

func (s *System) CPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, cpuSampleWindow, false)
	if err != nil {
		return 0, oops.Wrap(err)
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}

func (s *System) MemoryPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, oops.Wrap(err)
	}
	return vm.UsedPercent, nil
}

func (s *System) ProcessRSS(ctx context.Context) (uint64, error) {
	proc, err := process.NewProcessWithContext(ctx, s.pid)
	if err != nil {
		return 0, oops.With("pid", s.pid).Wrap(err)
	}
	info, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, oops.With("pid", s.pid).Wrap(err)
	}
	return info.RSS, nil
}
