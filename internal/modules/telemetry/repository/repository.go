package repository

import (
	"context"

	"github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/domain"
)

// Repository samples host and process resource usage.
type Repository interface {
	Disk(ctx context.Context) (domain.DiskUsage, error)
	Network(ctx context.Context) (domain.NetworkIO, error)
	CPUPercent(ctx context.Context) (float64, error)
	MemoryPercent(ctx context.Context) (float64, error)
	ProcessRSS(ctx context.Context) (uint64, error)
}
