package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DiskUsage describes the volume holding the working directory.
type DiskUsage struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// NetworkIO holds cumulative byte counters over all interfaces.
type NetworkIO struct {
	BytesSent uint64 `json:"bytes_sent"`
	BytesRecv uint64 `json:"bytes_recv"`
}

// Snapshot is a point-in-time view of the host and the process.
type Snapshot struct {
	Uptime        time.Duration `json:"uptime"`
	Disk          DiskUsage     `json:"disk"`
	Network       NetworkIO     `json:"network"`
	CPUPercent    float64       `json:"cpu_percent"`
	MemoryPercent float64       `json:"memory_percent"`
	ProcessRSS    uint64        `json:"process_rss"`
	RunningTasks  int           `json:"running_tasks"`
}

// Render formats the snapshot as the /stats reply.
func (s Snapshot) Render() string {
	var b strings.Builder
	b.WriteString("<b>≧◉◡◉≦ Bot is Up and Running successfully.</b>\n\n")
	fmt.Fprintf(&b, "<b>➜ Bot Uptime:</b> <code>%s</code>\n", FormatUptime(s.Uptime))
	fmt.Fprintf(&b, "<b>➜ Total Disk Space:</b> <code>%s</code>\n", humanize.IBytes(s.Disk.Total))
	fmt.Fprintf(&b, "<b>➜ Used:</b> <code>%s</code>\n", humanize.IBytes(s.Disk.Used))
	fmt.Fprintf(&b, "<b>➜ Free:</b> <code>%s</code>\n", humanize.IBytes(s.Disk.Free))
	fmt.Fprintf(&b, "<b>➜ Memory Usage:</b> <code>%s</code>\n\n", humanize.IBytes(s.ProcessRSS))
	fmt.Fprintf(&b, "<b>➜ Upload:</b> <code>%s</code>\n", humanize.IBytes(s.Network.BytesSent))
	fmt.Fprintf(&b, "<b>➜ Download:</b> <code>%s</code>\n\n", humanize.IBytes(s.Network.BytesRecv))
	fmt.Fprintf(&b, "<b>➜ CPU:</b> <code>%.1f%%</code> | <b>➜ RAM:</b> <code>%.1f%%</code> | <b>➜ DISK:</b> <code>%.1f%%</code>\n",
		s.CPUPercent, s.MemoryPercent, s.Disk.UsedPercent)
	fmt.Fprintf(&b, "<b>➜ Running Tasks:</b> <code>%d</code>", s.RunningTasks)
	return b.String()
}

// FormatUptime renders d as "1d 2h 3m 4s", omitting leading zero units.
func FormatUptime(d time.Duration) string {
	total := int64(d.Round(time.Second) / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
